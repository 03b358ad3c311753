package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when no --env-file is
// given. Its absence is not an error.
const DefaultEnvFile = ".env"

// Names of the location variables.
const (
	EnvMagiclysmDir = "MAGICLYSM_DIR"
	EnvDDADataDir   = "DDA_DATA_DIR"
	EnvUserModDir   = "USER_MOD_DIR"
)

// Paths holds the locations of the game data, the Magiclysm pack and the
// user mod directory.
type Paths struct {
	// MagiclysmDir is the Magiclysm data directory (the overlay pack).
	MagiclysmDir string `env:"MAGICLYSM_DIR"`

	// DDADataDir is the base game data directory (the base pack).
	DDADataDir string `env:"DDA_DATA_DIR"`

	// UserModDir is where user mods are installed.
	UserModDir string `env:"USER_MOD_DIR"`
}

// MissingPathError reports a required location that is neither configured
// through the environment nor given as a flag.
type MissingPathError struct {
	// Name is the environment variable that would supply the path.
	Name string
	// Flag is the command-line alternative, without dashes. May be empty.
	Flag string
}

func (e *MissingPathError) Error() string {
	if e.Flag == "" {
		return fmt.Sprintf("%s is not set", e.Name)
	}

	return fmt.Sprintf("%s is not set (set it or pass --%s)", e.Name, e.Flag)
}

// LoadPaths reads the location variables from the process environment and
// an optional .env file. Non-empty variables in the environment win over
// the file. An explicitly named envFile must exist; the default one
// may be absent.
func LoadPaths(envFile string) (*Paths, error) {
	environ, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
			environ[k] = v
		}
	}

	var p Paths
	if err := env.ParseWithOptions(&p, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	p.MagiclysmDir = strings.TrimSpace(p.MagiclysmDir)
	p.DDADataDir = strings.TrimSpace(p.DDADataDir)
	p.UserModDir = strings.TrimSpace(p.UserModDir)

	return &p, nil
}

func readEnvFile(envFile string) (map[string]string, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("reading env file %q: %w", envFile, err)
	}

	return values, nil
}

// Resolve returns override when it is non-empty, otherwise the configured
// value of the variable name. flag names the override in the error.
func (p *Paths) Resolve(override, name, flag string) (string, error) {
	if override != "" {
		return override, nil
	}

	var value string

	switch name {
	case EnvMagiclysmDir:
		value = p.MagiclysmDir
	case EnvDDADataDir:
		value = p.DDADataDir
	case EnvUserModDir:
		value = p.UserModDir
	default:
		return "", fmt.Errorf("unknown path variable %q", name)
	}

	if value == "" {
		return "", &MissingPathError{Name: name, Flag: flag}
	}

	return value, nil
}

type ctxPathsKey struct{}

// NewContextWithPaths returns a child context carrying p.
func NewContextWithPaths(ctx context.Context, p *Paths) context.Context {
	return context.WithValue(ctx, ctxPathsKey{}, p)
}

// PathsFromContext returns the Paths stored in ctx, or an empty Paths.
func PathsFromContext(ctx context.Context) *Paths {
	if p, ok := ctx.Value(ctxPathsKey{}).(*Paths); ok {
		return p
	}

	return &Paths{}
}
