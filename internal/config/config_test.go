package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd mirrors the persistent flags of the real root command.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("env-file", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")

	return cmd
}

// newTestSubCmd attaches a command carrying the content flags to a test
// root and returns it.
func newTestSubCmd() *cobra.Command {
	root := newTestRootCmd()
	sub := &cobra.Command{Use: "blacklist"}
	f := sub.Flags()
	f.String("subdir", DefaultSubdir, "")
	f.StringP("output", "o", DefaultBlacklistFile, "")
	f.Int("preview", DefaultPreview, "")
	f.String("mod-name", DefaultModName, "")
	f.Bool("no-default-excludes", false, "")
	f.String("dir", "", "")
	root.AddCommand(sub)

	return sub
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default / Validate
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, DefaultSubdir, cfg.Subdir)
	assert.Equal(t, DefaultBlacklistFile, cfg.Blacklist.Output)
	assert.Equal(t, DefaultPreview, cfg.Blacklist.Preview)
	assert.Equal(t, DefaultModName, cfg.Copy.ModName)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"debug level", func(c *Config) { c.LogLevel = LogLevelDebug }, ""},
		{"error level", func(c *Config) { c.LogLevel = LogLevelError }, ""},
		{"json format", func(c *Config) { c.LogFormat = LogFormatJSON }, ""},
		{"unknown level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"empty subdir", func(c *Config) { c.Subdir = " " }, "subdir"},
		{"empty output", func(c *Config) { c.Blacklist.Output = "" }, "blacklist.output"},
		{"zero preview", func(c *Config) { c.Blacklist.Preview = 0 }, ""},
		{"negative preview", func(c *Config) { c.Blacklist.Preview = -1 }, "blacklist.preview"},
		{"nested mod name", func(c *Config) { c.Copy.ModName = "a/b" }, "copy.modName"},
		{"bad exclude", func(c *Config) { c.Copy.Exclude = []string{"[x"} }, "copy.exclude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).EffectiveLogLevel())
	assert.Equal(t, "error", (&Config{LogLevel: "debug", Quiet: true}).EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Default().LogLevel, cfg.LogLevel)
	assert.Equal(t, Default().LogFormat, cfg.LogFormat)
	assert.Equal(t, Default().Blacklist, cfg.Blacklist)
	assert.Equal(t, DefaultModName, cfg.Copy.ModName)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("VEILBREAK_LOG_LEVEL", "debug")
	t.Setenv("VEILBREAK_NO_COLOR", "true")
	t.Setenv("VEILBREAK_QUIET", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
}

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempFile(t, "veilbreak.yaml", `log-level: warn
log-format: json
subdir: monsters_v2
blacklist:
  output: out/bl.json
  preview: 3
copy:
  modName: other
  noDefaultExcludes: true
  exclude:
    - "=scratch"
    - "**/*.bak"
`)

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "monsters_v2", cfg.Subdir)
	assert.Equal(t, BlacklistConfig{Output: "out/bl.json", Preview: 3}, cfg.Blacklist)
	assert.Equal(t, "other", cfg.Copy.ModName)
	assert.True(t, cfg.Copy.NoDefaultExcludes)
	assert.Equal(t, []string{"=scratch", "**/*.bak"}, cfg.Copy.Exclude)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(nil, writeTempFile(t, "bad.yaml", ": invalid yaml :"))
	assert.Error(t, err)

	_, err = Load(nil, writeTempFile(t, "fmt.yaml", "log-format: xml\n"))
	assert.ErrorContains(t, err, "invalid log format")

	_, err = Load(nil, writeTempFile(t, "mod.yaml", "copy:\n  modName: a/b\n"))
	assert.ErrorContains(t, err, "copy.modName")

	_, err = Load(nil, writeTempFile(t, "preview.yaml", "blacklist:\n  preview: -2\n"))
	assert.ErrorContains(t, err, "blacklist.preview")
}

func TestLoad_Precedence(t *testing.T) {
	file := writeTempFile(t, "veilbreak.yaml", "log-level: warn\n")

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("VEILBREAK_LOG_LEVEL", "debug")

		cfg, err := Load(nil, file)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flag over env and file", func(t *testing.T) {
		t.Setenv("VEILBREAK_LOG_LEVEL", "debug")

		cmd := newTestRootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

		cfg, err := Load(cmd, file)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("VEILBREAK_LOG_LEVEL", "verbose")

		_, err := Load(nil, "")
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestLoad_NestedEnv(t *testing.T) {
	t.Setenv("VEILBREAK_SUBDIR", "monsters_env")
	t.Setenv("VEILBREAK_BLACKLIST_OUTPUT", "env.json")
	t.Setenv("VEILBREAK_BLACKLIST_PREVIEW", "4")
	t.Setenv("VEILBREAK_COPY_MODNAME", "from_env")

	cfg, err := Load(nil, writeTempFile(t, "veilbreak.yaml", "blacklist:\n  output: file.json\n"))
	require.NoError(t, err)
	assert.Equal(t, "monsters_env", cfg.Subdir)
	assert.Equal(t, "env.json", cfg.Blacklist.Output)
	assert.Equal(t, 4, cfg.Blacklist.Preview)
	assert.Equal(t, "from_env", cfg.Copy.ModName)
}

func TestLoad_CommandFlags(t *testing.T) {
	file := writeTempFile(t, "veilbreak.yaml", "subdir: from_file\nblacklist:\n  output: file.json\n  preview: 2\ncopy:\n  modName: file_mod\n")

	t.Run("unchanged flags keep file values", func(t *testing.T) {
		cfg, err := Load(newTestSubCmd(), file)
		require.NoError(t, err)
		assert.Equal(t, "from_file", cfg.Subdir)
		assert.Equal(t, BlacklistConfig{Output: "file.json", Preview: 2}, cfg.Blacklist)
		assert.Equal(t, "file_mod", cfg.Copy.ModName)
	})

	t.Run("changed flags win", func(t *testing.T) {
		t.Setenv("VEILBREAK_BLACKLIST_OUTPUT", "env.json")

		cmd := newTestSubCmd()
		require.NoError(t, cmd.Flags().Set("subdir", "from_flag"))
		require.NoError(t, cmd.Flags().Set("output", "flag.json"))
		require.NoError(t, cmd.Flags().Set("preview", "0"))
		require.NoError(t, cmd.Flags().Set("mod-name", "flag_mod"))
		require.NoError(t, cmd.Flags().Set("no-default-excludes", "true"))

		cfg, err := Load(cmd, file)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Subdir)
		assert.Equal(t, BlacklistConfig{Output: "flag.json", Preview: 0}, cfg.Blacklist)
		assert.Equal(t, "flag_mod", cfg.Copy.ModName)
		assert.True(t, cfg.Copy.NoDefaultExcludes)
	})

	t.Run("invalid flag value", func(t *testing.T) {
		cmd := newTestSubCmd()
		require.NoError(t, cmd.Flags().Set("mod-name", "../escape"))

		_, err := Load(cmd, file)
		assert.ErrorContains(t, err, "copy.modName")
	})
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	assert.Equal(t, cfg, FromContext(NewContext(context.Background(), cfg)))
	assert.Equal(t, Default(), FromContext(context.Background()))
}
