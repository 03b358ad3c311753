// Package modinfo reads the MOD_INFO record of a mod directory.
package modinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// FileName is the metadata file at the root of every mod.
const FileName = "modinfo.json"

// TypeModInfo is the record type of the mod metadata entry.
const TypeModInfo = "MOD_INFO"

// ErrNotFound is returned when a directory has no modinfo.json or the file
// holds no MOD_INFO record.
var ErrNotFound = errors.New("mod info not found")

// Info is the subset of MOD_INFO fields the installer uses.
type Info struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Load reads <dir>/modinfo.json and returns its first MOD_INFO record.
func Load(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName)) //nolint:gosec // fixed file name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	return Parse(data)
}

// Parse decodes a modinfo.json document holding a single object or an array.
func Parse(data []byte) (*Info, error) {
	var infos []Info
	if err := json.Unmarshal(data, &infos); err != nil {
		var single Info
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}

		infos = []Info{single}
	}

	for i := range infos {
		if infos[i].Type == TypeModInfo {
			return &infos[i], nil
		}
	}

	return nil, ErrNotFound
}

// SemVer parses the version field. Loose versions such as "0.3" are
// accepted.
func (i *Info) SemVer() (*semver.Version, error) {
	if i.Version == "" {
		return nil, fmt.Errorf("mod %q has no version", i.ID)
	}

	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil, fmt.Errorf("mod %q: invalid version %q: %w", i.ID, i.Version, err)
	}

	return v, nil
}
