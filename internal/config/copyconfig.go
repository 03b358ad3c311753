package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/veilbreak/internal/filter"
)

// DefaultModName is the directory name the mod is installed under.
const DefaultModName = "magiclysm_veilbreak"

// CopyConfig holds the copy: section of the config file (.veilbreak.yaml).
type CopyConfig struct {
	// Exclude lists extra exclusion rules applied after the defaults.
	Exclude []string `mapstructure:"exclude" json:"exclude"`

	// ModName is the install directory name under USER_MOD_DIR.
	ModName string `mapstructure:"modName" json:"modName"`

	// NoDefaultExcludes drops the built-in exclusion rules.
	NoDefaultExcludes bool `mapstructure:"noDefaultExcludes" json:"noDefaultExcludes"`
}

// Validate checks the exclusion rules and the mod name.
func (c *CopyConfig) Validate() error {
	if _, err := filter.ParseRules(c.Exclude); err != nil {
		return fmt.Errorf("copy.exclude: %w", err)
	}

	switch {
	case strings.TrimSpace(c.ModName) == "":
		return errors.New("copy.modName must not be empty")
	case strings.ContainsAny(c.ModName, `/\`) || c.ModName == "." || c.ModName == "..":
		return fmt.Errorf("copy.modName: %q must be a plain directory name", c.ModName)
	}

	return nil
}

// Rules returns the effective exclusion rules: the defaults unless disabled,
// followed by Exclude and then extra.
func (c *CopyConfig) Rules(extra []string) (filter.Rules, error) {
	var rules filter.Rules
	if !c.NoDefaultExcludes {
		rules = filter.DefaultRules()
	}

	configured, err := filter.ParseRules(c.Exclude)
	if err != nil {
		return nil, fmt.Errorf("copy.exclude: %w", err)
	}

	flagged, err := filter.ParseRules(extra)
	if err != nil {
		return nil, fmt.Errorf("--exclude: %w", err)
	}

	rules = append(rules, configured...)
	rules = append(rules, flagged...)

	return rules, nil
}
