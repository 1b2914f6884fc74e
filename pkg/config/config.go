package config

import (
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Config is the effective configuration for one run
type Config struct {
	Paths  Paths             `koanf:"paths" toml:"paths" json:"paths"`
	Output Output            `koanf:"output" toml:"output" json:"output"`
	Links  []types.ExtraLink `koanf:"links" toml:"links" json:"links"`
}

// Paths holds the user-configurable locations. Relative values are resolved
// by pkg/paths.
type Paths struct {
	Source   string `koanf:"source" toml:"source" json:"source"`
	Dirlinks string `koanf:"dirlinks" toml:"dirlinks" json:"dirlinks"`
	Home     string `koanf:"home" toml:"home" json:"home"`
}

// Output holds progress output settings
type Output struct {
	Format string `koanf:"format" toml:"format" json:"format"`
}

// Validate checks the settings that have no usable fallback
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.Source) == "" {
		return errors.New(errors.ErrConfigParse, "paths.source must not be empty")
	}
	if strings.TrimSpace(c.Paths.Dirlinks) == "" {
		return errors.New(errors.ErrConfigParse, "paths.dirlinks must not be empty")
	}

	for i, l := range c.Links {
		if strings.TrimSpace(l.Source) == "" || strings.TrimSpace(l.Target) == "" {
			return errors.Newf(errors.ErrConfigParse, "links[%d] needs both source and target", i).
				WithDetail("source", l.Source).
				WithDetail("target", l.Target)
		}
	}

	return nil
}

// TOML renders the configuration as a TOML document
func (c *Config) TOML() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return string(out), nil
}
