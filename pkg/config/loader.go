package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName is the optional settings file at the repository root
const FileName = "dotlink.toml"

// EnvPrefix marks environment variables that override settings
const EnvPrefix = "DOTLINK_"

// Load builds the effective configuration for the repository at root.
// overrides holds dotted keys set from command-line flags; empty values are
// ignored so unset flags never mask lower layers.
func Load(root string, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Repository config if it exists
	if root != "" {
		path := filepath.Join(root, FileName)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
					WithDetail("path", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded repository config")
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat %s", path).
				WithDetail("path", path)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Flags
	if set := nonEmpty(overrides); len(set) > 0 {
		if err := k.Load(confmap.Provider(set, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", cfg.Paths.Source).
		Str("dirlinks", cfg.Paths.Dirlinks).
		Str("home", cfg.Paths.Home).
		Int("links", len(cfg.Links)).
		Msg("Configuration loaded")

	return &cfg, nil
}

// envKey maps DOTLINK_PATHS_HOME to paths.home
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

func nonEmpty(overrides map[string]interface{}) map[string]interface{} {
	set := make(map[string]interface{}, len(overrides))
	for key, val := range overrides {
		if s, ok := val.(string); ok && s == "" {
			continue
		}
		if val == nil {
			continue
		}
		set[key] = val
	}
	return set
}
