package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads one YAML config file, applies defaults for unset keys, and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	set := make(keySet)
	collectSettingsKeys("", v.AllSettings(), set)
	cfg.applyDefaults(set)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// keySet records which config keys the file actually sets, so defaults do
// not override explicit zero values like run_immediately: false.
type keySet map[string]struct{}

func (k keySet) has(key string) bool {
	_, ok := k[key]
	return ok
}

func collectSettingsKeys(prefix string, settings map[string]any, out keySet) {
	for key, value := range settings {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			collectSettingsKeys(full, nested, out)
			continue
		}
		out[full] = struct{}{}
	}
}
