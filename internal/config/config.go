// Package config loads settings for the treecodec command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Formats lists the document formats the command can read and write.
var Formats = []string{"json", "yaml", "toml", "msgpack"}

// Config holds the command settings.
type Config struct {
	LogLevel      string `mapstructure:"log_level"`
	Language      string `mapstructure:"language"`
	Indent        int    `mapstructure:"indent"`
	DefaultFormat string `mapstructure:"default_format"`
	Color         bool   `mapstructure:"color"`
}

// Load reads treecodec.yaml from the working directory or
// $HOME/.config/treecodec, or from path when it is not empty. A missing
// default file is not an error. Environment variables prefixed TREECODEC_
// override file values, e.g. TREECODEC_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "warn")
	v.SetDefault("language", "en")
	v.SetDefault("indent", 2)
	v.SetDefault("default_format", "yaml")
	v.SetDefault("color", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("treecodec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "treecodec"))
		}
	}

	v.SetEnvPrefix("TREECODEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment values arrive as strings, so every field is normalized through
// cast instead of relying on the decoder's weak typing.
func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	indent, err := cast.ToIntE(v.Get("indent"))
	if err != nil {
		return nil, fmt.Errorf("indent: %w", err)
	}
	color, err := cast.ToBoolE(v.Get("color"))
	if err != nil {
		return nil, fmt.Errorf("color: %w", err)
	}
	cfg.Indent = indent
	cfg.Color = color
	cfg.LogLevel = strings.ToLower(cast.ToString(v.Get("log_level")))
	cfg.Language = strings.ToLower(cast.ToString(v.Get("language")))
	cfg.DefaultFormat = strings.ToLower(cast.ToString(v.Get("default_format")))
	return &cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error: got %q", c.LogLevel)
	}
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("indent must be between 0 and 8: got %d", c.Indent)
	}
	if !slices.Contains(Formats, c.DefaultFormat) {
		return fmt.Errorf("default_format must be one of %s: got %q", strings.Join(Formats, ", "), c.DefaultFormat)
	}
	return nil
}
