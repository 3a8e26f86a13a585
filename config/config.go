// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/bacoco/BMad-Skills/env"
	"github.com/bacoco/BMad-Skills/lint"
	"github.com/bacoco/BMad-Skills/logging"
)

// Configuration keys. Each is also a flag name and, upper-cased with the
// BMAD_ prefix and dashes replaced by underscores, an environment variable.
const (
	KeyGlobal    = "global"
	KeyPath      = "path"
	KeySource    = "source"
	KeyArchive   = "archive"
	KeyOCILayout = "oci-layout"
	KeyRef       = "ref"
	KeyDebug     = "debug"
	KeyLogFormat = "log-format"
	KeyNoColor   = "no-color"
	KeyTestMode  = "test-mode"
	KeyLintRules = "lint-rules"
)

const (
	// EnvPrefix prefixes every environment variable read by viper.
	EnvPrefix = "BMAD"

	// FileName is the config file name looked up in the working directory.
	FileName = ".bmad-skills"

	// DefaultRef is the store reference installed when --ref is not given.
	DefaultRef = "latest"
)

// Config is the resolved CLI configuration.
type Config struct {
	Global    bool        `mapstructure:"global"`
	Path      string      `mapstructure:"path"`
	Source    string      `mapstructure:"source"`
	Archive   string      `mapstructure:"archive"`
	OCILayout string      `mapstructure:"oci-layout"`
	Ref       string      `mapstructure:"ref"`
	Debug     bool        `mapstructure:"debug"`
	LogFormat string      `mapstructure:"log-format"`
	NoColor   bool        `mapstructure:"no-color"`
	TestMode  bool        `mapstructure:"test-mode"`
	LintRules []lint.Rule `mapstructure:"lint-rules"`
}

// New returns a viper instance reading BMAD_* variables and, when present,
// the config file. configFile overrides the default lookup of
// .bmad-skills.yaml in dir. A missing default file is not an error.
func New(fs afero.Fs, configFile, dir string) (*viper.Viper, error) {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}

	v.SetDefault(KeyGlobal, false)
	v.SetDefault(KeyPath, "")
	v.SetDefault(KeySource, "")
	v.SetDefault(KeyArchive, "")
	v.SetDefault(KeyOCILayout, "")
	v.SetDefault(KeyRef, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFormat, logging.FormatText.String())
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyTestMode, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals v and applies the unprefixed DEBUG and NO_COLOR
// conventions read through r.
func Load(v *viper.Viper, r env.Reader) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if env.Truthy(r, "DEBUG") {
		cfg.Debug = true
	}
	if r.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value formats and flag combinations.
func (c *Config) Validate() error {
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.Archive != "" && c.OCILayout != "" {
		return fmt.Errorf("--%s and --%s are mutually exclusive", KeyArchive, KeyOCILayout)
	}
	engine := lint.NewEngine()
	for _, r := range c.LintRules {
		if r.Name == "" {
			return fmt.Errorf("%s: rule with expression %q has no name", KeyLintRules, r.Expr)
		}
		if err := engine.Check(r); err != nil {
			return fmt.Errorf("%s: %w", KeyLintRules, err)
		}
	}
	return nil
}

// LogOptions returns the logging options for the configured format and
// debug flag.
func (c *Config) LogOptions() []logging.Option {
	format, _ := logging.ParseFormat(c.LogFormat)
	opts := []logging.Option{logging.WithFormat(format)}
	if c.Debug {
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	}
	return opts
}

func absFrom(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
