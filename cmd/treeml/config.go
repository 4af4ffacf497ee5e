package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Config is everything a command needs, merged from flags, TREEML_*
// environment variables and an optional config file, in that priority.
type Config struct {
	Model       string  `mapstructure:"model"`
	Data        string  `mapstructure:"data"`
	Target      string  `mapstructure:"target"`
	TargetCol   int     `mapstructure:"target-col"`
	TestSize    float64 `mapstructure:"test-size"`
	Folds       int     `mapstructure:"folds"`
	Scale       string  `mapstructure:"scale"`
	Curve       string  `mapstructure:"curve"`
	Render      string  `mapstructure:"render"`
	Predictions string  `mapstructure:"predictions"`
	Progress    bool    `mapstructure:"progress"`

	Seed      int64  `mapstructure:"seed"`
	NJobs     int    `mapstructure:"n-jobs"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	// Params is handed to the estimator's SetParams, for example
	// {max_depth: 3, learning_rate: 0.05}.
	Params map[string]interface{} `mapstructure:"params"`
}

// loadConfig resolves the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TREEML")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}
