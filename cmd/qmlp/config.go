package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the qmlp configuration file
// (~/.config/qmlp/config.yaml). All values are defaults; explicitly set
// CLI flags win.
type Config struct {
	ArtifactsDir  string `yaml:"artifacts_dir"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	ServerAddress string `yaml:"server_address"`

	CalibSize   *int64 `yaml:"calib_size"`
	SampleLabel *int64 `yaml:"sample_label"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qmlp", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or cannot be parsed.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyCommonConfig applies config file defaults for flags shared by all
// commands.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.ArtifactsDir != "" && !c.IsSet("dir") {
		artifactsDir = cfg.ArtifactsDir
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyQuantizeConfig applies config file defaults to quantize command
// variables.
func applyQuantizeConfig(c *cli.Command, cfg Config, calibSize, sampleLabel *int64) {
	if cfg.CalibSize != nil && !c.IsSet("calib-size") {
		*calibSize = *cfg.CalibSize
	}
	if cfg.SampleLabel != nil && !c.IsSet("sample-label") {
		*sampleLabel = *cfg.SampleLabel
	}
}

// applyServeConfig applies config file defaults to serve command
// variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
