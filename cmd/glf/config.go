package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the glf configuration file (~/.config/glf/config.yaml).
// Everything is optional; explicit flags always win.
type Config struct {
	OutputDir     string `yaml:"output_dir"`
	Palette       string `yaml:"palette"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "glf", "config.yaml")
}

// LoadConfig reads the config file. A missing or unreadable file yields
// a zero Config.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
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

// applyLoggingConfig fills logging defaults from the config file when
// the corresponding flag was not set on the command line.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyExtractConfig fills extract command defaults from the config file.
func applyExtractConfig(c *cli.Command, cfg Config, outDir, palette *string) {
	if cfg.OutputDir != "" && !c.IsSet("out") {
		*outDir = cfg.OutputDir
	}
	if cfg.Palette != "" && !c.IsSet("palette") {
		*palette = cfg.Palette
	}
}

// applyServeConfig fills serve command defaults from the config file.
func applyServeConfig(c *cli.Command, cfg Config, addr, palette *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.Palette != "" && !c.IsSet("palette") {
		*palette = cfg.Palette
	}
}
