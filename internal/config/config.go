package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Snapshot struct {
		DB string `yaml:"db"`
	} `yaml:"snapshot"`
	Output struct {
		Color bool `yaml:"color"`
		JSON  bool `yaml:"json"`
	} `yaml:"output"`
}

// Defaults returns the configuration used when no config file exists.
func Defaults() *Config {
	var cfg Config
	cfg.Snapshot.DB = "mddelta.db"
	cfg.Output.Color = true
	return &cfg
}

// LoadConfig reads the YAML config at path, falling back to defaults when the
// file is absent. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	cfg := Defaults()

	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if db := os.Getenv("MDDELTA_DB"); db != "" {
		cfg.Snapshot.DB = db
	}
	if os.Getenv("MDDELTA_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		cfg.Output.Color = false
	}

	return cfg, nil
}
