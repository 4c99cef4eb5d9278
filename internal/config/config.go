// Package config resolves Bon's ambient configuration: BON_STDLIB_PATH,
// diagnostic ceilings, and default optimization level, layering (in
// increasing priority) built-in defaults, an optional `bon.yaml` project
// file, an optional `.env` file, and actual environment variables.
// Env-over-defaults layering follows funvibe-funxy's internal/config;
// .env loading uses joho/godotenv as termfx-morfx's own config package
// does; the project file is parsed with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxErrors   = 20
	defaultMaxWarnings = 100
	defaultOptLevel    = 0
)

// Config is Bon's fully-resolved ambient configuration.
type Config struct {
	StdlibPath string `yaml:"stdlib_path"`
	MaxErrors  int    `yaml:"max_errors"`
	MaxWarnings int   `yaml:"max_warnings"`
	OptLevel   int    `yaml:"opt_level"`
}

func defaults() Config {
	return Config{MaxErrors: defaultMaxErrors, MaxWarnings: defaultMaxWarnings, OptLevel: defaultOptLevel}
}

// Load resolves the final configuration: defaults, then projectFile (if
// it exists), then a `.env` file in the working directory (if present),
// then real environment variables, each layer overriding the last.
func Load(projectFile string) (Config, error) {
	cfg := defaults()

	if projectFile != "" {
		if data, err := os.ReadFile(projectFile); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parsing %s: %w", projectFile, err)
			}
		}
	}

	// godotenv.Load is a no-op-safe call when .env doesn't exist; errors
	// are intentionally ignored here since .env is optional local
	// developer convenience, not a required input.
	_ = godotenv.Load()

	if v := os.Getenv("BON_STDLIB_PATH"); v != "" {
		cfg.StdlibPath = v
	}
	if cfg.StdlibPath == "" {
		return cfg, fmt.Errorf("config: BON_STDLIB_PATH is not set and no bon.yaml stdlib_path override was found")
	}
	return cfg, nil
}
