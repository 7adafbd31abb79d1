package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rackerlabs/cloudpdf/internal/config"
)

// dotenvFile is read from the working directory before the environment.
const dotenvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // CLOUDPDF_CONFIG: config file name or path
	Target     string // CLOUDPDF_TARGET: build target directory
	Style      string // CLOUDPDF_STYLE: stylesheet name
	AssetPath  string // CLOUDPDF_ASSET_PATH: custom asset directory
	PageSize   string // CLOUDPDF_PAGE_SIZE: a4, letter, legal
	Timeout    string // CLOUDPDF_TIMEOUT: per-document timeout
	Workers    int    // CLOUDPDF_WORKERS: parallel workers
}

// knownEnvVars lists valid CLOUDPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"CLOUDPDF_CONFIG":     true,
	"CLOUDPDF_TARGET":     true,
	"CLOUDPDF_STYLE":      true,
	"CLOUDPDF_ASSET_PATH": true,
	"CLOUDPDF_PAGE_SIZE":  true,
	"CLOUDPDF_TIMEOUT":    true,
	"CLOUDPDF_WORKERS":    true,
}

// loadDotenv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("CLOUDPDF_CONFIG"),
		Target:     os.Getenv("CLOUDPDF_TARGET"),
		Style:      os.Getenv("CLOUDPDF_STYLE"),
		AssetPath:  os.Getenv("CLOUDPDF_ASSET_PATH"),
		PageSize:   os.Getenv("CLOUDPDF_PAGE_SIZE"),
		Timeout:    os.Getenv("CLOUDPDF_TIMEOUT"),
	}

	// Invalid counts are ignored, not errors
	if workers := os.Getenv("CLOUDPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized CLOUDPDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "CLOUDPDF_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables win over the config file; flags are applied afterwards by
// mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Target != "" {
		cfg.Target = env.Target
	}
	if env.Style != "" {
		cfg.Style = env.Style
	}
	if env.AssetPath != "" {
		cfg.AssetPath = env.AssetPath
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Timeout != "" {
		cfg.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
