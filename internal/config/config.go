package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath           string `yaml:"db_path"`
	AssetsDir        string `yaml:"assets_dir"`
	ListenAddr       string `yaml:"listen_addr"`
	LogLevel         string `yaml:"log_level"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs"`
	Output           string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/linkvault/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:       "127.0.0.1:8632",
		LogLevel:         "info",
		FetchTimeoutSecs: 15,
		Output:           "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// ~/.config/linkvault/config.yaml is optional
	_ = loadYAMLConfig(cfg)

	// Override with environment variables
	if dbPath := os.Getenv("LINKVAULT_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if assetsDir := os.Getenv("LINKVAULT_ASSETS_DIR"); assetsDir != "" {
		cfg.AssetsDir = assetsDir
	}
	if addr := os.Getenv("LINKVAULT_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if logLevel := os.Getenv("LINKVAULT_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if timeout := os.Getenv("LINKVAULT_FETCH_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			cfg.FetchTimeoutSecs = secs
		}
	}
	if output := os.Getenv("LINKVAULT_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(homeDir, ".local", "share", "linkvault", "linkvault.db")
	}

	if cfg.AssetsDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.AssetsDir = filepath.Join(homeDir, ".local", "share", "linkvault", "assets")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/linkvault/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "linkvault", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
