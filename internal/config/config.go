package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Ollama      OllamaConfig
	Nutritionix NutritionixConfig
	Storage     StorageConfig
	Catalog     CatalogConfig
	Log         LogConfig
	API         APIConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type NutritionixConfig struct {
	BaseURL string
	AppID   string
	APIKey  string
}

type StorageConfig struct {
	DataDir string
}

type CatalogConfig struct {
	// Path to the exercise catalog CSV. Empty means the embedded default
	// dataset is used.
	Path string
}

type LogConfig struct {
	Level string
}

type APIConfig struct {
	// Token protects the local HTTP API with bearer auth. Empty disables
	// authentication (local-only default).
	Token string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    8090,
			MCPPort: 8091,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Nutritionix: NutritionixConfig{
			BaseURL: "https://trackapi.nutritionix.com",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "fitcoach-data"
		}
	}
	return filepath.Join(dir, "fitcoach")
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/fitcoach/config.json, a .env file in the working
// directory (if present), and FITCOACH_* environment variables, in that
// order — later sources override earlier ones.
//
// Nutritionix credentials and the API token are secrets and can only come
// from the environment. No key is hard-required: a missing Nutritionix key
// only degrades macro lookups to fixed defaults.
func Load() (Config, error) {
	// Best-effort .env for local development; a missing file is fine.
	_ = godotenv.Load()

	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "fitcoach", "config.json")
}
