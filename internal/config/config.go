package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultURL        = "http://localhost:5000"
	DefaultAddr       = ":5000"
	DefaultOllamaHost = "http://localhost:11434"
	DefaultModel      = "gpt2"
)

// Config holds everything the commands need. Values resolve as
// defaults, then .env, then the environment, then command-line flags.
type Config struct {
	Dev        bool
	LogPath    string
	URL        string
	Addr       string
	OllamaHost string
	Model      string
}

func Default() Config {
	return Config{
		URL:        DefaultURL,
		Addr:       DefaultAddr,
		OllamaHost: DefaultOllamaHost,
		Model:      DefaultModel,
	}
}

// Load reads an optional .env file and overlays PROMPTPAD_* variables on the
// defaults. A missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg := Default()
	cfg.URL = getEnv("PROMPTPAD_URL", cfg.URL)
	cfg.Addr = getEnv("PROMPTPAD_ADDR", cfg.Addr)
	cfg.OllamaHost = getEnv("PROMPTPAD_OLLAMA_HOST", cfg.OllamaHost)
	cfg.Model = getEnv("PROMPTPAD_MODEL", cfg.Model)
	cfg.LogPath = getEnv("PROMPTPAD_LOG_PATH", cfg.LogPath)
	cfg.Dev = getEnvBool("PROMPTPAD_DEV", cfg.Dev)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
