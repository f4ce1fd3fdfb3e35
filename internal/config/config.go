package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Workers     int    // Number of images exported concurrently
	Preset      string // Named settings preset applied before flags
	OutputDir   string // Parent directory of upscaled_output/
	Debug       bool   // Text logs at debug level
	PreviewSize int    // Longest edge of rendered previews in pixels
}

// Load reads configuration from the environment. Values from envFile are
// applied first when it exists; variables already set in the environment
// take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Workers:     getEnvAsInt("UPSCALER_WORKERS", runtime.NumCPU()),
		Preset:      getEnv("UPSCALER_PRESET", "custom"),
		OutputDir:   getEnv("UPSCALER_OUTPUT_DIR", "."),
		Debug:       getEnvAsBool("UPSCALER_DEBUG", false),
		PreviewSize: getEnvAsInt("UPSCALER_PREVIEW", 800),
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PreviewSize < 1 {
		cfg.PreviewSize = 800
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
