package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognized by EnvProvider.
const (
	EnvWeatherDir = "NOAA_WEATHER_DIR"
	EnvSolarDir   = "NOAA_SOLAR_DIR"
	EnvFormat     = "NOAA_OUTPUT_FORMAT"
	EnvDebug      = "NOAA_DEBUG"
)

// EnvProvider implements ConfigProvider from environment variables, optionally
// seeded from a dotenv file. Variables already set in the environment win over
// the file.
type EnvProvider struct {
	envFile string
}

func NewEnvProvider(envFile string) *EnvProvider {
	return &EnvProvider{envFile: envFile}
}

func (e *EnvProvider) LoadConfig() (*ConfigData, error) {
	if e.envFile != "" {
		if err := godotenv.Load(e.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading env file %s: %w", e.envFile, err)
		}
	}

	cfg := &ConfigData{
		WeatherDir: os.Getenv(EnvWeatherDir),
		SolarDir:   os.Getenv(EnvSolarDir),
		Format:     os.Getenv(EnvFormat),
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}
