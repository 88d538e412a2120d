package config

import (
	"errors"
	"fmt"
	"os"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData locates the NOAA datasets and controls output.
type ConfigData struct {
	WeatherDir string `json:"weather_dir,omitempty"`
	SolarDir   string `json:"solar_dir,omitempty"`
	Format     string `json:"format,omitempty"`
	Debug      bool   `json:"debug,omitempty"`
}

const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// Validate fills in defaults and checks the output format.
func (c *ConfigData) Validate() error {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	switch c.Format {
	case FormatJSON, FormatMsgPack:
	default:
		return fmt.Errorf("unsupported output format %q: use %q or %q", c.Format, FormatJSON, FormatMsgPack)
	}
	return nil
}

// Load reads cfgFile (if it exists) and then applies environment overrides,
// including any set in envFile. Either file may be absent.
func Load(cfgFile, envFile string) (*ConfigData, error) {
	var providers []ConfigProvider
	if cfgFile != "" {
		providers = append(providers, NewYAMLProvider(cfgFile))
	}
	providers = append(providers, NewEnvProvider(envFile))

	return loadFrom(providers...)
}

// loadFrom merges the providers in order, later ones overriding earlier ones.
// A provider whose source file does not exist is skipped.
func loadFrom(providers ...ConfigProvider) (*ConfigData, error) {
	cfg := &ConfigData{}
	for _, p := range providers {
		loaded, err := p.LoadConfig()
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error loading configuration: %w", err)
		}
		cfg.merge(loaded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies the non-empty fields of o over c.
func (c *ConfigData) merge(o *ConfigData) {
	if o.WeatherDir != "" {
		c.WeatherDir = o.WeatherDir
	}
	if o.SolarDir != "" {
		c.SolarDir = o.SolarDir
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Debug {
		c.Debug = true
	}
}
