package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		WeatherDir string `yaml:"weather-dir,omitempty"`
		SolarDir   string `yaml:"solar-dir,omitempty"`
		Format     string `yaml:"format,omitempty"`
		Debug      bool   `yaml:"debug,omitempty"`
	}

	err = yaml.UnmarshalStrict(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	return &ConfigData{
		WeatherDir: yamlConfig.WeatherDir,
		SolarDir:   yamlConfig.SolarDir,
		Format:     yamlConfig.Format,
		Debug:      yamlConfig.Debug,
	}, nil
}
