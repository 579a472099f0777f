package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"greenhouse-forecaster/models"
)

// DefaultChannels is the greenhouse node's field layout.
var DefaultChannels = []models.Channel{
	{ID: "Soil_Temperature", Label: "Soil Temperature (°C)", Field: 1},
	{ID: "Air_Temperature", Label: "Air Temperature (°C)", Field: 2},
	{ID: "Humidity", Label: "Humidity (%)", Field: 3},
	{ID: "Light_Intensity", Label: "Light Intensity (lux)", Field: 4},
	{ID: "Fan_State", Label: "Fan State", Field: 5, Discrete: true},
}

type catalogFile struct {
	Channels []models.Channel `yaml:"channels"`
}

// LoadCatalog reads the catalog from path, or returns the default catalog
// when path is empty.
func LoadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return models.NewCatalog(DefaultChannels)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*models.Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return models.NewCatalog(file.Channels)
}
