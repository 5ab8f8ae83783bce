package services

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/zach2017/oldtownaltour/internal/models"
)

//go:embed seed/locations.json
var seedJSON []byte

// SeedLocations returns a fresh copy of the sample catalog written on first
// use: the twelve exhibits of Old Alabama Town with their placeholder media.
func SeedLocations() ([]models.Location, error) {
	var locations []models.Location
	if err := json.Unmarshal(seedJSON, &locations); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	for i := range locations {
		locations[i].Normalize()
	}
	return locations, nil
}
