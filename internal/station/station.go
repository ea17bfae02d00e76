// Package station defines the weather station records the weather collector
// iterates over, and loading them from an optional JSON file.
package station

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Station is an immutable weather station record.
type Station struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns the station's series key, used in output filenames.
func (s Station) Key() string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s.Name), " ", "_"))
}

// Validate checks a single station record.
func Validate(s Station) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("station: invalid record %q: %w", s.Name, err)
	}
	return nil
}

// Defaults returns the built-in French station set.
func Defaults() []Station {
	return []Station{
		{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		{Name: "Lyon", Latitude: 45.7640, Longitude: 4.8357},
		{Name: "Marseille", Latitude: 43.2965, Longitude: 5.3698},
		{Name: "Toulouse", Latitude: 43.6047, Longitude: 1.4442},
		{Name: "Brest", Latitude: 48.3904, Longitude: -4.4861},
	}
}

// Load reads a JSON array of station records from path and validates each
// one. An unreadable or invalid file is a configuration error.
func Load(path string) ([]Station, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("station: read %s: %w", path, err)
	}
	var stations []Station
	if err := json.Unmarshal(raw, &stations); err != nil {
		return nil, fmt.Errorf("station: parse %s: %w", path, err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station: %s contains no stations", path)
	}
	for _, s := range stations {
		if err := Validate(s); err != nil {
			return nil, err
		}
	}
	return stations, nil
}
