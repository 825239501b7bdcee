// Package config loads and validates the simulation configuration. The YAML
// document is checked against an embedded JSON Schema before the typed
// structure is returned; any missing or malformed key aborts initialization.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config is the validated simulation configuration.
type Config struct {
	Simulation     Simulation     `yaml:"simulation"`
	Geography      Geography      `yaml:"geography"`
	Hydrology      Hydrology      `yaml:"hydrology"`
	Social         Social         `yaml:"social"`
	Infrastructure Infrastructure `yaml:"infrastructure"`
	Economics      Economics      `yaml:"economics"`
	Rainfall       Rainfall       `yaml:"rainfall"`
}

type Simulation struct {
	Steps    int   `yaml:"steps"`
	TimeStep int   `yaml:"time_step"` // seconds per step
	Seed     int64 `yaml:"seed"`
}

type Geography struct {
	BoundingBox BoundingBox `yaml:"bounding_box"`
	Resolution  float64     `yaml:"resolution"` // degrees per cell
}

type BoundingBox struct {
	North float64 `yaml:"north"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	West  float64 `yaml:"west"`
}

// GridWidth returns the cell count along the east-west axis.
func (g Geography) GridWidth() int {
	return int((g.BoundingBox.East - g.BoundingBox.West) / g.Resolution)
}

// GridHeight returns the cell count along the north-south axis.
func (g Geography) GridHeight() int {
	return int((g.BoundingBox.North - g.BoundingBox.South) / g.Resolution)
}

type Hydrology struct {
	Rivers          []RiverSpec     `yaml:"rivers"`
	FloodThresholds FloodThresholds `yaml:"flood_thresholds"`
}

type RiverSpec struct {
	Name      string  `yaml:"name"`
	Length    float64 `yaml:"length"`     // kilometers
	Source    string  `yaml:"source"`
	BasinArea float64 `yaml:"basin_area"` // square kilometers
}

type FloodThresholds struct {
	DangerLevel float64 `yaml:"danger_level"` // meters
	SevereLevel float64 `yaml:"severe_level"` // meters
}

type Social struct {
	Population int `yaml:"population"`
}

type Infrastructure struct {
	Shelters Shelters `yaml:"shelters"`
}

type Shelters struct {
	Total              int `yaml:"total"`
	CapacityPerShelter int `yaml:"capacity_per_shelter"`
}

type Economics struct {
	Sectors []string `yaml:"sectors"`
}

type Rainfall struct {
	BaseRate    float64 `yaml:"base_rate"`   // mm per time unit at peak season
	Variability float64 `yaml:"variability"` // 0..1 share driven by the noise field
	NoiseScale  float64 `yaml:"noise_scale"` // spatial frequency of the field
}

// Load reads, validates, and decodes a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse validates and decodes configuration bytes.
func Parse(raw []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// validate checks the document shape against the embedded schema. The YAML
// value is normalized through JSON first so the schema validator sees plain
// JSON types.
func validate(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var normalized any
	if err := json.Unmarshal(b, &normalized); err != nil {
		return err
	}
	return schema.Validate(normalized)
}

var schema = jsonschema.MustCompileString("config.schema.json", schemaJSON)

// check enforces the cross-field constraints the schema cannot express.
func (c *Config) check() error {
	if c.Geography.GridWidth() <= 0 || c.Geography.GridHeight() <= 0 {
		return fmt.Errorf("bounding box and resolution yield an empty grid")
	}
	if c.Hydrology.FloodThresholds.SevereLevel < c.Hydrology.FloodThresholds.DangerLevel {
		return fmt.Errorf("severe_level %.2f below danger_level %.2f",
			c.Hydrology.FloodThresholds.SevereLevel, c.Hydrology.FloodThresholds.DangerLevel)
	}
	return nil
}
