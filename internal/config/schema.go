package config

// schemaJSON is the structural contract for the configuration file. Every
// key the kernel reads during initialization is required here, so a typo in
// the YAML fails fast instead of zero-valuing an agent parameter.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["simulation", "geography", "hydrology", "social", "infrastructure", "economics", "rainfall"],
  "properties": {
    "simulation": {
      "type": "object",
      "required": ["steps", "time_step", "seed"],
      "properties": {
        "steps": {"type": "integer", "minimum": 1},
        "time_step": {"type": "integer", "minimum": 1},
        "seed": {"type": "integer"}
      }
    },
    "geography": {
      "type": "object",
      "required": ["bounding_box", "resolution"],
      "properties": {
        "bounding_box": {
          "type": "object",
          "required": ["north", "south", "east", "west"],
          "properties": {
            "north": {"type": "number"},
            "south": {"type": "number"},
            "east": {"type": "number"},
            "west": {"type": "number"}
          }
        },
        "resolution": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "hydrology": {
      "type": "object",
      "required": ["rivers", "flood_thresholds"],
      "properties": {
        "rivers": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["name", "length", "source", "basin_area"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "length": {"type": "number", "minimum": 0},
              "source": {"type": "string"},
              "basin_area": {"type": "number", "minimum": 0}
            }
          }
        },
        "flood_thresholds": {
          "type": "object",
          "required": ["danger_level", "severe_level"],
          "properties": {
            "danger_level": {"type": "number", "exclusiveMinimum": 0},
            "severe_level": {"type": "number", "exclusiveMinimum": 0}
          }
        }
      }
    },
    "social": {
      "type": "object",
      "required": ["population"],
      "properties": {
        "population": {"type": "integer", "minimum": 0}
      }
    },
    "infrastructure": {
      "type": "object",
      "required": ["shelters"],
      "properties": {
        "shelters": {
          "type": "object",
          "required": ["total", "capacity_per_shelter"],
          "properties": {
            "total": {"type": "integer", "minimum": 0},
            "capacity_per_shelter": {"type": "integer", "minimum": 1}
          }
        }
      }
    },
    "economics": {
      "type": "object",
      "required": ["sectors"],
      "properties": {
        "sectors": {
          "type": "array",
          "items": {"type": "string", "minLength": 1}
        }
      }
    },
    "rainfall": {
      "type": "object",
      "required": ["base_rate", "variability", "noise_scale"],
      "properties": {
        "base_rate": {"type": "number", "minimum": 0},
        "variability": {"type": "number", "minimum": 0, "maximum": 1},
        "noise_scale": {"type": "number", "exclusiveMinimum": 0}
      }
    }
  }
}`
