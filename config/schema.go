package config

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// registrySchema constrains the registry file shape: category and metric
// names are lowercase dotted identifiers, the only supported metric type
// is timing_distribution, and every metric must name at least one ping.
const registrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["metrics"],
  "additionalProperties": false,
  "properties": {
    "metrics": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": false,
      "patternProperties": {
        "^[a-z][a-z0-9._]*$": {
          "type": "object",
          "minProperties": 1,
          "additionalProperties": false,
          "patternProperties": {
            "^[a-z][a-z0-9_]*$": {
              "type": "object",
              "required": ["type", "send_in_pings"],
              "additionalProperties": false,
              "properties": {
                "type": {"const": "timing_distribution"},
                "description": {"type": "string"},
                "time_unit": {
                  "enum": ["nanosecond", "microsecond", "millisecond", "second", "minute", "hour"]
                },
                "lifetime": {"enum": ["ping", "application", "user"]},
                "send_in_pings": {
                  "type": "array",
                  "minItems": 1,
                  "items": {"type": "string", "minLength": 1}
                },
                "disabled": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// compileSchema compiles the embedded registry schema once.
func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("registry.json", strings.NewReader(registrySchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("registry.json")
	})
	return compiledSchema, schemaErr
}
