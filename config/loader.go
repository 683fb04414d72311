package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/beacon/timing"
)

// Definition is one validated metric definition from a registry file.
type Definition struct {
	Category    string
	Name        string
	Description string
	TimeUnit    timing.TimeUnit
	Lifetime    timing.Lifetime
	SendInPings []string
	Disabled    bool
}

// MetricData converts the definition into the form metric constructors
// take.
func (d Definition) MetricData() timing.CommonMetricData {
	return timing.CommonMetricData{
		Category:    d.Category,
		Name:        d.Name,
		SendInPings: d.SendInPings,
		Lifetime:    d.Lifetime,
		Disabled:    d.Disabled,
		TimeUnit:    d.TimeUnit,
	}
}

// Registry holds every definition from one registry file, ordered by
// category then name so instantiation is deterministic.
type Registry struct {
	Definitions []Definition
}

// rawFile mirrors the YAML document shape.
type rawFile struct {
	Metrics map[string]map[string]rawDefinition `yaml:"metrics"`
}

type rawDefinition struct {
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	TimeUnit    string   `yaml:"time_unit"`
	Lifetime    string   `yaml:"lifetime"`
	SendInPings []string `yaml:"send_in_pings"`
	Disabled    bool     `yaml:"disabled"`
}

// Load reads and parses a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}

// Parse validates registry YAML against the embedded schema and converts
// it into typed definitions.
func Parse(data []byte) (*Registry, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	reg := &Registry{}
	for category, metrics := range raw.Metrics {
		for name, def := range metrics {
			converted, err := convert(category, name, def)
			if err != nil {
				return nil, err
			}
			reg.Definitions = append(reg.Definitions, converted)
		}
	}

	sort.Slice(reg.Definitions, func(i, j int) bool {
		a, b := reg.Definitions[i], reg.Definitions[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
	return reg, nil
}

// validate checks the document against the registry schema. The YAML is
// round-tripped through JSON so the schema sees the value types it
// expects.
func validate(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling registry schema: %w", err)
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	encoded, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("registry is not representable as JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("registry is not representable as JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("registry schema violation: %w", err)
	}
	return nil
}

// convert builds a typed Definition, applying the registry defaults:
// millisecond precision, ping lifetime.
func convert(category, name string, raw rawDefinition) (Definition, error) {
	def := Definition{
		Category:    category,
		Name:        name,
		Description: raw.Description,
		TimeUnit:    timing.Millisecond,
		Lifetime:    timing.LifetimePing,
		SendInPings: raw.SendInPings,
		Disabled:    raw.Disabled,
	}

	if raw.TimeUnit != "" {
		unit, err := timing.ParseTimeUnit(raw.TimeUnit)
		if err != nil {
			return Definition{}, fmt.Errorf("metric %s.%s: %w", category, name, err)
		}
		def.TimeUnit = unit
	}
	if raw.Lifetime != "" {
		lifetime, err := timing.ParseLifetime(raw.Lifetime)
		if err != nil {
			return Definition{}, fmt.Errorf("metric %s.%s: %w", category, name, err)
		}
		def.Lifetime = lifetime
	}
	return def, nil
}
