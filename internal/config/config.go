// Package config loads and validates the stage configuration document.
// Malformed configuration fails here, at load time, never deep inside
// a run.
package config

import (
	"fmt"
	"os"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads a stages YAML document from disk and returns the typed,
// validated pipeline.
func Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a stages YAML document into a typed pipeline and
// rejects anything a run could not execute.
func Parse(data []byte) (*domain.Pipeline, error) {
	// Two-step decode: YAML into a loose document, then mapstructure
	// into the typed structs. Unused keys are treated as config errors
	// so typos surface immediately.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var pipeline domain.Pipeline
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &pipeline,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid stage document: %w", err)
	}

	if err := validate(&pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func validate(p *domain.Pipeline) error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("pipeline defines no stages")
	}

	seen := make(map[string]bool, len(p.Stages))
	for i, stage := range p.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stage %d has no name", i)
		}
		if seen[stage.Name] {
			return fmt.Errorf("duplicate stage name %q", stage.Name)
		}
		seen[stage.Name] = true

		switch stage.Mode {
		case domain.ModeDeterministic, domain.ModeConditional, domain.ModeNonDeterministic:
		case "":
			return fmt.Errorf("stage %q has no mode", stage.Name)
		default:
			return fmt.Errorf("stage %q has unknown mode %q", stage.Name, stage.Mode)
		}

		if stage.Condition != "" && stage.Mode != domain.ModeConditional {
			return fmt.Errorf("stage %q sets a condition but mode is %q", stage.Name, stage.Mode)
		}
		if stage.Mode == domain.ModeConditional && stage.Condition == "" {
			return fmt.Errorf("conditional stage %q has no condition", stage.Name)
		}

		for j, spec := range stage.Abilities {
			if spec.Name == "" {
				return fmt.Errorf("stage %q: ability %d has no name", stage.Name, j)
			}
			switch spec.Namespace {
			case domain.NamespaceCommon, domain.NamespaceAtlas:
			case "":
				return fmt.Errorf("stage %q: ability %q has no namespace", stage.Name, spec.Name)
			default:
				return fmt.Errorf("stage %q: ability %q has unknown namespace %q", stage.Name, spec.Name, spec.Namespace)
			}

			switch spec.Role {
			case "", domain.RoleEvaluator, domain.RoleEscalation, domain.RoleRecord:
			default:
				return fmt.Errorf("stage %q: ability %q has unknown role %q", stage.Name, spec.Name, spec.Role)
			}
			if spec.Role != "" && stage.Mode != domain.ModeNonDeterministic {
				return fmt.Errorf("stage %q: ability %q sets role %q but mode is %q", stage.Name, spec.Name, spec.Role, stage.Mode)
			}
		}
	}
	return nil
}
