package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/Amund211/milestones/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var defaultDefinitions []byte

var ErrInvalidDefinition = errors.New("invalid definition")

type rawCatalog struct {
	Definitions []rawDefinition `yaml:"definitions"`
}

type rawDefinition struct {
	Name         string   `yaml:"name"`
	Title        string   `yaml:"title"`
	Kind         string   `yaml:"kind"`
	ValueKind    string   `yaml:"value"`
	BodySpecific bool     `yaml:"body_specific"`
	HomeScope    string   `yaml:"home_scope"`
	CrewedOnly   bool     `yaml:"crewed_only"`
	Unique       bool     `yaml:"unique"`
	ScoreWeight  *float64 `yaml:"score_weight"`
}

// Registry is the immutable set of achievement definitions known to the process
type Registry struct {
	definitions map[string]*domain.Definition
	names       []string
}

// Find never mutates the registry and is safe for concurrent use
func (r *Registry) Find(name string) (*domain.Definition, bool) {
	definition, ok := r.definitions[name]
	return definition, ok
}

// Names returns the definition names in load order
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Len() int {
	return len(r.names)
}

func toDefinition(raw rawDefinition) (*domain.Definition, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}

	kind, err := domain.ParseKind(raw.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, raw.Name, err)
	}
	valueKind, err := domain.ParseValueKind(raw.ValueKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, raw.Name, err)
	}
	homeScope, err := domain.ParseHomeScope(raw.HomeScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, raw.Name, err)
	}

	if kind == domain.KindFirst && valueKind != domain.ValueNone {
		return nil, fmt.Errorf("%w: %s: First definitions track no value (got %s)", ErrInvalidDefinition, raw.Name, valueKind)
	}

	title := raw.Title
	if title == "" {
		title = raw.Name
	}

	weight := 1.0
	if raw.ScoreWeight != nil {
		weight = *raw.ScoreWeight
	}

	return &domain.Definition{
		Name:          raw.Name,
		TitleTemplate: title,
		Kind:          kind,
		ValueKind:     valueKind,
		BodySpecific:  raw.BodySpecific,
		HomeScope:     homeScope,
		CrewedOnly:    raw.CrewedOnly,
		Unique:        raw.Unique,
		ScoreWeight:   weight,
	}, nil
}

// Parse builds a registry from a YAML document.
//
// Entries that fail validation are logged and skipped. Only an unreadable document
// is an error.
func Parse(data []byte, logger *slog.Logger) (*Registry, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	registry := &Registry{
		definitions: make(map[string]*domain.Definition, len(raw.Definitions)),
		names:       make([]string, 0, len(raw.Definitions)),
	}

	for i, rawDefinition := range raw.Definitions {
		definition, err := toDefinition(rawDefinition)
		if err != nil {
			logger.Warn("Skipping definition", "index", i, "error", err.Error())
			continue
		}
		if _, ok := registry.definitions[definition.Name]; ok {
			logger.Warn("Skipping duplicate definition", "index", i, "name", definition.Name)
			continue
		}
		registry.definitions[definition.Name] = definition
		registry.names = append(registry.names, definition.Name)
	}

	return registry, nil
}

// Load reads the definitions at path, or the built-in catalog when path is empty
func Load(path string, logger *slog.Logger) (*Registry, error) {
	data := defaultDefinitions
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read definitions file: %w", err)
		}
	}

	registry, err := Parse(data, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded achievement definitions", "count", registry.Len(), "builtin", path == "")

	return registry, nil
}

// Type assertion
var _ domain.DefinitionFinder = (*Registry)(nil)
