package domaintest

import (
	"github.com/Amund211/milestones/internal/domain"
)

type definitionBuilder struct {
	definition *domain.Definition
}

func (db *definitionBuilder) WithTitle(title string) *definitionBuilder {
	db.definition.TitleTemplate = title
	return db
}

func (db *definitionBuilder) WithValueKind(valueKind domain.ValueKind) *definitionBuilder {
	db.definition.ValueKind = valueKind
	return db
}

func (db *definitionBuilder) BodySpecific() *definitionBuilder {
	db.definition.BodySpecific = true
	return db
}

func (db *definitionBuilder) WithHomeScope(scope domain.HomeScope) *definitionBuilder {
	db.definition.HomeScope = scope
	return db
}

func (db *definitionBuilder) CrewedOnly() *definitionBuilder {
	db.definition.CrewedOnly = true
	return db
}

func (db *definitionBuilder) Unique() *definitionBuilder {
	db.definition.Unique = true
	return db
}

func (db *definitionBuilder) WithScoreWeight(weight float64) *definitionBuilder {
	db.definition.ScoreWeight = weight
	return db
}

// Build returns a pointer to a copy, so further mutations to the builder don't affect it
func (db *definitionBuilder) Build() *domain.Definition {
	definition := *db.definition
	return &definition
}

func NewDefinitionBuilder(name string, kind domain.Kind) *definitionBuilder {
	return &definitionBuilder{
		definition: &domain.Definition{
			Name:          name,
			TitleTemplate: name,
			Kind:          kind,
			HomeScope:     domain.HomeScopeAny,
			ScoreWeight:   1,
		},
	}
}

// Finder is a map based domain.DefinitionFinder
type Finder map[string]*domain.Definition

func (f Finder) Find(name string) (*domain.Definition, bool) {
	definition, ok := f[name]
	return definition, ok
}

func NewFinder(definitions ...*domain.Definition) Finder {
	finder := make(Finder, len(definitions))
	for _, definition := range definitions {
		finder[definition.Name] = definition
	}
	return finder
}

func Ptr[T any](value T) *T {
	return &value
}

func NewVessel(id, name string, crew int) *domain.Vessel {
	return &domain.Vessel{
		ID:         id,
		Name:       name,
		CrewCount:  crew,
		Mass:       10,
		PartsCount: 20,
		Cost:       5000,
	}
}

// NewInstance builds a valid instance or fails loudly. Only for use in tests.
func NewInstance(definition *domain.Definition, ctx domain.BuildContext) domain.Instance {
	instance := domain.Build(definition, ctx)
	if !instance.Valid() {
		panic("domaintest: built instance is invalid")
	}
	return instance
}
