package domain

import (
	"fmt"
	"strings"
)

// Kind is the competition rule deciding which candidate holds a slot
type Kind int

const (
	KindTotal Kind = iota
	KindMax
	KindFirst
)

var kindNames = map[Kind]string{
	KindTotal: "Total",
	KindMax:   "Max",
	KindFirst: "First",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(raw string) (Kind, error) {
	for kind, name := range kindNames {
		if strings.EqualFold(raw, name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: kind %q", ErrInvalidEnum, raw)
}

// ValueKind selects which raw game-state number feeds an instance's value
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueCost
	ValueMass
	ValuePartsCount
	ValueCrewCount
	ValueTotalAssignedCrew
	ValueFunds
)

var valueKindNames = map[ValueKind]string{
	ValueNone:              "None",
	ValueCost:              "Cost",
	ValueMass:              "Mass",
	ValuePartsCount:        "PartsCount",
	ValueCrewCount:         "CrewCount",
	ValueTotalAssignedCrew: "TotalAssignedCrew",
	ValueFunds:             "Funds",
}

func (v ValueKind) String() string {
	if name, ok := valueKindNames[v]; ok {
		return name
	}
	return fmt.Sprintf("ValueKind(%d)", int(v))
}

func ParseValueKind(raw string) (ValueKind, error) {
	if raw == "" {
		return ValueNone, nil
	}
	for kind, name := range valueKindNames {
		if strings.EqualFold(raw, name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: value kind %q", ErrInvalidEnum, raw)
}

// HomeScope filters which bodies may produce a valid instance
type HomeScope int

const (
	HomeScopeAny HomeScope = iota
	HomeScopeHomeOnly
	HomeScopeExcludeHome
)

var homeScopeNames = map[HomeScope]string{
	HomeScopeAny:         "Any",
	HomeScopeHomeOnly:    "HomeOnly",
	HomeScopeExcludeHome: "ExcludeHome",
}

func (h HomeScope) String() string {
	if name, ok := homeScopeNames[h]; ok {
		return name
	}
	return fmt.Sprintf("HomeScope(%d)", int(h))
}

func ParseHomeScope(raw string) (HomeScope, error) {
	if raw == "" {
		return HomeScopeAny, nil
	}
	for scope, name := range homeScopeNames {
		if strings.EqualFold(raw, name) {
			return scope, nil
		}
	}
	return 0, fmt.Errorf("%w: home scope %q", ErrInvalidEnum, raw)
}

// Definition describes one trackable achievement type.
//
// Definitions are loaded once and shared by reference; they must not be mutated after load.
type Definition struct {
	Name          string
	TitleTemplate string
	Kind          Kind
	ValueKind     ValueKind
	BodySpecific  bool
	HomeScope     HomeScope
	CrewedOnly    bool
	Unique        bool
	ScoreWeight   float64
}

// HasTime reports whether instances of the definition carry a universal time
func (d *Definition) HasTime() bool {
	return d.Kind == KindFirst || d.Kind == KindMax
}

// HasValue reports whether instances of the definition carry a numeric value
func (d *Definition) HasValue() bool {
	return d.Kind == KindMax || d.Kind == KindTotal
}

// DefinitionFinder looks up definitions by name
type DefinitionFinder interface {
	Find(name string) (*Definition, bool)
}
