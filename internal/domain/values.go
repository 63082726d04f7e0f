package domain

// Vessel is the already-computed snapshot of the vessel an event originated from
type Vessel struct {
	ID         string
	Name       string
	CrewCount  int
	Mass       float64
	PartsCount int
	Cost       float64
}

// BuildContext carries everything needed to construct a candidate instance.
//
// World-state values (time, home body, roster size) are resolved by the caller.
type BuildContext struct {
	Body                *string
	Vessel              *Vessel
	ExplicitValue       *float64
	ExplicitContributor *string

	UniversalTime float64
	HomeBody      string
	AssignedCrew  int
}

// Extractor produces the raw numeric value for one value kind
type Extractor func(ctx BuildContext) float64

func vesselExtractor(get func(v *Vessel) float64) Extractor {
	return func(ctx BuildContext) float64 {
		if ctx.Vessel == nil {
			return 0
		}
		return get(ctx.Vessel)
	}
}

var extractors = map[ValueKind]Extractor{
	ValueCost:       vesselExtractor(func(v *Vessel) float64 { return v.Cost }),
	ValueMass:       vesselExtractor(func(v *Vessel) float64 { return v.Mass }),
	ValuePartsCount: vesselExtractor(func(v *Vessel) float64 { return float64(v.PartsCount) }),
	ValueCrewCount:  vesselExtractor(func(v *Vessel) float64 { return float64(v.CrewCount) }),
	ValueTotalAssignedCrew: func(ctx BuildContext) float64 {
		return float64(ctx.AssignedCrew)
	},
	ValueFunds: func(ctx BuildContext) float64 {
		if ctx.ExplicitValue == nil {
			return 0
		}
		return *ctx.ExplicitValue
	},
}

// ExtractValue looks up the extractor for kind. Kinds without an extractor count as 1.
func ExtractValue(kind ValueKind, ctx BuildContext) float64 {
	extract, ok := extractors[kind]
	if !ok {
		return 1
	}
	return extract(ctx)
}
