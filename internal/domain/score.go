package domain

// BodyMultiplierLookup returns the score multiplier for a celestial body
type BodyMultiplierLookup func(body string) float64

// Score computes an instance's contribution to the total game score
func Score(instance Instance, lookup BodyMultiplierLookup) float64 {
	if !instance.Valid() {
		return 0
	}
	definition := instance.Definition()

	multiplier := 1.0
	if definition.BodySpecific && lookup != nil {
		multiplier = lookup(instance.Body())
	}

	value := 1.0
	if definition.ValueKind != ValueNone {
		value = instance.Value()
	}

	return definition.ScoreWeight * multiplier * value
}
