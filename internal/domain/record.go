package domain

// Record is the persisted projection of an instance
type Record struct {
	Definition     string
	Body           string
	Value          float64
	Time           float64
	Contributor    string
	ContributorIDs []string
}

// ToRecord returns false for an invalid instance, which has nothing to persist
func ToRecord(instance Instance) (Record, bool) {
	if !instance.Valid() {
		return Record{}, false
	}
	return Record{
		Definition:     instance.Definition().Name,
		Body:           instance.Body(),
		Value:          instance.Value(),
		Time:           instance.Time(),
		Contributor:    instance.Contributor(),
		ContributorIDs: instance.ContributorIDs().Tokens(),
	}, true
}

// FromRecord restores a persisted instance. A record naming an unknown definition
// restores as Invalid.
func FromRecord(finder DefinitionFinder, record Record) Instance {
	definition, ok := finder.Find(record.Definition)
	if !ok {
		return Invalid
	}
	if definition.BodySpecific && record.Body == "" {
		return Invalid
	}
	return Instance{data: &instanceData{
		definition:     definition,
		body:           record.Body,
		value:          record.Value,
		time:           record.Time,
		contributor:    record.Contributor,
		contributorIDs: NewContributorSet(record.ContributorIDs...),
	}}
}

// Event is a trackable action reported by the event source
type Event struct {
	DefinitionName      string
	Body                *string
	Vessel              *Vessel
	ExplicitValue       *float64
	ExplicitContributor *string

	// Optional world-state snapshot taken when the event occurred
	UniversalTime *float64
	AssignedCrew  *int
}
