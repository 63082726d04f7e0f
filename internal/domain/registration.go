package domain

import "fmt"

type Outcome int

const (
	OutcomeReject Outcome = iota
	OutcomeReplace
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReject:
		return "reject"
	case OutcomeReplace:
		return "replace"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Decision is the result of reconciling a candidate against the stored instance.
// Instance is only set when Outcome is OutcomeReplace.
type Decision struct {
	Outcome  Outcome
	Instance Instance
}

var reject = Decision{Outcome: OutcomeReject}

func replaceWith(instance Instance) Decision {
	return Decision{Outcome: OutcomeReplace, Instance: instance}
}

// Register decides whether candidate should take over the slot currently held by previous.
//
// previous is nil when nothing has been recorded for the key yet. A previous instance
// for a different key is a caller bug and is returned as ErrKeyMismatch alongside a
// rejection.
func Register(candidate Instance, previous *Instance) (Decision, error) {
	if !candidate.Valid() {
		return reject, nil
	}

	// An invalid stored instance holds nothing worth competing against
	if previous != nil && !previous.Valid() {
		previous = nil
	}

	if previous != nil && previous.Key() != candidate.Key() {
		return reject, fmt.Errorf(
			"%w: candidate %s, previous %s",
			ErrKeyMismatch, candidate.Key(), previous.Key(),
		)
	}

	definition := candidate.Definition()
	switch definition.Kind {
	case KindFirst:
		return registerFirst(candidate, previous), nil
	case KindMax:
		return registerMax(candidate, previous), nil
	case KindTotal:
		if definition.Unique {
			return registerUniqueTotal(candidate, previous), nil
		}
		return registerTotal(candidate, previous), nil
	}

	return reject, fmt.Errorf("%w: unknown kind %s", ErrInvalidEnum, definition.Kind)
}

func registerFirst(candidate Instance, previous *Instance) Decision {
	if previous == nil || candidate.Time() < previous.Time() {
		return replaceWith(candidate)
	}
	return reject
}

func registerMax(candidate Instance, previous *Instance) Decision {
	if candidate.Value() <= 0 {
		return reject
	}
	if previous == nil || candidate.Value() > previous.Value() {
		return replaceWith(candidate)
	}
	return reject
}

// NOTE: Once a previous instance exists, non-unique totals accumulate regardless of
// the candidate's sign, while a first entry must be strictly positive.
func registerTotal(candidate Instance, previous *Instance) Decision {
	if previous == nil {
		if candidate.Value() > 0 {
			return replaceWith(candidate)
		}
		return reject
	}

	return replaceWith(candidate.with(func(data *instanceData) {
		data.value += previous.Value()
	}))
}

func registerUniqueTotal(candidate Instance, previous *Instance) Decision {
	if previous == nil {
		if candidate.Value() > 0 {
			return replaceWith(candidate)
		}
		return reject
	}

	alreadyCounted := previous.ContributorIDs()
	if candidate.ContributorIDs().IsSubsetOf(alreadyCounted) {
		return reject
	}

	return replaceWith(candidate.with(func(data *instanceData) {
		data.value += previous.Value()
		data.contributorIDs = alreadyCounted.Union(data.contributorIDs)
	}))
}
