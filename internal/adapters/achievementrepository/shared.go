package achievementrepository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Amund211/milestones/internal/domain"
)

// checkDecision makes sure a replacement can only ever be written to its own slot
func checkDecision(key domain.Key, decision domain.Decision) error {
	if decision.Outcome != domain.OutcomeReplace {
		return nil
	}
	if !decision.Instance.Valid() {
		return fmt.Errorf("%w: replacement for %s is invalid", domain.ErrMalformedRecord, key)
	}
	if decision.Instance.Key() != key {
		return fmt.Errorf("%w: replacement for %s has key %s", domain.ErrKeyMismatch, key, decision.Instance.Key())
	}
	return nil
}

func sortInstances(instances []domain.Instance) {
	slices.SortFunc(instances, func(a, b domain.Instance) int {
		if c := strings.Compare(a.Key().Definition, b.Key().Definition); c != 0 {
			return c
		}
		return strings.Compare(a.Key().Body, b.Key().Body)
	})
}
