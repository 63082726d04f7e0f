package achievementrepository

import (
	"context"

	"github.com/Amund211/milestones/internal/domain"
)

// Decider reconciles a candidate against the instance currently stored for its key.
// previous is nil when the slot is empty.
type Decider func(previous *domain.Instance) (domain.Decision, error)

// AchievementRepository is the persisted-instance store, holding one instance per key.
//
// Implementations apply at most one decision per key at a time: decide is called with
// the slot held, and the replacement is written before the slot is released.
type AchievementRepository interface {
	Register(ctx context.Context, key domain.Key, decide Decider) (domain.Decision, error)
	Get(ctx context.Context, key domain.Key) (*domain.Instance, error)
	List(ctx context.Context) ([]domain.Instance, error)
	// Restore unconditionally overwrites the slots of the given instances
	Restore(ctx context.Context, instances []domain.Instance) error
}
