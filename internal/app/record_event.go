package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Amund211/milestones/internal/adapters/achievementrepository"
	"github.com/Amund211/milestones/internal/adapters/cache"
	"github.com/Amund211/milestones/internal/domain"
	"github.com/Amund211/milestones/internal/logging"
	"github.com/Amund211/milestones/internal/reporting"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const totalScoreCacheKey = "total"

type RecordEvent func(ctx context.Context, event domain.Event) (domain.Decision, error)

type achievementRegistrar interface {
	Register(ctx context.Context, key domain.Key, decide achievementrepository.Decider) (domain.Decision, error)
}

type worldState interface {
	HomeBody() string
	BodyMultiplier(body string) float64
	UniversalTime() float64
	HasUniversalTime() bool
	AssignedCrew() int
	Observe(universalTime *float64, assignedCrew *int)
}

// buildContext resolves the world-state values the event did not carry
func buildContext(event domain.Event, world worldState) domain.BuildContext {
	universalTime := world.UniversalTime()
	if event.UniversalTime != nil {
		universalTime = *event.UniversalTime
	}
	assignedCrew := world.AssignedCrew()
	if event.AssignedCrew != nil {
		assignedCrew = *event.AssignedCrew
	}

	return domain.BuildContext{
		Body:                event.Body,
		Vessel:              event.Vessel,
		ExplicitValue:       event.ExplicitValue,
		ExplicitContributor: event.ExplicitContributor,
		UniversalTime:       universalTime,
		HomeBody:            world.HomeBody(),
		AssignedCrew:        assignedCrew,
	}
}

func recordOutcome(ctx context.Context, definition string, outcome string) {
	metrics.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("definition", definition),
		attribute.String("outcome", outcome),
	))
}

// BuildRecordEvent builds the use case that turns a gameplay event into a candidate and
// registers it. Unknown definitions and disqualified candidates are silent rejects.
func BuildRecordEvent(
	definitions domain.DefinitionFinder,
	world worldState,
	repo achievementRegistrar,
	scoreCache cache.Cache[float64],
) RecordEvent {
	return func(ctx context.Context, event domain.Event) (domain.Decision, error) {
		ctx = logging.AddMetaToContext(ctx, slog.String("definition", event.DefinitionName))
		logger := logging.FromContext(ctx)

		world.Observe(event.UniversalTime, event.AssignedCrew)

		definition, ok := definitions.Find(event.DefinitionName)
		if !ok {
			logger.InfoContext(ctx, "Ignoring event for unknown definition")
			recordOutcome(ctx, event.DefinitionName, "unknown")
			return domain.Decision{Outcome: domain.OutcomeReject}, nil
		}

		if definition.HasTime() && !world.HasUniversalTime() {
			// A placeholder time would hold the slot forever
			logger.InfoContext(ctx, "Ignoring timed event before any universal time is known")
			recordOutcome(ctx, definition.Name, "untimed")
			return domain.Decision{Outcome: domain.OutcomeReject}, nil
		}

		candidate := domain.Build(definition, buildContext(event, world))
		if !candidate.Valid() {
			logger.InfoContext(ctx, "Candidate does not qualify")
			recordOutcome(ctx, definition.Name, "invalid")
			return domain.Decision{Outcome: domain.OutcomeReject}, nil
		}

		key := candidate.Key()
		ctx = reporting.AddSlotToContext(ctx, key.Definition, key.Body)

		decision, err := repo.Register(ctx, key, func(previous *domain.Instance) (domain.Decision, error) {
			return domain.Register(candidate, previous)
		})
		if errors.Is(err, domain.ErrKeyMismatch) {
			reporting.Report(ctx, err)
			recordOutcome(ctx, definition.Name, "error")
			return domain.Decision{Outcome: domain.OutcomeReject}, err
		}
		if err != nil {
			// NOTE: Repository implementations handle their own error reporting
			recordOutcome(ctx, definition.Name, "error")
			return domain.Decision{Outcome: domain.OutcomeReject}, fmt.Errorf("failed to register %s: %w", key, err)
		}

		recordOutcome(ctx, definition.Name, decision.Outcome.String())

		if decision.Outcome == domain.OutcomeReplace {
			cache.Invalidate(scoreCache, totalScoreCacheKey)
			logger.InfoContext(ctx, "Recorded achievement",
				"key", key.String(),
				"value", decision.Instance.Value(),
				"score", domain.Score(decision.Instance, world.BodyMultiplier),
			)
		}

		return decision, nil
	}
}
