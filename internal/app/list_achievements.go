package app

import (
	"context"
	"fmt"

	"github.com/Amund211/milestones/internal/adapters/cache"
	"github.com/Amund211/milestones/internal/domain"
)

type ScoredAchievement struct {
	Instance domain.Instance
	Score    float64
}

type ListAchievements func(ctx context.Context) ([]ScoredAchievement, error)

type GetTotalScore func(ctx context.Context) (float64, error)

type achievementLister interface {
	List(ctx context.Context) ([]domain.Instance, error)
}

type bodyMultipliers interface {
	BodyMultiplier(body string) float64
}

func BuildListAchievements(repo achievementLister, world bodyMultipliers) ListAchievements {
	return func(ctx context.Context) ([]ScoredAchievement, error) {
		instances, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list achievements: %w", err)
		}

		achievements := make([]ScoredAchievement, 0, len(instances))
		for _, instance := range instances {
			achievements = append(achievements, ScoredAchievement{
				Instance: instance,
				Score:    domain.Score(instance, world.BodyMultiplier),
			})
		}
		return achievements, nil
	}
}

func BuildGetTotalScoreWithCache(
	scoreCache cache.Cache[float64],
	repo achievementLister,
	world bodyMultipliers,
) GetTotalScore {
	return func(ctx context.Context) (float64, error) {
		total, _, err := cache.GetOrCreate(ctx, scoreCache, totalScoreCacheKey, func() (float64, error) {
			instances, err := repo.List(ctx)
			if err != nil {
				return 0, fmt.Errorf("failed to list achievements: %w", err)
			}

			total := 0.0
			for _, instance := range instances {
				total += domain.Score(instance, world.BodyMultiplier)
			}
			return total, nil
		})
		if err != nil {
			return 0, fmt.Errorf("failed to cache.GetOrCreate total score: %w", err)
		}

		return total, nil
	}
}
