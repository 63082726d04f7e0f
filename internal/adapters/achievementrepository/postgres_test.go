package achievementrepository

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/milestones/internal/adapters/database"
	"github.com/Amund211/milestones/internal/domain"
	"github.com/Amund211/milestones/internal/domaintest"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgres(t *testing.T, db *sqlx.DB, schemaSuffix string, finder domain.DefinitionFinder) *Postgres {
	require.NotEmpty(t, schemaSuffix, "schemaSuffix must not be empty")
	schema := fmt.Sprintf("achievements_repo_test_%s", schemaSuffix)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))

	migrator := database.NewDatabaseMigrator(db, logger)

	err := migrator.Migrate(t.Context(), schema)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return NewPostgres(db, schema, finder, func() time.Time { return now })
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	t.Parallel()

	heaviest := domaintest.NewDefinitionBuilder("heaviest", domain.KindMax).
		WithValueKind(domain.ValueMass).BodySpecific().Build()
	flags := domaintest.NewDefinitionBuilder("flags", domain.KindTotal).BodySpecific().Unique().Build()
	firstLaunch := domaintest.NewDefinitionBuilder("firstLaunch", domain.KindFirst).Build()
	finder := domaintest.NewFinder(heaviest, flags, firstLaunch)

	register := func(t *testing.T, p *Postgres, candidate domain.Instance) domain.Decision {
		t.Helper()
		decision, err := p.Register(t.Context(), candidate.Key(), func(previous *domain.Instance) (domain.Decision, error) {
			return domain.Register(candidate, previous)
		})
		require.NoError(t, err)
		return decision
	}

	t.Run("max scenario", func(t *testing.T) {
		t.Parallel()

		db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		p := newPostgres(t, db, "max_scenario", finder)

		land := func(body string, mass float64) domain.Instance {
			return domaintest.NewInstance(heaviest, domain.BuildContext{
				Body:          domaintest.Ptr(body),
				Vessel:        &domain.Vessel{ID: "v", Name: "Lander", Mass: mass},
				UniversalTime: 120,
			})
		}

		require.Equal(t, domain.OutcomeReplace, register(t, p, land("Kerbin", 12.5)).Outcome)
		require.Equal(t, domain.OutcomeReject, register(t, p, land("Kerbin", 10)).Outcome)
		require.Equal(t, domain.OutcomeReplace, register(t, p, land("Duna", 3)).Outcome)

		kerbin, err := p.Get(t.Context(), domain.Key{Definition: "heaviest", Body: "Kerbin"})
		require.NoError(t, err)
		require.NotNil(t, kerbin)
		require.Equal(t, 12.5, kerbin.Value())
		require.Equal(t, 120.0, kerbin.Time())
		require.Equal(t, "Lander", kerbin.Contributor())

		instances, err := p.List(t.Context())
		require.NoError(t, err)
		require.Len(t, instances, 2)
		require.Equal(t, "Duna", instances[0].Body())
		require.Equal(t, "Kerbin", instances[1].Body())
	})

	t.Run("unique totals round trip contributor ids", func(t *testing.T) {
		t.Parallel()

		db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		p := newPostgres(t, db, "unique_totals", finder)

		plant := func(token string) domain.Instance {
			return domaintest.NewInstance(flags, domain.BuildContext{
				Body:                domaintest.Ptr("Mun"),
				ExplicitContributor: domaintest.Ptr(token),
			})
		}

		require.Equal(t, domain.OutcomeReplace, register(t, p, plant("vesselA")).Outcome)
		require.Equal(t, domain.OutcomeReject, register(t, p, plant("vesselA")).Outcome)
		require.Equal(t, domain.OutcomeReplace, register(t, p, plant("vesselB")).Outcome)

		stored, err := p.Get(t.Context(), domain.Key{Definition: "flags", Body: "Mun"})
		require.NoError(t, err)
		require.Equal(t, 2.0, stored.Value())
		require.Equal(t, []string{"vesselA", "vesselB"}, stored.ContributorIDs().Tokens())

		var count int64
		err = db.QueryRowx(
			fmt.Sprintf("SELECT registration_count FROM %s.achievements WHERE definition = 'flags'", pq.QuoteIdentifier(p.schema)),
		).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
	})

	t.Run("global definitions keep the display body", func(t *testing.T) {
		t.Parallel()

		db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		p := newPostgres(t, db, "display_body", finder)

		launch := domaintest.NewInstance(firstLaunch, domain.BuildContext{Body: domaintest.Ptr("Kerbin"), UniversalTime: 5})
		require.Equal(t, domain.OutcomeReplace, register(t, p, launch).Outcome)

		stored, err := p.Get(t.Context(), domain.Key{Definition: "firstLaunch"})
		require.NoError(t, err)
		require.Equal(t, "Kerbin", stored.Body())
		require.Equal(t, domain.Key{Definition: "firstLaunch"}, stored.Key())
	})

	t.Run("unknown definitions are skipped when listing", func(t *testing.T) {
		t.Parallel()

		db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		p := newPostgres(t, db, "unknown_definition", finder)
		require.NoError(t, p.Restore(t.Context(), []domain.Instance{
			domaintest.NewInstance(firstLaunch, domain.BuildContext{UniversalTime: 1}),
		}))

		withoutLaunch := NewPostgres(db, p.schema, domaintest.NewFinder(heaviest), p.nowFunc)
		instances, err := withoutLaunch.List(t.Context())
		require.NoError(t, err)
		require.Empty(t, instances)

		stored, err := withoutLaunch.Get(t.Context(), domain.Key{Definition: "firstLaunch"})
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.False(t, stored.Valid())
	})

	t.Run("concurrent registrations are serialized", func(t *testing.T) {
		t.Parallel()

		db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		p := newPostgres(t, db, "concurrent", finder)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Go(func() {
				candidate := domaintest.NewInstance(flags, domain.BuildContext{
					Body:                domaintest.Ptr("Minmus"),
					ExplicitContributor: domaintest.Ptr(fmt.Sprintf("vessel-%d", i)),
				})
				_, err := p.Register(t.Context(), candidate.Key(), func(previous *domain.Instance) (domain.Decision, error) {
					return domain.Register(candidate, previous)
				})
				assert.NoError(t, err)
			})
		}
		wg.Wait()

		stored, err := p.Get(t.Context(), domain.Key{Definition: "flags", Body: "Minmus"})
		require.NoError(t, err)
		require.Equal(t, 20.0, stored.Value())
		require.Equal(t, 20, stored.ContributorIDs().Len())
	})
}
