package savefile_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Amund211/milestones/internal/adapters/savefile"
	"github.com/Amund211/milestones/internal/domain"
	"github.com/Amund211/milestones/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestSavefile(t *testing.T) {
	t.Parallel()

	heaviest := domaintest.NewDefinitionBuilder("heaviest", domain.KindMax).
		WithValueKind(domain.ValueMass).BodySpecific().Build()
	flags := domaintest.NewDefinitionBuilder("flags", domain.KindTotal).BodySpecific().Unique().Build()
	firstLaunch := domaintest.NewDefinitionBuilder("firstLaunch", domain.KindFirst).Build()
	finder := domaintest.NewFinder(heaviest, flags, firstLaunch)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	loader := savefile.NewLoader(finder, "Kerbin", logger)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		instances := []domain.Instance{
			domaintest.NewInstance(heaviest, domain.BuildContext{
				Body:          domaintest.Ptr("Duna"),
				Vessel:        &domain.Vessel{ID: "v1", Name: "Ike Hopper", Mass: 12.5},
				UniversalTime: 1234.5,
			}),
			domaintest.NewInstance(flags, domain.BuildContext{
				Body:                domaintest.Ptr("Mun"),
				ExplicitContributor: domaintest.Ptr("vesselA"),
			}),
			domaintest.NewInstance(firstLaunch, domain.BuildContext{UniversalTime: 42}),
			domain.Invalid,
		}

		data, err := savefile.Marshal(instances)
		require.NoError(t, err)

		loaded, err := loader.Parse(data)
		require.NoError(t, err)
		require.Len(t, loaded, 3)

		for i, instance := range loaded {
			want, ok := domain.ToRecord(instances[i])
			require.True(t, ok)
			got, ok := domain.ToRecord(instance)
			require.True(t, ok)
			require.Equal(t, want, got)
			require.Equal(t, instances[i].Key(), instance.Key())
		}
	})

	t.Run("malformed records are dropped individually", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
achievements:
  - definition: heaviest
    body: Duna
    value: "heavy"
  - body: Mun
    value: "3"
  - definition: noSuchAchievement
    value: "1"
  - definition: flags
    body: Mun
    value: "2"
    contributor_ids: [vesselA, vesselB]
  - definition: firstLaunch
    time: "soon"
`)

		loaded, err := loader.Parse(data)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.Equal(t, "flags", loaded[0].Definition().Name)
		require.Equal(t, 2.0, loaded[0].Value())
		require.Equal(t, []string{"vesselA", "vesselB"}, loaded[0].ContributorIDs().Tokens())
	})

	t.Run("missing body defaults to the home body", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
achievements:
  - definition: heaviest
    value: "7"
  - definition: firstLaunch
    time: "10"
`)

		loaded, err := loader.Parse(data)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		require.Equal(t, "Kerbin", loaded[0].Body())
		require.Equal(t, domain.Key{Definition: "heaviest", Body: "Kerbin"}, loaded[0].Key())
		require.Equal(t, "", loaded[1].Body())
	})

	t.Run("missing numbers default to zero", func(t *testing.T) {
		t.Parallel()

		loaded, err := loader.Parse([]byte("achievements:\n  - definition: firstLaunch\n"))
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.Equal(t, 0.0, loaded[0].Time())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := loader.Parse([]byte("achievements: [unterminated"))
		require.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("save and load file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "achievements.yaml")

		missing, err := loader.Load(path)
		require.NoError(t, err)
		require.Empty(t, missing)

		instance := domaintest.NewInstance(flags, domain.BuildContext{
			Body:                domaintest.Ptr("Minmus"),
			ExplicitContributor: domaintest.Ptr("vesselC"),
		})
		require.NoError(t, savefile.Save(path, []domain.Instance{instance}))

		loaded, err := loader.Load(path)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.Equal(t, instance.Key(), loaded[0].Key())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp file should be cleaned up")
	})
}
