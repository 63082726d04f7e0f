package reporting

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportingMeta(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		meta := MetaFromContext(t.Context())
		require.Empty(t, meta.tags)
		require.Empty(t, meta.extras)
		require.Empty(t, meta.userID)
		require.True(t, meta.startedAt.IsZero())
	})

	t.Run("added meta does not leak into parent contexts", func(t *testing.T) {
		t.Parallel()

		parent := AddTagsToContext(t.Context(), map[string]string{"port": "events"})
		child := AddExtrasToContext(parent, map[string]string{"definition": "firstLaunch"})
		child = AddTagsToContext(child, map[string]string{"port": "score"})

		require.Equal(t, map[string]string{"port": "events"}, MetaFromContext(parent).tags)
		require.Empty(t, MetaFromContext(parent).extras)

		childMeta := MetaFromContext(child)
		require.Equal(t, map[string]string{"port": "score"}, childMeta.tags)
		require.Equal(t, map[string]string{"definition": "firstLaunch"}, childMeta.extras)
	})

	t.Run("slot meta", func(t *testing.T) {
		t.Parallel()

		ctx := AddSlotToContext(t.Context(), "firstLaunch", "")
		meta := MetaFromContext(ctx)
		require.Equal(t, map[string]string{"definition": "firstLaunch"}, meta.tags)
		require.Empty(t, meta.extras)

		ctx = AddSlotToContext(ctx, "highestOrbit", "Kerbin")
		meta = MetaFromContext(ctx)
		require.Equal(t, map[string]string{"definition": "highestOrbit"}, meta.tags)
		require.Equal(t, map[string]string{"body": "Kerbin"}, meta.extras)
	})

	t.Run("add meta middleware", func(t *testing.T) {
		t.Parallel()

		var meta ReportingMeta
		handler := NewAddMetaMiddleware("events")(func(w http.ResponseWriter, r *http.Request) {
			meta = MetaFromContext(r.Context())
		})

		req := httptest.NewRequest("POST", "/v1/events", nil)
		req.Header.Set("X-Client-Id", "station-1")
		req.Header.Set("User-Agent", "mission-control/1.0")
		handler(httptest.NewRecorder(), req)

		require.Equal(t, map[string]string{
			"port":       "events",
			"userAgent":  "mission-control/1.0",
			"methodPath": "POST /v1/events",
		}, meta.tags)
		require.Equal(t, "station-1", meta.userID)
		require.False(t, meta.startedAt.IsZero())
	})
}
