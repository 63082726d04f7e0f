package ports

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amund211/milestones/internal/adapters/eventlog"
	"github.com/Amund211/milestones/internal/app"
	"github.com/Amund211/milestones/internal/domain"
	"github.com/Amund211/milestones/internal/logging"
	"github.com/Amund211/milestones/internal/reporting"
)

const maxEventBodyBytes = 64 * 1024

type recordEventResponse struct {
	Recorded    bool                 `json:"recorded"`
	Achievement *achievementResponse `json:"achievement"`
}

func MakeRecordEventHandler(
	recordEvent app.RecordEvent,
	scoreLookup domain.BodyMultiplierLookup,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("events", rootLogger, sentryMiddleware, 20, 600)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var request eventlog.Event
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
		if err := decoder.Decode(&request); err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).InfoContext(ctx, "Invalid event body", "statusCode", statusCode, "reason", "invalid json", "error", err.Error())
			writeErrorResponse(ctx, w, statusCode, "Invalid event")
			return
		}

		if request.Definition == "" {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).InfoContext(ctx, "Event without definition", "statusCode", statusCode, "reason", "missing definition")
			writeErrorResponse(ctx, w, statusCode, "Missing definition")
			return
		}

		ctx = reporting.AddSlotToContext(ctx, request.Definition, "")

		decision, err := recordEvent(ctx, request.ToDomain())
		if errors.Is(err, domain.ErrKeyMismatch) {
			// Already reported. The player still only sees that nothing was recorded.
			writeJSONResponse(ctx, w, http.StatusOK, recordEventResponse{Recorded: false})
			return
		}
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Error recording event", "error", err)
			writeErrorResponse(ctx, w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response := recordEventResponse{Recorded: decision.Outcome == domain.OutcomeReplace}
		if response.Recorded {
			achievement := achievementToResponse(app.ScoredAchievement{
				Instance: decision.Instance,
				Score:    domain.Score(decision.Instance, scoreLookup),
			})
			response.Achievement = &achievement
		}

		writeJSONResponse(ctx, w, http.StatusOK, response)
	}

	return middleware(handler)
}
