package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/milestones/internal/app"
	"github.com/Amund211/milestones/internal/logging"
)

type achievementsResponse struct {
	Achievements []achievementResponse `json:"achievements"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

func MakeListAchievementsHandler(
	listAchievements app.ListAchievements,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("achievements", rootLogger, sentryMiddleware, 4, 120)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		achievements, err := listAchievements(ctx)
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Error listing achievements", "error", err)
			writeErrorResponse(ctx, w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response := achievementsResponse{Achievements: make([]achievementResponse, 0, len(achievements))}
		for _, achievement := range achievements {
			if !achievement.Instance.Valid() {
				continue
			}
			response.Achievements = append(response.Achievements, achievementToResponse(achievement))
		}

		writeJSONResponse(ctx, w, http.StatusOK, response)
	}

	return middleware(handler)
}

func MakeGetTotalScoreHandler(
	getTotalScore app.GetTotalScore,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("score", rootLogger, sentryMiddleware, 8, 240)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		score, err := getTotalScore(ctx)
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Error getting total score", "error", err)
			writeErrorResponse(ctx, w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, scoreResponse{Score: score})
	}

	return middleware(handler)
}
