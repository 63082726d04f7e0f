package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Amund211/milestones/internal/app"
	"github.com/Amund211/milestones/internal/logging"
	"github.com/Amund211/milestones/internal/reporting"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

type achievementResponse struct {
	Definition     string   `json:"definition"`
	Title          string   `json:"title"`
	Kind           string   `json:"kind"`
	Body           string   `json:"body,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	FormattedValue string   `json:"formattedValue,omitempty"`
	Time           *float64 `json:"time,omitempty"`
	FormattedTime  string   `json:"formattedTime,omitempty"`
	Contributor    string   `json:"contributor,omitempty"`
	Score          float64  `json:"score"`
}

func achievementToResponse(achievement app.ScoredAchievement) achievementResponse {
	instance := achievement.Instance
	definition := instance.Definition()

	response := achievementResponse{
		Definition:  definition.Name,
		Title:       instance.Title(),
		Kind:        definition.Kind.String(),
		Body:        instance.Body(),
		Contributor: instance.Contributor(),
		Score:       achievement.Score,
	}
	if definition.HasValue() {
		value := instance.Value()
		response.Value = &value
		response.FormattedValue = instance.FormattedValue()
	}
	if definition.HasTime() {
		universalTime := instance.Time()
		response.Time = &universalTime
		response.FormattedTime = instance.FormattedTime()
	}
	return response
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, response any) {
	data, err := json.Marshal(response)
	if err != nil {
		err = fmt.Errorf("failed to marshal response: %w", err)
		reporting.Report(ctx, err)
		writeErrorResponse(ctx, w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
	}
}

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, cause string) {
	data, err := json.Marshal(errorResponse{Success: false, Cause: cause})
	if err != nil {
		http.Error(w, cause, statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to write error response", "error", err)
	}
}
