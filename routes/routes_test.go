package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"mockinterview/middlewares"
	"mockinterview/models"
	"mockinterview/services"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(Deps{Interviews: services.NewInterviewService(services.InterviewDeps{})})

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"options are public", http.MethodGet, "/api/interview/options", "", "", http.StatusOK},
		{"llm status is public", http.MethodGet, "/api/llm/status", "", "", http.StatusOK},
		{"interviews need a user", http.MethodPost, "/api/interviews", "", `{"role":"nurse","level":"entry"}`, http.StatusUnauthorized},
		{"start", http.MethodPost, "/api/interviews", "u1", `{"role":"nurse","level":"entry"}`, http.StatusCreated},
		{"progress without postgres", http.MethodGet, "/api/progress", "u1", "", http.StatusServiceUnavailable},
		{"summaries without dynamodb", http.MethodGet, "/api/summaries", "u1", "", http.StatusNotFound},
		{"preflight", http.MethodOptions, "/api/interviews", "", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.user != "" {
				req.Header.Set(middlewares.UserIDHeader, tt.user)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if w.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("CORS header missing")
			}
		})
	}
}

type stubProgress struct{}

func (stubProgress) LatestReport(_ context.Context, userID string) (models.ProgressReport, error) {
	return models.ProgressReport{UserID: userID, SessionCount: 1}, nil
}

func TestSetupRouterWithProgress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(Deps{
		Interviews: services.NewInterviewService(services.InterviewDeps{}),
		Progress:   stubProgress{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req.Header.Set(middlewares.UserIDHeader, "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"session_count":1`) {
		t.Errorf("progress = %d %s", w.Code, w.Body.String())
	}
}
