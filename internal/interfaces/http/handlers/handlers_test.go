package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ueba/internal/application"
	"github.com/turtacn/ueba/internal/detector/iforest"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/infrastructure/modelstore"
	"github.com/turtacn/ueba/internal/infrastructure/monitoring"
	"github.com/turtacn/ueba/pkg/constants"
	apperrors "github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// scoringStub validates like the real service and returns a fixed result.
type scoringStub struct {
	result *models.ScoreResult
	err    error
}

func (s *scoringStub) ScoreEvent(ctx context.Context, evt *models.Event) (*models.ScoreResult, error) {
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func analyzeRouter(t *testing.T, scoring application.ScoringService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dispatcher := application.NewAlertDispatcher(nil, nil, time.Minute, nil, logger.NewNoopLogger())
	handler := NewAnalyzeHandler(scoring, dispatcher, monitoring.NewMetrics(), logger.NewNoopLogger())

	router := gin.New()
	router.POST("/api/v1/analyze", handler.Analyze)
	return router
}

func TestAnalyzeEndpoint(t *testing.T) {
	okResult := &models.ScoreResult{
		RiskScore:   0.63,
		Severity:    constants.SeverityMedium,
		Explanation: "rare action sequence",
		Scores: models.ComponentScores{
			Baseline:        0.2,
			Markov:          0.9,
			IsolationForest: 0.8,
			Rules:           map[string]bool{},
		},
		AnomalyType: constants.AnomalyTypeUnknown,
	}

	t.Run("should score a valid event", func(t *testing.T) {
		router := analyzeRouter(t, &scoringStub{result: okResult})

		body := `{"user":"alice","recent_sequence":"logon->file_open","logon_count":5}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"risk_score":0.63`)
		assert.Contains(t, w.Body.String(), `"severity":"medium"`)
		assert.Contains(t, w.Body.String(), `"anomaly_type":"unknown"`)
	})

	t.Run("should reject a missing user with 400", func(t *testing.T) {
		router := analyzeRouter(t, &scoringStub{result: okResult})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"logon_count":5}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
		assert.Contains(t, w.Body.String(), "user")
	})

	t.Run("should reject a malformed body with 400", func(t *testing.T) {
		router := analyzeRouter(t, &scoringStub{result: okResult})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{not json`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should hide internal failures behind an opaque 500", func(t *testing.T) {
		router := analyzeRouter(t, &scoringStub{err: errors.New("tree walk exploded")})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"user":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "tree walk exploded")
		assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	})
}

func TestPersonalityEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := application.NewPersonalityService(map[string]*models.PersonalityVector{
		"alice": {Openness: 0.7},
	})
	handler := NewPersonalityHandler(svc)

	router := gin.New()
	router.GET("/api/v1/users/:user_id/ocean", handler.GetProfile)

	t.Run("should return the profile", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/users/alice/ocean", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"O":0.7`)
	})

	t.Run("should return 404 for unknown users", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/users/mallory/ocean", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})
}

func trainedStore(t *testing.T) *modelstore.Store {
	t.Helper()
	data := make([][]float64, 64)
	for i := range data {
		data[i] = []float64{float64(i), float64(i % 5)}
	}
	forest := iforest.New(iforest.WithTrees(3), iforest.WithSampleSize(16), iforest.WithSeed(1))
	require.NoError(t, forest.Fit(data))
	return &modelstore.Store{Forest: forest}
}

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("liveness should always report alive", func(t *testing.T) {
		router := gin.New()
		router.GET("/health/live", NewHealthHandler(nil).Liveness)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health/live", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alive")
	})

	t.Run("readiness should fail without models", func(t *testing.T) {
		router := gin.New()
		router.GET("/health/ready", NewHealthHandler(nil).Readiness)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("readiness should pass with loaded models", func(t *testing.T) {
		router := gin.New()
		router.GET("/health/ready", NewHealthHandler(trainedStore(t)).Readiness)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health/ready", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ready")
	})

	t.Run("readiness should fail when a dependency check fails", func(t *testing.T) {
		handler := NewHealthHandler(trainedStore(t))
		handler.RegisterCheck("redis", func(ctx context.Context) error {
			return apperrors.ErrUnavailable("connection refused")
		})

		router := gin.New()
		router.GET("/health/ready", handler.Readiness)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health/ready", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "redis")
	})
}
