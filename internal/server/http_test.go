package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
	"github.com/lk2023060901/trendpulse-backend/internal/analysis/data"
	"github.com/lk2023060901/trendpulse-backend/internal/analysis/service"
	"github.com/lk2023060901/trendpulse-backend/internal/conf"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/logger"
	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

type flatProvider struct{}

func (flatProvider) FetchInterest(context.Context, *types.InterestRequest) (*types.InterestResponse, error) {
	points := make([]*types.InterestPoint, 0, 7)
	for i := 0; i < 7; i++ {
		points = append(points, &types.InterestPoint{
			Time:  1755475200 + int64(i)*86400,
			Value: 50,
		})
	}
	return &types.InterestResponse{Keyword: "golang", Points: points}, nil
}

func (flatProvider) RelatedKeywords(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)

	config, err := conf.LoadConfig("")
	require.NoError(t, err)
	config.Server.Mode = "test"
	config.RateLimit.Enabled = false

	analyzer := biz.NewTrendAnalyzer(flatProvider{}, data.NewNoopResultCache(), log)
	trendService := service.NewTrendService(analyzer, zap.NewNop())

	return NewHTTPServer(config, log, trendService, nil)
}

func TestHTTPServer_Metadata(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Name        string            `json:"name"`
		Version     string            `json:"version"`
		Description string            `json:"description"`
		Endpoints   map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "TrendPulse AI", body.Name)
	assert.Equal(t, "1.0.0", body.Version)
	assert.NotEmpty(t, body.Description)
	assert.Contains(t, body.Endpoints, "POST /analyze")
}

func TestHTTPServer_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestHTTPServer_AnalyzeEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"keyword": "golang"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result biz.TrendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, biz.TrendStable, result.Trend)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, []int{50, 50, 50, 50, 50, 50, 50}, result.GraphData)
}

func TestGinMode(t *testing.T) {
	assert.Equal(t, "debug", ginMode("debug"))
	assert.Equal(t, "test", ginMode("test"))
	assert.Equal(t, "release", ginMode("release"))
	assert.Equal(t, "release", ginMode("anything else"))
}
