package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
	"github.com/lk2023060901/trendpulse-backend/internal/analysis/data"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/logger"
	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

type stubProvider struct {
	response *types.InterestResponse
	err      error
	related  []string
}

func (s *stubProvider) FetchInterest(context.Context, *types.InterestRequest) (*types.InterestResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubProvider) RelatedKeywords(context.Context, string) ([]string, error) {
	return s.related, nil
}

func risingResponse() *types.InterestResponse {
	values := []int{10, 20, 30, 40, 50, 60, 70}
	points := make([]*types.InterestPoint, 0, len(values))
	for i, v := range values {
		points = append(points, &types.InterestPoint{
			Time:  1755475200 + int64(i)*86400,
			Value: v,
		})
	}
	return &types.InterestResponse{Keyword: "golang", Points: points}
}

func newTestRouter(t *testing.T, provider biz.TrendProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)

	analyzer := biz.NewTrendAnalyzer(provider, data.NewNoopResultCache(), log)
	svc := NewTrendService(analyzer, zap.NewNop())

	router := gin.New()
	svc.RegisterRoutes(router.Group(""))
	return router
}

func postAnalyze(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeKeyword_Success(t *testing.T) {
	provider := &stubProvider{
		response: risingResponse(),
		related:  []string{"golang tutorial", "golang jobs", "golang wiki"},
	}
	router := newTestRouter(t, provider)

	w := postAnalyze(router, `{"keyword": "Golang"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result biz.TrendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, biz.TrendRising, result.Trend)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, biz.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "7 PM – 10 PM", result.BestPostingTime)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70}, result.GraphData)
	assert.Equal(t, []string{"golang tutorial", "golang jobs", "golang wiki"}, result.RelatedKeywords)
}

func TestAnalyzeKeyword_ResponseShape(t *testing.T) {
	router := newTestRouter(t, &stubProvider{response: risingResponse(), related: []string{}})

	w := postAnalyze(router, `{"keyword": "golang"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	for _, key := range []string{"trend", "score", "confidence", "related_keywords", "best_posting_time", "graph_data"} {
		assert.Contains(t, body, key)
	}
	assert.Len(t, body, 6)
	assert.Equal(t, "[]", string(body["related_keywords"]))
}

func TestAnalyzeKeyword_EmptyKeyword(t *testing.T) {
	router := newTestRouter(t, &stubProvider{response: risingResponse()})

	for _, body := range []string{`{"keyword": ""}`, `{"keyword": "   "}`, `{}`} {
		w := postAnalyze(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Keyword cannot be empty", resp["error"])
	}
}

func TestAnalyzeKeyword_MalformedBody(t *testing.T) {
	router := newTestRouter(t, &stubProvider{response: risingResponse()})

	w := postAnalyze(router, `{"keyword": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestAnalyzeKeyword_ProviderFailures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name: "no data",
			err: &types.ProviderError{
				Provider: types.ProviderGoogle,
				Code:     "NO_DATA",
				Message:  "empty series",
				Err:      types.ErrNoData,
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "No trend data found for keyword",
		},
		{
			name: "rate limited",
			err: &types.ProviderError{
				Provider: types.ProviderGoogle,
				Code:     "RATE_LIMITED",
				Message:  "too many requests",
				Err:      types.ErrProviderRateLimited,
			},
			wantStatus:  http.StatusTooManyRequests,
			wantMessage: "Trend provider rate limit reached, please try again in a few minutes",
		},
		{
			name:        "unreachable",
			err:         context.DeadlineExceeded,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Trend provider unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubProvider{err: tt.err})

			w := postAnalyze(router, `{"keyword": "golang"}`)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp["error"])
		})
	}
}

func TestAnalyzeKeyword_InsufficientData(t *testing.T) {
	short := &types.InterestResponse{
		Keyword: "golang",
		Points: []*types.InterestPoint{
			{Time: 1755475200, Value: 10},
			{Time: 1755561600, Value: 20},
		},
	}
	router := newTestRouter(t, &stubProvider{response: short})

	w := postAnalyze(router, `{"keyword": "golang"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient data points for analysis", resp["error"])
}
