package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/lk2023060901/trendpulse-backend/internal/pkg/errors"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/logger"
	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
	"go.uber.org/zap"
)

const (
	// SeriesLength is the number of daily interest points an analysis consumes
	SeriesLength = 7

	// RelatedKeywordLimit caps the related keyword suggestions in a result
	RelatedKeywordLimit = 3
)

// ErrCacheMiss is returned by a ResultCache when no entry exists for a keyword
var ErrCacheMiss = errors.New("analysis result not cached")

// TrendResult is the complete analysis for one keyword
type TrendResult struct {
	Trend           string   `json:"trend"`
	Score           int      `json:"score"`
	Confidence      string   `json:"confidence"`
	RelatedKeywords []string `json:"related_keywords"`
	BestPostingTime string   `json:"best_posting_time"`
	GraphData       []int    `json:"graph_data"`
}

// TrendProvider is the slice of the provider surface the analyzer consumes
type TrendProvider interface {
	FetchInterest(ctx context.Context, req *types.InterestRequest) (*types.InterestResponse, error)
	RelatedKeywords(ctx context.Context, keyword string) ([]string, error)
}

// ResultCache stores finished analyses keyed by normalized keyword
type ResultCache interface {
	Get(ctx context.Context, keyword string) (*TrendResult, error)
	Set(ctx context.Context, keyword string, result *TrendResult) error
}

// TrendAnalyzer is the keyword analysis use case
type TrendAnalyzer struct {
	provider TrendProvider
	cache    ResultCache
	log      *logger.Logger
}

// NewTrendAnalyzer creates a trend analyzer use case
func NewTrendAnalyzer(provider TrendProvider, cache ResultCache, log *logger.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{
		provider: provider,
		cache:    cache,
		log:      log,
	}
}

// AnalyzeKeyword runs the full analysis pipeline for one keyword: normalize,
// check the cache, fetch the interest series, reduce it to the last seven
// usable points, derive trend metrics, and attach related keywords.
func (a *TrendAnalyzer) AnalyzeKeyword(ctx context.Context, keyword string) (*TrendResult, error) {
	normalized := NormalizeKeyword(keyword)
	if normalized == "" {
		return nil, apperrors.New(apperrors.ErrTrendInvalidKeyword)
	}

	log := a.log.WithContext(ctx)

	if cached, err := a.cache.Get(ctx, normalized); err == nil {
		log.Debug("analysis cache hit", zap.String("keyword", normalized))
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn("analysis cache lookup failed",
			zap.String("keyword", normalized),
			zap.Error(err))
	}

	resp, err := a.provider.FetchInterest(ctx, &types.InterestRequest{Keyword: normalized})
	if err != nil {
		return nil, mapProviderError(err, normalized)
	}

	values, err := usableValues(resp.Points)
	if err != nil {
		return nil, err
	}

	slope := leastSquaresSlope(values)
	trend := classifyTrend(slope)

	result := &TrendResult{
		Trend:           trend,
		Score:           calculateScore(slope),
		Confidence:      determineConfidence(slope),
		RelatedKeywords: a.fetchRelated(ctx, normalized),
		BestPostingTime: bestPostingTime(trend),
		GraphData:       values,
	}

	if err := a.cache.Set(ctx, normalized, result); err != nil {
		log.Warn("analysis cache write failed",
			zap.String("keyword", normalized),
			zap.Error(err))
	}

	log.Info("keyword analyzed",
		zap.String("keyword", normalized),
		zap.String("trend", result.Trend),
		zap.Int("score", result.Score),
		zap.String("confidence", result.Confidence))

	return result, nil
}

// NormalizeKeyword trims surrounding whitespace and lowercases a keyword so
// lookups and cache keys are case insensitive
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// usableValues reduces an interest series to the values the regression runs
// on. A trailing partial point covers an unfinished day and is dropped first,
// then the most recent SeriesLength points are kept.
func usableValues(points []*types.InterestPoint) ([]int, error) {
	if n := len(points); n > 0 && points[n-1].IsPartial {
		points = points[:n-1]
	}

	if len(points) < SeriesLength {
		return nil, apperrors.New(apperrors.ErrTrendInsufficientData,
			fmt.Sprintf("got %d usable points, need %d", len(points), SeriesLength))
	}

	points = points[len(points)-SeriesLength:]

	values := make([]int, 0, SeriesLength)
	for _, p := range points {
		values = append(values, p.Value)
	}
	return values, nil
}

// fetchRelated returns up to RelatedKeywordLimit suggestions. Suggestions are
// decorative, a lookup failure degrades to an empty list instead of failing
// the analysis.
func (a *TrendAnalyzer) fetchRelated(ctx context.Context, keyword string) []string {
	related, err := a.provider.RelatedKeywords(ctx, keyword)
	if err != nil {
		a.log.WithContext(ctx).Warn("related keyword lookup failed",
			zap.String("keyword", keyword),
			zap.Error(err))
		return []string{}
	}

	if len(related) > RelatedKeywordLimit {
		related = related[:RelatedKeywordLimit]
	}
	if related == nil {
		related = []string{}
	}
	return related
}

// mapProviderError translates provider failures into the API error space
func mapProviderError(err error, keyword string) error {
	switch {
	case errors.Is(err, types.ErrProviderRateLimited):
		return apperrors.Wrap(err, apperrors.ErrTrendRateLimited)
	case errors.Is(err, types.ErrNoData):
		return apperrors.Wrap(err, apperrors.ErrTrendNoData, keyword)
	case errors.Is(err, types.ErrInvalidResponse):
		return apperrors.Wrap(err, apperrors.ErrTrendProviderFailed)
	default:
		return apperrors.Wrap(err, apperrors.ErrTrendUnavailable)
	}
}
