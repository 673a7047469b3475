package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

const (
	relayInterestPath = "/api/v1/interest"
	relayRelatedPath  = "/api/v1/related"
)

// RelayProvider queries a self-hosted trends relay. Relays sit between
// this service and Google so many instances can share one quota, they
// speak a plain key-protected JSON API.
type RelayProvider struct {
	*BaseProvider

	client  *fasthttp.Client
	timeout time.Duration
}

// NewRelayProvider creates a new relay provider
func NewRelayProvider(config *types.ProviderConfig) (Provider, error) {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &RelayProvider{
		BaseProvider: NewBaseProvider(config),
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 90 * time.Second,
		},
		timeout: timeout,
	}, nil
}

// relayInterestResponse is the relay's interest endpoint payload
type relayInterestResponse struct {
	Status string `json:"status"`
	Data   struct {
		Keyword string `json:"keyword"`
		Points  []struct {
			Time      int64 `json:"time"`
			Value     int   `json:"value"`
			IsPartial bool  `json:"is_partial"`
		} `json:"points"`
	} `json:"data"`
}

// relayRelatedResponse is the relay's related endpoint payload
type relayRelatedResponse struct {
	Status string `json:"status"`
	Data   struct {
		Keyword string   `json:"keyword"`
		Related []string `json:"related"`
	} `json:"data"`
}

// FetchInterest returns the interest-over-time series for a keyword
func (p *RelayProvider) FetchInterest(ctx context.Context, req *types.InterestRequest) (*types.InterestResponse, error) {
	if req.Keyword == "" {
		return nil, types.ErrEmptyKeyword
	}

	startTime := time.Now()

	params := url.Values{}
	params.Set("keyword", req.Keyword)
	if req.Timeframe != "" {
		params.Set("timeframe", req.Timeframe)
	}
	if req.Geo != "" {
		params.Set("geo", req.Geo)
	}

	body, err := p.doGet(ctx, strings.TrimRight(p.config.APIHost, "/")+relayInterestPath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var relayResp relayInterestResponse
	if err := json.Unmarshal(body, &relayResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if relayResp.Status != "success" || len(relayResp.Data.Points) == 0 {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "NO_DATA",
			Message:  fmt.Sprintf("no timeline data for keyword %q", req.Keyword),
			Err:      types.ErrNoData,
		}
	}

	points := make([]*types.InterestPoint, len(relayResp.Data.Points))
	for i, pt := range relayResp.Data.Points {
		points[i] = &types.InterestPoint{
			Time:      pt.Time,
			Value:     pt.Value,
			IsPartial: pt.IsPartial,
		}
	}

	return &types.InterestResponse{
		Keyword:  req.Keyword,
		Points:   points,
		Took:     time.Since(startTime).Milliseconds(),
		Provider: p.GetID(),
	}, nil
}

// RelatedKeywords returns search terms correlated with the keyword
func (p *RelayProvider) RelatedKeywords(ctx context.Context, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, types.ErrEmptyKeyword
	}

	params := url.Values{}
	params.Set("keyword", keyword)

	body, err := p.doGet(ctx, strings.TrimRight(p.config.APIHost, "/")+relayRelatedPath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var relayResp relayRelatedResponse
	if err := json.Unmarshal(body, &relayResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return relayResp.Data.Related, nil
}

// doGet executes a GET against the relay, retrying transport failures
// with a short backoff. Status errors are never retried here.
func (p *RelayProvider) doGet(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "trendpulse-backend/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.GetAPIKey())

	// Honor the caller's deadline within fasthttp's timeout model
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	maxRetries := p.config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lastErr = p.client.DoTimeout(req, resp, timeout)
		if lastErr == nil {
			break
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * time.Second):
			}
		}
	}
	if lastErr != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "Failed to execute request",
			Err:      lastErr,
		}
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "RATE_LIMITED",
			Message:  "Too many requests",
			Err:      types.ErrProviderRateLimited,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode()),
			Message:  string(resp.Body()),
		}
	}

	// fasthttp reuses response buffers, copy before release
	return append([]byte(nil), resp.Body()...), nil
}
