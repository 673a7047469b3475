package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/trendpulse-backend/internal/trends/types"
)

const (
	exploreEndpoint      = "/trends/api/explore"
	widgetdataEndpoint   = "/trends/api/widgetdata/multiline"
	autocompleteEndpoint = "/trends/api/autocomplete/"

	defaultTimeframe = "now 7-d"
	defaultHL        = "en-US"
	defaultTZ        = 330

	// Backoff unit between rate-limited attempts, attempt n waits n*unit
	rateLimitBackoff = 10 * time.Second
)

// GoogleTrendsProvider fetches interest data from the Google Trends widget API
type GoogleTrendsProvider struct {
	*BaseProvider

	mu     sync.Mutex
	primed bool // session cookie established
}

// NewGoogleTrendsProvider creates a new Google Trends provider
func NewGoogleTrendsProvider(config *types.ProviderConfig) (Provider, error) {
	if config.HL == "" {
		config.HL = defaultHL
	}
	if config.TZ == 0 {
		config.TZ = defaultTZ
	}

	base := NewBaseProvider(config)

	// The widget API requires a session cookie (NID), keep a jar per provider
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	base.GetHTTPClient().Jar = jar

	return &GoogleTrendsProvider{BaseProvider: base}, nil
}

// exploreItem is a single comparison item of an explore request
type exploreItem struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

// exploreRequest is the payload of the explore endpoint's req parameter
type exploreRequest struct {
	ComparisonItem []exploreItem `json:"comparisonItem"`
	Category       int           `json:"category"`
	Property       string        `json:"property"`
}

// FetchInterest returns the interest-over-time series for a keyword.
// Rate-limited attempts are retried with a fresh session and increasing
// backoff, any other failure surfaces immediately.
func (p *GoogleTrendsProvider) FetchInterest(ctx context.Context, req *types.InterestRequest) (*types.InterestResponse, error) {
	if req.Keyword == "" {
		return nil, types.ErrEmptyKeyword
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = defaultTimeframe
	}

	maxRetries := p.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := p.fetchInterestOnce(ctx, req.Keyword, timeframe, req.Geo)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !errors.Is(err, types.ErrProviderRateLimited) || attempt == maxRetries-1 {
			return nil, err
		}

		// Rate limited: drop the session and back off before the next attempt
		p.resetSession()

		wait := time.Duration(attempt+1) * rateLimitBackoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// fetchInterestOnce performs one explore + widgetdata round trip
func (p *GoogleTrendsProvider) fetchInterestOnce(ctx context.Context, keyword, timeframe, geo string) (*types.InterestResponse, error) {
	startTime := time.Now()

	if err := p.ensureSession(ctx); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "SESSION_FAILED",
			Message:  "Failed to establish session",
			Err:      err,
		}
	}

	token, widgetReq, err := p.exploreTimeseries(ctx, keyword, timeframe, geo)
	if err != nil {
		return nil, err
	}

	points, err := p.fetchTimeline(ctx, token, widgetReq)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "NO_DATA",
			Message:  fmt.Sprintf("no timeline data for keyword %q", keyword),
			Err:      types.ErrNoData,
		}
	}

	return &types.InterestResponse{
		Keyword:  keyword,
		Points:   points,
		Took:     time.Since(startTime).Milliseconds(),
		Provider: p.GetID(),
	}, nil
}

// exploreTimeseries requests widget tokens and returns the TIMESERIES
// widget's token together with its request payload
func (p *GoogleTrendsProvider) exploreTimeseries(ctx context.Context, keyword, timeframe, geo string) (string, string, error) {
	payload := exploreRequest{
		ComparisonItem: []exploreItem{
			{Keyword: keyword, Geo: geo, Time: timeframe},
		},
		Category: 0,
		Property: "",
	}

	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal explore request: %w", err)
	}

	params := url.Values{}
	params.Set("hl", p.config.HL)
	params.Set("tz", strconv.Itoa(p.config.TZ))
	params.Set("req", string(reqJSON))

	body, err := p.get(ctx, p.config.APIHost+exploreEndpoint, params)
	if err != nil {
		return "", "", err
	}

	widget := gjson.GetBytes(body, `widgets.#(id=="TIMESERIES")`)
	if !widget.Exists() {
		return "", "", &types.ProviderError{
			Provider: p.GetID(),
			Code:     "INVALID_RESPONSE",
			Message:  "explore response has no TIMESERIES widget",
			Err:      types.ErrInvalidResponse,
		}
	}

	token := widget.Get("token").String()
	widgetReq := widget.Get("request").Raw
	if token == "" || widgetReq == "" {
		return "", "", &types.ProviderError{
			Provider: p.GetID(),
			Code:     "INVALID_RESPONSE",
			Message:  "TIMESERIES widget is missing token or request",
			Err:      types.ErrInvalidResponse,
		}
	}

	return token, widgetReq, nil
}

// fetchTimeline exchanges a widget token for the timeline points
func (p *GoogleTrendsProvider) fetchTimeline(ctx context.Context, token, widgetReq string) ([]*types.InterestPoint, error) {
	params := url.Values{}
	params.Set("hl", p.config.HL)
	params.Set("tz", strconv.Itoa(p.config.TZ))
	params.Set("req", widgetReq)
	params.Set("token", token)

	body, err := p.get(ctx, p.config.APIHost+widgetdataEndpoint, params)
	if err != nil {
		return nil, err
	}

	timeline := gjson.GetBytes(body, "default.timelineData")
	if !timeline.Exists() {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "INVALID_RESPONSE",
			Message:  "widgetdata response has no timeline",
			Err:      types.ErrInvalidResponse,
		}
	}

	var points []*types.InterestPoint
	timeline.ForEach(func(_, item gjson.Result) bool {
		ts, _ := strconv.ParseInt(item.Get("time").String(), 10, 64)
		points = append(points, &types.InterestPoint{
			Time:      ts,
			Value:     int(item.Get("value.0").Int()),
			IsPartial: item.Get("isPartial").Bool(),
		})
		return true
	})

	return points, nil
}

// RelatedKeywords returns autocomplete topic titles for the keyword
func (p *GoogleTrendsProvider) RelatedKeywords(ctx context.Context, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, types.ErrEmptyKeyword
	}

	if err := p.ensureSession(ctx); err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "SESSION_FAILED",
			Message:  "Failed to establish session",
			Err:      err,
		}
	}

	params := url.Values{}
	params.Set("hl", p.config.HL)
	params.Set("tz", strconv.Itoa(p.config.TZ))

	body, err := p.get(ctx, p.config.APIHost+autocompleteEndpoint+url.PathEscape(keyword), params)
	if err != nil {
		return nil, err
	}

	var related []string
	gjson.GetBytes(body, "default.topics").ForEach(func(_, topic gjson.Result) bool {
		if title := topic.Get("title").String(); title != "" {
			related = append(related, title)
		}
		return true
	})

	return related, nil
}

// get executes a GET request against the widget API and returns the
// response body with the XSSI prefix stripped
func (p *GoogleTrendsProvider) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.GetHTTPClient().Do(httpReq)
	if err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "Failed to execute request",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "RATE_LIMITED",
			Message:  "Too many requests",
			Err:      types.ErrProviderRateLimited,
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	stripped := stripJSONPrefix(body)
	if stripped == nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "INVALID_RESPONSE",
			Message:  "response contains no JSON payload",
			Err:      types.ErrInvalidResponse,
		}
	}

	return stripped, nil
}

// ensureSession primes the cookie jar with a plain page hit, the widget
// endpoints reject requests without the NID cookie
func (p *GoogleTrendsProvider) ensureSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.primed {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.APIHost+"/", nil)
	if err != nil {
		return err
	}
	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	p.primed = true
	return nil
}

// resetSession drops the current session so the next request starts fresh
func (p *GoogleTrendsProvider) resetSession() {
	p.mu.Lock()
	defer p.mu.Unlock()

	jar, err := cookiejar.New(nil)
	if err == nil {
		p.GetHTTPClient().Jar = jar
	}
	p.primed = false
}

// stripJSONPrefix drops everything before the first JSON delimiter. The
// widget API prefixes payloads with ")]}'," against XSSI.
func stripJSONPrefix(b []byte) []byte {
	idx := bytes.IndexAny(b, "{[")
	if idx < 0 {
		return nil
	}
	return b[idx:]
}
