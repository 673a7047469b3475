package types

// InterestRequest represents a request for an interest-over-time series
type InterestRequest struct {
	Keyword   string `json:"keyword" validate:"required,min=1,max=100"`
	Timeframe string `json:"timeframe,omitempty"` // e.g. "now 7-d"
	Geo       string `json:"geo,omitempty"`       // ISO country code, empty means worldwide
}
