package types

// InterestResponse represents an interest-over-time series for one keyword
type InterestResponse struct {
	Keyword  string           `json:"keyword"`
	Points   []*InterestPoint `json:"points"`
	Took     int64            `json:"took"` // milliseconds
	Provider ProviderID       `json:"provider"`
}

// InterestPoint is a single point of the series, most recent last
type InterestPoint struct {
	Time      int64 `json:"time"`  // unix seconds
	Value     int   `json:"value"` // relative interest 0-100
	IsPartial bool  `json:"is_partial,omitempty"`
}

// Values returns the point values in order
func (r *InterestResponse) Values() []int {
	values := make([]int, len(r.Points))
	for i, p := range r.Points {
		values[i] = p.Value
	}
	return values
}
