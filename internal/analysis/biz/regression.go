package biz

import "math"

// Trend labels
const (
	TrendRising    = "Rising"
	TrendStable    = "Stable"
	TrendDeclining = "Declining"
)

// Confidence labels
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// leastSquaresSlope computes the simple linear regression slope over the
// values with x = 0..n-1. The intercept is never needed downstream.
func leastSquaresSlope(values []int) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		y := float64(v)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := float64(n)*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}

	return (float64(n)*sumXY - sumX*sumY) / denominator
}

// classifyTrend maps a slope to a trend label
func classifyTrend(slope float64) string {
	switch {
	case slope > 0.8:
		return TrendRising
	case slope < -0.8:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// calculateScore maps a slope to a 0-100 momentum score
func calculateScore(slope float64) int {
	score := slope*12 + 50
	score = math.Max(0, math.Min(100, score))
	return int(math.Round(score))
}

// determineConfidence maps slope magnitude to a confidence label.
// Thresholds are strict, exactly 1.2 is Medium and exactly 0.6 is Low.
func determineConfidence(slope float64) string {
	absSlope := math.Abs(slope)
	switch {
	case absSlope > 1.2:
		return ConfidenceHigh
	case absSlope > 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// bestPostingTime selects the display window for a trend label
func bestPostingTime(trend string) string {
	switch trend {
	case TrendRising:
		return "7 PM – 10 PM"
	case TrendDeclining:
		return "9 AM – 12 PM"
	default:
		return "12 PM – 3 PM"
	}
}
