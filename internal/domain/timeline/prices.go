package timeline

import (
	"math"
	"sort"
	"time"
)

// PricePoint is one day of reference prices. Brent is NaN when only the
// primary series is available for that day.
type PricePoint struct {
	Date  time.Time `json:"date"`
	WTI   float64   `json:"wti_price"`
	Brent float64   `json:"brent_price"`
}

// PriceSeries is a date-ascending daily series of reference prices.
type PriceSeries []PricePoint

// Sort orders the series by date ascending.
func (s PriceSeries) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// ForwardFill propagates the most recent known price into later days
// with missing values. Filling is strictly causal: a price observed on
// day D reaches only days after D, and days before the first observation
// stay missing.
func (s PriceSeries) ForwardFill() {
	lastWTI := math.NaN()
	lastBrent := math.NaN()
	for i := range s {
		if math.IsNaN(s[i].WTI) {
			s[i].WTI = lastWTI
		} else {
			lastWTI = s[i].WTI
		}
		if math.IsNaN(s[i].Brent) {
			s[i].Brent = lastBrent
		} else {
			lastBrent = s[i].Brent
		}
	}
}

// At returns the price point for day, or false when the day is absent.
func (s PriceSeries) At(day time.Time) (PricePoint, bool) {
	day = day.Truncate(24 * time.Hour)
	for _, p := range s {
		if p.Date.Equal(day) {
			return p, true
		}
	}
	return PricePoint{}, false
}

// LatestAt returns the most recent price point at or before day, or
// false when no such point exists. This is the live-inference join: a
// feature day inherits the last known price, never a future one.
func (s PriceSeries) LatestAt(day time.Time) (PricePoint, bool) {
	day = day.Truncate(24 * time.Hour)
	var best PricePoint
	found := false
	for _, p := range s {
		if p.Date.After(day) {
			break
		}
		best = p
		found = true
	}
	return best, found
}
