package timeline

import (
	"sort"
	"time"

	"crudecast/internal/domain/gkg"
)

// Row is one aligned (entity, day) observation: the daily aggregate
// fields plus the reference prices for that day.
type Row struct {
	Entity       string    `json:"country"`
	Date         time.Time `json:"date"`
	WTIPrice     float64   `json:"wti_price"`
	BrentPrice   float64   `json:"brent_price"`
	AvgTone      float64   `json:"avg_tone"`
	ToneStd      float64   `json:"tone_std"`
	MentionCount int       `json:"mention_count"`

	ThemeEnergy    int `json:"theme_energy"`
	ThemeConflict  int `json:"theme_conflict"`
	ThemeSanctions int `json:"theme_sanctions"`
	ThemeTrade     int `json:"theme_trade"`
	ThemeEconomy   int `json:"theme_economy"`
	ThemePolicy    int `json:"theme_policy"`
}

// Panel is a set of aligned rows spanning multiple entities and days.
type Panel []Row

// Sort orders the panel by (entity, date) ascending, the order every
// downstream per-entity window operation assumes.
func (p Panel) Sort() {
	sort.Slice(p, func(i, j int) bool {
		if p[i].Entity != p[j].Entity {
			return p[i].Entity < p[j].Entity
		}
		return p[i].Date.Before(p[j].Date)
	})
}

// Entities returns the distinct entity codes in panel order.
func (p Panel) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range p {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			out = append(out, r.Entity)
		}
	}
	return out
}

// JoinMode selects how aggregate days join against the price series.
type JoinMode int

const (
	// JoinInner keeps only days present in both sources. Used for
	// historical backfill where both sides are fully known.
	JoinInner JoinMode = iota
	// JoinForwardFill keeps every aggregate day and attaches the most
	// recent known price at or before it. Used for live inference.
	JoinForwardFill
)

// Align merges per-entity daily aggregates with the price series on the
// day axis. The price series is forward-filled first so that interior
// gaps (weekends, holidays) inherit the prior close.
func Align(aggs []gkg.DailyEntityAggregate, prices PriceSeries, mode JoinMode) Panel {
	prices.Sort()
	prices.ForwardFill()

	var panel Panel
	for _, agg := range aggs {
		var pp PricePoint
		var ok bool
		switch mode {
		case JoinInner:
			pp, ok = prices.At(agg.Date)
		case JoinForwardFill:
			pp, ok = prices.LatestAt(agg.Date)
		}
		if !ok {
			continue
		}
		panel = append(panel, Row{
			Entity:         agg.Entity,
			Date:           agg.Date,
			WTIPrice:       pp.WTI,
			BrentPrice:     pp.Brent,
			AvgTone:        agg.AvgTone,
			ToneStd:        agg.ToneStd,
			MentionCount:   agg.MentionCount,
			ThemeEnergy:    agg.ThemeCount(gkg.CategoryEnergy),
			ThemeConflict:  agg.ThemeCount(gkg.CategoryConflict),
			ThemeSanctions: agg.ThemeCount(gkg.CategorySanctions),
			ThemeTrade:     agg.ThemeCount(gkg.CategoryTrade),
			ThemeEconomy:   agg.ThemeCount(gkg.CategoryEconomy),
			ThemePolicy:    agg.ThemeCount(gkg.CategoryPolicy),
		})
	}

	panel.Sort()
	return panel
}
