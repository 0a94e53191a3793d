package features

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"crudecast/internal/domain/timeline"
)

// Row is one engineered (entity, day) observation. Values holds every
// numeric column by name; NaN marks a feature whose lag or window
// prerequisite precedes the entity's first observation. The schema is
// identical across runs regardless of which upstream fields were
// available.
type Row struct {
	Entity string
	Date   time.Time
	Values map[string]float64
}

// Value returns the named column with missing values mapped to the
// neutral default 0.
func (r *Row) Value(name string) float64 {
	v, ok := r.Values[name]
	if !ok || math.IsNaN(v) {
		return 0
	}
	return v
}

const epsilon = 1e-8

var (
	priceBases    = []string{"wti", "brent"}
	lagSet        = []int{1, 2, 3, 5, 7, 14, 30}
	maWindows     = []int{5, 10, 20, 30}
	sentimentLags = []int{1, 2, 3, 5, 7}
	shortLags     = []int{1, 7}
	anomalyBases  = []string{"theme_energy", "theme_conflict"}
)

// Columns returns the canonical ordered list of model-input columns:
// the raw numeric base columns followed by every engineered feature.
// Target columns (containing "next") and meta columns are excluded.
// This is also the last-resort default feature contract.
func Columns() []string {
	cols := []string{
		"wti_price", "brent_price",
		"avg_sentiment", "tone_std", "event_count",
		"theme_energy", "theme_conflict", "theme_sanctions",
		"theme_trade", "theme_economy", "theme_policy",
	}
	for _, base := range priceBases {
		cols = append(cols, base+"_return", base+"_delta")
	}
	for _, base := range priceBases {
		for _, lag := range lagSet {
			cols = append(cols,
				fmt.Sprintf("%s_delta_lag%d", base, lag),
				fmt.Sprintf("%s_return_lag%d", base, lag))
		}
	}
	for _, base := range priceBases {
		for _, w := range maWindows {
			cols = append(cols,
				fmt.Sprintf("%s_return_ma%d", base, w),
				fmt.Sprintf("%s_return_std%d", base, w),
				fmt.Sprintf("%s_delta_ma%d", base, w))
		}
	}
	for _, base := range priceBases {
		cols = append(cols, base+"_momentum_5_20", base+"_momentum_10_30", base+"_rsi")
	}
	for _, lag := range sentimentLags {
		cols = append(cols, fmt.Sprintf("sentiment_lag%d", lag))
	}
	for _, lag := range shortLags {
		cols = append(cols, fmt.Sprintf("tone_std_lag%d", lag))
	}
	for _, lag := range shortLags {
		cols = append(cols, fmt.Sprintf("event_count_lag%d", lag))
	}
	cols = append(cols, "spread_wti_brent", "correlation_20d", "volatility_ratio")
	for _, base := range anomalyBases {
		cols = append(cols, base+"_change", base+"_zscore", base+"_spike")
	}
	return cols
}

// IsTargetColumn reports whether name is a training target rather than
// a model input.
func IsTargetColumn(name string) bool {
	return strings.Contains(name, "next") || strings.Contains(name, "surprise")
}

// DynamicColumns derives a feature list from an engineered row itself:
// every numeric column except training targets, sorted for stable
// ordering. Last-resort input for contract resolution when the bundle
// declares nothing usable.
func DynamicColumns(row Row) []string {
	cols := make([]string, 0, len(row.Values))
	for name := range row.Values {
		if IsTargetColumn(name) {
			continue
		}
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// Engineer derives the full feature panel from an aligned panel. Every
// window and lag operation runs independently per entity over that
// entity's day-ordered history; no feature mixes observations across
// entities.
func Engineer(panel timeline.Panel) []Row {
	panel.Sort()

	out := make([]Row, 0, len(panel))
	start := 0
	for i := 1; i <= len(panel); i++ {
		if i == len(panel) || panel[i].Entity != panel[start].Entity {
			out = append(out, engineerEntity(panel[start:i])...)
			start = i
		}
	}
	return out
}

func engineerEntity(rows timeline.Panel) []Row {
	n := len(rows)
	cols := make(map[string][]float64)

	base := func(name string, get func(timeline.Row) float64) []float64 {
		xs := make([]float64, n)
		for i, r := range rows {
			xs[i] = get(r)
		}
		cols[name] = xs
		return xs
	}

	wti := base("wti_price", func(r timeline.Row) float64 { return r.WTIPrice })
	brent := base("brent_price", func(r timeline.Row) float64 { return r.BrentPrice })
	sentiment := base("avg_sentiment", func(r timeline.Row) float64 { return r.AvgTone })
	toneStd := base("tone_std", func(r timeline.Row) float64 { return r.ToneStd })
	eventCount := base("event_count", func(r timeline.Row) float64 { return float64(r.MentionCount) })
	base("theme_sanctions", func(r timeline.Row) float64 { return float64(r.ThemeSanctions) })
	base("theme_trade", func(r timeline.Row) float64 { return float64(r.ThemeTrade) })
	base("theme_economy", func(r timeline.Row) float64 { return float64(r.ThemeEconomy) })
	base("theme_policy", func(r timeline.Row) float64 { return float64(r.ThemePolicy) })
	themeEnergy := base("theme_energy", func(r timeline.Row) float64 { return float64(r.ThemeEnergy) })
	themeConflict := base("theme_conflict", func(r timeline.Row) float64 { return float64(r.ThemeConflict) })

	prices := map[string][]float64{"wti": wti, "brent": brent}

	for _, pb := range priceBases {
		px := prices[pb]
		ret := PctChange(px)
		delta := Diff(px)
		cols[pb+"_return"] = ret
		cols[pb+"_delta"] = delta

		for _, lag := range lagSet {
			cols[fmt.Sprintf("%s_delta_lag%d", pb, lag)] = Shift(delta, lag)
			cols[fmt.Sprintf("%s_return_lag%d", pb, lag)] = Shift(ret, lag)
		}
		for _, w := range maWindows {
			cols[fmt.Sprintf("%s_return_ma%d", pb, w)] = RollingMean(ret, w, 1)
			cols[fmt.Sprintf("%s_return_std%d", pb, w)] = RollingStd(ret, w, 1)
			cols[fmt.Sprintf("%s_delta_ma%d", pb, w)] = RollingMean(delta, w, 1)
		}
		cols[pb+"_momentum_5_20"] = sub(cols[pb+"_return_ma5"], cols[pb+"_return_ma20"])
		cols[pb+"_momentum_10_30"] = sub(cols[pb+"_return_ma10"], cols[pb+"_return_ma30"])
		cols[pb+"_rsi"] = RSI(px, rsiPeriod)
	}

	for _, lag := range sentimentLags {
		cols[fmt.Sprintf("sentiment_lag%d", lag)] = Shift(sentiment, lag)
	}
	for _, lag := range shortLags {
		cols[fmt.Sprintf("tone_std_lag%d", lag)] = Shift(toneStd, lag)
		cols[fmt.Sprintf("event_count_lag%d", lag)] = Shift(eventCount, lag)
	}

	// Cross-asset features, defined whenever both series carry values.
	cols["spread_wti_brent"] = sub(wti, brent)
	cols["correlation_20d"] = RollingCorr(cols["wti_return"], cols["brent_return"], 20, 10)
	wtiVol := RollingStd(cols["wti_return"], 20, 10)
	brentVol := RollingStd(cols["brent_return"], 20, 10)
	ratio := make([]float64, n)
	for i := range ratio {
		if math.IsNaN(wtiVol[i]) || math.IsNaN(brentVol[i]) {
			ratio[i] = math.NaN()
			continue
		}
		ratio[i] = wtiVol[i] / (brentVol[i] + epsilon)
	}
	cols["volatility_ratio"] = ratio

	for _, ab := range anomalyBases {
		var src []float64
		if ab == "theme_energy" {
			src = themeEnergy
		} else {
			src = themeConflict
		}
		cols[ab+"_change"] = Diff(src)
		mean := RollingMean(src, 20, 5)
		std := RollingStd(src, 20, 5)
		zscore := make([]float64, n)
		spike := make([]float64, n)
		for i := range zscore {
			if math.IsNaN(mean[i]) || math.IsNaN(std[i]) {
				zscore[i] = math.NaN()
				spike[i] = 0
				continue
			}
			zscore[i] = (src[i] - mean[i]) / (std[i] + epsilon)
			if zscore[i] > 2 {
				spike[i] = 1
			}
		}
		cols[ab+"_zscore"] = zscore
		cols[ab+"_spike"] = spike
	}

	// Next-period targets kept for the shared training path; the
	// inference contract filters them out by name.
	cols["wti_delta_next"] = Shift(cols["wti_delta"], -1)
	cols["wti_return_next"] = Shift(cols["wti_return"], -1)

	out := make([]Row, n)
	for i := range rows {
		vals := make(map[string]float64, len(cols))
		for name, series := range cols {
			vals[name] = series[i]
		}
		out[i] = Row{Entity: rows[i].Entity, Date: rows[i].Date, Values: vals}
	}
	return out
}

func sub(xs, ys []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		out[i] = xs[i] - ys[i]
	}
	return out
}

// LatestDate returns the most recent feature date in the panel, or
// false for an empty panel.
func LatestDate(rows []Row) (time.Time, bool) {
	var latest time.Time
	for _, r := range rows {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, !latest.IsZero()
}

// FilterDate returns the rows whose date equals day.
func FilterDate(rows []Row, day time.Time) []Row {
	var out []Row
	for _, r := range rows {
		if r.Date.Equal(day) {
			out = append(out, r)
		}
	}
	return out
}
