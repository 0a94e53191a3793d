package gkg

import (
	"math"
	"sort"
	"time"
)

// DailyEntityAggregate is one normalized row per (entity, day): tone
// statistics, mention count, and category hit sums for every qualifying
// record that referenced the entity.
type DailyEntityAggregate struct {
	Entity       string    `json:"country"`
	Date         time.Time `json:"date"`
	AvgTone      float64   `json:"avg_tone"`
	ToneStd      float64   `json:"tone_std"`
	MentionCount int       `json:"mention_count"`
	ThemeCounts  map[Category]int `json:"theme_counts"`
}

// ThemeCount returns the hit count for cat, zero when absent.
func (a *DailyEntityAggregate) ThemeCount(cat Category) int {
	if a.ThemeCounts == nil {
		return 0
	}
	return a.ThemeCounts[cat]
}

// Normalizer turns a raw batch of records for a single day into
// per-entity daily aggregates.
type Normalizer struct {
	maxThemes int
}

// NewNormalizer creates a normalizer that considers at most maxThemes
// theme tags per record.
func NewNormalizer(maxThemes int) *Normalizer {
	if maxThemes <= 0 {
		maxThemes = 10
	}
	return &Normalizer{maxThemes: maxThemes}
}

type entityAccumulator struct {
	tones  []float64
	themes map[Category]int
}

// Normalize aggregates records for day into DailyEntityAggregate rows,
// sorted by entity code. Records with no parsable location contribute
// nothing; malformed tone payloads contribute zero tone. A record that
// mentions an entity several times counts once per location reference.
func (n *Normalizer) Normalize(day time.Time, records []Record) []DailyEntityAggregate {
	day = day.Truncate(24 * time.Hour)

	byEntity := make(map[string]*entityAccumulator)
	for _, rec := range records {
		entities := ParseLocations(rec.Locations)
		if len(entities) == 0 {
			continue
		}

		tone := ParseTone(rec.Tone)

		themeHits := make(map[Category]int)
		for _, theme := range SplitThemes(rec.Themes, n.maxThemes) {
			cat := ClassifyTheme(theme)
			if cat != CategoryOther {
				themeHits[cat]++
			}
		}

		for _, entity := range entities {
			acc := byEntity[entity]
			if acc == nil {
				acc = &entityAccumulator{themes: make(map[Category]int)}
				byEntity[entity] = acc
			}
			acc.tones = append(acc.tones, tone.Value)
			for cat, hits := range themeHits {
				acc.themes[cat] += hits
			}
		}
	}

	aggs := make([]DailyEntityAggregate, 0, len(byEntity))
	for entity, acc := range byEntity {
		mean, std := meanStd(acc.tones)
		aggs = append(aggs, DailyEntityAggregate{
			Entity:       entity,
			Date:         day,
			AvgTone:      mean,
			ToneStd:      std,
			MentionCount: len(acc.tones),
			ThemeCounts:  acc.themes,
		})
	}

	sort.Slice(aggs, func(i, j int) bool { return aggs[i].Entity < aggs[j].Entity })
	return aggs
}

// meanStd returns the mean and population standard deviation. A single
// observation yields std 0, not NaN.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	if len(xs) == 1 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
