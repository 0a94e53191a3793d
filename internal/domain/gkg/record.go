package gkg

import (
	"strconv"
	"strings"
	"time"
)

// Record is one raw GKG row as delivered by the feed collaborator.
// Only the fields the normalizer consumes are retained; everything else
// in the 27-column wire format is dropped at parse time.
type Record struct {
	ID        string
	Timestamp time.Time
	Locations string
	Tone      string
	Themes    string
}

// Tone carries the parsed tone payload. Position 0 of the comma list is
// the document tone; position 3 is the polarity used as a secondary
// dispersion metric.
type Tone struct {
	Value    float64
	Positive float64
	Negative float64
	Polarity float64
}

// ParseTone parses the comma-separated tone payload. A malformed payload
// yields the zero Tone, never an error: a single bad record must not
// abort the surrounding batch.
func ParseTone(s string) Tone {
	var t Tone
	if s == "" {
		return t
	}
	parts := strings.Split(s, ",")
	fields := []*float64{&t.Value, &t.Positive, &t.Negative, &t.Polarity}
	for i, dst := range fields {
		if i >= len(parts) {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Tone{}
		}
		*dst = v
	}
	return t
}

// ParseLocations extracts two-letter country codes from a GKG locations
// field. Entries are ';'-separated, fields within an entry '#'-separated,
// and field 2 is the country code. Malformed entries contribute nothing.
func ParseLocations(s string) []string {
	if s == "" {
		return nil
	}
	var codes []string
	for _, entry := range strings.Split(s, ";") {
		parts := strings.Split(entry, "#")
		if len(parts) < 3 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(parts[2]))
		if len(code) == 2 {
			codes = append(codes, code)
		}
	}
	return codes
}

// SplitThemes returns up to max theme tags from the ';'-separated theme
// field. The cap bounds per-record classification cost.
func SplitThemes(s string, max int) []string {
	if s == "" {
		return nil
	}
	var themes []string
	for _, t := range strings.Split(s, ";") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		themes = append(themes, t)
		if len(themes) >= max {
			break
		}
	}
	return themes
}
