package app

import (
	"fmt"
	"math"
	"time"

	"crudecast/internal/blob"
	"crudecast/internal/domain/timeline"
)

// Aligned panels travel as one JSON object per (entity, day) row.
// NaN is not representable in JSON, so a missing secondary price is
// encoded as null and restored to NaN on read.
type alignedRecord struct {
	Country        string   `json:"country"`
	Date           string   `json:"date"`
	WTIPrice       float64  `json:"wti_price"`
	BrentPrice     *float64 `json:"brent_price"`
	AvgTone        float64  `json:"avg_tone"`
	ToneStd        float64  `json:"tone_std"`
	MentionCount   int      `json:"mention_count"`
	ThemeEnergy    int      `json:"theme_energy"`
	ThemeConflict  int      `json:"theme_conflict"`
	ThemeSanctions int      `json:"theme_sanctions"`
	ThemeTrade     int      `json:"theme_trade"`
	ThemeEconomy   int      `json:"theme_economy"`
	ThemePolicy    int      `json:"theme_policy"`
}

// writePanelArtifact stores the aligned panel for day.
func writePanelArtifact(store blob.Store, processedPath string, day time.Time, panel timeline.Panel) (string, error) {
	records := make([]alignedRecord, len(panel))
	for i, row := range panel {
		rec := alignedRecord{
			Country:        row.Entity,
			Date:           row.Date.Format("2006-01-02"),
			WTIPrice:       row.WTIPrice,
			AvgTone:        row.AvgTone,
			ToneStd:        row.ToneStd,
			MentionCount:   row.MentionCount,
			ThemeEnergy:    row.ThemeEnergy,
			ThemeConflict:  row.ThemeConflict,
			ThemeSanctions: row.ThemeSanctions,
			ThemeTrade:     row.ThemeTrade,
			ThemeEconomy:   row.ThemeEconomy,
			ThemePolicy:    row.ThemePolicy,
		}
		if !math.IsNaN(row.BrentPrice) {
			brent := row.BrentPrice
			rec.BrentPrice = &brent
		}
		records[i] = rec
	}

	path := blob.AlignedArtifactPath(processedPath, day)
	if err := blob.PutJSONGz(store, path, records); err != nil {
		return "", err
	}
	return path, nil
}

// readPanelArtifact loads the aligned panel stored at path.
func readPanelArtifact(store blob.Store, path string) (timeline.Panel, error) {
	var records []alignedRecord
	if err := blob.GetJSONGz(store, path, &records); err != nil {
		return nil, err
	}

	panel := make(timeline.Panel, len(records))
	for i, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return nil, fmt.Errorf("artifact %s row %d: bad date %q: %w", path, i, rec.Date, err)
		}
		row := timeline.Row{
			Entity:         rec.Country,
			Date:           date,
			WTIPrice:       rec.WTIPrice,
			BrentPrice:     math.NaN(),
			AvgTone:        rec.AvgTone,
			ToneStd:        rec.ToneStd,
			MentionCount:   rec.MentionCount,
			ThemeEnergy:    rec.ThemeEnergy,
			ThemeConflict:  rec.ThemeConflict,
			ThemeSanctions: rec.ThemeSanctions,
			ThemeTrade:     rec.ThemeTrade,
			ThemeEconomy:   rec.ThemeEconomy,
			ThemePolicy:    rec.ThemePolicy,
		}
		if rec.BrentPrice != nil {
			row.BrentPrice = *rec.BrentPrice
		}
		panel[i] = row
	}
	panel.Sort()
	return panel, nil
}
