package feed

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"crudecast/internal/domain/gkg"
)

// Wire column offsets within the 27-column tab-separated GKG layout.
const (
	colRecordID  = 0
	colDate      = 1
	colThemes    = 8
	colLocations = 10
	colTone      = 16
	minColumns   = 17
)

// HTTPClient fetches GKG slices over HTTP, rate limited and wrapped in
// a circuit breaker so a feed outage trips fast instead of burning the
// whole day's slice budget on timeouts.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a feed client for baseURL with the given
// request timeout and per-second rate cap.
func NewHTTPClient(baseURL string, timeout time.Duration, perSecond float64) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "gkg_feed",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// FetchSlice downloads and parses the slice published at ts. A 404 maps
// onto ErrNotFound; other failures count against the breaker.
func (c *HTTPClient) FetchSlice(ctx context.Context, ts time.Time) ([]gkg.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s.gkg.csv.zip", c.baseURL, ts.Format("20060102150405"))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", url, err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return ParseSliceZip(result.([]byte))
}

// ParseSliceZip extracts the single CSV member of a slice archive and
// parses its records. Malformed rows are skipped, not fatal.
func ParseSliceZip(data []byte) ([]gkg.Record, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open slice archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("slice archive is empty")
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open slice member: %w", err)
	}
	defer f.Close()

	return parseSliceTSV(f)
}

func parseSliceTSV(r io.Reader) ([]gkg.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records []gkg.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Bad row, keep going.
			continue
		}
		if len(row) < minColumns {
			continue
		}

		ts, err := time.Parse("20060102150405", row[colDate])
		if err != nil {
			continue
		}
		records = append(records, gkg.Record{
			ID:        row[colRecordID],
			Timestamp: ts,
			Themes:    row[colThemes],
			Locations: row[colLocations],
			Tone:      row[colTone],
		})
	}
	return records, nil
}
