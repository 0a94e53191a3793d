package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"crudecast/internal/domain/timeline"
)

// Fetcher is the price-series collaborator: a daily series of one or
// two correlated reference prices over a date range.
type Fetcher interface {
	FetchDaily(ctx context.Context, from, to time.Time) (timeline.PriceSeries, error)
}

// Client fetches WTI and Brent daily series from an Alpha Vantage style
// commodity endpoint. The Brent leg is optional: its failure degrades
// the series to WTI-only with a warning.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a price client. The free API tier caps at 5 calls
// per minute, hence the conservative limiter.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(15*time.Second), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "price_feed",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

type commodityResponse struct {
	Data []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
}

// FetchDaily returns the merged WTI/Brent series restricted to
// [from, to], date ascending.
func (c *Client) FetchDaily(ctx context.Context, from, to time.Time) (timeline.PriceSeries, error) {
	wti, err := c.fetchCommodity(ctx, "WTI")
	if err != nil {
		return nil, fmt.Errorf("fetch WTI series: %w", err)
	}

	brent, err := c.fetchCommodity(ctx, "BRENT")
	if err != nil {
		log.Warn().Err(err).Msg("Brent series unavailable, continuing with WTI only")
		brent = nil
	}

	byDay := make(map[string]*timeline.PricePoint)
	var order []string
	for day, v := range wti {
		byDay[day] = &timeline.PricePoint{WTI: v, Brent: math.NaN()}
		order = append(order, day)
	}
	for day, v := range brent {
		if pp, ok := byDay[day]; ok {
			pp.Brent = v
		}
	}

	var series timeline.PriceSeries
	for _, day := range order {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		pp := byDay[day]
		series = append(series, timeline.PricePoint{Date: d, WTI: pp.WTI, Brent: pp.Brent})
	}
	series.Sort()

	if len(series) == 0 {
		return nil, fmt.Errorf("no price data between %s and %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return series, nil
}

func (c *Client) fetchCommodity(ctx context.Context, function string) (map[string]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("interval", "daily")
	q.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + q.Encode()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", function, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", function, resp.StatusCode)
		}

		var payload commodityResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", function, err)
		}
		if len(payload.Data) == 0 {
			return nil, fmt.Errorf("%s response carries no data", function)
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload := result.(commodityResponse)
	out := make(map[string]float64, len(payload.Data))
	for _, item := range payload.Data {
		v, err := strconv.ParseFloat(item.Value, 64)
		if err != nil {
			// Non-numeric placeholders ('.') appear on market holidays.
			continue
		}
		out[item.Date] = v
	}
	return out, nil
}
