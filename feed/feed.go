// Package feed fetches hourly price history from public REST providers or
// from a local CSV file.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// DefaultHours is the history window requested on every tick.
const DefaultHours = 168

var ErrNoData = errors.New("provider returned no bars")

// Source returns price history up to the latest bar. It satisfies
// engine.PriceSource.
type Source interface {
	Bars(ctx context.Context) (market.Series, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string) client {
	return client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c client) getJSON(ctx context.Context, apiURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// clean sorts bars by time, drops non-positive closes and keeps the last
// bar for any repeated timestamp.
func clean(bars market.Series) market.Series {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
