package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

const CoinGeckoURL = "https://api.coingecko.com"

// CoinGecko reads the market_chart endpoint. Windows of 2 to 90 days come
// back hourly.
type CoinGecko struct {
	client
	Asset market.Asset
	Hours int
}

var _ Source = (*CoinGecko)(nil)

func NewCoinGecko(asset market.Asset, hours int) *CoinGecko {
	return NewCoinGeckoAt(CoinGeckoURL, asset, hours)
}

func NewCoinGeckoAt(baseURL string, asset market.Asset, hours int) *CoinGecko {
	if hours <= 0 {
		hours = DefaultHours
	}
	return &CoinGecko{client: newClient(baseURL), Asset: asset, Hours: hours}
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

func (c *CoinGecko) Bars(ctx context.Context) (market.Series, error) {
	if c.Asset.CoinGeckoID == "" {
		return nil, errors.New("coingecko: asset has no coingecko id")
	}
	days := (c.Hours + 23) / 24
	params := url.Values{}
	params.Set("vs_currency", strings.ToLower(c.Asset.Quote))
	params.Set("days", strconv.Itoa(days))
	apiURL := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?%s",
		c.baseURL, url.PathEscape(c.Asset.CoinGeckoID), params.Encode())

	var resp marketChartResponse
	if err := c.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	bars := make(market.Series, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		bars = append(bars, market.Bar{Time: time.UnixMilli(int64(p[0])).UTC(), Close: p[1]})
	}
	bars = clean(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("coingecko: %w", ErrNoData)
	}
	return bars, nil
}
