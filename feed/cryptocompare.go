package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

const CryptoCompareURL = "https://min-api.cryptocompare.com"

// CryptoCompare reads hourly bars from the histohour endpoint.
type CryptoCompare struct {
	client
	Asset market.Asset
	Hours int
}

var _ Source = (*CryptoCompare)(nil)

func NewCryptoCompare(asset market.Asset, hours int) *CryptoCompare {
	return NewCryptoCompareAt(CryptoCompareURL, asset, hours)
}

// NewCryptoCompareAt points the client at another base URL.
func NewCryptoCompareAt(baseURL string, asset market.Asset, hours int) *CryptoCompare {
	if hours <= 0 {
		hours = DefaultHours
	}
	return &CryptoCompare{client: newClient(baseURL), Asset: asset, Hours: hours}
}

type histohourResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

func (c *CryptoCompare) Bars(ctx context.Context) (market.Series, error) {
	params := url.Values{}
	params.Set("fsym", c.Asset.Base)
	params.Set("tsym", c.Asset.Quote)
	params.Set("limit", strconv.Itoa(c.Hours))
	apiURL := fmt.Sprintf("%s/data/v2/histohour?%s", c.baseURL, params.Encode())

	var resp histohourResponse
	if err := c.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, fmt.Errorf("cryptocompare: %w", err)
	}
	if resp.Response == "Error" {
		return nil, fmt.Errorf("cryptocompare: %s", resp.Message)
	}

	bars := make(market.Series, 0, len(resp.Data.Data))
	for _, d := range resp.Data.Data {
		bars = append(bars, market.Bar{Time: time.Unix(d.Time, 0).UTC(), Close: d.Close})
	}
	bars = clean(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("cryptocompare: %w", ErrNoData)
	}
	return bars, nil
}
