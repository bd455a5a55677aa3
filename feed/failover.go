package feed

import (
	"context"
	"errors"
	"log"

	"github.com/rustyeddy/papertrader/market"
)

// Failover asks Primary first and falls back to Secondary on any error.
type Failover struct {
	Primary   Source
	Secondary Source
}

var _ Source = Failover{}

// NewDefault is CryptoCompare backed by CoinGecko.
func NewDefault(asset market.Asset, hours int) Failover {
	return Failover{
		Primary:   NewCryptoCompare(asset, hours),
		Secondary: NewCoinGecko(asset, hours),
	}
}

func (f Failover) Bars(ctx context.Context) (market.Series, error) {
	bars, err := f.Primary.Bars(ctx)
	if err == nil {
		return bars, nil
	}
	if f.Secondary == nil || ctx.Err() != nil {
		return nil, err
	}
	log.Printf("[feed] primary failed, trying secondary: %v", err)

	bars, err2 := f.Secondary.Bars(ctx)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return bars, nil
}
