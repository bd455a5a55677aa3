package market

import "strings"

// Asset identifies the single traded pair.
type Asset struct {
	Base  string `json:"base" yaml:"base"`   // BTC
	Quote string `json:"quote" yaml:"quote"` // USD

	// CoinGeckoID is the provider-specific id used by the secondary feed.
	CoinGeckoID string `json:"coingecko_id,omitempty" yaml:"coingecko_id,omitempty"`
}

var Assets = map[string]Asset{
	"BTC_USD": {Base: "BTC", Quote: "USD", CoinGeckoID: "bitcoin"},
	"ETH_USD": {Base: "ETH", Quote: "USD", CoinGeckoID: "ethereum"},
	"SOL_USD": {Base: "SOL", Quote: "USD", CoinGeckoID: "solana"},
}

// Name returns the BASE_QUOTE form used as the map key.
func (a Asset) Name() string {
	return strings.ToUpper(a.Base) + "_" + strings.ToUpper(a.Quote)
}

// LookupAsset accepts BTC_USD, BTC/USD or btc-usd.
func LookupAsset(name string) (Asset, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.NewReplacer("/", "_", "-", "_").Replace(n)
	a, ok := Assets[n]
	return a, ok
}
