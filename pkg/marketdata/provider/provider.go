package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

type OnDownloadProgress = func(current float64, total float64, message string)

// Provider returns the full daily history a market data source retains for a ticker.
type Provider interface {
	// History returns every daily bar on record for ticker, oldest first, in the
	// order the source returns them. An instrument without data yields an empty
	// slice and no error.
	// example:
	// History(ctx, "AAPL", onProgress)
	History(ctx context.Context, ticker string, onProgress OnDownloadProgress) ([]types.MarketData, error)
}

// Options configures the concrete provider built by NewMarketDataProvider.
type Options struct {
	// PolygonApiKey is required by the polygon provider.
	PolygonApiKey string
	// YahooBaseURL overrides the Yahoo chart API host.
	YahooBaseURL string
	// Timeout bounds each HTTP request. Zero leaves the client default.
	Timeout time.Duration
	// AutoAdjust applies split and dividend adjustment to Yahoo prices.
	AutoAdjust bool
	Logger     *logger.Logger
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, opts Options) (Provider, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(YahooConfig{
			BaseURL:    opts.YahooBaseURL,
			Timeout:    opts.Timeout,
			AutoAdjust: opts.AutoAdjust,
		}, opts.Logger), nil
	case ProviderPolygon:
		return NewPolygonClient(opts.PolygonApiKey, opts.Logger)
	case ProviderBinance:
		return NewBinanceClient(opts.Logger)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

// reportProgress calls onProgress when one is set.
func reportProgress(onProgress OnDownloadProgress, current, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
