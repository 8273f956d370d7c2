package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
)

const (
	binanceDailyInterval = "1d"
	binancePageLimit     = 1000
)

// BinanceKlinesService is the subset of the binance klines service used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client used here.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (s *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	s.service.Limit(limit)

	return s
}

func (s *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	now       func() time.Time
	logger    *logger.Logger
}

// NewBinanceClient creates a Binance provider. Public market data needs no credentials.
func NewBinanceClient(log *logger.Logger) (Provider, error) {
	client := NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient("", "")})
	if log != nil {
		client.logger = log
	}

	return client, nil
}

// NewBinanceClientWithAPI creates a Binance provider with a custom API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		now:       time.Now,
		logger:    logger.NewNopLogger(),
	}
}

// History pages through daily klines from the first listed day until now.
func (c *BinanceClient) History(ctx context.Context, ticker string, onProgress OnDownloadProgress) ([]types.MarketData, error) {
	endTimeMillis := c.now().UnixMilli()
	currentStartTime := int64(0)
	bars := make([]types.MarketData, 0)

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(binanceDailyInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Limit(binancePageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch klines from Binance: %w", err)
		}

		page, err := klinesToMarketData(ticker, klines)
		if err != nil {
			return nil, err
		}

		bars = append(bars, page...)

		if len(klines) > 0 {
			reportProgress(onProgress, float64(klines[len(klines)-1].CloseTime), float64(endTimeMillis),
				fmt.Sprintf("Downloading %s klines from Binance", ticker))
		}

		// A short page is the last one.
		if len(klines) < binancePageLimit {
			break
		}

		// Next page starts right after the last close to avoid duplicates.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	c.logger.Debug("Fetched binance history", zap.String("ticker", ticker), zap.Int("bars", len(bars)))

	return bars, nil
}

// klinesToMarketData converts Binance klines, which carry prices as strings.
func klinesToMarketData(ticker string, klines []*binance.Kline) ([]types.MarketData, error) {
	bars := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse kline value %q at %d: %w", raw, k.OpenTime, err)
			}

			values[i] = v
		}

		bars = append(bars, types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
