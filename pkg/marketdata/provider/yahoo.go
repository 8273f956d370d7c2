package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
	"github.com/rxtech-lab/ticker-history/pkg/errors"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

const (
	yahooChartPath = "/v8/finance/chart/{ticker}"
	// Yahoo rejects requests without a browser-like agent.
	yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	yahooNotFound  = "Not Found"
)

// YahooConfig configures the Yahoo Finance chart client.
type YahooConfig struct {
	BaseURL    string
	Timeout    time.Duration
	AutoAdjust bool
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote    []yahooQuote `json:"quote"`
		AdjClose []struct {
			AdjClose []optional.Option[float64] `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// yahooQuote holds column-oriented values. Yahoo sends null for sessions
// without trades.
type yahooQuote struct {
	Open   []optional.Option[float64] `json:"open"`
	High   []optional.Option[float64] `json:"high"`
	Low    []optional.Option[float64] `json:"low"`
	Close  []optional.Option[float64] `json:"close"`
	Volume []optional.Option[float64] `json:"volume"`
}

// YahooClient fetches daily history from the Yahoo Finance chart API.
type YahooClient struct {
	client     *resty.Client
	autoAdjust bool
	logger     *logger.Logger
}

// NewYahooClient creates a Yahoo Finance provider.
func NewYahooClient(config YahooConfig, log *logger.Logger) *YahooClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", yahooUserAgent).
		SetHeader("Accept", "application/json")

	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	return NewYahooClientWithResty(client, config.AutoAdjust, log)
}

// NewYahooClientWithResty creates a Yahoo provider on top of an existing resty client.
func NewYahooClientWithResty(client *resty.Client, autoAdjust bool, log *logger.Logger) *YahooClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &YahooClient{
		client:     client,
		autoAdjust: autoAdjust,
		logger:     log,
	}
}

// History requests the maximum range of daily bars for ticker.
func (c *YahooClient) History(ctx context.Context, ticker string, onProgress OnDownloadProgress) ([]types.MarketData, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"range":                "max",
			"interval":             "1d",
			"events":               "div,split",
			"includeAdjustedClose": "true",
		}).
		Get(yahooChartPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "yahoo request for %s failed", ticker)
	}

	var body yahooChartResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		if resp.StatusCode() >= http.StatusBadRequest {
			return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo returned HTTP %d for %s", resp.StatusCode(), ticker)
		}

		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to decode yahoo chart for %s", ticker)
	}

	if chartErr := body.Chart.Error; chartErr != nil {
		if chartErr.Code == yahooNotFound {
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "yahoo has no data for %s: %s", ticker, chartErr.Description)
		}

		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo error for %s: %s: %s", ticker, chartErr.Code, chartErr.Description)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo returned HTTP %d for %s", resp.StatusCode(), ticker)
	}

	// A chart without results is an instrument with no history.
	if len(body.Chart.Result) == 0 {
		reportProgress(onProgress, 1, 1, fmt.Sprintf("Downloaded %s from Yahoo Finance", ticker))

		return []types.MarketData{}, nil
	}

	bars := c.toMarketData(ticker, body.Chart.Result[0])

	reportProgress(onProgress, 1, 1, fmt.Sprintf("Downloaded %s from Yahoo Finance", ticker))
	c.logger.Debug("Fetched yahoo history",
		zap.String("ticker", ticker),
		zap.Int("bars", len(bars)),
		zap.Bool("auto_adjust", c.autoAdjust))

	return bars, nil
}

// toMarketData turns Yahoo's column arrays into bars dated at midnight in the
// exchange timezone. Rows without a close are skipped.
func (c *YahooClient) toMarketData(ticker string, result yahooChartResult) []types.MarketData {
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []types.MarketData{}
	}

	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	quote := result.Indicators.Quote[0]

	var adjClose []optional.Option[float64]
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]types.MarketData, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		closePrice, ok := valueAt(quote.Close, i)
		if !ok {
			continue
		}

		open := valueOr(quote.Open, i, closePrice)
		high := valueOr(quote.High, i, closePrice)
		low := valueOr(quote.Low, i, closePrice)
		volume := valueOr(quote.Volume, i, 0)

		if c.autoAdjust {
			if adj, ok := valueAt(adjClose, i); ok && closePrice != 0 {
				ratio := adj / closePrice
				open *= ratio
				high *= ratio
				low *= ratio
				closePrice = adj
			}
		}

		t := time.Unix(ts, 0).In(loc)

		bars = append(bars, types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return bars
}

func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}

	return time.FixedZone("", gmtOffset)
}

func valueAt(values []optional.Option[float64], i int) (float64, bool) {
	if i >= len(values) || values[i].IsNone() {
		return 0, false
	}

	return values[i].Unwrap(), true
}

func valueOr(values []optional.Option[float64], i int, fallback float64) float64 {
	if v, ok := valueAt(values, i); ok {
		return v
	}

	return fallback
}
