package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
)

// polygonPageLimit is the maximum number of aggregates Polygon returns per page.
const polygonPageLimit = 50000

// PolygonAggsIterator is the subset of the polygon aggregate iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIAdapter struct {
	client *polygon.Client
}

func (a *polygonAPIAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	location  *time.Location
	now       func() time.Time
	logger    *logger.Logger
}

func NewPolygonClient(apiKey string, log *logger.Logger) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client := NewPolygonClientWithAPI(&polygonAPIAdapter{client: polygon.New(apiKey)})
	if log != nil {
		client.logger = log
	}

	return client, nil
}

// NewPolygonClientWithAPI creates a Polygon provider with a custom API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	// US equities trade on New York time; daily aggregates start at midnight there.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}

	return &PolygonClient{
		apiClient: apiClient,
		location:  loc,
		now:       time.Now,
		logger:    logger.NewNopLogger(),
	}
}

// History lists adjusted daily aggregates from the Unix epoch until now.
func (c *PolygonClient) History(ctx context.Context, ticker string, onProgress OnDownloadProgress) ([]types.MarketData, error) {
	startDate := time.Unix(0, 0).UTC()
	endDate := c.now()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(polygonPageLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	totalDays := endDate.Sub(startDate).Hours() / 24
	bars := make([]types.MarketData, 0)

	for iter.Next() {
		agg := iter.Item()
		barTime := time.Time(agg.Timestamp).In(c.location)

		bars = append(bars, types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   barTime,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})

		if len(bars)%1000 == 0 {
			reportProgress(onProgress, barTime.Sub(startDate).Hours()/24, totalDays, fmt.Sprintf("Downloading %s", ticker))
		}
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("error iterating polygon aggregates: %w", iter.Err())
	}

	reportProgress(onProgress, totalDays, totalDays, fmt.Sprintf("Downloaded %s", ticker))
	c.logger.Debug("Fetched polygon history", zap.String("ticker", ticker), zap.Int("bars", len(bars)))

	return bars, nil
}
