package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
	"github.com/rxtech-lab/ticker-history/pkg/errors"
	"github.com/rxtech-lab/ticker-history/pkg/marketdata/provider"
	"github.com/rxtech-lab/ticker-history/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// WriterType defines the output file format.
type WriterType string

const (
	WriterCSV     WriterType = "csv"
	WriterParquet WriterType = "parquet"
)

// DefaultCurrency is the currency label stamped on rows when none is given.
const DefaultCurrency = "USD"

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=yahoo polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=csv parquet"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
	// YahooBaseURL overrides the Yahoo chart API host. Empty uses the public endpoint.
	YahooBaseURL string `validate:"omitempty,url"`
	// Timeout bounds each HTTP request to the provider. Zero means no timeout.
	Timeout time.Duration `validate:"min=0"`
	// MaxRetries is the number of extra History attempts after a failure.
	MaxRetries int `validate:"min=0"`
	// AutoAdjust applies split and dividend adjustment (Yahoo only).
	AutoAdjust bool
}

// ExportParams holds the parameters of a single export.
type ExportParams struct {
	Ticker     string `validate:"required"`
	OutputPath string `validate:"required"`
	// NoHeader suppresses the header line.
	NoHeader bool
	Currency string       `validate:"required"`
	Filler   types.Filler `validate:"omitempty,oneof=empty zero"`
}

// ExportResult describes a finished export.
type ExportResult struct {
	OutputPath string
	Rows       int
}

type writerFactory func(writerType WriterType, params ExportParams) (writer.RecordWriter, error)

// Client fetches a ticker's history from a provider and writes it through a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	newWriter  writerFactory
	logger     *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(provider.ProviderType(config.ProviderType), provider.Options{
		PolygonApiKey: config.PolygonApiKey,
		YahooBaseURL:  config.YahooBaseURL,
		Timeout:       config.Timeout,
		AutoAdjust:    config.AutoAdjust,
		Logger:        log,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidProvider, err, "failed to create %s provider", config.ProviderType)
	}

	return newClient(config, provider.WithRetry(marketProvider, config.MaxRetries, log), validate, log, onProgress), nil
}

// NewClientWithProvider creates a client around an existing provider. The
// provider's retry behaviour is left to the caller.
func NewClientWithProvider(config ClientConfig, p provider.Provider, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "provider is required")
	}

	validate := validator.New()
	if err := validate.StructExcept(config, "PolygonApiKey"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	return newClient(config, p, validate, log, onProgress), nil
}

func newClient(config ClientConfig, p provider.Provider, validate *validator.Validate, log *logger.Logger, onProgress provider.OnDownloadProgress) *Client {
	c := &Client{
		provider:   p,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		logger:     log,
	}
	c.newWriter = c.setupWriter

	return c
}

// Export fetches the full daily history of params.Ticker and writes it to
// params.OutputPath. The output file is created or truncated. An instrument
// without history produces a file with no data rows.
func (c *Client) Export(ctx context.Context, params ExportParams) (ExportResult, error) {
	if params.Filler == "" {
		params.Filler = types.FillerEmpty
	}

	if err := c.validate.Struct(params); err != nil {
		return ExportResult{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid export parameters", err)
	}

	log := c.logger.With(
		zap.String("ticker", params.Ticker),
		zap.String("provider", string(c.config.ProviderType)),
		zap.String("format", string(c.config.WriterType)),
	)

	log.Info("Fetching price history")

	bars, err := c.provider.History(ctx, params.Ticker, c.onProgress)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			return ExportResult{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no history for %s", params.Ticker)
		}

		return ExportResult{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch history for %s", params.Ticker)
	}

	records := BuildRecords(bars, params.Currency, params.Filler)
	log.Debug("Fetched price history", zap.Int("bars", len(bars)))

	recordWriter, err := c.newWriter(c.config.WriterType, params)
	if err != nil {
		return ExportResult{}, err
	}

	if err := recordWriter.Initialize(); err != nil {
		return ExportResult{}, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to initialize writer at %s", params.OutputPath)
	}

	defer func() {
		if err := recordWriter.Close(); err != nil {
			log.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	for _, record := range records {
		if err := recordWriter.Write(record); err != nil {
			return ExportResult{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write record", err)
		}
	}

	outputPath, err := recordWriter.Finalize()
	if err != nil {
		return ExportResult{}, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write %s", params.OutputPath)
	}

	log.Info("Price history exported",
		zap.String("output_path", outputPath),
		zap.Int("rows", len(records)))

	return ExportResult{OutputPath: outputPath, Rows: len(records)}, nil
}

// setupWriter creates the writer for the configured output format. The
// parent directory of the output path must already exist.
func (c *Client) setupWriter(writerType WriterType, params ExportParams) (writer.RecordWriter, error) {
	switch writerType {
	case WriterCSV:
		return writer.NewCSVWriter(params.OutputPath, !params.NoHeader), nil
	case WriterParquet:
		return writer.NewParquetWriter(params.OutputPath), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidWriter, "unsupported writer type: %s", writerType)
	}
}
