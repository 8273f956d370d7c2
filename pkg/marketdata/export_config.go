package marketdata

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/ticker-history/internal/types"
	"github.com/rxtech-lab/ticker-history/internal/version"
	"github.com/rxtech-lab/ticker-history/pkg/errors"
	"github.com/rxtech-lab/ticker-history/pkg/utils"
)

// ExportConfig describes one export in a YAML or JSON file.
type ExportConfig struct {
	Version    string       `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Version of the tool the file was written for"`
	Provider   ProviderType `yaml:"provider" json:"provider,omitempty" jsonschema:"title=Provider,enum=yahoo,enum=polygon,enum=binance,default=yahoo" validate:"required,oneof=yahoo polygon binance"`
	Format     WriterType   `yaml:"format" json:"format,omitempty" jsonschema:"title=Format,enum=csv,enum=parquet,default=csv" validate:"required,oneof=csv parquet"`
	Ticker     string       `yaml:"ticker" json:"ticker" jsonschema:"title=Ticker,description=Symbol to export (e.g. AAPL or BTCUSDT)" validate:"required"`
	OutputPath string       `yaml:"outputPath" json:"outputPath" jsonschema:"title=Output Path,description=File to create or overwrite" validate:"required"`
	NoHeader   *bool        `yaml:"noHeader" json:"noHeader,omitempty" jsonschema:"title=No Header,description=Omit the header line,default=true"`
	Currency   string       `yaml:"currency" json:"currency,omitempty" jsonschema:"title=Currency,default=USD" validate:"required"`
	Filler     types.Filler `yaml:"filler" json:"filler,omitempty" jsonschema:"title=Filler,description=Value of operated_amount and n_operations,enum=empty,enum=zero,default=empty" validate:"required,oneof=empty zero"`
	AutoAdjust *bool        `yaml:"autoAdjust" json:"autoAdjust,omitempty" jsonschema:"title=Auto Adjust,description=Adjust Yahoo prices for splits and dividends,default=true"`
	MaxRetries int          `yaml:"maxRetries" json:"maxRetries,omitempty" jsonschema:"title=Max Retries,minimum=0,default=0" validate:"min=0"`
}

// LoadExportConfig reads and validates an export config file.
func LoadExportConfig(path string) (*ExportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return ParseExportConfig(data)
}

// ParseExportConfig parses YAML or JSON, fills in defaults and validates the result.
// Unknown keys are rejected.
func ParseExportConfig(data []byte) (*ExportConfig, error) {
	var cfg ExportConfig

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "config file is empty")
		}

		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetDefaults fills unset fields with the command line defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderYahoo
	}

	if c.Format == "" {
		c.Format = WriterCSV
	}

	if c.NoHeader == nil {
		noHeader := true
		c.NoHeader = &noHeader
	}

	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}

	if c.Filler == "" {
		c.Filler = types.FillerEmpty
	}

	if c.AutoAdjust == nil {
		autoAdjust := true
		c.AutoAdjust = &autoAdjust
	}
}

// Validate checks field values and that the file's version can be run by this tool.
func (c *ExportConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "incompatible config version", err)
	}

	return nil
}

// ToClientConfig builds the client configuration. Credentials and endpoint
// settings come from the environment, not from the file.
func (c *ExportConfig) ToClientConfig(polygonApiKey, yahooBaseURL string, timeout time.Duration) ClientConfig {
	return ClientConfig{
		ProviderType:  c.Provider,
		WriterType:    c.Format,
		PolygonApiKey: polygonApiKey,
		YahooBaseURL:  yahooBaseURL,
		Timeout:       timeout,
		MaxRetries:    c.MaxRetries,
		AutoAdjust:    c.AutoAdjust == nil || *c.AutoAdjust,
	}
}

// ToExportParams builds the parameters of the export.
func (c *ExportConfig) ToExportParams() ExportParams {
	return ExportParams{
		Ticker:     c.Ticker,
		OutputPath: c.OutputPath,
		NoHeader:   c.NoHeader == nil || *c.NoHeader,
		Currency:   c.Currency,
		Filler:     c.Filler,
	}
}

// GetExportConfigSchema returns the JSON schema of ExportConfig.
func GetExportConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.GetSchemaFromConfig(&ExportConfig{})
}
