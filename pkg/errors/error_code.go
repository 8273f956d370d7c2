package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeInvalidWriter         ErrorCode = 705
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:               "unknown",
	ErrCodeInvalidParameter:      "invalid_parameter",
	ErrCodeInvalidConfiguration:  "invalid_configuration",
	ErrCodeMissingParameter:      "missing_parameter",
	ErrCodeInvalidVersion:        "invalid_version",
	ErrCodeDataNotFound:          "data_not_found",
	ErrCodeDataSourceUnavailable: "data_source_unavailable",
	ErrCodeMarketDataFetchFailed: "market_data_fetch_failed",
	ErrCodeMarketDataWriteFailed: "market_data_write_failed",
	ErrCodeMarketDataParseFailed: "market_data_parse_failed",
	ErrCodeInvalidProvider:       "invalid_provider",
	ErrCodeInvalidWriter:         "invalid_writer",
}

// String returns the snake_case name of the code, used as a log field.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "unknown"
}
