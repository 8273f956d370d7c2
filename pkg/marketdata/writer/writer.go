package writer

import (
	"github.com/rxtech-lab/ticker-history/internal/types"
)

// RecordWriter defines the interface for writing exported price records to a destination.
type RecordWriter interface {
	// Initialize sets up the writer, potentially creating tables or buffers.
	Initialize() error
	// Write adds a single record. Records are written in call order.
	Write(record types.PriceRecord) error
	// Finalize completes the writing process and produces the output file.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
