package writer

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rxtech-lab/ticker-history/internal/types"
)

// CSVWriter writes records as comma separated values without an index column.
// Records are buffered and the file is created on Finalize, so a failed
// export never truncates an existing file before the data is ready.
type CSVWriter struct {
	outputPath    string
	includeHeader bool
	records       []*types.PriceRecord
	initialized   bool
}

// NewCSVWriter creates a CSV writer for outputPath. The header row is written
// only when includeHeader is true.
func NewCSVWriter(outputPath string, includeHeader bool) RecordWriter {
	return &CSVWriter{
		outputPath:    outputPath,
		includeHeader: includeHeader,
	}
}

func (w *CSVWriter) Initialize() error {
	w.records = make([]*types.PriceRecord, 0)
	w.initialized = true

	return nil
}

func (w *CSVWriter) Write(record types.PriceRecord) error {
	if !w.initialized {
		return fmt.Errorf("writer not initialized")
	}

	w.records = append(w.records, &record)

	return nil
}

// Finalize truncates or creates the output file and marshals all records.
func (w *CSVWriter) Finalize() (outputPath string, err error) {
	if !w.initialized {
		return "", fmt.Errorf("writer not initialized")
	}

	file, err := os.Create(w.outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if w.includeHeader {
		err = gocsv.Marshal(w.records, file)
	} else {
		err = gocsv.MarshalWithoutHeaders(w.records, file)
	}

	if err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	w.records = nil
	w.initialized = false

	return nil
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
