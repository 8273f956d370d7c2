package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/ticker-history/internal/types"
)

const parquetTable = "price_history"

// ParquetWriter stages records in an in-memory DuckDB table and exports them
// as a Parquet file with the same nine columns as the CSV output.
type ParquetWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	sq         squirrel.StatementBuilderType
	outputPath string
}

// NewParquetWriter creates a new ParquetWriter for outputPath.
func NewParquetWriter(outputPath string) RecordWriter {
	return &ParquetWriter{
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		outputPath: outputPath,
	}
}

// Initialize opens an in-memory database, creates the staging table and begins a transaction.
func (w *ParquetWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			"Date" TEXT,
			"currency" TEXT,
			"Close" DOUBLE,
			"Open" DOUBLE,
			"High" DOUBLE,
			"Low" DOUBLE,
			"operated_amount" TEXT,
			"Volume" DOUBLE,
			"n_operations" TEXT
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return nil
}

func (w *ParquetWriter) Write(record types.PriceRecord) error {
	if w.tx == nil {
		return fmt.Errorf("writer not initialized or transaction is nil")
	}

	columns := make([]string, len(types.PriceRecordColumns))
	for i, c := range types.PriceRecordColumns {
		columns[i] = `"` + c + `"`
	}

	_, err := w.sq.
		Insert(parquetTable).
		Columns(columns...).
		Values(
			record.Date,
			record.Currency,
			float64(record.Close),
			float64(record.Open),
			float64(record.High),
			float64(record.Low),
			record.OperatedAmount,
			float64(record.Volume),
			record.NOperations,
		).
		RunWith(w.tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table, in insertion order, to Parquet.
func (w *ParquetWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	escaped := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err := w.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, parquetTable, escaped))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close rolls back an unfinished transaction and closes the database.
func (w *ParquetWriter) Close() error {
	var closeErrors []string

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to rollback transaction: %v", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return fmt.Errorf("errors occurred during close: %s", strings.Join(closeErrors, "; "))
	}

	return nil
}

func (w *ParquetWriter) GetOutputPath() string {
	return w.outputPath
}
