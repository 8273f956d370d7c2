package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/ticker-history/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_record_writer.go -package=mocks github.com/rxtech-lab/ticker-history/pkg/marketdata/writer RecordWriter
