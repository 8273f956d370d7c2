package marketdata

import (
	"github.com/rxtech-lab/ticker-history/internal/types"
)

// BuildRecords reshapes provider bars into output rows. Bar order is kept,
// the bar time is flattened to types.DateLayout in its own location, and the
// currency and filler values are stamped on every row.
func BuildRecords(bars []types.MarketData, currency string, filler types.Filler) []types.PriceRecord {
	records := make([]types.PriceRecord, 0, len(bars))
	fill := filler.Value()

	for _, bar := range bars {
		records = append(records, types.PriceRecord{
			Date:           bar.Time.Format(types.DateLayout),
			Currency:       currency,
			Close:          types.Price(bar.Close),
			Open:           types.Price(bar.Open),
			High:           types.Price(bar.High),
			Low:            types.Price(bar.Low),
			OperatedAmount: fill,
			Volume:         types.Price(bar.Volume),
			NOperations:    fill,
		})
	}

	return records
}
