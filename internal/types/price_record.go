package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of the Date column. Timezone and sub-second
// information are dropped.
const DateLayout = "2006-01-02T15:04:05"

// PriceRecordColumns is the fixed column order of an exported history file.
// It mirrors the DailyData record consumed downstream and must not change.
var PriceRecordColumns = []string{
	"Date",
	"currency",
	"Close",
	"Open",
	"High",
	"Low",
	"operated_amount",
	"Volume",
	"n_operations",
}

// Price is a provider value rendered as the shortest exact decimal. Whole
// values carry no fraction, so 150.0 is written as 150; numeric readers
// parse both forms to the same value.
type Price float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (p Price) MarshalCSV() (string, error) {
	return p.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (p *Price) UnmarshalCSV(value string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", value, err)
	}

	*p = Price(d.InexactFloat64())

	return nil
}

// String renders p without exponent or trailing zeros.
func (p Price) String() string {
	return decimal.NewFromFloat(float64(p)).String()
}

// Filler selects the value written to the synthetic operated_amount and
// n_operations columns.
type Filler string

const (
	// FillerEmpty writes an empty string.
	FillerEmpty Filler = "empty"
	// FillerZero writes 0.
	FillerZero Filler = "zero"
)

// Value returns the literal cell value for the filler.
func (f Filler) Value() string {
	if f == FillerZero {
		return "0"
	}

	return ""
}

// PriceRecord is one exported row. Field order defines the column order.
type PriceRecord struct {
	Date           string `csv:"Date"`
	Currency       string `csv:"currency"`
	Close          Price  `csv:"Close"`
	Open           Price  `csv:"Open"`
	High           Price  `csv:"High"`
	Low            Price  `csv:"Low"`
	OperatedAmount string `csv:"operated_amount"`
	Volume         Price  `csv:"Volume"`
	NOperations    string `csv:"n_operations"`
}
