package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PriceRecordTestSuite struct {
	suite.Suite
}

func TestPriceRecordSuite(t *testing.T) {
	suite.Run(t, new(PriceRecordTestSuite))
}

func (suite *PriceRecordTestSuite) TestColumnOrder() {
	suite.Equal(
		[]string{"Date", "currency", "Close", "Open", "High", "Low", "operated_amount", "Volume", "n_operations"},
		PriceRecordColumns,
	)
}

func (suite *PriceRecordTestSuite) TestPriceString() {
	tests := []struct {
		price    Price
		expected string
	}{
		{Price(151.25), "151.25"},
		{Price(1500000), "1500000"},
		{Price(150.0), "150"},
		{Price(0.1), "0.1"},
		{Price(0), "0"},
		{Price(0.00012), "0.00012"},
	}

	for _, tt := range tests {
		suite.Equal(tt.expected, tt.price.String())

		marshalled, err := tt.price.MarshalCSV()
		suite.NoError(err)
		suite.Equal(tt.expected, marshalled)
	}
}

func (suite *PriceRecordTestSuite) TestPriceUnmarshal() {
	var p Price
	suite.NoError(p.UnmarshalCSV("151.25"))
	suite.InDelta(151.25, float64(p), 1e-9)

	err := p.UnmarshalCSV("abc")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid price")
}

func (suite *PriceRecordTestSuite) TestFillerValue() {
	suite.Equal("", FillerEmpty.Value())
	suite.Equal("0", FillerZero.Value())
	suite.Equal("", Filler("").Value())
}
