package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/suite"
)

type klinesRequest struct {
	symbol   string
	interval string
	start    int64
	end      int64
	limit    int
}

type mockBinanceAPIClient struct {
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	callCount     int
	requests      []*klinesRequest
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	req := &klinesRequest{}
	m.requests = append(m.requests, req)

	return &mockBinanceKlinesService{client: m, req: req}
}

type mockBinanceKlinesService struct {
	client *mockBinanceAPIClient
	req    *klinesRequest
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.req.symbol = symbol
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.req.interval = interval
	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.req.start = startTime
	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.req.end = endTime
	return m
}

func (m *mockBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	m.req.limit = limit
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++

	var err error
	if idx < len(m.client.errorsPerCall) {
		err = m.client.errorsPerCall[idx]
	}

	if idx < len(m.client.klinesPerCall) {
		return m.client.klinesPerCall[idx], err
	}

	return nil, err
}

// dailyKlines builds n consecutive daily klines starting at start.
func dailyKlines(start time.Time, n int) []*binance.Kline {
	klines := make([]*binance.Kline, 0, n)

	for i := 0; i < n; i++ {
		open := start.AddDate(0, 0, i)
		price := 100 + float64(i)
		klines = append(klines, &binance.Kline{
			OpenTime:  open.UnixMilli(),
			Open:      fmt.Sprintf("%.2f", price),
			High:      fmt.Sprintf("%.2f", price+1),
			Low:       fmt.Sprintf("%.2f", price-1),
			Close:     fmt.Sprintf("%.2f", price+0.5),
			Volume:    "1234.5",
			CloseTime: open.Add(24*time.Hour).UnixMilli() - 1,
		})
	}

	return klines
}

type BinanceClientTestSuite struct {
	suite.Suite
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient(nil)
	suite.NoError(err)
	suite.NotNil(client)

	binanceClient, ok := client.(*BinanceClient)
	suite.True(ok)
	suite.NotNil(binanceClient.apiClient)
}

func (suite *BinanceClientTestSuite) TestHistorySinglePage() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{dailyKlines(start, 3)}}
	client := NewBinanceClientWithAPI(mockAPI)

	bars, err := client.History(context.Background(), "BTCUSDT", nil)
	suite.Require().NoError(err)
	suite.Len(bars, 3)
	suite.Equal(1, mockAPI.callCount)

	req := mockAPI.requests[0]
	suite.Equal("BTCUSDT", req.symbol)
	suite.Equal("1d", req.interval)
	suite.Equal(int64(0), req.start)
	suite.Equal(binancePageLimit, req.limit)

	suite.Equal(start, bars[0].Time)
	suite.Equal(time.UTC, bars[0].Time.Location())
	suite.InDelta(100.0, bars[0].Open, 0.0001)
	suite.InDelta(101.0, bars[0].High, 0.0001)
	suite.InDelta(99.0, bars[0].Low, 0.0001)
	suite.InDelta(100.5, bars[0].Close, 0.0001)
	suite.InDelta(1234.5, bars[0].Volume, 0.0001)
	suite.Equal("BTCUSDT", bars[2].Symbol)
}

func (suite *BinanceClientTestSuite) TestHistoryPaginates() {
	start := time.Date(2017, 8, 17, 0, 0, 0, 0, time.UTC)
	firstPage := dailyKlines(start, binancePageLimit)
	secondPage := dailyKlines(start.AddDate(0, 0, binancePageLimit), 2)

	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{firstPage, secondPage}}
	client := NewBinanceClientWithAPI(mockAPI)
	client.now = func() time.Time { return start.AddDate(10, 0, 0) }

	bars, err := client.History(context.Background(), "ETHUSDT", nil)
	suite.Require().NoError(err)
	suite.Len(bars, binancePageLimit+2)
	suite.Equal(2, mockAPI.callCount)
	suite.Equal(firstPage[len(firstPage)-1].CloseTime+1, mockAPI.requests[1].start)

	for i := 1; i < len(bars); i++ {
		suite.True(bars[i].Time.After(bars[i-1].Time))
	}
}

func (suite *BinanceClientTestSuite) TestHistoryEmpty() {
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{{}}}
	client := NewBinanceClientWithAPI(mockAPI)

	bars, err := client.History(context.Background(), "NEWUSDT", nil)
	suite.NoError(err)
	suite.NotNil(bars)
	suite.Len(bars, 0)
}

func (suite *BinanceClientTestSuite) TestHistoryFetchError() {
	mockAPI := &mockBinanceAPIClient{errorsPerCall: []error{errors.New("Invalid symbol")}}
	client := NewBinanceClientWithAPI(mockAPI)

	bars, err := client.History(context.Background(), "NOPE", nil)
	suite.Error(err)
	suite.Nil(bars)
	suite.Contains(err.Error(), "failed to fetch klines from Binance")
	suite.Contains(err.Error(), "Invalid symbol")
}

func (suite *BinanceClientTestSuite) TestHistoryParseError() {
	klines := dailyKlines(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	klines[0].Close = "not-a-number"
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{klines}}
	client := NewBinanceClientWithAPI(mockAPI)

	_, err := client.History(context.Background(), "BTCUSDT", nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to parse kline value")
}

func (suite *BinanceClientTestSuite) TestHistoryReportsProgress() {
	mockAPI := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{
		dailyKlines(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2),
	}}
	client := NewBinanceClientWithAPI(mockAPI)

	var messages []string
	_, err := client.History(context.Background(), "BTCUSDT", func(current float64, total float64, message string) {
		messages = append(messages, message)
	})
	suite.NoError(err)
	suite.Len(messages, 1)
	suite.Contains(messages[0], "BTCUSDT")
}
