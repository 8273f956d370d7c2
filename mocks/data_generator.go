package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/ticker-history/internal/types"
)

// HistoryGenerator produces synthetic daily price histories for tests and benchmarks.
type HistoryGenerator struct {
	rng *rand.Rand
}

// NewHistoryGenerator creates a generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewHistoryGenerator(seed int64) *HistoryGenerator {
	return &HistoryGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// HistoryConfig configures a generated history.
type HistoryConfig struct {
	Symbol string
	// FirstSession is the first trading day. Only its date and location are used.
	FirstSession time.Time
	// Sessions is the number of trading days to generate. Weekends are skipped.
	Sessions     int
	InitialPrice float64
	// Volatility is the typical daily move (0.02 = 2%).
	Volatility float64
	VolumeBase float64
}

// DefaultHistoryConfig returns a single year of New York sessions.
func DefaultHistoryConfig() HistoryConfig {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.UTC
	}

	return HistoryConfig{
		Symbol:       "TEST",
		FirstSession: time.Date(2024, 1, 2, 0, 0, 0, 0, ny),
		Sessions:     252,
		InitialPrice: 100.0,
		Volatility:   0.02,
		VolumeBase:   1_000_000,
	}
}

// Generate returns cfg.Sessions daily bars, oldest first, each stamped at
// midnight of its session in the location of cfg.FirstSession.
func (g *HistoryGenerator) Generate(cfg HistoryConfig) []types.MarketData {
	bars := make([]types.MarketData, 0, cfg.Sessions)
	loc := cfg.FirstSession.Location()
	day := time.Date(cfg.FirstSession.Year(), cfg.FirstSession.Month(), cfg.FirstSession.Day(), 0, 0, 0, 0, loc)
	price := cfg.InitialPrice

	for len(bars) < cfg.Sessions {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}

		open := price
		closePrice := open * (1 + cfg.Volatility*g.rng.NormFloat64())

		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) * (1 + g.rng.Float64()*cfg.Volatility/2)
		low := math.Min(open, closePrice) * (1 - g.rng.Float64()*cfg.Volatility/2)

		bars = append(bars, types.MarketData{
			Symbol: cfg.Symbol,
			Time:   day,
			Open:   roundToDecimals(open, 2),
			High:   roundToDecimals(high, 2),
			Low:    roundToDecimals(low, 2),
			Close:  roundToDecimals(closePrice, 2),
			Volume: math.Round(cfg.VolumeBase * (0.5 + g.rng.Float64())),
		})

		price = closePrice
		day = day.AddDate(0, 0, 1)
	}

	return bars
}

// GenerateYears is a convenience for benchmarks: years of 252 sessions each with a fixed seed.
func GenerateYears(symbol string, years int) []types.MarketData {
	cfg := DefaultHistoryConfig()
	cfg.Symbol = symbol
	cfg.Sessions = 252 * years

	return NewHistoryGenerator(42).Generate(cfg)
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
