package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
	"github.com/rxtech-lab/ticker-history/pkg/errors"
)

// RetryingProvider retries failed History calls with exponential backoff.
type RetryingProvider struct {
	provider   Provider
	maxRetries int
	newBackOff func() backoff.BackOff
	logger     *logger.Logger
}

// WithRetry wraps p so that History is retried up to maxRetries times.
// maxRetries <= 0 returns p unchanged. Unknown tickers are not retried.
func WithRetry(p Provider, maxRetries int, log *logger.Logger) Provider {
	if maxRetries <= 0 {
		return p
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RetryingProvider{
		provider:   p,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second

			return b
		},
		logger: log,
	}
}

func (r *RetryingProvider) History(ctx context.Context, ticker string, onProgress OnDownloadProgress) ([]types.MarketData, error) {
	var bars []types.MarketData

	attempt := 0
	operation := func() error {
		attempt++

		result, err := r.provider.History(ctx, ticker, onProgress)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeDataNotFound) {
				return backoff.Permanent(err)
			}

			return err
		}

		bars = result

		return nil
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("History fetch failed, retrying",
			zap.String("ticker", ticker),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", r.maxRetries),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}

	return bars, nil
}
