package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 100 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, ctx is done or
// retryIf reports the error as permanent. A positive Timeout bounds all attempts.
func Do(ctx context.Context, rc *RetryConfig, retryIf func(error) bool, fn func(ctx context.Context) error) error {
	if rc == nil {
		rc = DefaultRetryConfig()
	}

	if rc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.Timeout)
		defer cancel()
	}

	opts := append(rc.ToRetryOptions(), retry.Context(ctx))
	if retryIf != nil {
		opts = append(opts, retry.RetryIf(retryIf))
	}

	return retry.Do(func() error {
		return fn(ctx)
	}, opts...)
}
