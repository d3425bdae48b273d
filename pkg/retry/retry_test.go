package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxTotalTimeout: time.Second,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("connection refused")
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return cause
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestDo_SingleAttemptConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1

	cause := errors.New("connection refused")
	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return cause
	})

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "max retry attempts (1) exceeded")
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func() error {
		return errors.New("should not matter")
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoWithLog_InvokesCallbackBetweenAttempts(t *testing.T) {
	logged := 0
	err := DoWithLog(context.Background(), fastConfig(), "PostgreSQL", func() error {
		return errors.New("transient")
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged++
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PostgreSQL")
	// No callback after the final attempt
	assert.Equal(t, 2, logged)
}
