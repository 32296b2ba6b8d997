package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gbg-hll/watchdog/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

func TestWithLinearRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds first try", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := utils.WithLinearRetry(t.Context(), func() error {
			calls++
			return nil
		}, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries up to max attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := utils.WithLinearRetry(t.Context(), func() error {
			calls++
			return errTest
		}, 3, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := utils.WithLinearRetry(t.Context(), func() error {
			calls++
			return errTest
		}, 0, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("permanent error stops retrying", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := utils.WithLinearRetry(t.Context(), func() error {
			calls++
			return backoff.Permanent(errTest)
		}, 5, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := utils.WithLinearRetry(ctx, func() error {
			return errTest
		}, 3, 10*time.Millisecond)

		require.Error(t, err)
	})
}
