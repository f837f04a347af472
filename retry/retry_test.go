package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(failures int, value string) (Operation[string], *int) {
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls <= failures {
			return "", fmt.Errorf("fail #%d", calls)
		}
		return value, nil
	}
	return op, &calls
}

func TestRetrySucceedsFirstTime(t *testing.T) {
	op, calls := counting(0, "ok")
	res, err := Retry(context.Background(), op, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 1, *calls)
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	op, calls := counting(2, "ok")
	res, err := Retry(context.Background(), op, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, *calls)
}

func TestRetryBound(t *testing.T) {
	op, calls := counting(100, "never")
	_, err := Retry(context.Background(), op, 5)
	require.Error(t, err)
	assert.Equal(t, 5, *calls)
	assert.Equal(t, "fail #5", err.Error())
}

func TestRetryLastErrorUnchanged(t *testing.T) {
	sentinel := errors.New("provider down")
	op := func(ctx context.Context) (int, error) {
		return 0, sentinel
	}
	_, err := Retry(context.Background(), op, 2)
	assert.Same(t, sentinel, err)
}

func TestRetryNonPositiveAttemptsRunsOnce(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		op, calls := counting(100, "never")
		_, err := Retry(context.Background(), op, n)
		assert.Error(t, err)
		assert.Equal(t, 1, *calls, "maxAttempts=%d", n)
	}
}

func TestRetryDelay(t *testing.T) {
	var slept []time.Duration
	orig := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	defer func() { sleepFunc = orig }()

	op, calls := counting(2, "ok")
	_, err := Retry(context.Background(), op, 4, WithDelay(time.Second), WithLabel("test"))
	require.NoError(t, err)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("boom")
	}
	_, err := Retry(ctx, op, 5)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	final := errors.New("final")
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		return "", final
	}
	_, err := Retry(context.Background(), op, 5, WithPermanent(func(err error) bool {
		return errors.Is(err, final)
	}))
	assert.ErrorIs(t, err, final)
	assert.Equal(t, 1, calls)

	op2, calls2 := counting(2, "ok")
	got, err := Retry(context.Background(), op2, 5, WithPermanent(func(err error) bool {
		return errors.Is(err, final)
	}))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, *calls2)
}
