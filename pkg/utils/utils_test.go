package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherIndexAligned(t *testing.T) {
	errA := errors.New("a failed")

	errs := Gather(context.Background(),
		func() error { return errA },
		func() error { return nil },
		func() error { return errors.New("c failed") },
	)

	require.Len(t, errs, 3)
	assert.Equal(t, errA, errs[0])
	assert.NoError(t, errs[1])
	assert.Error(t, errs[2])
}

func TestGatherRecoversPanics(t *testing.T) {
	var ran atomic.Bool

	errs := Gather(context.Background(),
		func() error { panic("boom") },
		func() error { ran.Store(true); return nil },
	)

	require.Len(t, errs, 2)
	var panicErr *PanicError
	require.ErrorAs(t, errs[0], &panicErr)
	assert.Equal(t, "boom", panicErr.Value)
	assert.NoError(t, errs[1])
	assert.True(t, ran.Load())
}

func TestGatherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := Gather(ctx, func() error { return nil })
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestGatherEmpty(t *testing.T) {
	assert.Nil(t, Gather(context.Background()))
}

func TestRecoverAsError(t *testing.T) {
	fn := func() (err error) {
		defer RecoverAsError(&err)
		panic("kaput")
	}

	err := fn()
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "kaput", panicErr.Value)
	assert.NotEmpty(t, panicErr.StackTrace)
}

func TestRecoverWithCallbackNoPanic(t *testing.T) {
	called := false
	func() {
		defer RecoverWithCallback(func(error) { called = true })
	}()
	assert.False(t, called)
}
