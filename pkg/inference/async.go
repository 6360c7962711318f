package inference

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// ErrWorkerPanic is returned when an inference worker panics.
var ErrWorkerPanic = errors.New("inference worker panicked")

type result[T any] struct {
	value T
	err   error
}

// runWorker runs fn on its own goroutine and waits for its single result or
// for ctx to end. A panic in fn resolves the call with ErrWorkerPanic. The
// result channel is buffered so a worker finishing after ctx ended never blocks.
func runWorker[T any](ctx context.Context, logger *zap.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	done := make(chan result[T], 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("inference worker panicked",
					zap.String("op", op),
					zap.Any("panic", p),
					zap.ByteString("stack", debug.Stack()),
				)
				done <- result[T]{err: fmt.Errorf("%w: %v", ErrWorkerPanic, p)}
			}
		}()

		value, err := fn(ctx)
		done <- result[T]{value: value, err: err}
	}()

	var zero T
	select {
	case res := <-done:
		if res.err != nil {
			logger.Error("remote inference failed", zap.String("op", op), zap.Error(res.err))
			return res.value, fmt.Errorf("remote inference: %w", res.err)
		}
		return res.value, nil
	case <-ctx.Done():
		logger.Warn("remote inference abandoned", zap.String("op", op), zap.Error(ctx.Err()))
		return zero, fmt.Errorf("remote inference: %w", ctx.Err())
	}
}
