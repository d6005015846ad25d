package identify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clearout/internal/logging"
	"clearout/internal/services"
)

// runStage executes fn under its own deadline. A stage that errors, panics,
// or overruns its deadline contributes the zero value instead of blocking
// the pipeline. Errors that services.Recoverable rules out, configuration
// mistakes, are returned so the analysis can abort instead of silently
// degrading.
func runStage[T any](ctx context.Context, logger *slog.Logger, name Stage, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	stageCtx, cancel := context.WithTimeout(services.WithStage(ctx, string(name)), timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("stage panicked: %v", r)}
			}
		}()
		value, err := fn(stageCtx)
		done <- outcome{value: value, err: err}
	}()

	var zero T
	select {
	case out := <-done:
		if out.err != nil {
			if !services.Recoverable(out.err) {
				logger.ErrorContext(stageCtx, "stage misconfigured",
					logging.String(logging.FieldStage, string(name)),
					logging.Error(out.err))
				return zero, out.err
			}
			logger.WarnContext(stageCtx, "stage failed",
				logging.String(logging.FieldStage, string(name)),
				logging.Duration("elapsed", time.Since(start)),
				logging.Error(out.err))
			return zero, nil
		}
		logger.DebugContext(stageCtx, "stage completed",
			logging.String(logging.FieldStage, string(name)),
			logging.Duration("elapsed", time.Since(start)))
		return out.value, nil
	case <-stageCtx.Done():
		logger.WarnContext(ctx, "stage deadline exceeded",
			logging.String(logging.FieldStage, string(name)),
			logging.Duration("deadline", timeout),
			logging.Error(services.Wrap(services.ErrTimeout, string(name), "detect", "deadline exceeded", stageCtx.Err())))
		return zero, nil
	}
}
