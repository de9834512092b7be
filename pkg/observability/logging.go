package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(msg string) func(context.Context, *domain.StepEvent) {
		return func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, msg,
				"machine", e.Machine,
				"from", e.From,
				"read", e.Read,
				"to", e.To,
				"head", e.Head,
				"step", e.StepCount,
			)
		}
	}
	return domain.LifecycleHooks{
		OnStep:   log("step"),
		OnHalt:   log("halt"),
		OnReject: log("reject"),
	}
}
