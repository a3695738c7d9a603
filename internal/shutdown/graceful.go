package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"jobmate/jobsearch-bot/internal/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain function to Stoppable.
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error { return f(ctx) }

// Graceful blocks until one of signals arrives or parent is cancelled, then
// stops each of s in order, sharing one timeout.
func Graceful(parent context.Context, signals []os.Signal, timeout time.Duration, log *logging.Logger, s ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(parent, signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown started", "cause", context.Cause(sigCtx))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := false
	for _, st := range s {
		if err := st.Shutdown(ctx); err != nil {
			log.Warn("graceful shutdown step failed", "err", err)
			failed = true
		}
	}
	if !failed {
		log.Info("graceful shutdown completed successfully")
	}
}
