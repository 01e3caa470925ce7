package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type SessionPruner interface {
	DeleteDeadSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker prunes refresh sessions that have been revoked or expired for
// longer than the retention window. The auth flows only check expiry at use
// time and never delete rows, so without this the table grows forever.
type Worker struct {
	sessions  SessionPruner
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

func NewWorker(sessions SessionPruner, logger *zap.Logger) *Worker {
	return &Worker{
		sessions:  sessions,
		interval:  time.Hour,
		retention: 30 * 24 * time.Hour,
		logger:    logger,
	}
}

// Start runs the pruning loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("session cleanup worker started")
	w.prune(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session cleanup worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *Worker) prune(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)
	deleted, err := w.sessions.DeleteDeadSessions(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to prune dead sessions", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.logger.Info("pruned dead refresh sessions", zap.Int64("count", deleted))
	}
}
