package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xlab/closer"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
)

// Worker hard-deletes exceptions left behind by soft-deleted masters once
// the retention period has passed.
type Worker struct {
	db        database.PGX
	logger    *zap.SugaredLogger
	events    eventsRepository
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

type eventsRepository interface {
	DeleteStaleExceptions(ctx context.Context, q database.Queryable, before time.Time) (int64, error)
}

func NewWorker(db database.PGX, logger *zap.SugaredLogger, events eventsRepository, retention time.Duration) *Worker {
	w := &Worker{
		db:        db,
		logger:    logger,
		events:    events,
		retention: retention,
		now:       time.Now,
	}

	cl := cronLogger{logger: logger}
	w.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return w
}

// Start schedules Run and returns immediately. The schedule accepts cron
// expressions and descriptors such as @daily or @every 1h.
func (w *Worker) Start(ctx context.Context, schedule string) error {
	if _, err := w.cron.AddFunc(schedule, func() {
		_, _ = w.Run(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	w.cron.Start()
	closer.Bind(w.Stop)

	w.logger.Infow("cleanup scheduled", "schedule", schedule, "retention", w.retention)

	return nil
}

// Stop waits for a running cleanup to finish.
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Worker) Run(ctx context.Context) (int64, error) {
	before := w.now().UTC().Add(-w.retention)

	n, err := w.events.DeleteStaleExceptions(ctx, w.db, before)
	if err != nil {
		w.logger.Errorw("failed to delete stale exceptions", "before", before, "err", err)
		return 0, fmt.Errorf("eventsRepository.DeleteStaleExceptions: %w", err)
	}

	w.logger.Infow("stale exceptions deleted", "count", n, "before", before)

	return n, nil
}

// cronLogger routes scheduler messages to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "err", err)...)
}
