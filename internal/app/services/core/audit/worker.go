package audit

import (
	"context"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/services/shared/careflowqueue"
	"careflow-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// Worker drains the audit queue into Mongo with at-least-once
// semantics. A Redis lease keeps concurrent instances from draining the
// same batch; the queue ack protocol keeps a crashed instance from
// losing events.
type Worker struct {
	log        *zap.Logger
	cfg        *config.InternalConfig
	locker     contracts.LockerService
	queue      *careflowqueue.Service
	repository contracts.ProgramEventRepository
	stop       chan struct{}
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	locker contracts.LockerService,
	queue *careflowqueue.Service,
	repository contracts.ProgramEventRepository,
) *Worker {
	return &Worker{
		log:        log,
		cfg:        cfg,
		locker:     locker,
		queue:      queue,
		repository: repository,
		stop:       make(chan struct{}),
	}
}

// Start begins the ticker loop and returns a function that halts it.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Queue.WorkerIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})

	w.log.Info("audit worker started",
		zap.Duration("interval", interval),
	)

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.runOnce(ctx, interval)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *Worker) runOnce(ctx context.Context, interval time.Duration) {
	leaseTTL := interval - time.Second
	if leaseTTL < time.Second {
		leaseTTL = time.Second
	}
	acquired, lockValue, err := w.locker.TryLock(ctx, constvars.AuditWorkerLockKey, leaseTTL)
	if err != nil {
		w.log.Info("audit worker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Warn("audit worker lock not acquired; another instance is draining")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.AuditWorkerLockKey, lockValue); err != nil {
			w.log.Error("audit worker unlock failed", zap.Error(err))
		}
	}()

	batch := w.cfg.Queue.WorkerBatchSize
	if batch <= 0 {
		batch = 1
	}
	out, err := w.queue.FetchN(ctx, &careflowqueue.FetchNInput{Max: batch})
	if err != nil {
		w.log.Info("audit worker FetchN error", zap.Error(err))
		return
	}
	if len(out.Items) == 0 {
		return
	}

	w.log.Info("audit worker draining batch", zap.Int("fetched_count", len(out.Items)))

	for i, item := range out.Items {
		w.processItem(ctx, item)
		if i < len(out.Items)-1 {
			// A slow Mongo write can outlive the lease; losing it means
			// another instance may start, so stop draining here and let
			// the unacked remainder redeliver.
			if err := w.locker.Refresh(ctx, constvars.AuditWorkerLockKey, lockValue, leaseTTL); err != nil {
				w.log.Warn("audit worker lease refresh failed, stopping batch early", zap.Error(err))
				return
			}
		}
	}
}

func (w *Worker) processItem(ctx context.Context, item careflowqueue.QueuedItem) {
	event := item.Event

	if err := w.repository.InsertEvent(ctx, &event); err != nil {
		w.log.Warn("audit worker persist failed",
			zap.String(constvars.LoggingEventIDKey, event.EventID),
			zap.Int(constvars.LoggingAttemptKey, event.Attempts),
			zap.Error(err),
		)
		event.Attempts++
		if event.Attempts >= w.cfg.Queue.MaxDeliveryAttempts {
			if _, err := w.queue.EnqueueToDeadQueue(ctx, &careflowqueue.EnqueueToDLQInput{Event: event}); err != nil {
				w.log.Error("audit worker DLQ enqueue failed",
					zap.String(constvars.LoggingEventIDKey, event.EventID),
					zap.Error(err),
				)
				// Left unacked: the broker redelivers on the next run.
				return
			}
			_, _ = w.queue.AckMessage(ctx, &careflowqueue.AckMessageInput{DeliveryTag: item.DeliveryTag})
			w.log.Info("audit worker moved event to DLQ",
				zap.String(constvars.LoggingEventIDKey, event.EventID),
				zap.Int(constvars.LoggingAttemptKey, event.Attempts),
			)
			return
		}
		if _, err := w.queue.Reenqueue(ctx, &careflowqueue.ReenqueueInput{Event: event}); err != nil {
			w.log.Error("audit worker reenqueue failed",
				zap.String(constvars.LoggingEventIDKey, event.EventID),
				zap.Error(err),
			)
			return
		}
		_, _ = w.queue.AckMessage(ctx, &careflowqueue.AckMessageInput{DeliveryTag: item.DeliveryTag})
		return
	}

	if _, err := w.queue.AckMessage(ctx, &careflowqueue.AckMessageInput{DeliveryTag: item.DeliveryTag}); err != nil {
		w.log.Info("audit worker ack failed after persist",
			zap.String(constvars.LoggingEventIDKey, event.EventID),
			zap.Error(err),
		)
		return
	}
	w.log.Info("audit worker persisted event",
		zap.String(constvars.LoggingEventIDKey, event.EventID),
		zap.String(constvars.LoggingEventTypeKey, event.Type),
	)
}
