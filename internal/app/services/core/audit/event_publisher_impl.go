package audit

import (
	"context"
	"sync"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/models"
	"careflow-service/internal/app/services/shared/careflowqueue"
)

var (
	eventPublisherInstance contracts.EventPublisher
	onceEventPublisher     sync.Once
)

type queueEventPublisher struct {
	Queue *careflowqueue.Service
}

// NewQueueEventPublisher wraps the durable queue behind the publisher
// contract the usecases depend on.
func NewQueueEventPublisher(queue *careflowqueue.Service) contracts.EventPublisher {
	onceEventPublisher.Do(func() {
		eventPublisherInstance = &queueEventPublisher{Queue: queue}
	})
	return eventPublisherInstance
}

func (p *queueEventPublisher) Publish(ctx context.Context, event *models.CareflowEvent) error {
	_, err := p.Queue.Enqueue(ctx, &careflowqueue.EnqueueEventInput{Event: *event})
	return err
}
