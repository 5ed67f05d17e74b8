package careflowqueue

import (
	"context"
	"fmt"
	"sync"

	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Service manages the durable audit-event queue and its dead-letter
// companion. Events land here after a clinical write succeeds and are
// drained by the audit worker.
type Service struct {
	ch        *amqp.Channel
	log       *zap.Logger
	queueName string
	dlqName   string
	prefetch  int
	confirms  chan amqp.Confirmation
	mu        sync.Mutex
}

// NewService opens a channel, declares both durable queues, enables
// publisher confirms, and sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, queueName string, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	dlqName := queueName + constvars.DeadLetterQueueSuffix

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, exceptions.ErrRabbitMQDeclareQueue(err, queueName)
	}

	_, err = ch.QueueDeclare(
		dlqName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, exceptions.ErrRabbitMQDeclareQueue(err, dlqName)
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, exceptions.ErrRabbitMQConfirm(err, queueName)
	}

	svc := &Service{
		ch:        ch,
		log:       log,
		queueName: queueName,
		dlqName:   dlqName,
		prefetch:  prefetch,
		confirms:  ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

// EnqueueEventInput defines input for enqueue operation.
type EnqueueEventInput struct {
	Event models.CareflowEvent
}

// EnqueueEventOutput defines output for enqueue.
type EnqueueEventOutput struct{}

// ReenqueueInput defines input for reenqueueing a modified event back to the queue tail.
type ReenqueueInput struct {
	Event models.CareflowEvent
}

// ReenqueueOutput defines output for reenqueue.
type ReenqueueOutput struct{}

// EnqueueToDLQInput defines input for DLQ enqueue operation.
type EnqueueToDLQInput struct {
	Event models.CareflowEvent
}

// EnqueueToDLQOutput defines output for DLQ enqueue.
type EnqueueToDLQOutput struct{}

// FetchNInput specifies the maximum number of events to fetch.
type FetchNInput struct {
	Max int
}

// QueuedItem represents a fetched delivery and its decoded event.
type QueuedItem struct {
	DeliveryTag uint64
	Event       models.CareflowEvent
}

// FetchNOutput returns up to N events.
type FetchNOutput struct {
	Items []QueuedItem
}

// AckMessageInput acknowledges a delivery so it is removed from the queue.
type AckMessageInput struct {
	DeliveryTag uint64
}

// AckMessageOutput is empty.
type AckMessageOutput struct{}

// Enqueue publishes an event to the queue with persistence and waits for confirm.
func (s *Service) Enqueue(ctx context.Context, in *EnqueueEventInput) (*EnqueueEventOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("CareflowQueue.Enqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, in.Event.Type),
	)

	if err := s.publishEvent(ctx, s.queueName, in.Event); err != nil {
		return nil, err
	}
	return &EnqueueEventOutput{}, nil
}

// Reenqueue publishes the (possibly modified) event to the tail of the queue and confirms.
func (s *Service) Reenqueue(ctx context.Context, in *ReenqueueInput) (*ReenqueueOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("CareflowQueue.Reenqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventIDKey, in.Event.EventID),
		zap.Int(constvars.LoggingAttemptKey, in.Event.Attempts),
	)

	if err := s.publishEvent(ctx, s.queueName, in.Event); err != nil {
		return nil, err
	}
	return &ReenqueueOutput{}, nil
}

// EnqueueToDeadQueue publishes the event to the DLQ and confirms.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, in *EnqueueToDLQInput) (*EnqueueToDLQOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("CareflowQueue.EnqueueToDeadQueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventIDKey, in.Event.EventID),
	)

	if err := s.publishEvent(ctx, s.dlqName, in.Event); err != nil {
		return nil, err
	}
	return &EnqueueToDLQOutput{}, nil
}

// FetchN retrieves up to N events using basic.get without auto-ack.
func (s *Service) FetchN(ctx context.Context, in *FetchNInput) (*FetchNOutput, error) {
	n := in.Max
	if n <= 0 {
		n = 1
	}
	items := make([]QueuedItem, 0, n)

	for i := 0; i < n; i++ {
		d, ok, err := s.ch.Get(s.queueName, false)
		if err != nil {
			return nil, exceptions.ErrRabbitMQConsume(err, s.queueName)
		}
		if !ok {
			break
		}
		var event models.CareflowEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			// Invalid JSON goes straight to the DLQ so a poison message
			// cannot wedge the worker.
			_ = d.Ack(false)
			_ = s.publishRaw(ctx, s.dlqName, d.Body)
			continue
		}
		items = append(items, QueuedItem{DeliveryTag: d.DeliveryTag, Event: event})
	}

	return &FetchNOutput{Items: items}, nil
}

// AckMessage acknowledges a delivery by tag.
func (s *Service) AckMessage(ctx context.Context, in *AckMessageInput) (*AckMessageOutput, error) {
	if err := s.ch.Ack(in.DeliveryTag, false); err != nil {
		return nil, err
	}
	return &AckMessageOutput{}, nil
}

// QueueName reports the main queue name for logging and locks.
func (s *Service) QueueName() string {
	return s.queueName
}

func (s *Service) publishEvent(ctx context.Context, queue string, event models.CareflowEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publishRaw(ctx, queue, body)
}

// publishRaw publishes a raw body with persistence and waits for the
// broker confirm. The mutex serializes publishes so confirms pair with
// the publish that produced them.
func (s *Service) publishRaw(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQConfirm(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
