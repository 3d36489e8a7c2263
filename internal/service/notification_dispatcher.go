package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotificationQueueFull is returned when the dispatcher cannot accept more work
	ErrNotificationQueueFull = errors.New("notification queue is full")
	// ErrDispatcherStopped is returned by Dispatch after Stop
	ErrDispatcherStopped = errors.New("notification dispatcher stopped")
)

const (
	publishTimeout          = 5 * time.Second
	defaultNotificationSize = 256
)

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

type NotificationEvent string

const (
	EventBookingRequested     NotificationEvent = "booking.requested"
	EventBookingAccepted      NotificationEvent = "booking.accepted"
	EventBookingDeclined      NotificationEvent = "booking.declined"
	EventBookingCompleted     NotificationEvent = "booking.completed"
	EventBookingCancelled     NotificationEvent = "booking.cancelled"
	EventBookingStatusChanged NotificationEvent = "booking.status_changed"
	EventProviderReviewed     NotificationEvent = "provider.reviewed"
)

// Recipient kinds
const (
	RecipientCustomer = "customer"
	RecipientProvider = "provider"
)

// Notification is the message handed to the delivery pipeline.
// RecipientID is a user id for customers and a provider id for providers.
// BookingID is the nil UUID for events not tied to a booking.
type Notification struct {
	ID            uuid.UUID              `json:"id"`
	RecipientID   uuid.UUID              `json:"recipient_id"`
	RecipientType string                 `json:"recipient_type"`
	Channel       NotificationChannel    `json:"channel"`
	Event         NotificationEvent      `json:"event"`
	BookingID     uuid.UUID              `json:"booking_id"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// RoutingKey is notification.<channel>.<event>
func (n Notification) RoutingKey() string {
	return fmt.Sprintf("notification.%s.%s", n.Channel, n.Event)
}

// Publisher delivers an encoded message to a transport.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Dispatch(n Notification) error
}

// NotificationDispatcher hands notifications to a Publisher from a single
// background worker. Dispatch never waits on the transport.
type NotificationDispatcher struct {
	publisher Publisher
	log       *logrus.Logger

	mu      sync.RWMutex
	queue   chan Notification
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationDispatcher starts the worker. Call Stop() during graceful shutdown.
func NewNotificationDispatcher(publisher Publisher, log *logrus.Logger, queueSize int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = defaultNotificationSize
	}
	d := &NotificationDispatcher{
		publisher: publisher,
		log:       log,
		queue:     make(chan Notification, queueSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *NotificationDispatcher) Dispatch(n Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return ErrNotificationQueueFull
	}
}

// Stop rejects new notifications and waits for queued ones to be published.
// Safe to call multiple times.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("NotificationDispatcher stopped")
}

func (d *NotificationDispatcher) run() {
	defer d.wg.Done()

	for n := range d.queue {
		d.publish(n)
	}
}

func (d *NotificationDispatcher) publish(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := d.publisher.PublishJSON(ctx, n.RoutingKey(), n); err != nil {
		d.log.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"booking_id":      n.BookingID,
			"event":           n.Event,
			"channel":         n.Channel,
		}).Warnf("Failed to publish notification: %+v", err)
	}
}

// LogPublisher writes notifications to the application log instead of a broker.
// Used when no RabbitMQ URL is configured.
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishJSON(_ context.Context, routingKey string, v any) error {
	p.log.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"message":     v,
	}).Info("Notification dispatched")
	return nil
}
