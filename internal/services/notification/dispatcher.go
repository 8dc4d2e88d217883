// Package notification delivers payment events to listeners without blocking
// the charge path.
package notification

import (
	"context"
	"sync"
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/utils/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventPaymentProcessed EventType = "payment_processed"
	EventPaymentFailed    EventType = "payment_failed"
)

// Event is one fire-and-forget notification. Processed events carry the
// stored transaction and the raw gateway response; failed events carry the
// order and the error text.
type Event struct {
	ID          string
	Type        EventType
	OccurredAt  time.Time
	Transaction *models.Transaction
	Response    models.JSON
	Order       *models.Order
	Error       string
}

// Notifier is the output the transaction engine writes to.
type Notifier interface {
	PaymentProcessed(ctx context.Context, tx *models.Transaction, response models.JSON)
	PaymentFailed(ctx context.Context, order models.Order, errText string)
}

type Listener func(Event)

// Dispatcher queues events on a buffered channel drained by one worker. When
// the queue is full or the dispatcher is closed, events are delivered inline.
type Dispatcher struct {
	mu        sync.RWMutex
	queue     chan Event
	listeners []Listener
	closed    bool
	done      chan struct{}
	log       *logger.Logger
	events    *prometheus.CounterVec
}

func NewDispatcher(log *logger.Logger, reg prometheus.Registerer, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
		log:   log,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sumit_payment_events_total",
			Help: "Payment notifications by type",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(d.events)
	}
	go d.run()
	return d
}

// Subscribe adds a listener. Listeners run on the worker goroutine and must
// not block for long.
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

func (d *Dispatcher) PaymentProcessed(_ context.Context, tx *models.Transaction, response models.JSON) {
	d.publish(Event{
		Type:        EventPaymentProcessed,
		Transaction: tx,
		Response:    response,
	})
}

func (d *Dispatcher) PaymentFailed(_ context.Context, order models.Order, errText string) {
	d.publish(Event{
		Type:  EventPaymentFailed,
		Order: &order,
		Error: errText,
	})
}

func (d *Dispatcher) publish(e Event) {
	e.ID = uuid.NewString()
	e.OccurredAt = time.Now()
	d.events.WithLabelValues(string(e.Type)).Inc()

	d.mu.RLock()
	if !d.closed {
		select {
		case d.queue <- e:
			d.mu.RUnlock()
			return
		default:
		}
	}
	d.mu.RUnlock()

	d.log.Warnf("notification queue unavailable, delivering %s inline", e.Type)
	d.deliver(e)
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.log.Errorf("notification listener panicked on %s: %v", e.ID, r)
				}
			}()
			l(e)
		}()
	}
}

// Close stops accepting queued events and waits until the queue is drained
// or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
