package notification

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"sumitpay/internal/models"
	"sumitpay/internal/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher(logger.Discard(), prometheus.NewRegistry(), 8)
	rec := &recorder{}
	d.Subscribe(rec.listen)

	txID := "T1"
	d.PaymentProcessed(context.Background(), &models.Transaction{TransactionID: &txID}, models.JSON{"Status": 0})
	d.PaymentFailed(context.Background(), models.Order{OrderID: "A-1"}, "Card declined")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	events := rec.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, EventPaymentProcessed, events[0].Type)
	assert.Equal(t, "T1", *events[0].Transaction.TransactionID)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, EventPaymentFailed, events[1].Type)
	assert.Equal(t, "A-1", events[1].Order.OrderID)
	assert.Equal(t, "Card declined", events[1].Error)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestDispatcher_InlineAfterClose(t *testing.T) {
	d := NewDispatcher(logger.Discard(), nil, 1)
	rec := &recorder{}
	d.Subscribe(rec.listen)
	require.NoError(t, d.Close(context.Background()))

	d.PaymentFailed(context.Background(), models.Order{OrderID: "late"}, "x")

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "late", events[0].Order.OrderID)

	// A second close is a no-op.
	assert.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_ListenerPanicIsContained(t *testing.T) {
	d := NewDispatcher(logger.Discard(), nil, 4)
	rec := &recorder{}
	d.Subscribe(func(Event) { panic("boom") })
	d.Subscribe(rec.listen)

	d.PaymentFailed(context.Background(), models.Order{OrderID: "A"}, "x")
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, rec.snapshot(), 1)
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "notify", logger.DEBUG)
	listen := LogListener(log)

	txID, orderID := "T9", "ORD-9"
	listen(Event{Type: EventPaymentProcessed, Transaction: &models.Transaction{
		TransactionID: &txID, OrderID: &orderID, Amount: decimal.NewFromInt(100), Currency: "ILS",
	}})
	listen(Event{Type: EventPaymentFailed, Order: &models.Order{OrderID: "ORD-10", Total: decimal.NewFromInt(5), Currency: "ILS"}, Error: "No response from payment gateway"})

	out := buf.String()
	assert.Contains(t, out, "Payment processed successfully")
	assert.Contains(t, out, "transaction_id=T9")
	assert.Contains(t, out, "amount=100.00 ILS")
	assert.Contains(t, out, "Payment failed")
	assert.Contains(t, out, "No response from payment gateway")
}
