package notification

import (
	"sumitpay/internal/utils/logger"
)

// LogListener writes one line per event.
func LogListener(log *logger.Logger) Listener {
	return func(e Event) {
		switch e.Type {
		case EventPaymentProcessed:
			tx := e.Transaction
			if tx == nil {
				return
			}
			log.Infof("Payment processed successfully: transaction_id=%s order_id=%s amount=%s %s",
				deref(tx.TransactionID), deref(tx.OrderID), tx.Amount.StringFixed(2), tx.Currency)
		case EventPaymentFailed:
			if e.Order == nil {
				log.Warnf("Payment failed: error=%q", e.Error)
				return
			}
			log.Warnf("Payment failed: order_id=%s amount=%s %s error=%q",
				e.Order.OrderID, e.Order.Total.StringFixed(2), e.Order.Currency, e.Error)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
