package cache

import (
	"context"
	"fmt"
	"time"
)

// Locker grants short-lived exclusive leases on a key. Acquire returns
// ok=false without error when another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

func OrderLockKey(orderID string) string {
	return fmt.Sprintf("sumit:lock:order:%s", orderID)
}

func RefundLockKey(transactionID string) string {
	return fmt.Sprintf("sumit:lock:refund:%s", transactionID)
}

func SubscriptionLockKey(id uint) string {
	return fmt.Sprintf("sumit:lock:subscription:%d", id)
}
