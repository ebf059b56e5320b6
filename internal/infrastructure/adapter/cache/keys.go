package cache

import "fmt"

const (
	// Durable document: fs:kv:{key}
	KeyDocument = "fs:kv:%s"

	// Purchase lock per product: fs:lock:{product_id} -> lock JSON
	KeyPurchaseLock = "fs:lock:%s"

	// Products locked by one holder: set fs:lock:holder:{holder_id}
	KeyHolderLocks = "fs:lock:holder:%s"

	// Sent-notification marker: fs:notify:dedup:{order_id}_{type}
	KeyNotificationDedup = "fs:notify:dedup:%s"

	// Fixed-window send counter: fs:notify:rate:{recipient}:{window}
	KeyNotificationRate = "fs:notify:rate:%s:%d"
)

// Key formats one of the key patterns above
func Key(pattern string, args ...any) string {
	return fmt.Sprintf(pattern, args...)
}
