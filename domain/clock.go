package domain

import (
	"sync/atomic"
	"time"
)

var lastStamp int64

// Now returns the current UTC time with a strictly increasing nanosecond
// value, so two successive mutations never share an UpdatedAt even on a
// coarse system clock.
func Now() time.Time {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastStamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastStamp, last, now) {
			return time.Unix(0, now).UTC()
		}
	}
}
