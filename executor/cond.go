package executor

import (
	"sync"
	"time"
)

// waitOnCond blocks on c for up to d, the way sync.Cond has no built-in
// timeout. The caller must hold c.L when calling, exactly as for c.Wait.
// A spurious or timeout wake re-enters the caller's own loop to recheck its
// condition and remaining deadline, matching spec.md §4.8's "spurious
// wake-ups re-enter the wait with the remaining deadline" note for the
// thread-pool worker's semaphore wait.
func waitOnCond(c *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		c.L.Lock()
		c.Broadcast()
		c.L.Unlock()
	})
	defer timer.Stop()
	c.Wait()
}
