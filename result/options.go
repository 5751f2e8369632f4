package result

import "github.com/joeycumines/go-concurrentrt/executor"

// thenOptions configures Result.Then, mirroring eventloop/promise.go's
// ChainedPromise.addHandler(loop, force) pair of parameters, generalized
// into functional options the way eventloop/options.go configures Loop.
type thenOptions struct {
	executor executor.Executor
	force    bool
}

// ThenOption configures a single Result.Then call.
type ThenOption interface {
	applyThen(*thenOptions)
}

type thenOptionFunc func(*thenOptions)

func (f thenOptionFunc) applyThen(o *thenOptions) { f(o) }

// WithExecutor routes the continuation through ex instead of running it
// inline on whichever goroutine settles the result (the producer's own
// goroutine, or the installing goroutine if already ready). Matches
// concurrencpp's await_via executor argument.
func WithExecutor(ex executor.Executor) ThenOption {
	return thenOptionFunc(func(o *thenOptions) { o.executor = ex })
}

// WithForceReschedule requires the continuation to always go through
// WithExecutor's executor, even if the result is already ready at the time
// Then is called. Without this option, an already-ready result's
// continuation runs inline on the calling goroutine, matching
// concurrencpp's await_via force_reschedule argument.
func WithForceReschedule(force bool) ThenOption {
	return thenOptionFunc(func(o *thenOptions) { o.force = force })
}

func resolveThenOptions(opts []ThenOption) thenOptions {
	var o thenOptions
	for _, opt := range opts {
		opt.applyThen(&o)
	}
	return o
}
