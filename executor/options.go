package executor

import "time"

// threadPoolOptions holds ThreadPool construction configuration, resolved
// from a ThreadPoolOption slice the way eventloop/options.go resolves
// LoopOption into loopOptions.
type threadPoolOptions struct {
	maxIdleTime time.Duration
}

// ThreadPoolOption configures a ThreadPool at construction time.
type ThreadPoolOption interface {
	applyThreadPool(*threadPoolOptions)
}

type threadPoolOptionFunc func(*threadPoolOptions)

func (f threadPoolOptionFunc) applyThreadPool(o *threadPoolOptions) { f(o) }

// WithMaxIdleTime overrides how long an idle worker waits for new work
// before its goroutine exits (spec.md §4.8 step 3). The default is 60s.
func WithMaxIdleTime(d time.Duration) ThreadPoolOption {
	return threadPoolOptionFunc(func(o *threadPoolOptions) {
		o.maxIdleTime = d
	})
}

func resolveThreadPoolOptions(opts []ThreadPoolOption) threadPoolOptions {
	cfg := threadPoolOptions{maxIdleTime: defaultMaxIdleTime}
	for _, o := range opts {
		if o != nil {
			o.applyThreadPool(&cfg)
		}
	}
	return cfg
}
