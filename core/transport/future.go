package transport

import "sync"

// Future is the handle of an asynchronous send. It completes exactly once.
type Future struct {
	done chan struct{}
	err  error

	mu       sync.Mutex
	handlers []func(error)
}

// Go runs fn in a new goroutine and returns its Future.
func Go(fn func() error) *Future {
	f := &Future{done: make(chan struct{})}
	go f.complete(fn)
	return f
}

func (f *Future) complete(fn func() error) {
	err := fn()
	f.mu.Lock()
	f.err = err
	close(f.done)
	hs := f.handlers
	f.handlers = nil
	f.mu.Unlock()
	for _, h := range hs {
		h(err)
	}
}

// OnComplete registers h to be called with the result. Handlers run on the
// goroutine that completed the send, or immediately when already complete,
// so they must synchronise access to shared state themselves.
func (f *Future) OnComplete(h func(error)) *Future {
	f.mu.Lock()
	select {
	case <-f.done:
		err := f.err
		f.mu.Unlock()
		h(err)
	default:
		f.handlers = append(f.handlers, h)
		f.mu.Unlock()
	}
	return f
}

// Done is closed once the send finished.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the send finished and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}
