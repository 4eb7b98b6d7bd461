package transport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/fleetsim/core/model"
)

func TestFutureWaitReturnsError(t *testing.T) {
	boom := errors.New("boom")
	f := Go(func() error { return boom })
	assert.ErrorIs(t, f.Wait(), boom)
	<-f.Done()
}

func TestFutureOnCompleteBeforeAndAfter(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	f := Go(func() error {
		<-release
		return nil
	})
	f.OnComplete(func(err error) {
		assert.NoError(t, err)
		calls.Add(1)
	})
	close(release)
	assert.NoError(t, f.Wait())

	f.OnComplete(func(err error) { calls.Add(1) })
	// handlers registered before completion run on the completing goroutine,
	// after done is closed; wait for them to settle
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, timeout, tick)
}

func TestObserverFunc(t *testing.T) {
	var got model.Report
	o := ObserverFunc{Addr: "mem://1", Fn: func(_ context.Context, r model.Report) error {
		got = r
		return nil
	}}
	assert.Equal(t, "mem://1", o.Endpoint())
	assert.NoError(t, o.Deliver(context.Background(), model.Report{ID: "v"}))
	assert.Equal(t, "v", got.ID)
}
