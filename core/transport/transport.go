// Package transport defines the message endpoints the fleet manager talks
// to and an asynchronous send handle used for fire-and-forget calls.
package transport

import (
	"context"

	"github.com/kilianp07/fleetsim/core/model"
)

// Observer is an endpoint registered to receive position broadcasts.
type Observer interface {
	// Endpoint returns the address of the observer, used for listing and logs.
	Endpoint() string
	// Deliver sends the report. Any error is a delivery failure and causes the
	// observer to be dropped by the manager.
	Deliver(ctx context.Context, r model.Report) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc struct {
	Addr string
	Fn   func(ctx context.Context, r model.Report) error
}

// Endpoint implements Observer.
func (o ObserverFunc) Endpoint() string { return o.Addr }

// Deliver implements Observer.
func (o ObserverFunc) Deliver(ctx context.Context, r model.Report) error { return o.Fn(ctx, r) }
