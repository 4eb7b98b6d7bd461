package metrics

import (
	"time"

	"github.com/kilianp07/fleetsim/core/model"
)

// DeliveryEvent describes one attempt to deliver a report to an observer.
type DeliveryEvent struct {
	Endpoint  string
	VehicleID string
	Err       error
	Pruned    bool
	Latency   time.Duration
	Time      time.Time
}

// CommandEvent describes the outcome of a proxied vehicle command.
type CommandEvent struct {
	VehicleID string
	Method    model.Method
	Err       error
	Time      time.Time
}

// Recorder records fleet activity for observability purposes.
type Recorder interface {
	// RecordReport is called for every position report the manager receives.
	RecordReport(r model.Report) error
	RecordDelivery(ev DeliveryEvent) error
	RecordCommand(ev CommandEvent) error
	// RecordFleetSize is called whenever the vehicle or observer count changes.
	RecordFleetSize(vehicles, observers int) error
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordReport(model.Report) error    { return nil }
func (NopRecorder) RecordDelivery(DeliveryEvent) error { return nil }
func (NopRecorder) RecordCommand(CommandEvent) error   { return nil }
func (NopRecorder) RecordFleetSize(int, int) error     { return nil }

// MultiRecorder fans events out to several recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordReport forwards the report to every recorder and returns the first
// error encountered. Every recorder is called even when an earlier one fails.
func (m *MultiRecorder) RecordReport(r model.Report) error {
	return m.each(func(rec Recorder) error { return rec.RecordReport(r) })
}

// RecordDelivery forwards delivery events.
func (m *MultiRecorder) RecordDelivery(ev DeliveryEvent) error {
	return m.each(func(rec Recorder) error { return rec.RecordDelivery(ev) })
}

// RecordCommand forwards command events.
func (m *MultiRecorder) RecordCommand(ev CommandEvent) error {
	return m.each(func(rec Recorder) error { return rec.RecordCommand(ev) })
}

// RecordFleetSize forwards fleet size updates.
func (m *MultiRecorder) RecordFleetSize(vehicles, observers int) error {
	return m.each(func(rec Recorder) error { return rec.RecordFleetSize(vehicles, observers) })
}

func (m *MultiRecorder) each(fn func(Recorder) error) error {
	var first error
	for _, rec := range m.Recorders {
		if err := fn(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every wrapped recorder.
func (m *MultiRecorder) Close() {
	for _, rec := range m.Recorders {
		Close(rec)
	}
}

// Close releases the resources held by rec, if any.
func Close(rec Recorder) {
	switch c := rec.(type) {
	case interface{ Close() error }:
		_ = c.Close()
	case interface{ Close() }:
		c.Close()
	}
}
