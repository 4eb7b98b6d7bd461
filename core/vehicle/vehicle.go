package vehicle

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/fleetsim/core/logger"
	"github.com/kilianp07/fleetsim/core/model"
)

// ManagerLink delivers position reports to the manager.
type ManagerLink interface {
	UpdatePosition(ctx context.Context, r model.Report) error
}

// Option customises a Vehicle.
type Option func(*Vehicle)

// WithClock replaces the monotonic clock.
func WithClock(c Clock) Option {
	return func(v *Vehicle) { v.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Vehicle) { v.log = l }
}

// Vehicle is a simulated point-mass vehicle.
type Vehicle struct {
	id    string
	cfg   Config
	link  ManagerLink
	clock Clock
	log   logger.Logger

	// mu guards every kinematic field so a report never mixes a position
	// with a heading or speed from a different instant.
	mu      sync.Mutex
	started bool // lazily set on first extrapolation
	pos     r2.Vec
	ts      int64
	heading float64
	speed   float64

	// sendMu serialises building and sending a report, so reports reach the
	// manager in timestamp order.
	sendMu sync.Mutex

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a vehicle from cfg. Reports are sent through link.
func New(cfg Config, link ManagerLink, opts ...Option) (*Vehicle, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConstruction, err)
	}
	if link == nil {
		return nil, fmt.Errorf("%w: manager link is required", model.ErrConstruction)
	}
	v := &Vehicle{id: cfg.ID, cfg: cfg, link: link}
	for _, o := range opts {
		o(v)
	}
	if v.clock == nil {
		v.clock = NewMonotonicClock()
	}
	if v.log == nil {
		v.log = logger.Nop{}
	}
	return v, nil
}

// ID returns the immutable identifier of the vehicle.
func (v *Vehicle) ID() string { return v.id }

// Endpoint returns the in-process address of the vehicle.
func (v *Vehicle) Endpoint() string { return Endpoint(v.id) }

// Extrapolate advances the last known position to now under constant heading
// and speed and returns it. The first call places the vehicle at the origin.
// A now earlier than the stored timestamp is treated as no elapsed time.
func (v *Vehicle) Extrapolate(now int64) model.Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.extrapolateLocked(now)
}

func (v *Vehicle) extrapolateLocked(now int64) model.Position {
	if !v.started {
		v.started = true
		v.pos = r2.Vec{}
		v.ts = now
		return v.positionLocked()
	}
	if now > v.ts {
		dt := float64(now-v.ts) / 1000.0
		dir := r2.Vec{X: math.Cos(v.heading), Y: math.Sin(v.heading)}
		v.pos = r2.Add(v.pos, r2.Scale(dt*v.speed, dir))
		v.ts = now
	}
	return v.positionLocked()
}

func (v *Vehicle) positionLocked() model.Position {
	return model.Position{X: v.pos.X, Y: v.pos.Y, Timestamp: v.ts}
}

func (v *Vehicle) stateLocked() model.State {
	return model.State{Position: v.positionLocked(), Heading: v.heading, Speed: v.speed}
}

// refresh extrapolates to the current clock reading, applies mutate while
// still holding the lock and returns the resulting state.
func (v *Vehicle) refresh(mutate func()) model.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extrapolateLocked(v.clock.Now())
	if mutate != nil {
		mutate()
	}
	return v.stateLocked()
}

// Position extrapolates to now and returns the full kinematic state.
func (v *Vehicle) Position() model.State {
	return v.refresh(nil)
}

// SetHeading applies the current heading up to now, replaces it and reports
// the new state immediately.
func (v *Vehicle) SetHeading(ctx context.Context, heading float64) model.State {
	st, _ := v.report(ctx, func() { v.heading = heading })
	return st
}

// SetSpeed applies the current speed up to now, replaces it and reports the
// new state immediately.
func (v *Vehicle) SetSpeed(ctx context.Context, speed float64) model.State {
	st, _ := v.report(ctx, func() { v.speed = speed })
	return st
}

// ReportPosition extrapolates to now and sends the result to the manager.
func (v *Vehicle) ReportPosition(ctx context.Context) error {
	_, err := v.report(ctx, nil)
	return err
}

// report refreshes the state with mutate applied and sends it while holding
// sendMu.
func (v *Vehicle) report(ctx context.Context, mutate func()) (model.State, error) {
	v.sendMu.Lock()
	defer v.sendMu.Unlock()
	st := v.refresh(mutate)
	return st, v.send(ctx, st)
}

func (v *Vehicle) send(ctx context.Context, st model.State) error {
	if err := v.link.UpdatePosition(ctx, model.NewReport(v.id, st)); err != nil {
		v.log.Warnw("couldn't contact manager", map[string]any{
			"vehicle_id": v.id,
			"error":      err,
		})
		return err
	}
	return nil
}

// Start launches the periodic reporter when the report interval is positive.
// Reports are sent sequentially: a tick arriving while a send is still in
// progress is dropped. Calling Start on a running vehicle is a no-op.
func (v *Vehicle) Start(ctx context.Context) {
	interval := v.cfg.ReportInterval()
	if interval <= 0 {
		return
	}
	v.runMu.Lock()
	defer v.runMu.Unlock()
	if v.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan struct{})
	v.log.Debugw("position reporting started", map[string]any{
		"vehicle_id":  v.id,
		"interval_ms": v.cfg.ReportIntervalMS,
	})
	go v.reportLoop(ctx, interval, v.done)
}

func (v *Vehicle) reportLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// failures are logged by send; the next tick retries
			_ = v.ReportPosition(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the periodic reporter and waits for it to exit.
func (v *Vehicle) Stop() {
	v.runMu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
