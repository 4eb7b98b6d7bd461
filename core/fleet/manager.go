package fleet

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetsim/core/logger"
	"github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/core/transport"
	"github.com/kilianp07/fleetsim/core/vehicle"
	"github.com/kilianp07/fleetsim/internal/registry"
)

// LinkFactory returns the link a newly created vehicle reports through.
type LinkFactory func(cfg vehicle.Config) (vehicle.ManagerLink, error)

// Option customises a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its vehicles.
func WithLogger(l logger.Logger) Option { return func(m *Manager) { m.log = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(m *Manager) { m.metrics = r } }

// WithLinkFactory overrides how vehicles reach the manager. By default
// vehicles report to the manager directly.
func WithLinkFactory(f LinkFactory) Option { return func(m *Manager) { m.links = f } }

// WithIDGenerator replaces the uuid based vehicle id generator.
func WithIDGenerator(f func() string) Option { return func(m *Manager) { m.newID = f } }

// WithClock sets the clock handed to created vehicles.
func WithClock(c vehicle.Clock) Option { return func(m *Manager) { m.clock = c } }

// Manager tracks vehicles and observers, relays position reports to every
// observer and proxies observer commands to vehicles.
type Manager struct {
	cfg       Config
	vehicles  *registry.Index[string, *vehicle.Vehicle]
	observers *registry.Set[transport.Observer]
	links     LinkFactory
	newID     func() string
	clock     vehicle.Clock
	log       logger.Logger
	metrics   metrics.Recorder

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewManager validates cfg and returns a Manager. A broken vehicle template
// is reported here rather than on the first CreateVehicle call.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConstruction, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:       cfg,
		vehicles:  registry.NewIndex[string, *vehicle.Vehicle](),
		observers: registry.NewSet[transport.Observer](),
		newID:     uuid.NewString,
		log:       logger.Nop{},
		metrics:   metrics.NopRecorder{},
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, o := range opts {
		o(m)
	}
	if m.links == nil {
		m.links = func(vehicle.Config) (vehicle.ManagerLink, error) { return m, nil }
	}
	return m, nil
}

// CreateVehicle builds a vehicle from the base template with a fresh id,
// starts its reporter and registers it.
func (m *Manager) CreateVehicle() (string, error) {
	id := m.newID()
	cfg := m.cfg.Vehicle.WithID(id)
	link, err := m.links(cfg)
	if err != nil {
		return "", fmt.Errorf("%w: link for %s: %v", model.ErrConstruction, id, err)
	}
	opts := []vehicle.Option{vehicle.WithLogger(m.log)}
	if m.clock != nil {
		opts = append(opts, vehicle.WithClock(m.clock))
	}
	v, err := vehicle.New(cfg, link, opts...)
	if err != nil {
		return "", err
	}
	if !m.vehicles.Put(id, v) {
		return "", fmt.Errorf("%w: duplicate id %s", model.ErrConstruction, id)
	}
	v.Start(m.ctx)
	m.log.Infof("created vehicle %s", id)
	m.recordFleetSize()
	return id, nil
}

// Vehicle resolves id to a local vehicle.
func (m *Manager) Vehicle(id string) (*vehicle.Vehicle, bool) {
	return m.vehicles.Get(id)
}

// ListVehicles returns a snapshot of the vehicle endpoints.
func (m *Manager) ListVehicles() []string {
	vs := m.vehicles.Values()
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Endpoint())
	}
	return out
}

// States extrapolates every vehicle to now and returns their states, sorted
// by id.
func (m *Manager) States() []model.Report {
	ids := m.vehicles.Keys()
	slices.Sort(ids)
	out := make([]model.Report, 0, len(ids))
	for _, id := range ids {
		if v, ok := m.vehicles.Get(id); ok {
			out = append(out, model.NewReport(id, v.Position()))
		}
	}
	return out
}

// ListObservers returns a snapshot of the observer endpoints. An observer
// registered twice is listed twice.
func (m *Manager) ListObservers() []string {
	obs := m.observers.Values()
	out := make([]string, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.Endpoint())
	}
	return out
}

// RegisterObserver adds o to the broadcast set. Registrations are not
// deduplicated.
func (m *Manager) RegisterObserver(o transport.Observer) registry.Key {
	k := m.observers.Add(o)
	m.log.Infof("registered observer %s", o.Endpoint())
	m.recordFleetSize()
	return k
}

// UpdatePosition relays r to every registered observer. Observers whose
// delivery fails are removed and receive no further broadcasts. Delivery
// failures never surface to the caller.
func (m *Manager) UpdatePosition(ctx context.Context, r model.Report) error {
	if !r.Valid() {
		return fmt.Errorf("%w: malformed position report", model.ErrInvalidParams)
	}
	if err := m.metrics.RecordReport(r); err != nil {
		m.log.Debugf("record report: %v", err)
	}
	var g errgroup.Group
	g.SetLimit(m.cfg.FanOut)
	for _, e := range m.observers.Snapshot() {
		g.Go(func() error {
			m.deliver(ctx, e, r)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (m *Manager) deliver(ctx context.Context, e registry.Entry[transport.Observer], r model.Report) {
	if timeout := m.cfg.DeliveryTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	err := e.Value.Deliver(ctx, r)
	ev := metrics.DeliveryEvent{
		Endpoint:  e.Value.Endpoint(),
		VehicleID: r.ID,
		Err:       err,
		Latency:   time.Since(start),
		Time:      start,
	}
	if err != nil {
		ev.Pruned = m.observers.Remove(e.Key)
		m.log.Warnw("couldn't update observer, dropping it", map[string]any{
			"endpoint":   ev.Endpoint,
			"vehicle_id": r.ID,
			"error":      err,
		})
	}
	if rerr := m.metrics.RecordDelivery(ev); rerr != nil {
		m.log.Debugf("record delivery: %v", rerr)
	}
	if ev.Pruned {
		m.recordFleetSize()
	}
}

// Control forwards cmd to the vehicle identified by vehicleID without
// waiting for it to run. Failures, including an unknown id, are logged with
// the vehicle id and never reported to the caller. The returned Future may
// be ignored.
func (m *Manager) Control(ctx context.Context, vehicleID string, cmd model.Command) *transport.Future {
	ctx = context.WithoutCancel(ctx)
	m.inflight.Add(1)
	f := transport.Go(func() error {
		v, ok := m.vehicles.Get(vehicleID)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrVehicleNotFound, vehicleID)
		}
		_, err := v.Invoke(ctx, cmd)
		return err
	})
	f.OnComplete(func(err error) {
		defer m.inflight.Done()
		if rerr := m.metrics.RecordCommand(metrics.CommandEvent{
			VehicleID: vehicleID,
			Method:    cmd.Method,
			Err:       err,
			Time:      time.Now(),
		}); rerr != nil {
			m.log.Debugf("record command: %v", rerr)
		}
		if err != nil {
			m.log.Errorw("vehicle couldn't be controlled", map[string]any{
				"vehicle_id": vehicleID,
				"method":     cmd.Method.String(),
				"error":      err,
			})
		}
	})
	return f
}

// Wait blocks until every command issued through Control has completed.
func (m *Manager) Wait() { m.inflight.Wait() }

// Close stops every vehicle reporter and waits for in-flight commands.
func (m *Manager) Close() error {
	m.cancel()
	for _, v := range m.vehicles.Values() {
		v.Stop()
	}
	m.inflight.Wait()
	return nil
}

func (m *Manager) recordFleetSize() {
	if err := m.metrics.RecordFleetSize(m.vehicles.Len(), m.observers.Len()); err != nil {
		m.log.Debugf("record fleet size: %v", err)
	}
}
