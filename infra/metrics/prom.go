package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/model"
)

// PromRecorder records fleet activity in Prometheus metrics.
type PromRecorder struct {
	reports    *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	prunes     prometheus.Counter
	latency    prometheus.Histogram
	commands   *prometheus.CounterVec
	vehicles   prometheus.Gauge
	observers  prometheus.Gauge
}

// NewPromRecorder registers fleet metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reports, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_position_reports_total",
		Help: "Total number of position reports received by the manager",
	}, []string{"vehicle_id"}))
	if err != nil {
		return nil, err
	}
	deliveries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_observer_deliveries_total",
		Help: "Total number of report deliveries to observers",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	prunes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_observer_prunes_total",
		Help: "Observers removed after a failed delivery",
	}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleet_observer_delivery_seconds",
		Help:    "Time spent delivering a report to one observer",
		Buckets: prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}
	commands, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_vehicle_commands_total",
		Help: "Commands proxied to vehicles",
	}, []string{"method", "result"}))
	if err != nil {
		return nil, err
	}
	vehicles, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_vehicles",
		Help: "Number of vehicles known to the manager",
	}))
	if err != nil {
		return nil, err
	}
	observers, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_observers",
		Help: "Number of registered observers",
	}))
	if err != nil {
		return nil, err
	}
	return &PromRecorder{
		reports:    reports,
		deliveries: deliveries,
		prunes:     prunes,
		latency:    latency,
		commands:   commands,
		vehicles:   vehicles,
		observers:  observers,
	}, nil
}

// register registers c, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordReport increments the per-vehicle report counter.
func (p *PromRecorder) RecordReport(r model.Report) error {
	p.reports.WithLabelValues(r.ID).Inc()
	return nil
}

// RecordDelivery counts the delivery and its latency.
func (p *PromRecorder) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	p.deliveries.WithLabelValues(result(ev.Err)).Inc()
	p.latency.Observe(ev.Latency.Seconds())
	if ev.Pruned {
		p.prunes.Inc()
	}
	return nil
}

// RecordCommand counts proxied commands by method and outcome.
func (p *PromRecorder) RecordCommand(ev coremetrics.CommandEvent) error {
	p.commands.WithLabelValues(ev.Method.String(), result(ev.Err)).Inc()
	return nil
}

// RecordFleetSize sets the vehicle and observer gauges.
func (p *PromRecorder) RecordFleetSize(vehicles, observers int) error {
	p.vehicles.Set(float64(vehicles))
	p.observers.Set(float64(observers))
	return nil
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
