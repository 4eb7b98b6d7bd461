package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetsim/api/vehicles"
	"github.com/kilianp07/fleetsim/config"
	"github.com/kilianp07/fleetsim/core/fleet"
	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/vehicle"
	"github.com/kilianp07/fleetsim/infra/logger"
	"github.com/kilianp07/fleetsim/infra/metrics"
	"github.com/kilianp07/fleetsim/infra/mqtt"
	"github.com/kilianp07/fleetsim/infra/ws"
)

// Service wires the fleet manager to its transports and metrics.
type Service struct {
	Manager  *fleet.Manager
	cfg      *config.Config
	gateway  *ws.Server
	mqtt     *mqtt.Client
	recorder coremetrics.Recorder
	logFile  io.Closer
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	svc := &Service{cfg: cfg}
	if lc := cfg.Logging; lc.Path != "" {
		f, err := logger.EnableFile(logger.FileConfig{
			Path:       lc.Path,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
		})
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		svc.logFile = f
	}
	svc.log = logger.New("service")

	rec, err := coremetrics.NewRecorder(cfg.Metrics.Recorders)
	if err != nil {
		svc.release()
		return nil, fmt.Errorf("metrics recorder: %w", err)
	}
	svc.recorder = rec
	opts := []fleet.Option{
		fleet.WithLogger(logger.New("manager")),
		fleet.WithRecorder(rec),
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT, logger.New("mqtt_client"))
		if err != nil {
			svc.release()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
		if cfg.Manager.Vehicle.Manager == vehicle.ManagerMQTT {
			pub := mqtt.NewPublisher(client, cfg.MQTT)
			opts = append(opts, fleet.WithLinkFactory(func(vehicle.Config) (vehicle.ManagerLink, error) {
				return pub, nil
			}))
		}
	}

	manager, err := fleet.NewManager(cfg.Manager, opts...)
	if err != nil {
		svc.release()
		return nil, fmt.Errorf("fleet manager: %w", err)
	}
	svc.Manager = manager
	svc.gateway = ws.NewServer(cfg.Server, manager, logger.New("gateway"))
	svc.gateway.Mount(func(mux *http.ServeMux) { vehicles.Register(mux, manager) })
	return svc, nil
}

// Run starts the transports and blocks until the context is cancelled or one
// of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.mqtt != nil {
		bridge := mqtt.NewBridge(ctx, s.mqtt, s.Manager, s.cfg.MQTT, logger.New("mqtt_bridge"))
		if err := bridge.Start(); err != nil {
			return fmt.Errorf("mqtt bridge: %w", err)
		}
	}
	s.log.Infof("fleet service started, vehicles report via %s", s.cfg.Manager.Vehicle.Manager)
	g.Go(func() error { return s.gateway.Run(ctx) })
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, addr, logger.New("prometheus"))
		})
	}
	return g.Wait()
}

// Close stops every vehicle and releases resources held by the service.
func (s *Service) Close() error {
	err := s.Manager.Close()
	s.release()
	return err
}

// release disconnects from the broker, then closes recorders and the log file.
func (s *Service) release() {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.recorder != nil {
		coremetrics.Close(s.recorder)
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			s.log.Errorf("close log file: %v", err)
		}
	}
}
