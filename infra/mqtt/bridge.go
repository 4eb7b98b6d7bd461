package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/core/transport"
	"github.com/kilianp07/fleetsim/infra/logger"
	"github.com/kilianp07/fleetsim/internal/registry"
)

// Manager is the part of the fleet manager reachable over MQTT.
type Manager interface {
	CreateVehicle() (string, error)
	RegisterObserver(o transport.Observer) registry.Key
	UpdatePosition(ctx context.Context, r model.Report) error
	Control(ctx context.Context, vehicleID string, cmd model.Command) *transport.Future
}

type subscriber interface {
	publisher
	Subscribe(topic string, qos byte, h Handler) error
}

// Bridge exposes a Manager on the MQTT topics of one fleet.
type Bridge struct {
	cli    subscriber
	mgr    Manager
	cfg    Config
	topics Topics
	log    logger.Logger
	ctx    context.Context
}

// NewBridge returns a bridge for mgr. Handlers run with ctx.
func NewBridge(ctx context.Context, cli subscriber, mgr Manager, cfg Config, log logger.Logger) *Bridge {
	cfg.SetDefaults()
	return &Bridge{cli: cli, mgr: mgr, cfg: cfg, topics: NewTopics(cfg.TopicPrefix), log: log, ctx: ctx}
}

// Start subscribes to the manager topics.
func (b *Bridge) Start() error {
	subs := []struct {
		topic string
		qos   string
		h     Handler
	}{
		{b.topics.Position, QoSPosition, b.handlePosition},
		{b.topics.Control, QoSControl, b.handleControl},
		{b.topics.Register, QoSRegister, b.handleRegister},
		{b.topics.Create, QoSCreate, b.handleCreate},
	}
	for _, s := range subs {
		if err := b.cli.Subscribe(s.topic, b.cfg.qos(s.qos), s.h); err != nil {
			return err
		}
	}
	b.log.Infof("MQTT bridge listening under %s/manager", b.cfg.TopicPrefix)
	return nil
}

func (b *Bridge) handlePosition(payload []byte) {
	var r model.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		b.log.Warnf("invalid position report: %v", err)
		return
	}
	if err := b.mgr.UpdatePosition(b.ctx, r); err != nil {
		b.log.Warnf("position report from %q rejected: %v", r.ID, err)
	}
}

func (b *Bridge) handleControl(payload []byte) {
	var m ControlMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		b.log.Warnf("invalid control message: %v", err)
		return
	}
	if m.ID == "" || m.Method == "" {
		b.log.Warnf("control message needs id and method")
		return
	}
	b.mgr.Control(b.ctx, m.ID, model.Command{Method: m.Method, Params: m.Params})
}

func (b *Bridge) handleRegister(payload []byte) {
	var m RegisterMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		b.log.Warnf("invalid register message: %v", err)
		return
	}
	if err := validName(m.Sender); err != nil {
		b.log.Warnf("register rejected: %v", err)
		return
	}
	o := NewObserver(b.cli, b.topics.Observer(m.Sender), b.cfg.qos(QoSObserver))
	b.mgr.RegisterObserver(o)
	b.log.Infof("registered observer %s", o.Endpoint())
}

func (b *Bridge) handleCreate(_ []byte) {
	id, err := b.mgr.CreateVehicle()
	if err != nil {
		b.log.Errorf("create vehicle: %v", err)
		return
	}
	b.log.Debugf("vehicle %s created over MQTT", id)
}

var errInvalidName = errors.New("invalid observer name")

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/+#") {
		return fmt.Errorf("%w: %q", errInvalidName, name)
	}
	return nil
}
