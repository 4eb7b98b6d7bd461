package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/fleetsim/core/model"
)

// publisher is the subset of Client used to send messages.
type publisher interface {
	Publish(ctx context.Context, topic string, qos byte, payload []byte) error
	PublishOnce(ctx context.Context, topic string, qos byte, payload []byte) error
}

// Publisher sends vehicle reports and creation requests to a remote manager.
// It implements vehicle.ManagerLink.
type Publisher struct {
	cli    publisher
	topics Topics
	cfg    Config
}

// NewPublisher returns a Publisher on cli for the topics in cfg.
func NewPublisher(cli publisher, cfg Config) *Publisher {
	cfg.SetDefaults()
	return &Publisher{cli: cli, topics: NewTopics(cfg.TopicPrefix), cfg: cfg}
}

// UpdatePosition publishes r on the manager position topic.
func (p *Publisher) UpdatePosition(ctx context.Context, r model.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := p.cli.PublishOnce(ctx, p.topics.Position, p.cfg.qos(QoSPosition), payload); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDelivery, err)
	}
	return nil
}

// RequestVehicle asks the manager to create one vehicle.
func (p *Publisher) RequestVehicle(ctx context.Context) error {
	return p.cli.Publish(ctx, p.topics.Create, p.cfg.qos(QoSCreate), []byte("{}"))
}

// Control asks the manager to forward cmd to vehicle id.
func (p *Publisher) Control(ctx context.Context, id string, cmd model.Command) error {
	payload, err := json.Marshal(ControlMessage{ID: id, Method: cmd.Method, Params: cmd.Params})
	if err != nil {
		return err
	}
	return p.cli.Publish(ctx, p.topics.Control, p.cfg.qos(QoSControl), payload)
}

// Register subscribes observer name to the fleet reports.
func (p *Publisher) Register(ctx context.Context, name string) error {
	payload, err := json.Marshal(RegisterMessage{Sender: name})
	if err != nil {
		return err
	}
	return p.cli.Publish(ctx, p.topics.Register, p.cfg.qos(QoSRegister), payload)
}
