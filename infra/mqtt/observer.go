package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/fleetsim/core/model"
)

// Observer forwards reports to an MQTT topic. A publish that fails or is not
// acknowledged in time counts as a delivery failure.
type Observer struct {
	cli   publisher
	topic string
	qos   byte
}

// NewObserver returns an observer publishing on topic.
func NewObserver(cli publisher, topic string, qos byte) *Observer {
	return &Observer{cli: cli, topic: topic, qos: qos}
}

// Endpoint implements transport.Observer.
func (o *Observer) Endpoint() string { return "mqtt://" + o.topic }

// Deliver implements transport.Observer.
func (o *Observer) Deliver(ctx context.Context, r model.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := o.cli.PublishOnce(ctx, o.topic, o.qos, payload); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrDelivery, o.topic, err)
	}
	return nil
}
