package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fleetsim/infra/logger"
)

// ErrTimeout is returned when the broker does not complete an operation in time.
var ErrTimeout = errors.New("mqtt operation timed out")

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Handler processes the payload of one incoming message.
type Handler func(payload []byte)

type subscription struct {
	qos byte
	h   Handler
}

// Client is a Paho connection that restores its subscriptions after a
// reconnect and bounds every publish.
type Client struct {
	cli        pahoClient
	log        logger.Logger
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	mu   sync.Mutex
	subs map[string]subscription
}

// Connect dials the broker described by cfg.
func Connect(cfg Config, log logger.Logger) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mqtt config: %w", err)
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := &Client{
		log:        log,
		timeout:    cfg.Timeout(),
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		subs:       make(map[string]subscription),
	}
	opts.OnConnect = func(pc paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		c.resubscribe(pc)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c.cli = newMQTTClient(opts)
	if err := c.wait(context.Background(), c.cli.Connect()); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return c, nil
}

func (c *Client) resubscribe(pc paho.Client) {
	c.mu.Lock()
	subs := make(map[string]subscription, len(c.subs))
	for t, s := range c.subs {
		subs[t] = s
	}
	c.mu.Unlock()
	for topic, s := range subs {
		if token := pc.Subscribe(topic, s.qos, wrap(s.h)); token.Wait() && token.Error() != nil {
			c.log.Errorf("resubscribe %s: %v", topic, token.Error())
		}
	}
}

func wrap(h Handler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) { h(msg.Payload()) }
}

// Subscribe registers h for topic. The subscription survives reconnects.
func (c *Client) Subscribe(topic string, qos byte, h Handler) error {
	c.mu.Lock()
	c.subs[topic] = subscription{qos: qos, h: h}
	c.mu.Unlock()
	if err := c.wait(context.Background(), c.cli.Subscribe(topic, qos, wrap(h))); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends payload to topic, retrying up to the configured count. It
// fails when the broker does not acknowledge before the timeout or ctx ends.
func (c *Client) Publish(ctx context.Context, topic string, qos byte, payload []byte) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err = c.wait(ctx, c.cli.Publish(topic, qos, false, payload)); err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == c.maxRetries {
			break
		}
		c.log.Debugf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		select {
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// PublishOnce sends payload to topic in a single attempt. Vehicle reports and
// observer deliveries use it: their failures are terminal.
func (c *Client) PublishOnce(ctx context.Context, topic string, qos byte, payload []byte) error {
	if err := c.wait(ctx, c.cli.Publish(topic, qos, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context, token paho.Token) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect gracefully closes the MQTT connection.
func (c *Client) Disconnect() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
