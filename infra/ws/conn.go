package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/fleetsim/core/model"
)

// conn is one observer connection. It is registered with the manager as an
// observer; once the peer goes away every write fails, which makes the
// manager drop it on the next broadcast.
type conn struct {
	ws       *websocket.Conn
	endpoint string
	timeout  time.Duration

	// gorilla connections support one concurrent writer
	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn, endpoint string, timeout time.Duration) *conn {
	return &conn{ws: ws, endpoint: endpoint, timeout: timeout}
}

// Endpoint implements transport.Observer.
func (c *conn) Endpoint() string { return c.endpoint }

// Deliver implements transport.Observer by pushing an updatePosition
// notification.
func (c *conn) Deliver(ctx context.Context, r model.Report) error {
	err := c.write(ctx, Notification{JSONRPC: version, Method: MethodUpdatePosition, Params: r})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrDelivery, c.endpoint, err)
	}
	return nil
}

func (c *conn) write(ctx context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.Close()
}
