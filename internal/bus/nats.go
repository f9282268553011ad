// internal/bus/nats.go
package bus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// Client wraps the NATS connection the worker uses to receive batch-run
// requests and publish status traffic.
type Client struct{ nc *nats.Conn }

func Connect(url string) (*Client, error) {
	// A single batch run can hold a worker for many minutes, so the
	// connection has to ride out broker restarts on its own: reconnect
	// forever, and buffer outbound status events across a reconnect
	// rather than drop them mid-run. The 5s timeout only bounds the
	// initial dial.
	nc, err := nats.Connect(url,
		nats.Name("lispbatch-worker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectBufSize(8*1024*1024),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc}, nil
}

func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// QueueSubscribeJSON delivers raw message payloads to handler within a queue
// group, so multiple workers share one stream of batch requests. The engine
// session is singly owned, so a handler occupies its worker until the whole
// run completes.
func (c *Client) QueueSubscribeJSON(subject, queue string, handler func(data []byte)) (*nats.Subscription, error) {
	return c.nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}
