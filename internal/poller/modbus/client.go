// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/transformer-monitor/internal/poller"
)

// DefaultTimeout bounds both the TCP dial and each request when none is configured.
const DefaultTimeout = 5 * time.Second

// maxReadQuantity is the protocol limit for one read-registers request.
const maxReadQuantity = 125

// Client implements poller.Transport over one Modbus TCP connection.
// It serializes requests because it mutates SlaveId per read.
type Client struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint    string
	Timeout     time.Duration
	IdleTimeout time.Duration // 0 keeps the connection open between polls
}

// New creates an unconnected client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.IdleTimeout = cfg.IdleTimeout

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Dialer returns a poller.Dialer producing goburrow-backed transports.
func Dialer(timeout, idle time.Duration) poller.Dialer {
	return func(ep poller.Endpoint) poller.Transport {
		c, err := New(Config{Endpoint: ep.HostPort(), Timeout: timeout, IdleTimeout: idle})
		if err != nil {
			return brokenTransport{err: err}
		}
		return c
	}
}

func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Connect()
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ReadInputRegisters issues function code 4 for one unit id.
func (c *Client) ReadInputRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) {
	if qty == 0 || qty > maxReadQuantity {
		return nil, fmt.Errorf("%w: quantity %d out of range 1..%d", poller.ErrInvalidParameter, qty, maxReadQuantity)
	}
	if int(addr)+int(qty) > 0x10000 {
		return nil, fmt.Errorf("%w: address %d + quantity %d exceeds register space", poller.ErrInvalidParameter, addr, qty)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	raw, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		// goburrow keeps a broken or desynchronized connection; drop it so the
		// next request redials. Exception responses leave the stream intact.
		var mbErr *modbus.ModbusError
		if !errors.As(err, &mbErr) {
			_ = c.handler.Close()
		}
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, errors.New("modbus: read-registers byte count not even")
	}
	return unpackRegisters(raw), nil
}

// brokenTransport surfaces a construction error on Connect.
type brokenTransport struct{ err error }

func (b brokenTransport) Connect() error { return b.err }
func (b brokenTransport) Close() error   { return nil }
func (b brokenTransport) ReadInputRegisters(uint8, uint16, uint16) ([]uint16, error) {
	return nil, b.err
}

// Modbus register memory order (BIG-ENDIAN)
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
