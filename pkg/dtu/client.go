package dtu

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Client talks to one DeviceEndpoint (§3). All exported operations funnel
// through roundTrip, which holds the per-endpoint lock for the duration of
// exactly one request (§4.3, §5): at most one request is in flight, and
// concurrent callers wait on a sync.Mutex, which does not guarantee that
// they are served in arrival order.
type Client struct {
	host string
	cfg  *clientConfig

	mu            sync.Mutex
	seq           uint16
	lastRequestAt time.Time
	state         ConnectionState
	dtuSerial     uint64 // learned from a prior extended-frame reply, 0 until then
}

// NewClient creates a client targeting host (IPv4 or hostname). No network
// I/O happens until the first operation is invoked: there is no persistent
// connection (§1 Non-goals).
func NewClient(host string, opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("dtu: invalid option: %w", err)
		}
	}
	return &Client{host: host, cfg: cfg, state: StateUnknown}, nil
}

// State returns the client's current ConnectionState (§3). It is purely
// observational.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s ConnectionState) {
	c.state = s
}

func (c *Client) logDebug(msg string, args ...any) {
	if c.cfg.logger != nil {
		c.cfg.logger.Debug(msg, args...)
	}
}

// nextSequence bumps the 16-bit sequence counter (mod 2^16). Must be
// called with mu held.
func (c *Client) nextSequence() uint16 {
	c.seq++
	return c.seq
}

// waitForRateLimit sleeps out the remainder of the rate-limit window, if
// any, since the previous request completed. Must be called with mu held.
func (c *Client) waitForRateLimit() {
	if c.lastRequestAt.IsZero() {
		return
	}
	elapsed := time.Since(c.lastRequestAt)
	if remaining := c.cfg.rateLimit - elapsed; remaining > 0 {
		time.Sleep(remaining)
	}
}

// roundTripRequest is the per-call payload handed to roundTrip.
type roundTripRequest struct {
	descriptor commandDescriptor
	payload    []byte
	number     uint16 // extended frames only; 0 means "use descriptor default"
}

// roundTrip performs exactly one request/response cycle against the
// device: dial, write, read, validate, decode (§4.3). It always returns
// with the per-endpoint lock released and lastRequestAt updated, matching
// the rate-limit invariant for the *next* call regardless of outcome.
func (c *Client) roundTrip(ctx context.Context, req roundTripRequest) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waitForRateLimit()
	defer func() { c.lastRequestAt = time.Now() }()

	sequence := c.nextSequence()
	desc := req.descriptor

	encrypted := len(c.cfg.encRand) == 16 && desc.framing == framingStandard && !desc.encryptExempt

	payload := req.payload
	if encrypted {
		sealed, err := sealPayload(c.cfg.encRand, desc.id, sequence, payload)
		if err != nil {
			return nil, fmt.Errorf("dtu: seal payload: %w", err)
		}
		payload = sealed
	}

	var wire []byte
	switch desc.framing {
	case framingExtended:
		number := req.number
		if number == 0 {
			number = desc.defaultNumber
		}
		wire = encodeExtendedFrame(desc.id, sequence, c.dtuSerial, number, payload)
	default:
		wire = encodeStandardFrame(desc.id, sequence, payload, encrypted)
	}

	respBuf, err := c.send(ctx, wire)
	if err != nil {
		c.setState(StateOffline)
		c.logDebug("dtu: transport failure", "command", desc.id, "error", err)
		return nil, err
	}

	var respPayload []byte
	switch desc.framing {
	case framingExtended:
		_, _, _, serial, p, derr := decodeExtendedFrame(respBuf)
		if derr != nil {
			c.setState(StateUnknown)
			c.logDebug("dtu: extended frame decode failure", "command", desc.id, "error", derr)
			return nil, derr
		}
		if serial != 0 {
			c.dtuSerial = serial
		}
		respPayload = p
	default:
		_, _, p, derr := decodeStandardFrame(respBuf, encrypted)
		if derr != nil {
			c.setState(StateUnknown)
			c.logDebug("dtu: frame decode failure", "command", desc.id, "error", derr)
			return nil, derr
		}
		respPayload = p
	}

	if encrypted {
		opened, derr := openPayload(c.cfg.encRand, desc.id, sequence, respPayload)
		if derr != nil {
			c.setState(StateUnknown)
			c.logDebug("dtu: decrypt failure", "command", desc.id, "error", derr)
			return nil, derr
		}
		respPayload = opened
	}

	if len(respPayload) == 0 {
		c.setState(StateUnknown)
		c.logDebug("dtu: empty response", "command", desc.id)
		return nil, ErrEmptyResponse
	}

	c.setState(StateOnline)
	return respPayload, nil
}

// send opens a fresh TCP connection, writes wire, reads up to one reply,
// and closes the connection on every exit path (§4.3, §5).
func (c *Client) send(ctx context.Context, wire []byte) ([]byte, error) {
	dialer := &net.Dialer{Timeout: c.cfg.connectTimeout}
	if c.cfg.localAddr != "" {
		addr, err := net.ResolveTCPAddr("tcp", c.cfg.localAddr)
		if err != nil {
			return nil, fmt.Errorf("dtu: resolve local address: %w", err)
		}
		dialer.LocalAddr = addr
	}

	connectCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, c.cfg.connectTimeout)
		defer cancel()
	}

	addr := net.JoinHostPort(c.host, fmt.Sprintf("%d", c.cfg.port))
	conn, err := dialer.DialContext(connectCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dtu: dial: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(wire); err != nil {
		return nil, fmt.Errorf("dtu: write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.readTimeout)); err != nil {
		return nil, fmt.Errorf("dtu: set read deadline: %w", err)
	}

	buf := make([]byte, maxReadBytes)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("dtu: read: %w", err)
	}

	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}
