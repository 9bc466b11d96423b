package dtu

import (
	"errors"
	"log/slog"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig) error

// clientConfig holds the configuration assembled from ClientOptions.
type clientConfig struct {
	port           int
	localAddr      string
	connectTimeout time.Duration
	readTimeout    time.Duration
	rateLimit      time.Duration
	encRand        []byte
	logger         *slog.Logger
}

// defaultConfig returns the default client configuration (§4.3).
func defaultConfig() *clientConfig {
	return &clientConfig{
		port:           10081,
		connectTimeout: 5 * time.Second,
		readTimeout:    5 * time.Second,
		rateLimit:      2 * time.Second,
		logger:         nil,
	}
}

// WithPort sets the TCP port to connect to.
// Default is 10081.
func WithPort(port int) ClientOption {
	return func(c *clientConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		c.port = port
		return nil
	}
}

// WithLocalAddr sets the local address the outbound connection binds to.
// Use port 0 to let the OS assign an ephemeral port.
func WithLocalAddr(addr string) ClientOption {
	return func(c *clientConfig) error {
		c.localAddr = addr
		return nil
	}
}

// WithConnectTimeout sets the timeout for establishing a connection.
// Default is 5 seconds.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d <= 0 {
			return errors.New("connect timeout must be positive")
		}
		c.connectTimeout = d
		return nil
	}
}

// WithReadTimeout sets the timeout for reading the device's reply.
// Default is 5 seconds.
func WithReadTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d <= 0 {
			return errors.New("read timeout must be positive")
		}
		c.readTimeout = d
		return nil
	}
}

// WithRateLimit overrides the minimum gap enforced between the completion
// of one request and the start of the next. Default is 2 seconds; tests
// that need a tight feedback loop against a scripted device may lower it.
func WithRateLimit(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d < 0 {
			return errors.New("rate limit must not be negative")
		}
		c.rateLimit = d
		return nil
	}
}

// WithEncryption opts the session into AES-128-GCM sealing (§4.2). encRand
// must be exactly 16 bytes; it is obtained out of band, typically by
// reading the app-info-data reply's encryption-capability bit first.
func WithEncryption(encRand []byte) ClientOption {
	return func(c *clientConfig) error {
		if len(encRand) != 16 {
			return errors.New("encRand must be exactly 16 bytes")
		}
		buf := make([]byte, 16)
		copy(buf, encRand)
		c.encRand = buf
		return nil
	}
}

// WithLogger sets a structured logger for DEBUG-level failure logging.
// By default, no logging is performed.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) error {
		c.logger = logger
		return nil
	}
}
