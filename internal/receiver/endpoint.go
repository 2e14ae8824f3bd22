package receiver

import (
	"fmt"
	"net"
	"strconv"
)

// Defaults used by config.Defaults.
const (
	DefaultHost      = "0.0.0.0"
	DefaultChunkSize = 1024
)

// Endpoint describes where the receiver listens and how much it reads at once.
type Endpoint struct {
	Host      string
	Port      int
	ChunkSize int
}

// Address returns the host:port form accepted by net.Listen.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Validate reports a *ConfigError for an endpoint that cannot be served.
// Port 0 is accepted and binds an ephemeral port.
func (e Endpoint) Validate() error {
	if e.ChunkSize <= 0 {
		return &ConfigError{Field: "chunk size", Err: fmt.Errorf("must be positive, got %d", e.ChunkSize)}
	}
	if e.Port < 0 || e.Port > 65535 {
		return &ConfigError{Field: "port", Err: fmt.Errorf("must be within 0-65535, got %d", e.Port)}
	}
	return nil
}
