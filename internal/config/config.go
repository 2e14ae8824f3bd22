// Package config parses the listener's command line.
package config

import (
	"fmt"

	"github.com/alexflint/go-arg"

	"github.com/omochice/tcp-listener/internal/receiver"
)

// Config is the listener's command line. Every bind parameter can also
// come from the environment.
type Config struct {
	Port      int    `arg:"-p,--port,required,env:LISTENER_PORT" help:"server network port"`
	Host      string `arg:"--host,env:LISTENER_HOST" help:"server network hostname"`
	ChunkSize int    `arg:"-c,--chunk-size,env:LISTENER_CHUNK_SIZE" help:"bytes read per chunk; a shorter read ends the message"`
	LogFile   string `arg:"-f,--logfile" help:"file to store logs"`
	Quiet     bool   `arg:"-q,--quiet" help:"do not print response"`
	Pretty    bool   `arg:"--pretty" help:"view logs as a human-readable string instead of raw bytes"`
	Debug     bool   `arg:"-d,--debug,env:LISTENER_DEBUG" help:"set debug log level"`
	Verbose   bool   `arg:"-v,--verbose" help:"same as --debug"`
	Capture   string `arg:"--capture" help:"append every chunk to this file as length-delimited protobuf records"`
}

// Defaults returns a Config holding the default bind parameters. Pass it
// to NewParser so flags and the environment override them.
func Defaults() Config {
	return Config{
		Host:      receiver.DefaultHost,
		ChunkSize: receiver.DefaultChunkSize,
	}
}

// Description is shown at the top of --help.
func (Config) Description() string {
	return "Listen on a TCP port, print what clients send and echo the final chunk back."
}

// Endpoint returns the bind parameters.
func (c Config) Endpoint() receiver.Endpoint {
	return receiver.Endpoint{
		Host:      c.Host,
		Port:      c.Port,
		ChunkSize: c.ChunkSize,
	}
}

// DebugEnabled reports whether debug logging was requested.
func (c Config) DebugEnabled() bool {
	return c.Debug || c.Verbose
}

// Validate checks the bind parameters.
func (c Config) Validate() error {
	return c.Endpoint().Validate()
}

// NewParser returns a parser that fills cfg.
func NewParser(program string, cfg *Config) (*arg.Parser, error) {
	p, err := arg.NewParser(arg.Config{Program: program}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}
	return p, nil
}

// Parse parses args (without the program name) and validates the result.
// It returns arg.ErrHelp when help was requested.
func Parse(args []string) (Config, error) {
	cfg := Defaults()
	p, err := NewParser("listener", &cfg)
	if err != nil {
		return Config{}, err
	}
	if err := p.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
