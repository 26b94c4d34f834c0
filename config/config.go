// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//nolint:revive
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/pebble"
	"github.com/ava-labs/linkdrop/pubsub"
	"github.com/ava-labs/linkdrop/server"
	"github.com/ava-labs/linkdrop/trace"
)

const (
	MemoryBackend = "memdb"
	PebbleBackend = "pebble"

	DefaultContractAccount codec.AccountID = "testnet"
	DefaultHTTPAddress                     = "127.0.0.1:9650"
)

var (
	ErrInvalidBackend  = errors.New("invalid database backend")
	ErrMissingDatabase = errors.New("pebble backend requires a database path")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type Config struct {
	// Logging
	LogLevel     string `json:"logLevel"`
	LogDirectory string `json:"logDirectory"`

	// Contract
	ContractAccount codec.AccountID `json:"contractAccount"`
	Linkdrop        linkdrop.Config `json:"linkdrop"`
	Host            host.Config     `json:"host"`

	// Storage
	DatabaseBackend string        `json:"databaseBackend"`
	DatabasePath    string        `json:"databasePath"`
	Pebble          pebble.Config `json:"pebble"`

	// API
	HTTPAddress string              `json:"httpAddress"`
	HTTP        server.HTTPConfig   `json:"http"`
	Stream      pubsub.ServerConfig `json:"stream"`

	// Tracing
	Trace trace.Config `json:"trace"`
}

func NewDefaultConfig() *Config {
	hostCfg := host.NewDefaultConfig()
	hostCfg.Registrar = DefaultContractAccount
	return &Config{
		LogLevel:        "info",
		ContractAccount: DefaultContractAccount,
		Linkdrop:        linkdrop.NewDefaultConfig(),
		Host:            hostCfg,
		DatabaseBackend: MemoryBackend,
		Pebble:          pebble.NewDefaultConfig(),
		HTTPAddress:     DefaultHTTPAddress,
		HTTP:            server.NewDefaultHTTPConfig(),
		Stream:          pubsub.NewDefaultServerConfig(),
		Trace:           trace.NewDefaultConfig(),
	}
}

// New overlays [b] on the defaults. Empty input yields the defaults.
func New(b []byte) (*Config, error) {
	c := NewDefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Verify() error {
	if _, err := logging.ToLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if err := c.ContractAccount.Verify(); err != nil {
		return fmt.Errorf("contract account: %w", err)
	}
	if err := c.Host.Registrar.Verify(); err != nil {
		return fmt.Errorf("registrar: %w", err)
	}
	switch c.DatabaseBackend {
	case MemoryBackend:
	case PebbleBackend:
		if len(c.DatabasePath) == 0 {
			return ErrMissingDatabase
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.DatabaseBackend)
	}
	if err := c.Stream.Verify(); err != nil {
		return err
	}
	// Rejects the linkdrop parameters the contract would refuse.
	_, err := linkdrop.New(c.Linkdrop)
	return err
}

func (c *Config) GetLogLevel() logging.Level {
	level, err := logging.ToLevel(c.LogLevel)
	if err != nil {
		return logging.Info
	}
	return level
}

func (c *Config) GetTraceConfig() *trace.Config { return &c.Trace }
