// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/pubsub"
)

func TestDefaultConfig(t *testing.T) {
	require := require.New(t)

	c, err := New(nil)
	require.NoError(err)
	require.Equal(logging.Info, c.GetLogLevel())
	require.Equal(DefaultContractAccount, c.ContractAccount)
	require.Equal(DefaultContractAccount, c.Host.Registrar)
	require.Equal(MemoryBackend, c.DatabaseBackend)
	require.Equal(linkdrop.DefaultCallbackGas, c.Linkdrop.CallbackGas)
	require.Zero(c.Linkdrop.AccessKeyAllowance.Cmp(linkdrop.DefaultAccessKeyAllowance))
	require.False(c.GetTraceConfig().Enabled)
}

func TestConfigOverlay(t *testing.T) {
	require := require.New(t)

	c, err := New([]byte(`{
		"logLevel": "debug",
		"contractAccount": "linkdrop.testnet",
		"linkdrop": {"accessKeyAllowance": "10"},
		"databaseBackend": "pebble",
		"databasePath": "/tmp/linkdrop",
		"http": {"shutdownTimeout": 1000000000},
		"trace": {"enabled": true, "traceSampleRate": 0.5}
	}`))
	require.NoError(err)
	require.Equal(logging.Debug, c.GetLogLevel())
	require.Equal(codec.AccountID("linkdrop.testnet"), c.ContractAccount)
	require.Equal(uint64(10), c.Linkdrop.AccessKeyAllowance.Uint64())
	require.Equal(linkdrop.DefaultCallbackGas, c.Linkdrop.CallbackGas)
	require.Equal(PebbleBackend, c.DatabaseBackend)
	require.Equal(time.Second, c.HTTP.ShutdownTimeout)
	require.Equal(30*time.Second, c.HTTP.ReadTimeout)
	require.True(c.Trace.Enabled)
	require.Equal(0.5, c.Trace.TraceSampleRate)

	// Defaults are not shared between configs.
	require.Zero(NewDefaultConfig().Linkdrop.AccessKeyAllowance.Cmp(linkdrop.DefaultAccessKeyAllowance))
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		err  error
	}{
		{
			name: "bad log level",
			cfg:  `{"logLevel": "loud"}`,
			err:  ErrInvalidLogLevel,
		},
		{
			name: "bad contract account",
			cfg:  `{"contractAccount": "Not An Account"}`,
			err:  codec.ErrInvalidAccountID,
		},
		{
			name: "bad registrar",
			cfg:  `{"host": {"registrar": "x"}}`,
			err:  codec.ErrInvalidAccountID,
		},
		{
			name: "unknown backend",
			cfg:  `{"databaseBackend": "leveldb"}`,
			err:  ErrInvalidBackend,
		},
		{
			name: "pebble without path",
			cfg:  `{"databaseBackend": "pebble"}`,
			err:  ErrMissingDatabase,
		},
		{
			name: "zero pong wait",
			cfg:  `{"stream": {"pongWait": 0}}`,
			err:  pubsub.ErrInvalidConfig,
		},
		{
			name: "negative write wait",
			cfg:  `{"stream": {"writeWait": -1}}`,
			err:  pubsub.ErrInvalidConfig,
		},
		{
			name: "zero callback gas",
			cfg:  `{"linkdrop": {"callbackGas": 0}}`,
			err:  linkdrop.ErrInvalidArguments,
		},
		{
			name: "allowance above u128",
			cfg:  `{"linkdrop": {"accessKeyAllowance": "340282366920938463463374607431768211456"}}`,
			err:  linkdrop.ErrInvalidArguments,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.cfg))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfigMalformed(t *testing.T) {
	_, err := New([]byte(`{"logLevel":`))
	require.Error(t, err)
}
