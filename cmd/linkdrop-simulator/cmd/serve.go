// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/config"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/pubsub"
	"github.com/ava-labs/linkdrop/rpc"
	"github.com/ava-labs/linkdrop/server"
)

const (
	metricsEndpoint = "/ext/metrics"

	genesisFlag     = "genesis"
	httpAddressFlag = "http-address"
)

// GenesisAccount is an account in a serve genesis file. Keys are named
// keys or the text form of ed25519 public keys.
type GenesisAccount struct {
	ID       codec.AccountID `yaml:"id" json:"id"`
	Balance  string          `yaml:"balance" json:"balance"`
	Keys     []string        `yaml:"keys" json:"keys"`
	Linkdrop bool            `yaml:"linkdrop,omitempty" json:"linkdrop,omitempty"`
}

type serveCmd struct {
	s           *simulator
	genesisPath string
}

func newServeCmd(s *simulator) *cobra.Command {
	c := &serveCmd{s: s}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the linkdrop JSON-RPC API over the simulator state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.closing(func() error {
				ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer cancel()
				return c.Run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&c.genesisPath, genesisFlag, "", "JSON or YAML file of accounts to create before serving")
	cmd.Flags().String(httpAddressFlag, config.DefaultHTTPAddress, "address the API listens on")
	if err := s.v.BindPFlag("httpAddress", cmd.Flags().Lookup(httpAddressFlag)); err != nil {
		panic(err)
	}
	return cmd
}

func (c *serveCmd) genesis(ctx context.Context) ([]*host.GenesisAccount, error) {
	b, err := os.ReadFile(c.genesisPath)
	if err != nil {
		return nil, err
	}
	var accounts []*GenesisAccount
	if json.Valid(b) {
		err = json.Unmarshal(b, &accounts)
	} else {
		err = yaml.Unmarshal(b, &accounts)
	}
	if err != nil {
		return nil, err
	}

	genesis := make([]*host.GenesisAccount, 0, len(accounts))
	for _, a := range accounts {
		balance, err := parseAmount(a.Balance)
		if err != nil {
			return nil, err
		}
		ga := &host.GenesisAccount{
			ID:      a.ID,
			Balance: balance,
			Keys:    make([]ed25519.PublicKey, 0, len(a.Keys)),
		}
		for _, name := range a.Keys {
			pk, err := c.s.publicKey(ctx, name)
			if err != nil {
				return nil, err
			}
			ga.Keys = append(ga.Keys, pk)
		}
		if a.Linkdrop {
			ga.Code = linkdrop.Code
		}
		genesis = append(genesis, ga)
	}
	return genesis, nil
}

// Run serves until [ctx] is done.
func (c *serveCmd) Run(ctx context.Context) error {
	s := c.s
	if len(c.genesisPath) > 0 {
		genesis, err := c.genesis(ctx)
		if err != nil {
			return err
		}
		if err := s.runtime.Genesis(ctx, genesis); err != nil {
			return err
		}
	}

	listener, err := net.Listen("tcp", s.config.HTTPAddress)
	if err != nil {
		return err
	}
	return c.serve(ctx, listener)
}

func (c *serveCmd) serve(ctx context.Context, listener net.Listener) error {
	s := c.s
	srv := server.New(s.log, listener, s.config.HTTP)
	stream := pubsub.New(s.log, s.config.Stream)
	handler, err := rpc.NewJSONRPCHandler(
		rpc.Name,
		rpc.NewJSONRPCServer(s.log, s.tracer, s.runtime, s.config.ContractAccount, stream),
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	srv.AddRoute(handler, rpc.JSONRPCEndpoint)
	srv.AddStreamRoute(stream, rpc.WebSocketEndpoint)
	// promhttp compresses on its own.
	srv.AddStreamRoute(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), metricsEndpoint)

	s.log.Info("serving",
		zap.Stringer("address", listener.Addr()),
		zap.Stringer("contract", s.config.ContractAccount),
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Dispatch)
	g.Go(func() error {
		<-gctx.Done()
		stream.Close()
		return srv.Shutdown()
	})
	return g.Wait()
}
