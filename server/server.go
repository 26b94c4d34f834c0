// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout"`
	AllowedOrigins    []string      `json:"allowedOrigins"`
}

func NewDefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		AllowedOrigins:    []string{"*"},
	}
}

// Server routes HTTP requests to the handlers added to it. Every request
// passes through CORS. Plain routes are also gzip compressed.
type Server struct {
	log             logging.Logger
	router          *mux.Router
	srv             *http.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

func New(log logging.Logger, listener net.Listener, config HTTPConfig) *Server {
	router := mux.NewRouter()
	handler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	log.Info("API created",
		zap.Stringer("address", listener.Addr()),
		zap.Strings("allowedOrigins", config.AllowedOrigins),
	)
	return &Server{
		log:    log,
		router: router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
		listener:        listener,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// AddRoute serves [handler] at [path] with gzip compression.
func (s *Server) AddRoute(handler http.Handler, path string) {
	s.log.Info("adding route",
		zap.String("path", path),
	)
	s.router.Handle(path, gziphandler.GzipHandler(handler))
}

// AddStreamRoute serves [handler] at [path] as is. Websocket upgrades
// need the raw response writer.
func (s *Server) AddStreamRoute(handler http.Handler, path string) {
	s.log.Info("adding stream route",
		zap.String("path", path),
	)
	s.router.Handle(path, handler)
}

// Dispatch serves until Shutdown is called.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
