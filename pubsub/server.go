// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ServerConfig struct {
	ReadBufferSize     int           `json:"readBufferSize"`
	WriteBufferSize    int           `json:"writeBufferSize"`
	MaxReadMessageSize int           `json:"maxReadMessageSize"`
	MaxPendingMessages int           `json:"maxPendingMessages"`
	WriteWait          time.Duration `json:"writeWait"`
	PongWait           time.Duration `json:"pongWait"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     readBufferSize,
		WriteBufferSize:    writeBufferSize,
		MaxReadMessageSize: maxReadMessageSize,
		MaxPendingMessages: maxPendingMessages,
		WriteWait:          writeWait,
		PongWait:           pongWait,
	}
}

var ErrInvalidConfig = errors.New("invalid stream config")

// Verify rejects settings that would make a connection panic or never
// accept a message.
func (c ServerConfig) Verify() error {
	switch {
	case c.WriteWait <= 0:
		return fmt.Errorf("%w: writeWait must be positive", ErrInvalidConfig)
	case c.pingPeriod() <= 0:
		return fmt.Errorf("%w: pongWait %s is too short", ErrInvalidConfig, c.PongWait)
	case c.MaxPendingMessages < 0:
		return fmt.Errorf("%w: negative maxPendingMessages", ErrInvalidConfig)
	case c.MaxReadMessageSize <= 0:
		return fmt.Errorf("%w: maxReadMessageSize must be positive", ErrInvalidConfig)
	default:
		return nil
	}
}

func (c ServerConfig) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Server pushes every published message to all connected subscribers.
// Subscribers only listen: anything they send is discarded.
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader

	lock   sync.RWMutex
	conns  set.Set[*connection]
	closed bool
}

func New(log logging.Logger, config ServerConfig) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns: make(set.Set[*connection]),
	}
}

// ServeHTTP upgrades the request and registers the connection as a
// subscriber.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	c := newConnection(s, wsConn)

	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		_ = wsConn.Close()
		return
	}
	s.conns.Add(c)
	s.lock.Unlock()

	go c.writePump()
	go c.readPump()
}

// Publish queues [msg] on every subscriber and returns how many accepted
// it. Slow subscribers with a full queue miss the message.
func (s *Server) Publish(msg []byte) int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sent := 0
	for c := range s.conns {
		if c.Send(msg) {
			sent++
			continue
		}
		s.log.Verbo("dropping message to subscriber with too many pending messages")
	}
	return sent
}

func (s *Server) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.conns.Len()
}

// Close disconnects every subscriber and rejects new ones.
func (s *Server) Close() {
	s.lock.Lock()
	s.closed = true
	conns := s.conns.List()
	s.lock.Unlock()

	for _, c := range conns {
		c.deactivate()
	}
}

func (s *Server) removeConnection(c *connection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.conns.Remove(c)
}
