// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/linkdrop/host"
)

// WebSocketClient receives the outcome of every transaction the server
// executes after the client connected.
type WebSocketClient struct {
	conn *websocket.Conn
	rl   sync.Mutex
	cl   sync.Once
}

// NewWebSocketClient dials the stream mounted under [uri], which may use
// either the http or the ws scheme.
func NewWebSocketClient(uri string) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http", "ws", 1)
	uri += WebSocketEndpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()
	return &WebSocketClient{conn: conn}, nil
}

func (c *WebSocketClient) ListenForOutcome() (*host.TransactionOutcome, error) {
	c.rl.Lock()
	defer c.rl.Unlock()

	_, msg, err := c.conn.ReadMessage()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	outcome := new(host.TransactionOutcome)
	if err := json.Unmarshal(msg, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}
