// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/pubsub"
	"github.com/ava-labs/linkdrop/trace"
)

const (
	contractID codec.AccountID = "testnet"
	sponsorID  codec.AccountID = "sponsor.testnet"
)

type testNetwork struct {
	client  *JSONRPCClient
	stream  *pubsub.Server
	url     string
	keys    map[codec.AccountID]ed25519.PrivateKey
	nonce   uint64
	runtime *host.Runtime
}

func newTestNetwork(t *testing.T) *testNetwork {
	require := require.New(t)
	ctx := context.Background()

	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	hostCfg := host.NewDefaultConfig()
	hostCfg.Registrar = contractID
	r, err := host.New(logging.NoLog{}, tracer, prometheus.NewRegistry(), memdb.New(), hostCfg)
	require.NoError(err)
	cfg := linkdrop.NewDefaultConfig()
	cfg.AccessKeyAllowance = uint256.NewInt(10)
	c, err := linkdrop.New(cfg)
	require.NoError(err)
	r.Register(linkdrop.Code, c)

	tn := &testNetwork{
		keys:    make(map[codec.AccountID]ed25519.PrivateKey),
		runtime: r,
	}
	var genesis []*host.GenesisAccount
	for _, id := range []codec.AccountID{contractID, sponsorID} {
		priv, err := ed25519.GeneratePrivateKey()
		require.NoError(err)
		tn.keys[id] = priv
		ga := &host.GenesisAccount{
			ID:      id,
			Balance: uint256.NewInt(1_000),
			Keys:    []ed25519.PublicKey{priv.PublicKey()},
		}
		if id == contractID {
			ga.Code = linkdrop.Code
		}
		genesis = append(genesis, ga)
	}
	require.NoError(r.Genesis(ctx, genesis))

	tn.stream = pubsub.New(logging.NoLog{}, pubsub.NewDefaultServerConfig())
	handler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(logging.NoLog{}, tracer, r, contractID, tn.stream))
	require.NoError(err)
	router := mux.NewRouter()
	router.Handle(JSONRPCEndpoint, handler)
	router.Handle(WebSocketEndpoint, tn.stream)
	httpServer := httptest.NewServer(router)
	t.Cleanup(func() {
		tn.stream.Close()
		httpServer.Close()
	})
	tn.url = httpServer.URL
	tn.client = NewJSONRPCClient(httpServer.URL)

	stx := tn.sign(t, contractID, linkdrop.MethodNew, nil, 0)
	outcome, err := tn.client.SubmitTransaction(ctx, stx)
	require.NoError(err)
	require.Equal(host.StatusSuccess, outcome.Status, outcome.Error)
	return tn
}

func (tn *testNetwork) sign(t *testing.T, signer codec.AccountID, method string, args any, deposit uint64) *host.SignedTransaction {
	var raw []byte
	if args != nil {
		var err error
		raw, err = json.Marshal(args)
		require.NoError(t, err)
	}
	var amount *uint256.Int
	if deposit > 0 {
		amount = uint256.NewInt(deposit)
	}
	tn.nonce++
	tx := &host.Transaction{
		SignerID:   signer,
		PublicKey:  tn.keys[signer].PublicKey(),
		Nonce:      tn.nonce,
		ReceiverID: contractID,
		Actions:    host.NewActionBatch(contractID).FunctionCall(method, raw, amount, 50*consts.Tgas).Actions,
	}
	stx, err := tx.Sign(tn.keys[signer])
	require.NoError(t, err)
	return stx
}

func TestJSONRPCLinkdrop(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	tn := newTestNetwork(t)
	pk := func() ed25519.PublicKey {
		priv, err := ed25519.GeneratePrivateKey()
		require.NoError(err)
		return priv.PublicKey()
	}()

	_, err := tn.client.GetKeyBalance(ctx, pk)
	require.ErrorContains(err, linkdrop.ErrKeyNotFound.Error())
	info, err := tn.client.GetKeyInformation(ctx, pk)
	require.NoError(err)
	require.Nil(info.Ok)
	require.Equal(linkdrop.KeyMissing, info.Err)

	outcome, err := tn.client.SubmitTransaction(ctx, tn.sign(t, sponsorID, linkdrop.MethodSend, map[string]any{"public_key": pk}, 110))
	require.NoError(err)
	require.Equal(host.StatusSuccess, outcome.Status, outcome.Error)
	require.Equal("true", string(outcome.Value))

	bal, err := tn.client.GetKeyBalance(ctx, pk)
	require.NoError(err)
	require.Equal(uint64(100), bal.Uint64())
	info, err = tn.client.GetKeyInformation(ctx, pk)
	require.NoError(err)
	require.Equal(uint64(100), info.Ok.Balance.Uint64())
	require.Empty(info.Err)

	account, err := tn.client.ViewAccount(ctx, sponsorID)
	require.NoError(err)
	require.Equal(uint64(890), account.Balance.Uint64())
	account, err = tn.client.ViewAccount(ctx, contractID)
	require.NoError(err)
	require.Equal(host.HashCode(linkdrop.Code), account.CodeHash)

	key, err := tn.client.ViewAccessKey(ctx, contractID, pk)
	require.NoError(err)
	require.False(key.Permission.IsFullAccess())
	require.Equal([]string{linkdrop.MethodCreateAccountAndClaim}, key.Permission.FunctionCall.MethodNames)

	_, err = tn.client.ViewAccount(ctx, "nobody.testnet")
	require.ErrorContains(err, host.ErrAccountNotFound.Error())
}

func TestJSONRPCRejectsTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	tn := newTestNetwork(t)

	stx := tn.sign(t, sponsorID, linkdrop.MethodSend, map[string]any{"public_key": tn.keys[sponsorID].PublicKey()}, 110)
	stx.Signature[0] ^= 0xff
	_, err := tn.client.SubmitTransaction(ctx, stx)
	require.ErrorContains(err, host.ErrInvalidSignature.Error())

	_, err = tn.client.SubmitTransaction(ctx, nil)
	require.ErrorContains(err, ErrMissingTransaction.Error())
}

func TestWebSocketOutcomes(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	tn := newTestNetwork(t)

	ws, err := NewWebSocketClient(tn.url)
	require.NoError(err)
	defer ws.Close()
	require.Eventually(func() bool {
		return tn.stream.Len() == 1
	}, time.Second, 10*time.Millisecond)

	outcome, err := tn.client.SubmitTransaction(ctx, tn.sign(t, sponsorID, linkdrop.MethodCreateAccountAdvanced, map[string]any{
		"new_account_id": "alice",
		"options":        map[string]any{},
	}, 100))
	require.NoError(err)
	require.Equal(host.StatusFailed, outcome.Status)

	streamed, err := ws.ListenForOutcome()
	require.NoError(err)
	require.Equal(outcome.Hash, streamed.Hash)
	require.Equal(host.StatusFailed, streamed.Status)
	require.Contains(streamed.Error, linkdrop.ErrInvalidConfiguration.Error())
	require.Len(streamed.Receipts, 2)
	require.Equal(host.SystemAccount, streamed.Receipts[1].Predecessor)
}
