// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
)

var _ Runtime = (*host.Runtime)(nil)

type Runtime interface {
	View(ctx context.Context, account codec.AccountID, method string, args []byte) ([]byte, error)
	ViewAccount(ctx context.Context, account codec.AccountID) (*host.Account, error)
	ViewAccessKey(ctx context.Context, account codec.AccountID, pk ed25519.PublicKey) (*host.AccessKey, error)
	Execute(ctx context.Context, stx *host.SignedTransaction) (*host.TransactionOutcome, error)
}

// Publisher receives the JSON encoding of every executed transaction.
type Publisher interface {
	Publish(msg []byte) int
}

// JSONRPCServer exposes the linkdrop contract deployed on [contract] and
// the accounts of the network it runs on.
type JSONRPCServer struct {
	log       logging.Logger
	tracer    trace.Tracer
	runtime   Runtime
	contract  codec.AccountID
	publisher Publisher
}

// NewJSONRPCServer returns a server. [publisher] may be nil.
func NewJSONRPCServer(
	log logging.Logger,
	tracer trace.Tracer,
	runtime Runtime,
	contract codec.AccountID,
	publisher Publisher,
) *JSONRPCServer {
	return &JSONRPCServer{
		log:       log,
		tracer:    tracer,
		runtime:   runtime,
		contract:  contract,
		publisher: publisher,
	}
}

type KeyArgs struct {
	Key ed25519.PublicKey `json:"key"`
}

type GetKeyBalanceReply struct {
	Balance *uint256.Int `json:"balance"`
}

func (j *JSONRPCServer) GetKeyBalance(req *http.Request, args *KeyArgs, reply *GetKeyBalanceReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.GetKeyBalance")
	defer span.End()

	return j.view(ctx, linkdrop.MethodGetKeyBalance, args, &reply.Balance)
}

func (j *JSONRPCServer) GetKeyInformation(req *http.Request, args *KeyArgs, reply *linkdrop.KeyInformation) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.GetKeyInformation")
	defer span.End()

	return j.view(ctx, linkdrop.MethodGetKeyInformation, args, reply)
}

func (j *JSONRPCServer) view(ctx context.Context, method string, args any, reply any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	value, err := j.runtime.View(ctx, j.contract, method, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(value, reply)
}

type AccountArgs struct {
	Account codec.AccountID `json:"account"`
}

type ViewAccountReply struct {
	Balance  *uint256.Int `json:"balance"`
	CodeHash ids.ID       `json:"codeHash"`
}

func (j *JSONRPCServer) ViewAccount(req *http.Request, args *AccountArgs, reply *ViewAccountReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.ViewAccount")
	defer span.End()

	a, err := j.runtime.ViewAccount(ctx, args.Account)
	if err != nil {
		return err
	}
	reply.Balance = a.Balance
	reply.CodeHash = a.CodeHash
	return nil
}

type AccessKeyArgs struct {
	Account   codec.AccountID   `json:"account"`
	PublicKey ed25519.PublicKey `json:"publicKey"`
}

func (j *JSONRPCServer) ViewAccessKey(req *http.Request, args *AccessKeyArgs, reply *host.AccessKey) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.ViewAccessKey")
	defer span.End()

	key, err := j.runtime.ViewAccessKey(ctx, args.Account, args.PublicKey)
	if err != nil {
		return err
	}
	*reply = *key
	return nil
}

type SubmitTransactionArgs struct {
	Transaction *host.SignedTransaction `json:"transaction"`
}

type SubmitTransactionReply struct {
	Outcome *host.TransactionOutcome `json:"outcome"`
}

// SubmitTransaction executes the transaction to completion. A rejected
// transaction is an error. A transaction that executed but failed is a
// successful call with a failed outcome.
func (j *JSONRPCServer) SubmitTransaction(
	req *http.Request,
	args *SubmitTransactionArgs,
	reply *SubmitTransactionReply,
) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.SubmitTransaction")
	defer span.End()

	if args.Transaction == nil {
		return ErrMissingTransaction
	}
	outcome, err := j.runtime.Execute(ctx, args.Transaction)
	if err != nil {
		j.log.Debug("rejected transaction",
			zap.Stringer("signer", args.Transaction.Transaction.SignerID),
			zap.Error(err),
		)
		return err
	}
	reply.Outcome = outcome
	if j.publisher == nil {
		return nil
	}
	msg, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	sent := j.publisher.Publish(msg)
	j.log.Debug("published outcome",
		zap.Stringer("hash", outcome.Hash),
		zap.Int("subscribers", sent),
	)
	return nil
}
