// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
)

type JSONRPCClient struct {
	requester *EndpointRequester
}

// NewJSONRPCClient returns a client for the server mounted under [uri].
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{requester: NewEndpointRequester(uri, Name)}
}

func (cli *JSONRPCClient) GetKeyBalance(ctx context.Context, pk ed25519.PublicKey) (*uint256.Int, error) {
	resp := new(GetKeyBalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"getKeyBalance",
		&KeyArgs{Key: pk},
		resp,
	)
	return resp.Balance, err
}

func (cli *JSONRPCClient) GetKeyInformation(ctx context.Context, pk ed25519.PublicKey) (*linkdrop.KeyInformation, error) {
	resp := new(linkdrop.KeyInformation)
	if err := cli.requester.SendRequest(
		ctx,
		"getKeyInformation",
		&KeyArgs{Key: pk},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) ViewAccount(ctx context.Context, account codec.AccountID) (*ViewAccountReply, error) {
	resp := new(ViewAccountReply)
	if err := cli.requester.SendRequest(
		ctx,
		"viewAccount",
		&AccountArgs{Account: account},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) ViewAccessKey(
	ctx context.Context,
	account codec.AccountID,
	pk ed25519.PublicKey,
) (*host.AccessKey, error) {
	resp := new(host.AccessKey)
	if err := cli.requester.SendRequest(
		ctx,
		"viewAccessKey",
		&AccessKeyArgs{Account: account, PublicKey: pk},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) SubmitTransaction(
	ctx context.Context,
	stx *host.SignedTransaction,
) (*host.TransactionOutcome, error) {
	resp := new(SubmitTransactionReply)
	if err := cli.requester.SendRequest(
		ctx,
		"submitTransaction",
		&SubmitTransactionArgs{Transaction: stx},
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Outcome, nil
}
