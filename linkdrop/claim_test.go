// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/state"
)

const (
	contractID codec.AccountID = "testnet"
	sponsorID  codec.AccountID = "sponsor.testnet"
)

type mockEnv struct {
	*host.MockEnv
	storage state.MutableStorage
}

// newMockEnv returns an env for [contractID] called by [predecessor].
func newMockEnv(t *testing.T, predecessor codec.AccountID) *mockEnv {
	ctrl := gomock.NewController(t)
	env := &mockEnv{
		MockEnv: host.NewMockEnv(ctrl),
		storage: state.MutableStorage{},
	}
	env.EXPECT().CurrentAccount().Return(contractID).AnyTimes()
	env.EXPECT().Predecessor().Return(predecessor).AnyTimes()
	env.EXPECT().State().Return(env.storage).AnyTimes()
	env.EXPECT().Log().Return(logging.NoLog{}).AnyTimes()
	return env
}

func testContract(t *testing.T) *Contract {
	c, err := New(NewDefaultConfig())
	require.NoError(t, err)
	return c
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name    string
		results []host.PromiseResult
		outcome Outcome
		err     error
	}{
		{
			name:    "success",
			results: []host.PromiseResult{{Status: host.StatusSuccess}},
			outcome: OutcomeSuccess,
		},
		{
			name:    "failure",
			results: []host.PromiseResult{{Status: host.StatusFailed}},
			outcome: OutcomeFailure,
		},
		{
			name: "no results",
			err:  ErrMalformedCallback,
		},
		{
			name:    "two results",
			results: []host.PromiseResult{{Status: host.StatusSuccess}, {Status: host.StatusSuccess}},
			err:     ErrMalformedCallback,
		},
		{
			name:    "unknown status",
			results: []host.PromiseResult{{Status: host.StatusUnknown}},
			err:     ErrMalformedCallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := OutcomeOf(tt.results)
			require.ErrorIs(t, err, tt.err)
			require.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestSend(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	pk := newTestKey(t)
	env := newMockEnv(t, sponsorID)

	allowance := DefaultAccessKeyAllowance
	deposit, err := codec.AddU128(allowance, uint256.NewInt(500))
	require.NoError(err)

	// the first deposit for a key adds a claim-only key on the contract
	env.EXPECT().AttachedDeposit().Return(deposit).Times(2)
	env.EXPECT().Promise(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, batch *host.ActionBatch) (host.PromiseID, error) {
			require.Equal(contractID, batch.Receiver)
			require.Len(batch.Actions, 1)
			add := batch.Actions[0].AddKey
			require.NotNil(add)
			require.Equal(pk, add.PublicKey)
			perm := add.Permission.FunctionCall
			require.NotNil(perm)
			require.Equal(allowance, perm.Allowance)
			require.Equal(contractID, perm.ReceiverID)
			require.Equal([]string{MethodCreateAccountAndClaim}, perm.MethodNames)
			return 0, nil
		},
	).Times(1)

	ok, err := c.Send(ctx, env, pk)
	require.NoError(err)
	require.True(ok)

	// the second only tops up the balance
	ok, err = c.Send(ctx, env, pk)
	require.NoError(err)
	require.True(ok)

	bal, err := NewLedger(env.storage).Get(ctx, pk)
	require.NoError(err)
	require.Equal(uint64(1_000), bal.Uint64())
}

func TestSendInsufficientDeposit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	pk := newTestKey(t)
	env := newMockEnv(t, sponsorID)

	env.EXPECT().AttachedDeposit().Return(new(uint256.Int).Set(DefaultAccessKeyAllowance))
	_, err := c.Send(ctx, env, pk)
	require.ErrorIs(err, ErrInsufficientDeposit)

	has, err := NewLedger(env.storage).Has(ctx, pk)
	require.NoError(err)
	require.False(has)
}

func TestCreateAccountAdvanced(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	kx := newTestKey(t)
	env := newMockEnv(t, sponsorID)

	env.EXPECT().AttachedDeposit().Return(uint256.NewInt(100))
	gomock.InOrder(
		env.EXPECT().Promise(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, batch *host.ActionBatch) (host.PromiseID, error) {
				require.Equal(codec.AccountID("alice"), batch.Receiver)
				require.Len(batch.Actions, 3)
				return 0, nil
			},
		),
		env.EXPECT().Then(ctx, host.PromiseID(0), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ host.PromiseID, batch *host.ActionBatch) (host.PromiseID, error) {
				require.Equal(contractID, batch.Receiver)
				fc := batch.Actions[0].FunctionCall
				require.Equal(MethodOnAccountCreated, fc.Method)
				require.Equal(DefaultCallbackGas, fc.Gas)
				var args onAccountCreatedArgs
				require.NoError(json.Unmarshal(fc.Args, &args))
				require.Equal(sponsorID, args.PredecessorAccountID)
				require.Equal(uint64(100), args.Amount.Uint64())
				return 1, nil
			},
		),
	)

	id, err := c.CreateAccountAdvanced(ctx, env, "alice", &CreateAccountOptions{
		FullAccessKeys: []ed25519.PublicKey{kx},
	})
	require.NoError(err)
	require.Equal(host.PromiseID(1), id)
}

func TestCreateAccountAdvancedRejectsEmptyOptions(t *testing.T) {
	require := require.New(t)
	c := testContract(t)
	env := newMockEnv(t, sponsorID)

	// no promise may be issued
	env.EXPECT().AttachedDeposit().Return(uint256.NewInt(100))
	_, err := c.CreateAccountAdvanced(context.Background(), env, "alice", &CreateAccountOptions{})
	require.ErrorIs(err, ErrInvalidConfiguration)
}

func TestCreateAccountAndClaim(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	claimKey, newKey := newTestKey(t), newTestKey(t)
	env := newMockEnv(t, contractID)
	require.NoError(NewLedger(env.storage).Put(ctx, claimKey, uint256.NewInt(500)))

	env.EXPECT().SignerPublicKey().Return(claimKey).AnyTimes()
	gomock.InOrder(
		env.EXPECT().Promise(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, batch *host.ActionBatch) (host.PromiseID, error) {
				require.Equal(codec.AccountID("bob"), batch.Receiver)
				require.Len(batch.Actions, 3)
				require.NotNil(batch.Actions[0].CreateAccount)
				require.Equal(newKey, batch.Actions[1].AddKey.PublicKey)
				require.True(batch.Actions[1].AddKey.Permission.IsFullAccess())
				require.Equal(uint64(500), batch.Actions[2].Transfer.Deposit.Uint64())
				return 0, nil
			},
		),
		env.EXPECT().Then(ctx, host.PromiseID(0), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ host.PromiseID, batch *host.ActionBatch) (host.PromiseID, error) {
				fc := batch.Actions[0].FunctionCall
				require.Equal(MethodOnAccountCreatedAndClaimed, fc.Method)
				require.JSONEq(`{"amount":"500"}`, string(fc.Args))
				return 1, nil
			},
		),
	)

	id, err := c.CreateAccountAndClaim(ctx, env, "bob", newKey)
	require.NoError(err)
	require.Equal(host.PromiseID(1), id)

	// the entry is gone before the outcome is known
	has, err := NewLedger(env.storage).Has(ctx, claimKey)
	require.NoError(err)
	require.False(has)

	_, err = c.CreateAccountAndClaim(ctx, env, "bob", newKey)
	require.ErrorIs(err, ErrKeyNotFound)
}

func TestCreateAccountAndClaimUnauthorized(t *testing.T) {
	c := testContract(t)
	env := newMockEnv(t, sponsorID)

	_, err := c.CreateAccountAndClaim(context.Background(), env, "bob", newTestKey(t))
	require.ErrorIs(t, err, ErrUnauthorizedClaim)
}

func TestCallbacksRequireContract(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	env := newMockEnv(t, sponsorID)

	_, err := c.OnAccountCreated(ctx, env, sponsorID, uint256.NewInt(1))
	require.ErrorIs(err, ErrUnauthorizedCallback)
	_, err = c.OnAccountCreatedAndClaimed(ctx, env, uint256.NewInt(1))
	require.ErrorIs(err, ErrUnauthorizedCallback)
}

func TestCallbacksRequireSingleResult(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	env := newMockEnv(t, contractID)

	env.EXPECT().PromiseResults().Return(nil).Times(2)
	_, err := c.OnAccountCreated(ctx, env, sponsorID, uint256.NewInt(1))
	require.ErrorIs(err, ErrMalformedCallback)
	_, err = c.OnAccountCreatedAndClaimed(ctx, env, uint256.NewInt(1))
	require.ErrorIs(err, ErrMalformedCallback)
}

func TestOnAccountCreated(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)

	// success: no refund
	env := newMockEnv(t, contractID)
	env.EXPECT().PromiseResults().Return([]host.PromiseResult{{Status: host.StatusSuccess}})
	ok, err := c.OnAccountCreated(ctx, env, sponsorID, uint256.NewInt(100))
	require.NoError(err)
	require.True(ok)
	require.Empty(env.storage)

	// failure: the amount goes back to the sponsor
	env = newMockEnv(t, contractID)
	env.EXPECT().PromiseResults().Return([]host.PromiseResult{{Status: host.StatusFailed}})
	env.EXPECT().Promise(ctx, host.NewActionBatch(sponsorID).Transfer(uint256.NewInt(100))).Return(host.PromiseID(0), nil)
	ok, err = c.OnAccountCreated(ctx, env, sponsorID, uint256.NewInt(100))
	require.NoError(err)
	require.False(ok)
	require.Empty(env.storage)
}

func TestOnAccountCreatedAndClaimed(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := testContract(t)
	k1 := newTestKey(t)

	// success: the claim key is deleted from the contract account
	env := newMockEnv(t, contractID)
	env.EXPECT().SignerPublicKey().Return(k1)
	env.EXPECT().PromiseResults().Return([]host.PromiseResult{{Status: host.StatusSuccess}})
	env.EXPECT().Promise(ctx, host.NewActionBatch(contractID).DeleteKey(k1)).Return(host.PromiseID(0), nil)
	ok, err := c.OnAccountCreatedAndClaimed(ctx, env, uint256.NewInt(500))
	require.NoError(err)
	require.True(ok)
	has, err := NewLedger(env.storage).Has(ctx, k1)
	require.NoError(err)
	require.False(has)

	// failure: K1 -> 500 is back and no key is deleted
	env = newMockEnv(t, contractID)
	env.EXPECT().SignerPublicKey().Return(k1)
	env.EXPECT().PromiseResults().Return([]host.PromiseResult{{Status: host.StatusFailed}})
	ok, err = c.OnAccountCreatedAndClaimed(ctx, env, uint256.NewInt(500))
	require.NoError(err)
	require.False(ok)
	bal, err := NewLedger(env.storage).Get(ctx, k1)
	require.NoError(err)
	require.Equal(uint64(500), bal.Uint64())
}
