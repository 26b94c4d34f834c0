// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// SystemAccount is the predecessor of refund receipts.
const SystemAccount codec.AccountID = "system"

const DefaultMaxReceipts = 1_024

// Contract is native code bound to a code blob. Every account that
// deploys the blob runs the same Contract against its own state.
type Contract interface {
	Call(ctx context.Context, env Env, method string, args []byte) ([]byte, error)
}

type Config struct {
	// Registrar is the only account allowed to create top-level accounts.
	Registrar codec.AccountID `json:"registrar"`
	// MaxReceipts bounds the receipts a single transaction may spawn.
	MaxReceipts int `json:"maxReceipts"`
}

func NewDefaultConfig() Config {
	return Config{
		Registrar:   "testnet",
		MaxReceipts: DefaultMaxReceipts,
	}
}

type Receipt struct {
	ID              uint64            `json:"id"`
	Predecessor     codec.AccountID   `json:"predecessor"`
	Receiver        codec.AccountID   `json:"receiver"`
	Signer          codec.AccountID   `json:"signer"`
	SignerPublicKey ed25519.PublicKey `json:"signerPublicKey"`
	Actions         []Action          `json:"actions"`
	// DependsOn lists the receipts whose results are delivered to this
	// one as [Results], in order.
	DependsOn []uint64        `json:"dependsOn,omitempty"`
	Results   []PromiseResult `json:"results,omitempty"`

	refund bool
}

type ReceiptOutcome struct {
	ID          uint64          `json:"id"`
	Predecessor codec.AccountID `json:"predecessor"`
	Receiver    codec.AccountID `json:"receiver"`
	Actions     []string        `json:"actions"`
	Status      Status          `json:"status"`
	Value       json.RawMessage `json:"value,omitempty"`
	Error       string          `json:"error,omitempty"`
	GasUsed     uint64          `json:"gasUsed"`
}

type TransactionOutcome struct {
	Hash   ids.ID `json:"hash"`
	Status Status `json:"status"`
	// Value is the result of the transaction's receipt, following any
	// promise it returned to its final result.
	Value    json.RawMessage   `json:"value,omitempty"`
	Error    string            `json:"error,omitempty"`
	GasUsed  uint64            `json:"gasUsed"`
	Receipts []*ReceiptOutcome `json:"receipts"`
}

type GenesisAccount struct {
	ID      codec.AccountID     `json:"id"`
	Balance *uint256.Int        `json:"balance"`
	Keys    []ed25519.PublicKey `json:"keys"`
	Code    codec.Bytes         `json:"code,omitempty"`
}

// Runtime executes transactions against [state.Database]. Calls are
// serialized: one transaction, including every receipt it spawns, runs
// to completion before the next starts.
type Runtime struct {
	log     logging.Logger
	tracer  trace.Tracer
	metrics *metrics
	cfg     Config

	l         sync.Mutex
	db        state.Database
	contracts map[ids.ID]Contract

	nextReceipt atomic.Uint64
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	db state.Database,
	cfg Config,
) (*Runtime, error) {
	if err := cfg.Registrar.Verify(); err != nil {
		return nil, fmt.Errorf("invalid registrar: %w", err)
	}
	if cfg.MaxReceipts <= 0 {
		cfg.MaxReceipts = DefaultMaxReceipts
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		log:       log,
		tracer:    tracer,
		metrics:   m,
		cfg:       cfg,
		db:        db,
		contracts: make(map[ids.ID]Contract),
	}, nil
}

// Register binds [c] to [code]. Accounts that deploy [code] run [c].
func (r *Runtime) Register(code []byte, c Contract) ids.ID {
	r.l.Lock()
	defer r.l.Unlock()

	hash := HashCode(code)
	r.contracts[hash] = c
	return hash
}

func (r *Runtime) Genesis(ctx context.Context, accounts []*GenesisAccount) error {
	r.l.Lock()
	defer r.l.Unlock()

	mu := state.NewSimpleMutable(r.db)
	for _, ga := range accounts {
		if err := ga.ID.Verify(); err != nil {
			return err
		}
		exists, err := AccountExists(ctx, mu, ga.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrAccountExists, ga.ID)
		}
		balance := ga.Balance
		if balance == nil {
			balance = new(uint256.Int)
		}
		account := &Account{Balance: balance}
		if len(ga.Code) > 0 {
			if account.CodeHash, err = SetCode(ctx, mu, ga.Code); err != nil {
				return err
			}
		}
		if err := SetAccount(ctx, mu, ga.ID, account); err != nil {
			return err
		}
		for _, pk := range ga.Keys {
			if err := SetAccessKey(ctx, mu, ga.ID, pk, &AccessKey{}); err != nil {
				return err
			}
		}
		r.log.Info("genesis account",
			zap.Stringer("account", ga.ID),
			zap.Stringer("balance", balance),
			zap.Int("keys", len(ga.Keys)),
		)
	}
	return mu.Commit(ctx)
}

func (r *Runtime) ViewAccount(ctx context.Context, account codec.AccountID) (*Account, error) {
	r.l.Lock()
	defer r.l.Unlock()

	return GetAccount(ctx, state.NewSimpleMutable(r.db), account)
}

func (r *Runtime) ViewAccessKey(ctx context.Context, account codec.AccountID, pk ed25519.PublicKey) (*AccessKey, error) {
	r.l.Lock()
	defer r.l.Unlock()

	return GetAccessKey(ctx, state.NewSimpleMutable(r.db), account, pk)
}

// View runs [method] on [account] without the ability to write state or
// schedule promises.
func (r *Runtime) View(ctx context.Context, account codec.AccountID, method string, args []byte) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.View", oteltrace.WithAttributes(
		attribute.String("account", account.String()),
		attribute.String("method", method),
	))
	defer span.End()

	r.l.Lock()
	defer r.l.Unlock()

	r.metrics.views.Inc()
	mu := state.NewSimpleMutable(r.db)
	defer mu.Discard()

	a, err := GetAccount(ctx, mu, account)
	if err != nil {
		return nil, err
	}
	contract, err := r.contract(a.CodeHash)
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{Receiver: account}
	var promises []*outgoing
	env := newInvocation(r.log, receipt, nil, consts.MaxGas, mu, &promises, true)
	if err := env.gas.Charge(FunctionCallBaseCost); err != nil {
		return nil, err
	}
	return r.call(ctx, contract, env, method, args)
}

// Execute verifies [stx], converts it into a receipt and runs that
// receipt and every receipt it spawns to completion. An error before the
// transaction is accepted means nothing was applied. Once accepted, the
// receipts run to completion even if [ctx] is cancelled.
func (r *Runtime) Execute(ctx context.Context, stx *SignedTransaction) (*TransactionOutcome, error) {
	tx := &stx.Transaction
	ctx, span := r.tracer.Start(ctx, "Runtime.Execute", oteltrace.WithAttributes(
		attribute.String("signer", tx.SignerID.String()),
		attribute.String("receiver", tx.ReceiverID.String()),
		attribute.Int("actions", len(tx.Actions)),
	))
	defer span.End()

	r.l.Lock()
	defer r.l.Unlock()

	start := time.Now()
	hash, err := stx.Verify()
	if err != nil {
		r.metrics.txsRejected.Inc()
		return nil, err
	}
	mu := state.NewSimpleMutable(r.db)
	if err := authorize(ctx, mu, tx); err != nil {
		r.metrics.txsRejected.Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		r.metrics.txsRejected.Inc()
		return nil, err
	}
	if err := mu.Commit(ctx); err != nil {
		return nil, err
	}
	// Refunds and callbacks must follow every committed receipt.
	ctx = context.WithoutCancel(ctx)

	root := &Receipt{
		ID:              r.nextReceipt.Inc(),
		Predecessor:     tx.SignerID,
		Receiver:        tx.ReceiverID,
		Signer:          tx.SignerID,
		SignerPublicKey: tx.PublicKey,
		Actions:         tx.Actions,
	}
	e := newExecution(r)
	e.enqueue(root)
	if err := e.run(ctx); err != nil {
		return nil, err
	}

	res, ok := e.resolved[root.ID]
	if !ok {
		return nil, fmt.Errorf("%w: receipt %d never resolved", ErrReceiptLimit, root.ID)
	}
	outcome := &TransactionOutcome{
		Hash:     hash,
		Status:   res.Status,
		Value:    res.Value,
		Error:    res.err,
		Receipts: e.outcomes,
	}
	for _, ro := range e.outcomes {
		outcome.GasUsed += ro.GasUsed
	}
	r.metrics.txsExecuted.Inc()
	r.metrics.gasUsed.Add(float64(outcome.GasUsed))
	r.metrics.executeLatency.Observe(time.Since(start).Seconds())
	r.log.Debug("executed transaction",
		zap.Stringer("hash", hash),
		zap.Stringer("status", outcome.Status),
		zap.Int("receipts", len(outcome.Receipts)),
		zap.Uint64("gasUsed", outcome.GasUsed),
	)
	return outcome, nil
}

func (r *Runtime) contract(codeHash ids.ID) (Contract, error) {
	if codeHash == ids.Empty {
		return nil, fmt.Errorf("%w: no code deployed", ErrContractNotFound)
	}
	c, ok := r.contracts[codeHash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, codeHash)
	}
	return c, nil
}

func (r *Runtime) call(ctx context.Context, c Contract, env Env, method string, args []byte) (value []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.contractPanics.Inc()
			err = fmt.Errorf("%w: %v", ErrContractPanic, rec)
		}
	}()
	return c.Call(ctx, env, method, args)
}

type resolution struct {
	PromiseResult
	err string
}

// execution drives the receipts of one transaction.
type execution struct {
	r *Runtime

	queue    []*Receipt
	executed int
	outcomes []*ReceiptOutcome

	resolved map[uint64]*resolution
	// waiting maps a receipt to the receipts that depend on its result.
	waiting map[uint64][]*Receipt
	// forwards maps a receipt to the receipts whose result is its result.
	forwards map[uint64][]uint64
}

func newExecution(r *Runtime) *execution {
	return &execution{
		r:        r,
		resolved: make(map[uint64]*resolution),
		waiting:  make(map[uint64][]*Receipt),
		forwards: make(map[uint64][]uint64),
	}
}

func (e *execution) enqueue(rc *Receipt) {
	e.queue = append(e.queue, rc)
}

// run drains the queue. Past the receipt limit, receipts fail without
// being applied, but refunds still run and dependents still resolve.
func (e *execution) run(ctx context.Context) error {
	for len(e.queue) > 0 {
		rc := e.queue[0]
		e.queue = e.queue[1:]
		if e.executed >= e.r.cfg.MaxReceipts && !rc.refund {
			if err := e.fail(e.record(rc), rc, fmt.Errorf("%w: %d", ErrReceiptLimit, e.r.cfg.MaxReceipts)); err != nil {
				return err
			}
			continue
		}
		e.executed++
		if err := e.execute(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}

// resolve records the final result of [id] and releases everything
// waiting on it.
func (e *execution) resolve(id uint64, res *resolution) {
	e.resolved[id] = res
	for _, fwd := range e.forwards[id] {
		e.resolve(fwd, res)
	}
	delete(e.forwards, id)

	for _, dep := range e.waiting[id] {
		ready := true
		for _, d := range dep.DependsOn {
			if _, ok := e.resolved[d]; !ok {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		dep.Results = make([]PromiseResult, len(dep.DependsOn))
		for i, d := range dep.DependsOn {
			dep.Results[i] = e.resolved[d].PromiseResult
		}
		e.enqueue(dep)
	}
	delete(e.waiting, id)
}

// execute applies [rc] on its own change set. Failures roll the change
// set back, drop the receipt's promises and refund the value it carried.
func (e *execution) execute(ctx context.Context, rc *Receipt) error {
	ctx, span := e.r.tracer.Start(ctx, "Runtime.executeReceipt", oteltrace.WithAttributes(
		attribute.Int64("receipt", int64(rc.ID)),
		attribute.String("receiver", rc.Receiver.String()),
	))
	defer span.End()

	out := e.record(rc)
	e.r.metrics.receiptsExecuted.Inc()

	mu := state.NewSimpleMutable(e.r.db)
	var promises []*outgoing
	value, returned, gasUsed, err := e.apply(ctx, mu, rc, &promises)
	out.GasUsed = gasUsed
	if err != nil {
		mu.Discard()
		return e.fail(out, rc, err)
	}
	if err := mu.Commit(ctx); err != nil {
		return err
	}
	out.Status = StatusSuccess
	out.Value = value

	receiptIDs := make([]uint64, len(promises))
	for i, p := range promises {
		receiptIDs[i] = e.r.nextReceipt.Inc()
		child := &Receipt{
			ID:              receiptIDs[i],
			Predecessor:     rc.Receiver,
			Receiver:        p.batch.Receiver,
			Signer:          rc.Signer,
			SignerPublicKey: rc.SignerPublicKey,
			Actions:         p.batch.Actions,
		}
		if p.after == nil {
			e.enqueue(child)
			continue
		}
		dep := receiptIDs[*p.after]
		child.DependsOn = []uint64{dep}
		e.waiting[dep] = append(e.waiting[dep], child)
	}
	if returned != nil {
		target := receiptIDs[*returned]
		e.forwards[target] = append(e.forwards[target], rc.ID)
		return nil
	}
	e.resolve(rc.ID, &resolution{PromiseResult: PromiseResult{Status: StatusSuccess, Value: value}})
	return nil
}

// record appends the outcome of [rc] to the transaction outcome.
func (e *execution) record(rc *Receipt) *ReceiptOutcome {
	out := &ReceiptOutcome{
		ID:          rc.ID,
		Predecessor: rc.Predecessor,
		Receiver:    rc.Receiver,
		Actions:     make([]string, len(rc.Actions)),
	}
	for i := range rc.Actions {
		out.Actions[i] = rc.Actions[i].String()
	}
	e.outcomes = append(e.outcomes, out)
	return out
}

// fail resolves [rc] as failed and refunds the value it carried.
func (e *execution) fail(out *ReceiptOutcome, rc *Receipt, err error) error {
	out.Status = StatusFailed
	out.Error = err.Error()
	e.r.metrics.receiptsFailed.Inc()
	e.r.log.Debug("receipt failed",
		zap.Uint64("receipt", rc.ID),
		zap.Stringer("receiver", rc.Receiver),
		zap.Error(err),
	)
	if err := e.refund(rc); err != nil {
		return err
	}
	e.resolve(rc.ID, &resolution{PromiseResult: PromiseResult{Status: StatusFailed}, err: out.Error})
	return nil
}

// refund returns the value attached to a failed receipt to its
// predecessor through a new receipt.
func (e *execution) refund(rc *Receipt) error {
	if rc.refund {
		e.r.log.Warn("refund receipt failed, value is burnt",
			zap.Uint64("receipt", rc.ID),
			zap.Stringer("receiver", rc.Receiver),
		)
		return nil
	}
	deposit, err := rc.batch().Deposit()
	if err != nil {
		return err
	}
	if deposit.IsZero() {
		return nil
	}
	e.r.metrics.refunds.Inc()
	e.enqueue(&Receipt{
		ID:              e.r.nextReceipt.Inc(),
		Predecessor:     SystemAccount,
		Receiver:        rc.Predecessor,
		Signer:          rc.Signer,
		SignerPublicKey: rc.SignerPublicKey,
		Actions:         NewActionBatch(rc.Predecessor).Transfer(deposit).Actions,
		refund:          true,
	})
	return nil
}

func (rc *Receipt) batch() *ActionBatch {
	return &ActionBatch{Receiver: rc.Receiver, Actions: rc.Actions}
}

// apply runs the actions of [rc] in order on [mu]. It returns the value
// of the last function call, or the promise that call returned.
func (e *execution) apply(
	ctx context.Context,
	mu state.Mutable,
	rc *Receipt,
	promises *[]*outgoing,
) ([]byte, *PromiseID, uint64, error) {
	var (
		created  bool
		value    []byte
		returned *PromiseID
		gasUsed  uint64
	)
	owner := func() error {
		if created || rc.Predecessor == rc.Receiver {
			return nil
		}
		return fmt.Errorf("%w: %s acting on %s", ErrActorNoPermission, rc.Predecessor, rc.Receiver)
	}
	for i := range rc.Actions {
		a := &rc.Actions[i]
		var err error
		switch {
		case a.CreateAccount != nil:
			err = e.createAccount(ctx, mu, rc)
			created = err == nil
		case a.Transfer != nil:
			_, err = AddBalance(ctx, mu, rc.Receiver, a.Transfer.Deposit)
		case a.AddKey != nil:
			if err = owner(); err == nil {
				err = addKey(ctx, mu, rc.Receiver, a.AddKey)
			}
		case a.DeleteKey != nil:
			if err = owner(); err == nil {
				err = DeleteAccessKey(ctx, mu, rc.Receiver, a.DeleteKey.PublicKey)
			}
		case a.DeployContract != nil:
			if err = owner(); err == nil {
				err = deploy(ctx, mu, rc.Receiver, a.DeployContract.Code)
			}
		case a.FunctionCall != nil:
			var used uint64
			value, returned, used, err = e.functionCall(ctx, mu, rc, a.FunctionCall, promises)
			gasUsed += used
		default:
			err = ErrInvalidAction
		}
		if err != nil {
			return nil, nil, gasUsed, fmt.Errorf("action %d (%s): %w", i, a, err)
		}
	}
	return value, returned, gasUsed, nil
}

func (e *execution) createAccount(ctx context.Context, mu state.Mutable, rc *Receipt) error {
	exists, err := AccountExists(ctx, mu, rc.Receiver)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, rc.Receiver)
	}
	if parent, ok := rc.Receiver.Parent(); ok {
		if parent != rc.Predecessor {
			return fmt.Errorf("%w: %s is not the parent of %s", ErrCreateAccountNotAllowed, rc.Predecessor, rc.Receiver)
		}
	} else if rc.Predecessor != e.r.cfg.Registrar {
		return fmt.Errorf("%w: only %s creates top-level accounts", ErrCreateAccountNotAllowed, e.r.cfg.Registrar)
	}
	return SetAccount(ctx, mu, rc.Receiver, &Account{Balance: new(uint256.Int)})
}

func addKey(ctx context.Context, mu state.Mutable, account codec.AccountID, a *AddKey) error {
	if _, err := GetAccount(ctx, mu, account); err != nil {
		return err
	}
	_, err := GetAccessKey(ctx, mu, account, a.PublicKey)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s on %s", ErrAccessKeyExists, a.PublicKey, account)
	case !errors.Is(err, ErrAccessKeyNotFound):
		return err
	}
	return SetAccessKey(ctx, mu, account, a.PublicKey, &AccessKey{Permission: a.Permission})
}

func deploy(ctx context.Context, mu state.Mutable, account codec.AccountID, code []byte) error {
	a, err := GetAccount(ctx, mu, account)
	if err != nil {
		return err
	}
	if a.CodeHash, err = SetCode(ctx, mu, code); err != nil {
		return err
	}
	return SetAccount(ctx, mu, account, a)
}

func (e *execution) functionCall(
	ctx context.Context,
	mu state.Mutable,
	rc *Receipt,
	fc *FunctionCall,
	promises *[]*outgoing,
) ([]byte, *PromiseID, uint64, error) {
	a, err := GetAccount(ctx, mu, rc.Receiver)
	if err != nil {
		return nil, nil, 0, err
	}
	contract, err := e.r.contract(a.CodeHash)
	if err != nil {
		return nil, nil, 0, err
	}
	if fc.Deposit != nil && !fc.Deposit.IsZero() {
		if _, err := AddBalance(ctx, mu, rc.Receiver, fc.Deposit); err != nil {
			return nil, nil, 0, err
		}
	}
	env := newInvocation(e.r.log, rc, fc.Deposit, fc.Gas, mu, promises, false)
	if err := env.gas.Charge(FunctionCallBaseCost); err != nil {
		return nil, nil, env.gas.Used(), err
	}
	value, err := e.r.call(ctx, contract, env, fc.Method, fc.Args)
	if err != nil {
		return nil, nil, env.gas.Used(), err
	}
	if env.returned != nil {
		return nil, env.returned, env.gas.Used(), nil
	}
	return value, nil, env.gas.Used(), nil
}
