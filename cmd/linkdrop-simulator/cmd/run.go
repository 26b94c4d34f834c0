// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/linkdrop"
	"github.com/ava-labs/linkdrop/state"
)

const (
	defaultGas = 100 * consts.Tgas

	// keyRefPrefix marks a string inside an object parameter that names
	// a key, e.g. "$alice".
	keyRefPrefix = "$"
)

type runCmd struct {
	s    *simulator
	plan *Plan
	out  io.Writer
}

func newRunCmd(s *simulator) *cobra.Command {
	r := &runCmd{s: s}
	return &cobra.Command{
		Use:   "run [path]",
		Short: "Run a linkdrop simulation plan, - reads the plan from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.closing(func() error {
				r.out = cmd.OutOrStdout()
				if err := r.Init(args[0], cmd.InOrStdin()); err != nil {
					return err
				}
				if err := r.Verify(); err != nil {
					return err
				}
				return r.Run(cmd.Context())
			})
		},
	}
}

func (r *runCmd) Init(path string, stdin io.Reader) error {
	var (
		planBytes []byte
		err       error
	)
	if path == "-" {
		planBytes, err = io.ReadAll(stdin)
	} else {
		planBytes, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	r.plan, err = unmarshalPlan(planBytes)
	return err
}

func (r *runCmd) Verify() error {
	if len(r.plan.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "no steps found")
	}
	for i := range r.plan.Steps {
		if err := verifyStep(i, &r.plan.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func verifyStep(i int, step *Step) error {
	switch step.Endpoint {
	case EndpointKey:
		if len(step.Key) == 0 {
			return fmt.Errorf("%w %d: key name required", ErrInvalidStep, i)
		}
	case EndpointAccount:
		if len(step.Key) == 0 {
			return fmt.Errorf("%w %d: owner key required", ErrInvalidStep, i)
		}
		if err := step.Account.Verify(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
	case EndpointExecute:
		if err := step.Account.Verify(); err != nil {
			return fmt.Errorf("%w %d: signer: %w", ErrInvalidStep, i, err)
		}
		if len(step.Method) == 0 {
			return fmt.Errorf("%w %d: method required", ErrInvalidStep, i)
		}
	case EndpointView:
		if len(step.Method) == 0 {
			return fmt.Errorf("%w %d: method required", ErrInvalidStep, i)
		}
	case EndpointBalance:
		if err := step.Account.Verify(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, step.Endpoint)
	}
	for _, p := range step.Params {
		if len(p.Name) == 0 {
			return fmt.Errorf("%w %d: %w: unnamed param", ErrInvalidStep, i, ErrInvalidParamType)
		}
	}
	return nil
}

// Run prints one response per step and stops at the first step that
// misses its requirements.
func (r *runCmd) Run(ctx context.Context) error {
	r.s.log.Info("simulation",
		zap.String("plan", r.plan.Name),
		zap.String("description", r.plan.Description),
	)

	enc := json.NewEncoder(r.out)
	for i := range r.plan.Steps {
		step := &r.plan.Steps[i]
		r.s.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("endpoint", string(step.Endpoint)),
			zap.String("method", step.Method),
		)

		resp := newResponse(i)
		if err := r.runStep(ctx, step, resp); err != nil {
			resp.setError(err)
			if len(resp.Result.Status) == 0 {
				resp.Result.Status = host.StatusFailed.String()
			}
		} else if len(resp.Result.Status) == 0 {
			resp.Result.Status = host.StatusSuccess.String()
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if err := resp.check(step.Require); err != nil {
			return err
		}
	}
	return nil
}

func (r *runCmd) runStep(ctx context.Context, step *Step, resp *Response) error {
	switch step.Endpoint {
	case EndpointKey:
		pk, err := keyCreateFunc(ctx, r.s.db, step.Key)
		if errors.Is(err, ErrDuplicateKeyName) {
			r.s.log.Debug("key already exists",
				zap.String("name", step.Key),
			)
			pk, err = r.s.publicKey(ctx, step.Key)
		}
		if err != nil {
			return err
		}
		resp.Result.Msg = pk.String()
		return nil
	case EndpointAccount:
		pk, err := r.s.publicKey(ctx, step.Key)
		if err != nil {
			return err
		}
		balance, err := parseAmount(step.Balance)
		if err != nil {
			return err
		}
		ga := &host.GenesisAccount{
			ID:      step.Account,
			Balance: balance,
			Keys:    []ed25519.PublicKey{pk},
		}
		if step.Contract {
			ga.Code = linkdrop.Code
		}
		if err := r.s.runtime.Genesis(ctx, []*host.GenesisAccount{ga}); err != nil {
			return err
		}
		resp.Result.Balance = balance
		return nil
	case EndpointExecute:
		return r.execute(ctx, step, resp)
	case EndpointView:
		args, err := r.callArgs(ctx, step.Params)
		if err != nil {
			return err
		}
		value, err := r.s.runtime.View(ctx, r.receiver(step), step.Method, args)
		if err != nil {
			return err
		}
		resp.Result.Value = value
		return nil
	case EndpointBalance:
		account, err := r.s.runtime.ViewAccount(ctx, step.Account)
		if err != nil {
			return err
		}
		resp.Result.Balance = account.Balance
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, step.Endpoint)
	}
}

func (r *runCmd) execute(ctx context.Context, step *Step, resp *Response) error {
	keyName := step.Key
	if len(keyName) == 0 {
		keyName = step.Account.String()
	}
	priv, ok, err := GetPrivateKey(ctx, state.NewSimpleMutable(r.s.db), keyName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNamedKeyNotFound, keyName)
	}
	args, err := r.callArgs(ctx, step.Params)
	if err != nil {
		return err
	}
	deposit, err := parseAmount(step.Deposit)
	if err != nil {
		return err
	}
	gas := step.Gas
	if gas == 0 {
		gas = defaultGas
	}

	pk := priv.PublicKey()
	key, err := r.s.runtime.ViewAccessKey(ctx, step.Account, pk)
	if err != nil {
		return err
	}
	receiver := r.receiver(step)
	tx := &host.Transaction{
		SignerID:   step.Account,
		PublicKey:  pk,
		Nonce:      key.Nonce + 1,
		ReceiverID: receiver,
		Actions:    host.NewActionBatch(receiver).FunctionCall(step.Method, args, deposit, gas).Actions,
	}
	stx, err := tx.Sign(priv)
	if err != nil {
		return err
	}
	outcome, err := r.s.runtime.Execute(ctx, stx)
	if err != nil {
		return err
	}
	resp.setOutcome(outcome)
	return nil
}

func (r *runCmd) receiver(step *Step) codec.AccountID {
	if len(step.Receiver) > 0 {
		return step.Receiver
	}
	return r.s.config.ContractAccount
}

// callArgs encodes [params] as the JSON object a contract method takes.
func (r *runCmd) callArgs(ctx context.Context, params []Parameter) ([]byte, error) {
	if len(params) == 0 {
		return nil, nil
	}
	args := make(map[string]interface{}, len(params))
	for _, param := range params {
		v, err := r.paramValue(ctx, param)
		if err != nil {
			return nil, err
		}
		args[param.Name] = v
	}
	return json.Marshal(args)
}

func (r *runCmd) paramValue(ctx context.Context, param Parameter) (interface{}, error) {
	switch param.Type {
	case String:
		val, ok := param.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, param.Type)
		}
		return val, nil
	case Bool:
		val, ok := param.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, param.Type)
		}
		return val, nil
	case Account:
		val, ok := param.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, param.Type)
		}
		return codec.ParseAccountID(val)
	case U128:
		return toU128(param.Value)
	case KeyEd25519:
		val, ok := param.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, param.Type)
		}
		return r.s.publicKey(ctx, val)
	case Object:
		return r.resolveKeys(ctx, param.Value)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidParamType, param.Type)
	}
}

// resolveKeys replaces every "$name" string in [v] with the public key
// stored under name.
func (r *runCmd) resolveKeys(ctx context.Context, v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, keyRefPrefix) {
			return t, nil
		}
		pk, err := r.s.publicKey(ctx, strings.TrimPrefix(t, keyRefPrefix))
		if err != nil {
			return nil, err
		}
		return pk.String(), nil
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			resolved, err := r.resolveKeys(ctx, e)
			if err != nil {
				return nil, err
			}
			m[k] = resolved
		}
		return m, nil
	case []interface{}:
		l := make([]interface{}, len(t))
		for i, e := range t {
			resolved, err := r.resolveKeys(ctx, e)
			if err != nil {
				return nil, err
			}
			l[i] = resolved
		}
		return l, nil
	default:
		return v, nil
	}
}

func toU128(v interface{}) (*uint256.Int, error) {
	switch t := v.(type) {
	case string:
		return codec.ParseU128(t)
	case int:
		if t < 0 {
			return nil, fmt.Errorf("%w: negative %s", ErrFailedParamTypeCast, U128)
		}
		return uint256.NewInt(uint64(t)), nil
	case float64:
		// json decodes numbers as float64
		if t < 0 || t != float64(uint64(t)) {
			return nil, fmt.Errorf("%w: %v is not a %s", ErrFailedParamTypeCast, t, U128)
		}
		return uint256.NewInt(uint64(t)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, U128)
	}
}

// parseAmount returns nil for an empty amount.
func parseAmount(s string) (*uint256.Int, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return codec.ParseU128(s)
}
