// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/host"
)

type Plan struct {
	// The name of the plan.
	Name string `yaml:"name" json:"name"`
	// A description of the plan.
	Description string `yaml:"description" json:"description"`
	// Steps to perform during simulation.
	Steps []Step `yaml:"steps" json:"steps"`
}

type Step struct {
	// Description of the step. (required)
	Description string `yaml:"description" json:"description"`
	// The API endpoint to call. (required)
	Endpoint Endpoint `yaml:"endpoint" json:"endpoint"`
	// The named key created, signed with or read by the step.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
	// The account created, signing or queried by the step.
	Account codec.AccountID `yaml:"account,omitempty" json:"account,omitempty"`
	// Genesis balance of a new account.
	Balance string `yaml:"balance,omitempty" json:"balance,omitempty"`
	// Deploys the linkdrop to a new account.
	Contract bool `yaml:"contract,omitempty" json:"contract,omitempty"`
	// The account receiving a call. Defaults to the contract account.
	Receiver codec.AccountID `yaml:"receiver,omitempty" json:"receiver,omitempty"`
	// The contract method to call.
	Method string `yaml:"method,omitempty" json:"method,omitempty"`
	// The named arguments of the call.
	Params []Parameter `yaml:"params,omitempty" json:"params,omitempty"`
	// Attached deposit of a call.
	Deposit string `yaml:"deposit,omitempty" json:"deposit,omitempty"`
	// Prepaid gas of a call. Defaults to [defaultGas].
	Gas uint64 `yaml:"gas,omitempty" json:"gas,omitempty"`
	// Define required assertions against this step.
	Require *Require `yaml:"require,omitempty" json:"require,omitempty"`
}

type Endpoint string

const (
	// Create a named ed25519 key.
	EndpointKey Endpoint = "key"
	// Create a genesis account owned by a named key.
	EndpointAccount Endpoint = "account"
	// Sign and execute a function call transaction.
	EndpointExecute Endpoint = "execute"
	// Make a read-only call to a contract method.
	EndpointView Endpoint = "view"
	// Read the balance of an account.
	EndpointBalance Endpoint = "balance"
)

type Parameter struct {
	// The name of the argument in the call. (required)
	Name string `yaml:"name" json:"name"`
	// The type of the parameter. (required)
	Type Type `yaml:"type" json:"type"`
	// The value of the parameter. (required)
	Value interface{} `yaml:"value" json:"value"`
}

type Type string

const (
	String     Type = "string"
	Bool       Type = "bool"
	Account    Type = "account"
	U128       Type = "u128"
	KeyEd25519 Type = "ed25519"
	// Object is passed through as is.
	Object Type = "object"
)

type Require struct {
	// Expected transaction status.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
	// Substring of the expected error.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
	// Assertion against the numeric result of the step.
	Result *ResultAssertion `yaml:"result,omitempty" json:"result,omitempty"`
}

type ResultAssertion struct {
	// The operator to use for the assertion.
	Operator string `yaml:"operator" json:"operator"`
	// The value to compare against.
	Value string `yaml:"value" json:"value"`
}

type Operator string

const (
	NumericGt Operator = ">"
	NumericLt Operator = "<"
	NumericGe Operator = ">="
	NumericLe Operator = "<="
	NumericEq Operator = "=="
	NumericNe Operator = "!="
)

type Response struct {
	// The index of the step that generated this response.
	ID int `json:"id"`
	// The result of the step.
	Result Result `json:"result"`
	// The error message if available.
	Error string `json:"error,omitempty"`
}

type Result struct {
	// The hash of the executed transaction.
	Hash string `json:"hash,omitempty"`
	// The final status of the executed transaction.
	Status string `json:"status,omitempty"`
	// The value returned by the call.
	Value json.RawMessage `json:"value,omitempty"`
	// The balance read or assigned by the step.
	Balance *uint256.Int `json:"balance,omitempty"`
	// Gas burnt by the transaction.
	GasUsed uint64 `json:"gasUsed,omitempty"`
	// An optional message.
	Msg string `json:"msg,omitempty"`
}

func newResponse(id int) *Response {
	return &Response{ID: id}
}

func (r *Response) setOutcome(outcome *host.TransactionOutcome) {
	r.Result.Hash = outcome.Hash.String()
	r.Result.Status = outcome.Status.String()
	r.Result.Value = outcome.Value
	r.Result.GasUsed = outcome.GasUsed
	r.Error = outcome.Error
}

func (r *Response) setError(err error) {
	r.Error = err.Error()
}

// numeric returns the value the step produced as a number. Balances
// take precedence over call results.
func (r *Response) numeric() (*uint256.Int, error) {
	if r.Result.Balance != nil {
		return r.Result.Balance, nil
	}
	if len(r.Result.Value) == 0 {
		return nil, fmt.Errorf("%w: step %d returned no value", ErrAssertionFailed, r.ID)
	}
	v := new(uint256.Int)
	if err := v.UnmarshalJSON(r.Result.Value); err != nil {
		return nil, fmt.Errorf("%w: step %d returned %s", ErrAssertionFailed, r.ID, r.Result.Value)
	}
	return v, nil
}

// check returns an error describing the first requirement [r] misses.
func (r *Response) check(req *Require) error {
	if req == nil {
		return nil
	}
	if len(req.Status) > 0 && req.Status != r.Result.Status {
		return fmt.Errorf("%w: step %d status %q, expected %q (%s)", ErrAssertionFailed, r.ID, r.Result.Status, req.Status, r.Error)
	}
	if len(req.Error) > 0 && !strings.Contains(r.Error, req.Error) {
		return fmt.Errorf("%w: step %d error %q, expected %q", ErrAssertionFailed, r.ID, r.Error, req.Error)
	}
	if req.Result == nil {
		return nil
	}
	actual, err := r.numeric()
	if err != nil {
		return err
	}
	ok, err := validateAssertion(actual, req.Result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: step %d result %s, expected %s %s", ErrAssertionFailed, r.ID, actual, req.Result.Operator, req.Result.Value)
	}
	return nil
}

// validateAssertion validates the assertion against the actual value.
func validateAssertion(actual *uint256.Int, assertion *ResultAssertion) (bool, error) {
	value, err := codec.ParseU128(assertion.Value)
	if err != nil {
		return false, err
	}

	switch Operator(assertion.Operator) {
	case NumericGt:
		return actual.Gt(value), nil
	case NumericLt:
		return actual.Lt(value), nil
	case NumericGe:
		return !actual.Lt(value), nil
	case NumericLe:
		return !actual.Gt(value), nil
	case NumericEq:
		return actual.Eq(value), nil
	case NumericNe:
		return !actual.Eq(value), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOperator, assertion.Operator)
	}
}

func unmarshalPlan(bytes []byte) (*Plan, error) {
	var p Plan
	switch {
	case isJSON(bytes):
		if err := json.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	case isYAML(bytes):
		if err := yaml.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidConfigFormat
	}
	for i := range p.Steps {
		for j := range p.Steps[i].Params {
			p.Steps[i].Params[j].Value = normalize(p.Steps[i].Params[j].Value)
		}
	}
	return &p, nil
}

// normalize converts the maps yaml decodes into maps json can encode.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}
