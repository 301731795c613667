// Package chaintest provides an in-memory chain.Reader for tests.
package chaintest

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// ErrUnset is returned for reads nobody configured.
var ErrUnset = errors.New("chaintest: no value configured")

type key struct {
	addr   common.Address
	method chain.Method
}

// Reader serves configured values per (address, method). Safe for
// concurrent use; values may be changed between reads.
type Reader struct {
	mu      sync.Mutex
	values  map[key]any
	errs    map[key]error
	blocked map[key]bool
	calls   int
}

// New returns an empty Reader.
func New() *Reader {
	return &Reader{
		values:  make(map[key]any),
		errs:    make(map[key]error),
		blocked: make(map[key]bool),
	}
}

// Set configures a successful read.
func (r *Reader) Set(addr common.Address, m chain.Method, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{addr, m}
	r.values[k] = v
	delete(r.errs, k)
}

// Fail configures a failing read.
func (r *Reader) Fail(addr common.Address, m chain.Method, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{addr, m}
	r.errs[k] = err
	delete(r.values, k)
}

// Block makes a read wait until its context is canceled.
func (r *Reader) Block(addr common.Address, m chain.Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked[key{addr, m}] = true
}

// SetFactory configures the factory's campaign list.
func (r *Reader) SetFactory(factory common.Address, recs ...chain.CampaignRecord) {
	r.Set(factory, chain.MethodAllCampaigns, recs)
}

// SetCampaign configures all four campaign reads. A nil goal or balance
// makes that read fail.
func (r *Reader) SetCampaign(addr common.Address, name, description string, goal, balance *big.Int) {
	r.Set(addr, chain.MethodName, name)
	r.Set(addr, chain.MethodDescription, description)
	if goal != nil {
		r.Set(addr, chain.MethodGoal, goal)
	} else {
		r.Fail(addr, chain.MethodGoal, chain.ErrNoContract)
	}
	if balance != nil {
		r.Set(addr, chain.MethodBalance, balance)
	} else {
		r.Fail(addr, chain.MethodBalance, chain.ErrNoContract)
	}
}

// Calls returns the number of reads served.
func (r *Reader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Read implements chain.Reader.
func (r *Reader) Read(ctx context.Context, addr common.Address, m chain.Method) chain.Result {
	k := key{addr, m}

	r.mu.Lock()
	r.calls++
	blocked := r.blocked[k]
	v, hasValue := r.values[k]
	err := r.errs[k]
	r.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return chain.Result{Status: model.ReadErrored, Err: ctx.Err()}
	}
	if err := ctx.Err(); err != nil {
		return chain.Result{Status: model.ReadErrored, Err: err}
	}
	if err != nil {
		return chain.Result{Status: model.ReadErrored, Err: err}
	}
	if !hasValue {
		return chain.Result{Status: model.ReadErrored, Err: ErrUnset}
	}
	if b, ok := v.(*big.Int); ok {
		v = new(big.Int).Set(b)
	}
	return chain.Result{Value: v, Status: model.ReadLoaded}
}

// Addr builds a deterministic address from a small number.
func Addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}
