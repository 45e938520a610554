// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes operations against the built-in contracts one at a
// time, in a total order, each either fully applied or fully reverted.
package runtime

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/builtin/booster"
	"github.com/vechain/rewards/builtin/escrow"
	"github.com/vechain/rewards/builtin/factory"
	"github.com/vechain/rewards/builtin/pool"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/builtin/treasury"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// ErrClockRewind is returned for an operation timestamped before the previous one.
	ErrClockRewind = errors.New("clock rewind")

	// Address holds the runtime's own bookkeeping.
	Address  = thor.BytesToAddress([]byte("runtime"))
	slotMeta = thor.BytesToBytes32([]byte("runtime-meta"))
)

type meta struct {
	Now uint64
	Seq uint64
}

// Runtime serialises operations over one state.
type Runtime struct {
	mu     sync.RWMutex
	state  *state.State
	tokens *token.Registry
	meta   *solidity.Raw[*meta]
	logDB  *logdb.LogDB

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a runtime over st. logDB may be nil.
func New(st *state.State, logDB *logdb.LogDB) *Runtime {
	return &Runtime{
		state:  st,
		tokens: token.NewRegistry(st),
		meta:   solidity.NewRaw[*meta](solidity.NewContext(Address, st), slotMeta),
		logDB:  logDB,
	}
}

func (rt *Runtime) State() *state.State     { return rt.state }
func (rt *Runtime) Tokens() *token.Registry { return rt.tokens }
func (rt *Runtime) LogDB() *logdb.LogDB     { return rt.logDB }

func (rt *Runtime) Token(addr thor.Address) token.Mintable {
	return rt.tokens.Resolve(addr)
}

// Ledger binds the state-backed token at addr.
func (rt *Runtime) Ledger(addr thor.Address) *token.Ledger {
	return token.NewLedger(addr, rt.state)
}

func (rt *Runtime) boosters(addr thor.Address) pool.BoostRater {
	return rt.Booster(addr)
}

func (rt *Runtime) Pool(addr thor.Address) *pool.Pool {
	return pool.New(addr, rt.state, rt.tokens, rt.boosters)
}

func (rt *Runtime) Treasury(addr thor.Address) *treasury.Treasury {
	return treasury.New(addr, rt.state, rt.tokens)
}

func (rt *Runtime) Booster(addr thor.Address) *booster.Booster {
	return booster.New(addr, rt.state, rt.tokens)
}

func (rt *Runtime) Oracle(addr thor.Address) *booster.StoredOracle {
	return booster.NewStoredOracle(addr, rt.state)
}

func (rt *Runtime) Escrow(addr thor.Address) *escrow.Escrow {
	return escrow.New(addr, rt.state, rt.tokens)
}

func (rt *Runtime) Factory(addr thor.Address) *factory.Factory {
	return factory.New(addr, rt.state, rt.tokens, rt.boosters)
}

func (rt *Runtime) getMeta() (*meta, error) {
	m, err := rt.meta.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get runtime meta")
	}
	if m == nil {
		m = &meta{}
	}
	return m, nil
}

// Clock returns the timestamp of the last executed operation and how many operations ran.
func (rt *Runtime) Clock() (now uint64, seq uint64, err error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	m, err := rt.getMeta()
	if err != nil {
		return 0, 0, err
	}
	return m.Now, m.Seq, nil
}

// Execute runs op at now on behalf of origin. A revert yields a reverted
// receipt and leaves no effect; any other error aborts and is returned.
func (rt *Runtime) Execute(now uint64, origin thor.Address, label string, op func() error) (*tx.Receipt, error) {
	receipt, err := rt.execute(now, origin, label, op)
	if err != nil {
		return nil, err
	}
	rt.feed.Send(receipt)
	return receipt, nil
}

func (rt *Runtime) execute(now uint64, origin thor.Address, label string, op func() error) (*tx.Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	m, err := rt.getMeta()
	if err != nil {
		return nil, err
	}
	if now < m.Now {
		return nil, errors.WithMessagef(ErrClockRewind, "%d < %d", now, m.Now)
	}

	start := time.Now()
	receipt := &tx.Receipt{Seq: m.Seq + 1, Time: now, Origin: origin, Op: label}

	checkpoint := rt.state.NewCheckpoint()
	if err := op(); err != nil {
		rt.state.RevertTo(checkpoint)
		if !reverts.IsRevertErr(err) {
			return nil, err
		}
		receipt.Reverted = true
		receipt.Error = err.Error()
	} else {
		receipt.Events = append(tx.Events(nil), rt.state.Events()...)
	}

	if err := rt.meta.Upsert(&meta{Now: now, Seq: receipt.Seq}); err != nil {
		return nil, errors.Wrap(err, "failed to set runtime meta")
	}
	if err := rt.state.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	if rt.logDB != nil {
		if err := rt.logDB.Write(tx.Receipts{receipt}); err != nil {
			return nil, errors.Wrap(err, "write logs")
		}
	}

	metricExecutionTime().Observe(time.Since(start).Microseconds())
	if receipt.Reverted {
		metricRevertCount().AddWithLabel(1, map[string]string{"op": label})
		logger.Debug("operation reverted", "seq", receipt.Seq, "op", label, "origin", origin, "err", receipt.Error)
	} else {
		metricOpCount().AddWithLabel(1, map[string]string{"op": label})
		metricEventCount().Add(int64(len(receipt.Events)))
		logger.Debug("operation executed", "seq", receipt.Seq, "op", label, "origin", origin, "events", len(receipt.Events))
	}
	return receipt, nil
}

// View runs fn under the read lock. fn must not mutate state.
func (rt *Runtime) View(fn func() error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn()
}

// SubscribeReceipts delivers every receipt to ch, in execution order.
func (rt *Runtime) SubscribeReceipts(ch chan<- *tx.Receipt) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close ends every subscription.
func (rt *Runtime) Close() {
	rt.scope.Close()
}
