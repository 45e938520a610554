// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package treasury implements the multi-token treasury: a governance token is
// deposited for a timelock, backed by a non-transferable receipt, and earns
// any number of independently scheduled reward tokens.
package treasury

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/pool"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "treasury")

	slotDeposits = thor.BytesToBytes32([]byte("treasury-deposits"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Deposit is one timelocked deposit.
type Deposit struct {
	Amount bn.Amount `json:"amount"`
	Start  uint64    `json:"start"`
	Unlock uint64    `json:"unlock"`
}

// ReceiptAddress returns the address of the receipt token of the treasury at addr.
func ReceiptAddress(addr thor.Address) thor.Address {
	return thor.CreateContractAddress(addr, []byte("receipt"))
}

type Treasury struct {
	pool       *pool.Pool
	sctx       *solidity.Context
	receipt    *token.Ledger
	deposits   *solidity.Mapping[thor.Address, []Deposit]
	lockPeriod *solidity.ConfigVariable
}

func New(addr thor.Address, st *state.State, tokens token.Resolver) *Treasury {
	sctx := solidity.NewContext(addr, st)
	return &Treasury{
		pool:       pool.New(addr, st, tokens, nil),
		sctx:       sctx,
		receipt:    token.NewLedger(ReceiptAddress(addr), st),
		deposits:   solidity.NewMapping[thor.Address, []Deposit](sctx, slotDeposits),
		lockPeriod: solidity.NewConfigVariable(sctx, "treasury-lock-period", thor.DefaultLockPeriod),
	}
}

func (t *Treasury) Address() thor.Address {
	return t.sctx.Address()
}

// Pool returns the underlying staking pool.
func (t *Treasury) Pool() *pool.Pool {
	return t.pool
}

// Receipt returns the receipt token minted 1:1 against deposits.
func (t *Treasury) Receipt() *token.Ledger {
	return t.receipt
}

// Init configures the treasury over governance, with the initial reward tokens.
func (t *Treasury) Init(owner, rewarder, governance thor.Address, rewardTokens []thor.Address) error {
	return t.sctx.Atomic(func() error {
		if err := t.pool.Init(owner, rewarder, pool.Config{StakingToken: governance, RewardTokens: rewardTokens}); err != nil {
			return err
		}
		return t.receipt.Init(t.Address(), true)
	})
}

func (t *Treasury) getDeposits(account thor.Address) ([]Deposit, error) {
	deps, err := t.deposits.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deposits")
	}
	return deps, nil
}

func (t *Treasury) setDeposits(account thor.Address, deps []Deposit) error {
	if len(deps) == 0 {
		t.deposits.Delete(account)
		return nil
	}
	if err := t.deposits.Set(account, deps); err != nil {
		return errors.Wrap(err, "failed to set deposits")
	}
	return nil
}

// Deposit stakes amount of the governance token for the current lock period.
func (t *Treasury) Deposit(caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("deposit", "treasury", t.Address(), "account", caller, "amount", amount)
	err := t.sctx.Atomic(func() error {
		period, err := t.lockPeriod.Get()
		if err != nil {
			return err
		}
		deps, err := t.getDeposits(caller)
		if err != nil {
			return err
		}
		dep := Deposit{Amount: amount, Start: now, Unlock: now + period}
		if err := t.setDeposits(caller, append(deps, dep)); err != nil {
			return err
		}
		t.sctx.Emit(&tx.Event{Name: tx.EventDeposited, Account: caller, Amount: amount, Duration: period})

		if err := t.pool.Stake(caller, amount, now); err != nil {
			return err
		}
		return t.receipt.Mint(t.Address(), caller, amount)
	})
	if err != nil {
		return err
	}
	logger.Info("deposited", "treasury", t.Address(), "account", caller, "amount", amount)
	return nil
}

// Withdraw consumes matured deposits of caller oldest-first.
func (t *Treasury) Withdraw(caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("withdraw", "treasury", t.Address(), "account", caller, "amount", amount)
	err := t.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		deps, err := t.getDeposits(caller)
		if err != nil {
			return err
		}
		left, err := consume(deps, amount, now)
		if err != nil {
			return err
		}
		if err := t.setDeposits(caller, left); err != nil {
			return err
		}
		if err := t.receipt.Burn(t.Address(), caller, amount); err != nil {
			return err
		}
		return t.pool.Withdraw(caller, amount, now)
	})
	if err != nil {
		return err
	}
	logger.Info("withdrawn", "treasury", t.Address(), "account", caller, "amount", amount)
	return nil
}

// consume takes amount out of the matured deposits, oldest first, and returns what is left.
func consume(deps []Deposit, amount bn.Amount, now uint64) ([]Deposit, error) {
	if matured := sumMatured(deps, now); matured.Cmp(amount) < 0 {
		return nil, reverts.ErrLocked
	}
	var left []Deposit
	for _, dep := range deps {
		if dep.Unlock > now || amount.IsZero() {
			left = append(left, dep)
			continue
		}
		take := bn.Min(dep.Amount, amount)
		amount, _ = amount.Sub(take)
		dep.Amount, _ = dep.Amount.Sub(take)
		if !dep.Amount.IsZero() {
			left = append(left, dep)
		}
	}
	return left, nil
}

func sumMatured(deps []Deposit, now uint64) bn.Amount {
	sum := bn.Zero()
	for _, dep := range deps {
		if dep.Unlock <= now {
			// bounded by the total supply of the receipt
			sum, _ = sum.Add(dep.Amount)
		}
	}
	return sum
}

// Exit withdraws every deposit of caller and pays its rewards. All deposits must be matured.
func (t *Treasury) Exit(caller thor.Address, now uint64) error {
	logger.Debug("exit", "treasury", t.Address(), "account", caller)
	err := t.sctx.Atomic(func() error {
		deps, err := t.getDeposits(caller)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if dep.Unlock > now {
				return reverts.ErrLocked
			}
		}
		staked, err := t.pool.BalanceOf(caller)
		if err != nil {
			return err
		}
		if err := t.setDeposits(caller, nil); err != nil {
			return err
		}
		if !staked.IsZero() {
			if err := t.receipt.Burn(t.Address(), caller, staked); err != nil {
				return err
			}
		}
		return t.pool.Exit(caller, now)
	})
	if err != nil {
		return err
	}
	logger.Info("exited", "treasury", t.Address(), "account", caller)
	return nil
}

func (t *Treasury) GetReward(caller thor.Address, now uint64) error {
	return t.pool.GetReward(caller, now)
}

// AddRewards funds an enabled reward token over days. Rewarder only.
func (t *Treasury) AddRewards(caller, tok thor.Address, amount bn.Amount, days uint64, now uint64) error {
	return t.pool.AddRewards(caller, tok, amount, days, now)
}

// EnableRewardToken appends tok to the reward tokens. Owner only.
func (t *Treasury) EnableRewardToken(caller, tok thor.Address) error {
	return t.pool.AddRewardToken(caller, tok)
}

// SetLockPeriod sets the lock of future deposits, in seconds. Zero restores the default.
func (t *Treasury) SetLockPeriod(caller thor.Address, period uint64) error {
	return t.sctx.Atomic(func() error {
		if err := t.pool.Policy().RequireOwner(caller); err != nil {
			return err
		}
		t.lockPeriod.Set(period)
		logger.Info("lock period set", "treasury", t.Address(), "period", period)
		return nil
	})
}

//
// Getters - no state change
//

func (t *Treasury) LockPeriod() (uint64, error) {
	return t.lockPeriod.Get()
}

func (t *Treasury) Deposits(account thor.Address) ([]Deposit, error) {
	return t.getDeposits(account)
}

// Withdrawable returns the matured deposit amount of account at now.
func (t *Treasury) Withdrawable(account thor.Address, now uint64) (bn.Amount, error) {
	deps, err := t.getDeposits(account)
	if err != nil {
		return bn.Amount{}, err
	}
	return sumMatured(deps, now), nil
}

func (t *Treasury) Earned(tok, account thor.Address, now uint64) (bn.Amount, error) {
	return t.pool.Earned(tok, account, now)
}
