// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/pool/schedule"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

type payout struct {
	token  thor.Address
	to     thor.Address
	amount bn.Amount
}

// boostRate returns the multiplier of account, 1x for pools without a booster.
func (p *Pool) boostRate(cfg *Config, account thor.Address) (bn.Amount, error) {
	if cfg.Booster.IsZero() || p.boosters == nil {
		return bn.One(), nil
	}
	staked, err := p.ledger.BalanceOf(account)
	if err != nil {
		return bn.Amount{}, err
	}
	return p.boosters(cfg.Booster).GetBoostRate(account, staked)
}

// checkpoint must run before every balance change of account.
func (p *Pool) checkpoint(cfg *Config, account thor.Address, now uint64) error {
	boost, err := p.boostRate(cfg, account)
	if err != nil {
		return err
	}
	return p.ledger.Checkpoint(cfg.RewardTokens, &account, now, boost)
}

// takeRewards settles the accrued rewards of account and returns the transfers owed.
func (p *Pool) takeRewards(cfg *Config, account thor.Address) ([]payout, error) {
	var payouts []payout
	for _, tok := range cfg.RewardTokens {
		amount, err := p.ledger.TakeReward(tok, account)
		if err != nil {
			return nil, err
		}
		if amount.IsZero() {
			continue
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventRewardPaid, Account: account, Token: tok, Amount: amount})
		payouts = append(payouts, payout{tok, account, amount})
	}
	return payouts, nil
}

// pay runs the transfers. A pool short of a reward token fails the whole call.
func (p *Pool) pay(payouts []payout) error {
	for _, po := range payouts {
		tok := p.tokens.Resolve(po.token)
		bal, err := tok.BalanceOf(p.Address())
		if err != nil {
			return err
		}
		if bal.Cmp(po.amount) < 0 {
			return reverts.ErrTransferFailed
		}
		if err := tok.Transfer(p.Address(), po.to, po.amount); err != nil {
			return err
		}
	}
	return nil
}

// Stake deposits amount of the staking asset for caller.
func (p *Pool) Stake(caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("stake", "pool", p.Address(), "account", caller, "amount", amount)
	err := p.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		if err := p.checkpoint(cfg, caller, now); err != nil {
			return err
		}
		if err := p.ledger.Stake(caller, amount); err != nil {
			return err
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventStaked, Account: caller, Token: cfg.StakingToken, Amount: amount})

		return p.tokens.Resolve(cfg.StakingToken).Transfer(caller, p.Address(), amount)
	})
	if err != nil {
		return err
	}
	logger.Info("staked", "pool", p.Address(), "account", caller, "amount", amount)
	return nil
}

// Withdraw returns amount of the staking asset to caller.
func (p *Pool) Withdraw(caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("withdraw", "pool", p.Address(), "account", caller, "amount", amount)
	err := p.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		if err := p.checkpoint(cfg, caller, now); err != nil {
			return err
		}
		if err := p.ledger.Withdraw(caller, amount); err != nil {
			return err
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventWithdrawn, Account: caller, Token: cfg.StakingToken, Amount: amount})

		return p.tokens.Resolve(cfg.StakingToken).Transfer(p.Address(), caller, amount)
	})
	if err != nil {
		return err
	}
	logger.Info("withdrawn", "pool", p.Address(), "account", caller, "amount", amount)
	return nil
}

// GetReward pays every accrued reward of caller. Nothing accrued is a no-op.
func (p *Pool) GetReward(caller thor.Address, now uint64) error {
	logger.Debug("get reward", "pool", p.Address(), "account", caller)
	var payouts []payout
	err := p.sctx.Atomic(func() error {
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		if err := p.checkpoint(cfg, caller, now); err != nil {
			return err
		}
		if payouts, err = p.takeRewards(cfg, caller); err != nil {
			return err
		}
		return p.pay(payouts)
	})
	if err != nil {
		return err
	}
	if len(payouts) > 0 {
		logger.Info("reward paid", "pool", p.Address(), "account", caller, "tokens", len(payouts))
	}
	return nil
}

// Exit withdraws the full stake of caller, then pays its rewards.
func (p *Pool) Exit(caller thor.Address, now uint64) error {
	logger.Debug("exit", "pool", p.Address(), "account", caller)
	err := p.sctx.Atomic(func() error {
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		staked, err := p.ledger.BalanceOf(caller)
		if err != nil {
			return err
		}
		if staked.IsZero() {
			return reverts.ErrInsufficientBalance
		}
		if err := p.checkpoint(cfg, caller, now); err != nil {
			return err
		}
		if err := p.ledger.Withdraw(caller, staked); err != nil {
			return err
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventWithdrawn, Account: caller, Token: cfg.StakingToken, Amount: staked})
		payouts, err := p.takeRewards(cfg, caller)
		if err != nil {
			return err
		}

		if err := p.tokens.Resolve(cfg.StakingToken).Transfer(p.Address(), caller, staked); err != nil {
			return err
		}
		return p.pay(payouts)
	})
	if err != nil {
		return err
	}
	logger.Info("exited", "pool", p.Address(), "account", caller)
	return nil
}

//
// Getters - no state change
//

func (p *Pool) TotalSupply() (bn.Amount, error) {
	return p.ledger.TotalStaked()
}

func (p *Pool) BalanceOf(account thor.Address) (bn.Amount, error) {
	return p.ledger.BalanceOf(account)
}

func (p *Pool) RewardTokens() ([]thor.Address, error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}
	return cfg.RewardTokens, nil
}

func (p *Pool) enabled(tok thor.Address) error {
	cfg, err := p.Config()
	if err != nil {
		return err
	}
	if !cfg.hasRewardToken(tok) {
		return reverts.ErrTokenNotEnabled
	}
	return nil
}

// Earned projects the reward of account in tok at now, boost included.
func (p *Pool) Earned(tok, account thor.Address, now uint64) (bn.Amount, error) {
	cfg, err := p.Config()
	if err != nil {
		return bn.Amount{}, err
	}
	if !cfg.hasRewardToken(tok) {
		return bn.Amount{}, reverts.ErrTokenNotEnabled
	}
	boost, err := p.boostRate(cfg, account)
	if err != nil {
		return bn.Amount{}, err
	}
	return p.ledger.Earned(tok, account, now, boost)
}

// Schedule returns the emission state of tok.
func (p *Pool) Schedule(tok thor.Address) (*schedule.Schedule, error) {
	if err := p.enabled(tok); err != nil {
		return nil, err
	}
	return p.schedules.Get(tok)
}

func (p *Pool) RewardPerUnit(tok thor.Address, now uint64) (bn.Amount, error) {
	if err := p.enabled(tok); err != nil {
		return bn.Amount{}, err
	}
	return p.ledger.RewardPerUnit(tok, now)
}

func (p *Pool) LastTimeRewardApplicable(tok thor.Address, now uint64) (uint64, error) {
	sched, err := p.Schedule(tok)
	if err != nil {
		return 0, err
	}
	return sched.LastTimeApplicable(now), nil
}

// RewardForDuration returns the budget of a full period at the current rate.
func (p *Pool) RewardForDuration(tok thor.Address) (bn.Amount, error) {
	sched, err := p.Schedule(tok)
	if err != nil {
		return bn.Amount{}, err
	}
	return sched.ForDuration(sched.Duration)
}

// Funded returns the cumulative budget ever added for tok, and how much of it was paid.
func (p *Pool) Funded(tok thor.Address) (funded bn.Amount, paid bn.Amount, err error) {
	if err = p.enabled(tok); err != nil {
		return
	}
	if funded, err = p.schedules.Funded(tok); err != nil {
		return
	}
	paid, err = p.schedules.Paid(tok)
	return
}

// AdminSurplus returns the staking-asset balance not attributable to stakers
// nor to an unpaid reward budget in the same asset.
func (p *Pool) AdminSurplus() (bn.Amount, error) {
	cfg, err := p.Config()
	if err != nil {
		return bn.Amount{}, err
	}
	bal, err := p.tokens.Resolve(cfg.StakingToken).BalanceOf(p.Address())
	if err != nil {
		return bn.Amount{}, err
	}
	total, err := p.ledger.TotalStaked()
	if err != nil {
		return bn.Amount{}, err
	}
	surplus := bal.SubFloor(total)
	if cfg.hasRewardToken(cfg.StakingToken) {
		outstanding, err := p.schedules.Outstanding(cfg.StakingToken)
		if err != nil {
			return bn.Amount{}, err
		}
		surplus = surplus.SubFloor(outstanding)
	}
	return surplus, nil
}
