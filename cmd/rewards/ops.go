// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/booster"
	"github.com/vechain/rewards/builtin/pool"
	"github.com/vechain/rewards/runtime"
)

// errCheck is returned when a check step observes an unexpected value.
var errCheck = errors.New("check failed")

// operation binds a scenario op to the runtime. Views run under the read lock
// and are not recorded.
type operation struct {
	view bool
	run  func(rt *runtime.Runtime, s *Step, now uint64) error
}

func mutate(run func(rt *runtime.Runtime, s *Step, now uint64) error) operation {
	return operation{run: run}
}

func query(run func(rt *runtime.Runtime, s *Step, now uint64) error) operation {
	return operation{view: true, run: run}
}

func (s *Step) poolConfig() pool.Config {
	return pool.Config{
		StakingToken:  s.StakingToken.Address(),
		RewardTokens:  addresses(s.RewardTokens),
		StartTime:     s.StartTime,
		FixedDuration: s.Duration,
		Booster:       s.Booster.Address(),
	}
}

func (s *Step) boosterConfig() booster.Config {
	return booster.Config{
		Pair:           s.Pair.Address(),
		LPToken:        s.LPToken.Address(),
		ReferenceToken: s.ReferenceToken.Address(),
		OtherToken:     s.OtherToken.Address(),
		Oracle:         s.Oracle.Address(),
		EscrowToken:    s.EscrowToken.Address(),
		EscrowRate:     s.EscrowRate,
		ReferencePrice: s.ReferencePrice,
	}
}

func expectAmount(what string, got, want bn.Amount) error {
	if got.Cmp(want) != 0 {
		return errors.WithMessagef(errCheck, "%s: got %s, want %s", what, got.Decimal(), want.Decimal())
	}
	return nil
}

var operations = map[string]operation{
	"token.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Ledger(s.Target.Address()).Init(s.From.Address(), s.Soulbound)
	}),
	"token.mint": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Ledger(s.Target.Address()).Mint(s.From.Address(), s.To.Address(), s.Amount)
	}),
	"token.burn": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Ledger(s.Target.Address()).Burn(s.From.Address(), s.To.Address(), s.Amount)
	}),
	"token.transfer": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Token(s.Target.Address()).Transfer(s.From.Address(), s.To.Address(), s.Amount)
	}),

	"pool.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Pool(s.Target.Address()).Init(s.From.Address(), s.Rewarder.Address(), s.poolConfig())
	}),
	"pool.addRewardToken": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Pool(s.Target.Address()).AddRewardToken(s.From.Address(), s.Token.Address())
	}),
	"pool.addRewards": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).AddRewards(s.From.Address(), s.Token.Address(), s.Amount, s.Days, now)
	}),
	"pool.fund": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).Fund(s.From.Address(), s.Token.Address(), s.Amount, now)
	}),
	"pool.stake": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).Stake(s.From.Address(), s.Amount, now)
	}),
	"pool.withdraw": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).Withdraw(s.From.Address(), s.Amount, now)
	}),
	"pool.getReward": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).GetReward(s.From.Address(), now)
	}),
	"pool.exit": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Pool(s.Target.Address()).Exit(s.From.Address(), now)
	}),
	"pool.withdrawAdminRewards": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Pool(s.Target.Address()).WithdrawAdminRewards(s.From.Address(), s.To.Address())
	}),

	"treasury.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Treasury(s.Target.Address()).Init(s.From.Address(), s.Rewarder.Address(), s.Governance.Address(), addresses(s.RewardTokens))
	}),
	"treasury.enableRewardToken": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Treasury(s.Target.Address()).EnableRewardToken(s.From.Address(), s.Token.Address())
	}),
	"treasury.addRewards": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Treasury(s.Target.Address()).AddRewards(s.From.Address(), s.Token.Address(), s.Amount, s.Days, now)
	}),
	"treasury.deposit": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Treasury(s.Target.Address()).Deposit(s.From.Address(), s.Amount, now)
	}),
	"treasury.withdraw": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Treasury(s.Target.Address()).Withdraw(s.From.Address(), s.Amount, now)
	}),
	"treasury.exit": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Treasury(s.Target.Address()).Exit(s.From.Address(), now)
	}),
	"treasury.getReward": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Treasury(s.Target.Address()).GetReward(s.From.Address(), now)
	}),
	"treasury.setLockPeriod": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Treasury(s.Target.Address()).SetLockPeriod(s.From.Address(), s.Period)
	}),

	"oracle.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Oracle(s.Target.Address()).Init(s.From.Address(), s.Price)
	}),
	"oracle.setPrice": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Oracle(s.Target.Address()).SetPrice(s.From.Address(), s.Price)
	}),

	"booster.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Booster(s.Target.Address()).Init(s.From.Address(), s.boosterConfig())
	}),
	"booster.stake": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Booster(s.Target.Address()).Stake(s.From.Address(), s.Amount, now)
	}),
	"booster.unstake": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Booster(s.Target.Address()).Unstake(s.From.Address(), now)
	}),
	"booster.zapStake": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Booster(s.Target.Address()).ZapStake(s.From.Address(), s.Amount, now)
	}),
	"booster.zapUnstake": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Booster(s.Target.Address()).ZapUnstake(s.From.Address(), now)
	}),
	"booster.setStakePeriod": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Booster(s.Target.Address()).SetStakePeriod(s.From.Address(), s.Period)
	}),

	"escrow.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Escrow(s.Target.Address()).Init(s.From.Address(), s.Token.Address())
	}),
	"escrow.escrow": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Escrow(s.Target.Address()).Escrow(s.From.Address(), s.Amount)
	}),
	"escrow.vest": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Escrow(s.Target.Address()).Vest(s.From.Address(), s.Amount, now)
	}),
	"escrow.claim": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Escrow(s.Target.Address()).Claim(s.From.Address(), now)
	}),
	"escrow.setVestingPeriod": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Escrow(s.Target.Address()).SetVestingPeriod(s.From.Address(), s.Period)
	}),

	"factory.init": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		return rt.Factory(s.Target.Address()).Init(s.From.Address())
	}),
	"factory.deploy": mutate(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		_, err := rt.Factory(s.Target.Address()).Deploy(s.From.Address(), s.StakingToken.Address(), s.poolConfig())
		return err
	}),
	"factory.addRewards": mutate(func(rt *runtime.Runtime, s *Step, now uint64) error {
		return rt.Factory(s.Target.Address()).AddRewards(s.From.Address(), s.StakingToken.Address(), s.Token.Address(), s.Amount, s.Days, now)
	}),

	"check.balance": query(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		got, err := rt.Token(s.Target.Address()).BalanceOf(s.To.Address())
		if err != nil {
			return err
		}
		return expectAmount("balance", got, s.Amount)
	}),
	"check.staked": query(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		got, err := rt.Pool(s.Target.Address()).BalanceOf(s.To.Address())
		if err != nil {
			return err
		}
		return expectAmount("staked", got, s.Amount)
	}),
	"check.earned": query(func(rt *runtime.Runtime, s *Step, now uint64) error {
		got, err := rt.Pool(s.Target.Address()).Earned(s.Token.Address(), s.To.Address(), now)
		if err != nil {
			return err
		}
		return expectAmount("earned", got, s.Amount)
	}),
	"check.claimable": query(func(rt *runtime.Runtime, s *Step, now uint64) error {
		got, err := rt.Escrow(s.Target.Address()).ClaimableAmount(s.To.Address(), now)
		if err != nil {
			return err
		}
		return expectAmount("claimable", got, s.Amount)
	}),
	"check.boostRate": query(func(rt *runtime.Runtime, s *Step, _ uint64) error {
		got, err := rt.Booster(s.Target.Address()).GetBoostRate(s.To.Address(), s.Amount)
		if err != nil {
			return err
		}
		return expectAmount("boost rate", got, s.Price)
	}),
}
