// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/reverts"
)

// Schedule is the emission state of one reward token in one pool.
//
// RewardPerUnitStored is scaled by 1e18: it is the reward paid per whole staked
// token, in raw reward units, accumulated since the pool was created.
type Schedule struct {
	Rate                bn.Amount // raw reward units per second
	Duration            uint64    // length of the current period in seconds
	PeriodFinish        uint64
	LastUpdateTime      uint64
	RewardPerUnitStored bn.Amount
}

// LastTimeApplicable returns min(now, PeriodFinish).
func (s *Schedule) LastTimeApplicable(now uint64) uint64 {
	if now < s.PeriodFinish {
		return now
	}
	return s.PeriodFinish
}

// RewardPerUnit projects the accumulator at now. It does not advance while
// nothing is staked.
func (s *Schedule) RewardPerUnit(now uint64, totalStaked bn.Amount) (bn.Amount, error) {
	if totalStaked.IsZero() {
		return s.RewardPerUnitStored, nil
	}
	applicable := s.LastTimeApplicable(now)
	if applicable <= s.LastUpdateTime {
		return s.RewardPerUnitStored, nil
	}
	emitted, err := s.Rate.MulUint64(applicable - s.LastUpdateTime)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	perUnit, err := emitted.MulDiv(bn.One(), totalStaked)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	rpu, err := s.RewardPerUnitStored.Add(perUnit)
	return rpu, reverts.Checked(err)
}

// Remaining returns the budget not yet emitted, assuming the accumulator has
// been checkpointed. While nothing is staked the frozen interval is included.
func (s *Schedule) Remaining() (bn.Amount, error) {
	if s.LastUpdateTime >= s.PeriodFinish {
		return bn.Zero(), nil
	}
	remaining, err := s.Rate.MulUint64(s.PeriodFinish - s.LastUpdateTime)
	return remaining, reverts.Checked(err)
}

// ForDuration returns the budget emitted over the given number of seconds at the current rate.
func (s *Schedule) ForDuration(duration uint64) (bn.Amount, error) {
	amount, err := s.Rate.MulUint64(duration)
	return amount, reverts.Checked(err)
}
