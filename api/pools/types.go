// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/pool/schedule"
	"github.com/vechain/rewards/thor"
)

// Schedule is the emission state of one reward token.
type Schedule struct {
	Token             thor.Address `json:"token"`
	Rate              bn.Amount    `json:"rate"`
	Duration          uint64       `json:"duration"`
	PeriodFinish      uint64       `json:"periodFinish"`
	LastUpdateTime    uint64       `json:"lastUpdateTime"`
	RewardPerUnit     bn.Amount    `json:"rewardPerUnit"`
	RewardForDuration bn.Amount    `json:"rewardForDuration"`
	Funded            bn.Amount    `json:"funded"`
	Paid              bn.Amount    `json:"paid"`
}

func convertSchedule(tok thor.Address, s *schedule.Schedule) *Schedule {
	return &Schedule{
		Token:          tok,
		Rate:           s.Rate,
		Duration:       s.Duration,
		PeriodFinish:   s.PeriodFinish,
		LastUpdateTime: s.LastUpdateTime,
	}
}

type Pool struct {
	Address       thor.Address `json:"address"`
	Owner         thor.Address `json:"owner"`
	StakingToken  thor.Address `json:"stakingToken"`
	StartTime     uint64       `json:"startTime"`
	FixedDuration uint64       `json:"fixedDuration"`
	Booster       thor.Address `json:"booster"`
	TotalSupply   bn.Amount    `json:"totalSupply"`
	AdminSurplus  bn.Amount    `json:"adminSurplus"`
	Now           uint64       `json:"now"`
	Schedules     []*Schedule  `json:"schedules"`
}

type Earned struct {
	Token  thor.Address `json:"token"`
	Amount bn.Amount    `json:"amount"`
}

type Account struct {
	Pool    thor.Address `json:"pool"`
	Account thor.Address `json:"account"`
	Balance bn.Amount    `json:"balance"`
	Now     uint64       `json:"now"`
	Earned  []*Earned    `json:"earned"`
}
