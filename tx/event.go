// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/thor"
)

// Event names emitted by the built-in contracts.
const (
	EventStaked               = "Staked"
	EventWithdrawn            = "Withdrawn"
	EventRewardAdded          = "RewardAdded"
	EventRewardPaid           = "RewardPaid"
	EventAdminRewardWithdrawn = "AdminRewardWithdrawn"
	EventRewardTokenAdded     = "RewardTokenAdded"
	EventPoolDeployed         = "PoolDeployed"
	EventDeposited            = "Deposited"
	EventLocked               = "Locked"
	EventUnlocked             = "Unlocked"
	EventEscrowed             = "Escrowed"
	EventVested               = "Vested"
	EventClaimed              = "Claimed"
	EventTransfer             = "Transfer"
)

// Event is a log record emitted by a built-in contract.
// Fields that do not apply to an event are left zero.
type Event struct {
	Address  thor.Address `json:"address"`  // emitting contract
	Name     string       `json:"name"`     // one of the Event* names
	Account  thor.Address `json:"account"`  // acting or receiving account
	From     thor.Address `json:"from"`     // sender of a transfer
	Token    thor.Address `json:"token"`    // token concerned, if any
	Amount   bn.Amount    `json:"amount"`   // amount concerned, if any
	Duration uint64       `json:"duration"` // reward duration in seconds, or lock unlock time
}

// Events slice of event logs.
type Events []*Event

// Filter returns the events matching the given name.
func (es Events) Filter(name string) Events {
	var out Events
	for _, e := range es {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
