// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq      uint64       `json:"seq"`
	Index    uint32       `json:"index"`
	Time     uint64       `json:"time"`
	Origin   thor.Address `json:"origin"`
	Op       string       `json:"op"`
	Address  thor.Address `json:"address"`
	Name     string       `json:"name"`
	Account  thor.Address `json:"account"`
	From     thor.Address `json:"from"`
	Token    thor.Address `json:"token"`
	Amount   bn.Amount    `json:"amount"`
	Duration uint64       `json:"duration"`
}

// NewEvent converts the index-th event of receipt.
func NewEvent(receipt *tx.Receipt, index uint32, ev *tx.Event) *Event {
	return &Event{
		Seq:      receipt.Seq,
		Index:    index,
		Time:     receipt.Time,
		Origin:   receipt.Origin,
		Op:       receipt.Op,
		Address:  ev.Address,
		Name:     ev.Name,
		Account:  ev.Account,
		From:     ev.From,
		Token:    ev.Token,
		Amount:   ev.Amount,
		Duration: ev.Duration,
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the execution time of events, inclusive. A To below From is unbounded.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Address *thor.Address // emitting contract
	Name    *string
	Account *thor.Address
	Token   *thor.Address
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
