// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/rewards/thor"
)

// Receipt is the outcome of one executed operation.
type Receipt struct {
	Seq      uint64       `json:"seq"`      // position in the total order of executed operations
	Time     uint64       `json:"time"`     // timestamp the operation ran at
	Origin   thor.Address `json:"origin"`   // caller
	Op       string       `json:"op"`       // operation label
	Reverted bool         `json:"reverted"` // whether the operation failed and left no effect
	Error    string       `json:"error,omitempty"`
	Events   Events       `json:"events"`
}

// Receipts slice of receipts.
type Receipts []*Receipt
