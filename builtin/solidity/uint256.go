// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/thor"
)

// Uint256 is a wrapper for storage and retrieval of an amount. Similar to storing an uint256 in a smart contract.
// Add and Sub are checked and leave storage untouched on overflow or underflow.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (value bn.Amount, err error) {
	err = u.context.state.DecodeStorage(u.context.address, u.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (u *Uint256) Set(value bn.Amount) error {
	if value.IsZero() {
		u.context.state.SetRawStorage(u.context.address, u.pos, nil)
		return nil
	}
	return u.context.state.EncodeStorage(u.context.address, u.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

func (u *Uint256) Add(value bn.Amount) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	sum, err := stored.Add(value)
	if err != nil {
		return err
	}
	return u.Set(sum)
}

func (u *Uint256) Sub(value bn.Amount) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	diff, err := stored.Sub(value)
	if err != nil {
		return err
	}
	return u.Set(diff)
}
