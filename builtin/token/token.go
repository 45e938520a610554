// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
)

// Token is the fungible token capability the reward contracts move funds with.
// Transfer moves funds between any two accounts; there are no allowances.
type Token interface {
	Address() thor.Address
	BalanceOf(account thor.Address) (bn.Amount, error)
	TotalSupply() (bn.Amount, error)
	Transfer(from, to thor.Address, amount bn.Amount) error
}

// Mintable is a token whose supply is managed by a minter account.
type Mintable interface {
	Token
	Mint(caller, to thor.Address, amount bn.Amount) error
	Burn(caller, from thor.Address, amount bn.Amount) error
}

// Resolver maps a token address to its implementation.
type Resolver interface {
	Resolve(addr thor.Address) Mintable
}

// Registry resolves registered tokens first and falls back to a state backed Ledger.
type Registry struct {
	state  *state.State
	custom map[thor.Address]Mintable
}

func NewRegistry(st *state.State) *Registry {
	return &Registry{
		state:  st,
		custom: make(map[thor.Address]Mintable),
	}
}

// Register overrides the implementation used for tok.Address().
func (r *Registry) Register(tok Mintable) {
	r.custom[tok.Address()] = tok
}

func (r *Registry) Resolve(addr thor.Address) Mintable {
	if tok, ok := r.custom[addr]; ok {
		return tok
	}
	return NewLedger(addr, r.state)
}
