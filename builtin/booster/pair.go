// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package booster

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/auth"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
)

// Pair is a liquidity pair of the reference asset and one other asset.
type Pair interface {
	// Reserves returns the pooled amounts of the reference and the other asset.
	Reserves() (reserveRef, reserveOther bn.Amount, err error)
	// TotalSupply returns the supply of the pair's liquidity token.
	TotalSupply() (bn.Amount, error)
}

// PriceOracle quotes the other asset of a pair in reference units, 1e18 scaled.
type PriceOracle interface {
	VirtualPrice() (bn.Amount, error)
}

// LedgerPair reads reserves as the token balances held at the pair address.
type LedgerPair struct {
	addr  thor.Address
	lp    token.Token
	ref   token.Token
	other token.Token
}

func NewLedgerPair(addr thor.Address, lp, ref, other token.Token) *LedgerPair {
	return &LedgerPair{addr: addr, lp: lp, ref: ref, other: other}
}

func (p *LedgerPair) Reserves() (bn.Amount, bn.Amount, error) {
	reserveRef, err := p.ref.BalanceOf(p.addr)
	if err != nil {
		return bn.Amount{}, bn.Amount{}, err
	}
	reserveOther, err := p.other.BalanceOf(p.addr)
	if err != nil {
		return bn.Amount{}, bn.Amount{}, err
	}
	return reserveRef, reserveOther, nil
}

func (p *LedgerPair) TotalSupply() (bn.Amount, error) {
	return p.lp.TotalSupply()
}

var slotPrice = thor.BytesToBytes32([]byte("oracle-price"))

// StoredOracle is a price oracle whose price is set by its owner.
type StoredOracle struct {
	sctx   *solidity.Context
	policy *auth.Policy
	price  *solidity.Uint256
}

func NewStoredOracle(addr thor.Address, st *state.State) *StoredOracle {
	sctx := solidity.NewContext(addr, st)
	return &StoredOracle{
		sctx:   sctx,
		policy: auth.New(sctx),
		price:  solidity.NewUint256(sctx, slotPrice),
	}
}

func (o *StoredOracle) Init(owner thor.Address, price bn.Amount) error {
	return o.sctx.Atomic(func() error {
		if err := o.policy.Init(owner); err != nil {
			return err
		}
		return o.price.Set(price)
	})
}

// SetPrice updates the quote. Owner only.
func (o *StoredOracle) SetPrice(caller thor.Address, price bn.Amount) error {
	return o.sctx.Atomic(func() error {
		if err := o.policy.RequireOwner(caller); err != nil {
			return err
		}
		if price.IsZero() {
			return reverts.ErrInvalidAmount
		}
		logger.Info("oracle price set", "oracle", o.sctx.Address(), "price", price)
		return o.price.Set(price)
	})
}

func (o *StoredOracle) VirtualPrice() (bn.Amount, error) {
	price, err := o.price.Get()
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get price")
	}
	return price, nil
}
