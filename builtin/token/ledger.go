// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	slotBalances        = thor.BytesToBytes32([]byte("token-balances"))
	slotTotalSupply     = thor.BytesToBytes32([]byte("token-total-supply"))
	slotMinter          = thor.BytesToBytes32([]byte("token-minter"))
	slotNonTransferable = thor.BytesToBytes32([]byte("token-non-transferable"))
)

// Ledger is a minimal token kept in contract storage.
// A non-transferable ledger only moves funds to or from its minter.
type Ledger struct {
	sctx            *solidity.Context
	balances        *solidity.Mapping[thor.Address, bn.Amount]
	totalSupply     *solidity.Uint256
	minter          *solidity.Address
	nonTransferable *solidity.Raw[bool]
}

func NewLedger(addr thor.Address, st *state.State) *Ledger {
	sctx := solidity.NewContext(addr, st)
	return &Ledger{
		sctx:            sctx,
		balances:        solidity.NewMapping[thor.Address, bn.Amount](sctx, slotBalances),
		totalSupply:     solidity.NewUint256(sctx, slotTotalSupply),
		minter:          solidity.NewAddress(sctx, slotMinter),
		nonTransferable: solidity.NewRaw[bool](sctx, slotNonTransferable),
	}
}

// Init sets the minter once.
func (l *Ledger) Init(minter thor.Address, nonTransferable bool) error {
	current, err := l.Minter()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.ErrAlreadyInitialized
	}
	l.minter.Set(&minter)
	if nonTransferable {
		return l.nonTransferable.Upsert(true)
	}
	return nil
}

func (l *Ledger) Address() thor.Address {
	return l.sctx.Address()
}

func (l *Ledger) Minter() (thor.Address, error) {
	minter, err := l.minter.Get()
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get minter")
	}
	return minter, nil
}

func (l *Ledger) NonTransferable() (bool, error) {
	v, err := l.nonTransferable.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get transferability")
	}
	return v, nil
}

func (l *Ledger) BalanceOf(account thor.Address) (bn.Amount, error) {
	bal, err := l.balances.Get(account)
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (l *Ledger) TotalSupply() (bn.Amount, error) {
	supply, err := l.totalSupply.Get()
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get total supply")
	}
	return supply, nil
}

func (l *Ledger) Transfer(from, to thor.Address, amount bn.Amount) error {
	locked, err := l.NonTransferable()
	if err != nil {
		return err
	}
	if locked {
		minter, err := l.Minter()
		if err != nil {
			return err
		}
		if from != minter && to != minter {
			return reverts.ErrNonTransferable
		}
	}
	if err := l.sub(from, amount); err != nil {
		return err
	}
	if err := l.add(to, amount); err != nil {
		return err
	}
	l.sctx.Emit(&tx.Event{Name: tx.EventTransfer, From: from, Account: to, Token: l.Address(), Amount: amount})
	return nil
}

func (l *Ledger) Mint(caller, to thor.Address, amount bn.Amount) error {
	if err := l.requireMinter(caller); err != nil {
		return err
	}
	if err := l.totalSupply.Add(amount); err != nil {
		return err
	}
	if err := l.add(to, amount); err != nil {
		return err
	}
	l.sctx.Emit(&tx.Event{Name: tx.EventTransfer, Account: to, Token: l.Address(), Amount: amount})
	return nil
}

func (l *Ledger) Burn(caller, from thor.Address, amount bn.Amount) error {
	if err := l.requireMinter(caller); err != nil {
		return err
	}
	if err := l.sub(from, amount); err != nil {
		return err
	}
	if err := l.totalSupply.Sub(amount); err != nil {
		return err
	}
	l.sctx.Emit(&tx.Event{Name: tx.EventTransfer, From: from, Token: l.Address(), Amount: amount})
	return nil
}

func (l *Ledger) requireMinter(caller thor.Address) error {
	minter, err := l.Minter()
	if err != nil {
		return err
	}
	if minter.IsZero() {
		return reverts.ErrNotInitialized
	}
	if minter != caller {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (l *Ledger) add(account thor.Address, amount bn.Amount) error {
	bal, err := l.BalanceOf(account)
	if err != nil {
		return err
	}
	bal, err = bal.Add(amount)
	if err != nil {
		return err
	}
	return l.setBalance(account, bal)
}

func (l *Ledger) sub(account thor.Address, amount bn.Amount) error {
	bal, err := l.BalanceOf(account)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	bal, _ = bal.Sub(amount)
	return l.setBalance(account, bal)
}

func (l *Ledger) setBalance(account thor.Address, bal bn.Amount) error {
	if bal.IsZero() {
		l.balances.Delete(account)
		return nil
	}
	if err := l.balances.Set(account, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}
