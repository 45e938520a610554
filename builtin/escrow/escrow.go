// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package escrow converts a base token 1:1 into an escrow token that vests
// back into the base token linearly over the vesting period.
package escrow

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/auth"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "escrow")

	slotBaseToken = thor.BytesToBytes32([]byte("escrow-base-token"))
	slotPositions = thor.BytesToBytes32([]byte("escrow-positions"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Position is the vesting escrow of an account. Amount unlocks linearly from Start to End.
type Position struct {
	Amount bn.Amount `json:"amount"`
	Start  uint64    `json:"start"`
	End    uint64    `json:"end"`
}

// Claimable returns the unlocked part of the position at now.
func (p *Position) Claimable(now uint64) (bn.Amount, error) {
	if p.Amount.IsZero() || now <= p.Start {
		return bn.Zero(), nil
	}
	if now >= p.End {
		return p.Amount, nil
	}
	unlocked, err := p.Amount.MulDiv(bn.FromUint64(now-p.Start), bn.FromUint64(p.End-p.Start))
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	return unlocked, nil
}

// TokenAddress returns the address of the escrow token of the escrow at addr.
func TokenAddress(addr thor.Address) thor.Address {
	return thor.CreateContractAddress(addr, []byte("escrow-token"))
}

type Escrow struct {
	sctx          *solidity.Context
	policy        *auth.Policy
	baseToken     *solidity.Address
	positions     *solidity.Mapping[thor.Address, *Position]
	vestingPeriod *solidity.ConfigVariable
	escrowToken   *token.Ledger
	tokens        token.Resolver
}

func New(addr thor.Address, st *state.State, tokens token.Resolver) *Escrow {
	sctx := solidity.NewContext(addr, st)
	return &Escrow{
		sctx:          sctx,
		policy:        auth.New(sctx),
		baseToken:     solidity.NewAddress(sctx, slotBaseToken),
		positions:     solidity.NewMapping[thor.Address, *Position](sctx, slotPositions),
		vestingPeriod: solidity.NewConfigVariable(sctx, "escrow-vesting-period", thor.DefaultVestingPeriod),
		escrowToken:   token.NewLedger(TokenAddress(addr), st),
		tokens:        tokens,
	}
}

func (e *Escrow) Address() thor.Address {
	return e.sctx.Address()
}

// Token returns the escrow token.
func (e *Escrow) Token() *token.Ledger {
	return e.escrowToken
}

func (e *Escrow) Init(owner, baseToken thor.Address) error {
	return e.sctx.Atomic(func() error {
		if baseToken.IsZero() {
			return reverts.ErrInvalidRewardParams
		}
		if err := e.policy.Init(owner); err != nil {
			return err
		}
		e.baseToken.Set(&baseToken)
		if err := e.escrowToken.Init(e.Address(), false); err != nil {
			return err
		}
		logger.Info("escrow initialized", "escrow", e.Address(), "base", baseToken)
		return nil
	})
}

func (e *Escrow) BaseToken() (thor.Address, error) {
	base, err := e.baseToken.Get()
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get base token")
	}
	if base.IsZero() {
		return thor.Address{}, reverts.ErrNotInitialized
	}
	return base, nil
}

func (e *Escrow) position(account thor.Address) (*Position, error) {
	pos, err := e.positions.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos, nil
}

func (e *Escrow) setPosition(account thor.Address, pos *Position) error {
	if pos.Amount.IsZero() {
		e.positions.Delete(account)
		return nil
	}
	if err := e.positions.Set(account, pos); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

// Escrow converts amount of the base token of caller into escrow tokens.
func (e *Escrow) Escrow(caller thor.Address, amount bn.Amount) error {
	logger.Debug("escrow", "escrow", e.Address(), "account", caller, "amount", amount)
	err := e.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		base, err := e.BaseToken()
		if err != nil {
			return err
		}
		e.sctx.Emit(&tx.Event{Name: tx.EventEscrowed, Account: caller, Token: base, Amount: amount})

		if err := e.tokens.Resolve(base).Transfer(caller, e.Address(), amount); err != nil {
			return err
		}
		return e.escrowToken.Mint(e.Address(), caller, amount)
	})
	if err != nil {
		return err
	}
	logger.Info("escrowed", "escrow", e.Address(), "account", caller, "amount", amount)
	return nil
}

// release burns amount of held escrow tokens and pays the same amount of base token to account.
func (e *Escrow) release(base, account thor.Address, amount bn.Amount) error {
	if err := e.escrowToken.Burn(e.Address(), e.Address(), amount); err != nil {
		return err
	}
	return e.tokens.Resolve(base).Transfer(e.Address(), account, amount)
}

// Vest starts vesting amount of escrow tokens of caller. The unlocked part of
// an active position is paid first; the rest is merged into a fresh period.
func (e *Escrow) Vest(caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("vest", "escrow", e.Address(), "account", caller, "amount", amount)
	err := e.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		base, err := e.BaseToken()
		if err != nil {
			return err
		}
		period, err := e.vestingPeriod.Get()
		if err != nil {
			return err
		}
		pos, err := e.position(caller)
		if err != nil {
			return err
		}
		claimable, err := pos.Claimable(now)
		if err != nil {
			return err
		}
		remaining, _ := pos.Amount.Sub(claimable)
		merged, err := remaining.Add(amount)
		if err != nil {
			return reverts.Checked(err)
		}
		if err := e.setPosition(caller, &Position{Amount: merged, Start: now, End: now + period}); err != nil {
			return err
		}
		if !claimable.IsZero() {
			e.sctx.Emit(&tx.Event{Name: tx.EventClaimed, Account: caller, Token: base, Amount: claimable})
		}
		e.sctx.Emit(&tx.Event{Name: tx.EventVested, Account: caller, Token: e.escrowToken.Address(), Amount: merged, Duration: period})

		if err := e.escrowToken.Transfer(caller, e.Address(), amount); err != nil {
			return err
		}
		if claimable.IsZero() {
			return nil
		}
		return e.release(base, caller, claimable)
	})
	if err != nil {
		return err
	}
	logger.Info("vested", "escrow", e.Address(), "account", caller, "amount", amount)
	return nil
}

// Claim pays the unlocked part of the position of caller.
func (e *Escrow) Claim(caller thor.Address, now uint64) error {
	logger.Debug("claim", "escrow", e.Address(), "account", caller)
	var claimable bn.Amount
	err := e.sctx.Atomic(func() error {
		base, err := e.BaseToken()
		if err != nil {
			return err
		}
		pos, err := e.position(caller)
		if err != nil {
			return err
		}
		if claimable, err = pos.Claimable(now); err != nil {
			return err
		}
		if claimable.IsZero() {
			return reverts.ErrNothingToClaim
		}
		pos.Amount, _ = pos.Amount.Sub(claimable)
		pos.Start = now
		if err := e.setPosition(caller, pos); err != nil {
			return err
		}
		e.sctx.Emit(&tx.Event{Name: tx.EventClaimed, Account: caller, Token: base, Amount: claimable})

		return e.release(base, caller, claimable)
	})
	if err != nil {
		return err
	}
	logger.Info("claimed", "escrow", e.Address(), "account", caller, "amount", claimable)
	return nil
}

// SetVestingPeriod sets the period of future vests, in seconds. Owner only.
func (e *Escrow) SetVestingPeriod(caller thor.Address, period uint64) error {
	return e.sctx.Atomic(func() error {
		if err := e.policy.RequireOwner(caller); err != nil {
			return err
		}
		e.vestingPeriod.Set(period)
		logger.Info("vesting period set", "escrow", e.Address(), "period", period)
		return nil
	})
}

//
// Getters - no state change
//

func (e *Escrow) VestingPeriod() (uint64, error) {
	return e.vestingPeriod.Get()
}

func (e *Escrow) Position(account thor.Address) (*Position, error) {
	return e.position(account)
}

func (e *Escrow) ClaimableAmount(account thor.Address, now uint64) (bn.Amount, error) {
	pos, err := e.position(account)
	if err != nil {
		return bn.Amount{}, err
	}
	return pos.Claimable(now)
}
