// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

const t0 = uint64(1_700_000_000)

var (
	owner  = thor.BytesToAddress([]byte("owner"))
	minter = thor.BytesToAddress([]byte("minter"))
	alice  = thor.BytesToAddress([]byte("alice"))

	escrowAddr = thor.BytesToAddress([]byte("escrow"))
	baseAddr   = thor.BytesToAddress([]byte("base"))
)

func newEscrow(t *testing.T) (*state.State, *Escrow, *token.Ledger) {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	base := token.NewLedger(baseAddr, st)
	require.NoError(t, base.Init(minter, false))
	require.NoError(t, base.Mint(minter, alice, bn.Units(5000)))

	e := New(escrowAddr, st, token.NewRegistry(st))
	require.NoError(t, e.Init(owner, baseAddr))
	return st, e, base
}

func TestEscrowMintsOneToOne(t *testing.T) {
	st, e, base := newEscrow(t)

	assert.ErrorIs(t, e.Escrow(alice, bn.Zero()), reverts.ErrInvalidAmount)
	require.NoError(t, e.Escrow(alice, bn.Units(1000)))

	bal, _ := e.Token().BalanceOf(alice)
	assert.Equal(t, bn.Units(1000), bal)
	held, _ := base.BalanceOf(escrowAddr)
	assert.Equal(t, bn.Units(1000), held)
	assert.Len(t, st.Events().Filter(tx.EventEscrowed), 1)

	// no vesting effect
	pos, _ := e.Position(alice)
	assert.True(t, pos.Amount.IsZero())

	assert.ErrorIs(t, e.Init(owner, baseAddr), reverts.ErrAlreadyInitialized)
}

func TestClaimableAtDayNine(t *testing.T) {
	_, e, base := newEscrow(t)
	require.NoError(t, e.Escrow(alice, bn.Units(1000)))
	require.NoError(t, e.Vest(alice, bn.Units(1000), t0))

	assert.ErrorIs(t, e.Claim(alice, t0), reverts.ErrNothingToClaim)

	claimable, err := e.ClaimableAmount(alice, t0+9*thor.Day)
	require.NoError(t, err)
	assert.Equal(t, bn.Units(100), claimable)

	require.NoError(t, e.Claim(alice, t0+9*thor.Day))
	bal, _ := base.BalanceOf(alice)
	assert.Equal(t, bn.Units(4100), bal)

	// the rest vests from the claim to the original end
	pos, _ := e.Position(alice)
	assert.Equal(t, bn.Units(900), pos.Amount)
	assert.Equal(t, t0+9*thor.Day, pos.Start)
	assert.Equal(t, t0+90*thor.Day, pos.End)

	claimable, _ = e.ClaimableAmount(alice, t0+90*thor.Day)
	assert.Equal(t, bn.Units(900), claimable)
	require.NoError(t, e.Claim(alice, t0+100*thor.Day))
	bal, _ = base.BalanceOf(alice)
	assert.Equal(t, bn.Units(5000), bal)

	supply, _ := e.Token().TotalSupply()
	assert.True(t, supply.IsZero())
	assert.ErrorIs(t, e.Claim(alice, t0+101*thor.Day), reverts.ErrNothingToClaim)
}

func TestRevestAutoClaims(t *testing.T) {
	st, e, base := newEscrow(t)
	require.NoError(t, e.Escrow(alice, bn.Units(1100)))
	require.NoError(t, e.Vest(alice, bn.Units(1000), t0))

	now := t0 + 9*thor.Day
	require.NoError(t, e.Vest(alice, bn.Units(100), now))

	bal, _ := base.BalanceOf(alice)
	assert.Equal(t, bn.Units(4000), bal)

	pos, _ := e.Position(alice)
	assert.Equal(t, bn.Units(1000), pos.Amount)
	assert.Equal(t, now, pos.Start)
	assert.Equal(t, now+thor.DefaultVestingPeriod, pos.End)

	claimed := st.Events().Filter(tx.EventClaimed)
	require.Len(t, claimed, 1)
	assert.Equal(t, bn.Units(100), claimed[0].Amount)

	escrowBal, _ := e.Token().BalanceOf(alice)
	assert.True(t, escrowBal.IsZero())
	supply, _ := e.Token().TotalSupply()
	assert.Equal(t, bn.Units(1000), supply)
}

func TestVestFailsAtomically(t *testing.T) {
	st, e, _ := newEscrow(t)
	require.NoError(t, e.Escrow(alice, bn.Units(10)))
	events := len(st.Events())

	assert.ErrorIs(t, e.Vest(alice, bn.Units(11), t0), reverts.ErrInsufficientBalance)
	pos, _ := e.Position(alice)
	assert.True(t, pos.Amount.IsZero())
	assert.Len(t, st.Events(), events)
}

func TestSetVestingPeriod(t *testing.T) {
	_, e, _ := newEscrow(t)
	require.NoError(t, e.Escrow(alice, bn.Units(10)))

	assert.ErrorIs(t, e.SetVestingPeriod(alice, thor.Day), reverts.ErrUnauthorized)
	require.NoError(t, e.SetVestingPeriod(owner, 10*thor.Day))
	period, _ := e.VestingPeriod()
	assert.Equal(t, 10*thor.Day, period)

	require.NoError(t, e.Vest(alice, bn.Units(10), t0))
	claimable, _ := e.ClaimableAmount(alice, t0+thor.Day)
	assert.Equal(t, bn.Units(1), claimable)
}
