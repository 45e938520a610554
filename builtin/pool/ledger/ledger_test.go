// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/pool/schedule"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
)

var (
	rewardToken = thor.BytesToAddress([]byte("reward"))
	tokens      = []thor.Address{rewardToken}
	alice       = thor.BytesToAddress([]byte("alice"))
	bob         = thor.BytesToAddress([]byte("bob"))
	one         = bn.One()
)

const t0 = uint64(1_700_000_000)

func newSvc() (*Service, *schedule.Service) {
	db, _ := lvldb.NewMem()
	sctx := solidity.NewContext(thor.BytesToAddress([]byte("pool")), state.New(db))
	schedules := schedule.New(sctx)
	return New(sctx, schedules), schedules
}

func stake(t *testing.T, svc *Service, account thor.Address, amount bn.Amount, now uint64) {
	require.NoError(t, svc.Checkpoint(tokens, &account, now, one))
	require.NoError(t, svc.Stake(account, amount))
}

func fund(t *testing.T, svc *Service, schedules *schedule.Service, amount bn.Amount, duration, now uint64) {
	total, err := svc.TotalStaked()
	require.NoError(t, err)
	_, err = schedules.Notify(rewardToken, now, amount, duration, total)
	require.NoError(t, err)
}

// assertClose checks |a-b| <= b/10000.
func assertClose(t *testing.T, want, got bn.Amount) {
	tol, _ := want.DivUint64(10_000)
	diff := want.SubFloor(got)
	if got.Cmp(want) > 0 {
		diff = got.SubFloor(want)
	}
	assert.True(t, diff.Cmp(tol) <= 0, "want %s got %s", want.Decimal(), got.Decimal())
}

func TestStakeWithdraw(t *testing.T) {
	svc, _ := newSvc()

	assert.ErrorIs(t, svc.Stake(alice, bn.Zero()), reverts.ErrInvalidAmount)
	stake(t, svc, alice, bn.Units(10), t0)

	assert.ErrorIs(t, svc.Withdraw(alice, bn.Units(11)), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, svc.Withdraw(alice, bn.Zero()), reverts.ErrInvalidAmount)
	require.NoError(t, svc.Withdraw(alice, bn.Units(4)))

	bal, _ := svc.BalanceOf(alice)
	assert.Equal(t, bn.Units(6), bal)
	total, _ := svc.TotalStaked()
	assert.Equal(t, bn.Units(6), total)
}

func TestProportionalAccrual(t *testing.T) {
	svc, schedules := newSvc()

	stake(t, svc, alice, bn.Units(900), t0)
	stake(t, svc, bob, bn.Units(100), t0)
	fund(t, svc, schedules, bn.Units(7_000_000), 7*thor.Day, t0)

	now := t0 + thor.Day
	ea, err := svc.Earned(rewardToken, alice, now, one)
	require.NoError(t, err)
	eb, err := svc.Earned(rewardToken, bob, now, one)
	require.NoError(t, err)

	assertClose(t, bn.Units(900_000), ea)
	assertClose(t, bn.Units(100_000), eb)
	sum, _ := ea.Add(eb)
	assertClose(t, bn.Units(1_000_000), sum)

	// projections never mutate
	sched, _ := schedules.Get(rewardToken)
	assert.Equal(t, t0, sched.LastUpdateTime)
}

func TestSettleAndTake(t *testing.T) {
	svc, schedules := newSvc()

	stake(t, svc, alice, bn.Units(1), t0)
	fund(t, svc, schedules, bn.Units(86_400), thor.Day, t0)

	now := t0 + 3600
	require.NoError(t, svc.Checkpoint(tokens, &alice, now, one))
	accrued, err := svc.Accrued(rewardToken, alice)
	require.NoError(t, err)
	assert.Equal(t, bn.Units(3600), accrued)

	paid, err := svc.TakeReward(rewardToken, alice)
	require.NoError(t, err)
	assert.Equal(t, bn.Units(3600), paid)

	// second take in the same instant pays nothing
	require.NoError(t, svc.Checkpoint(tokens, &alice, now, one))
	paid, err = svc.TakeReward(rewardToken, alice)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())

	total, _ := schedules.Paid(rewardToken)
	assert.Equal(t, bn.Units(3600), total)
}

func TestZeroStakeDeferral(t *testing.T) {
	svc, schedules := newSvc()

	stake(t, svc, alice, bn.Units(1), t0)
	fund(t, svc, schedules, bn.Units(86_400), thor.Day, t0)

	// alice leaves after 6 hours
	leave := t0 + 6*3600
	require.NoError(t, svc.Checkpoint(tokens, &alice, leave, one))
	require.NoError(t, svc.Withdraw(alice, bn.Units(1)))

	rpuAtLeave, _ := svc.RewardPerUnit(rewardToken, leave)
	rpuLater, _ := svc.RewardPerUnit(rewardToken, leave+6*3600)
	assert.Equal(t, rpuAtLeave, rpuLater, "frozen while nothing is staked")

	// bob arrives after 6 idle hours and stays past the finish
	stake(t, svc, bob, bn.Units(1), leave+6*3600)
	eb, err := svc.Earned(rewardToken, bob, t0+2*thor.Day, one)
	require.NoError(t, err)
	ea, err := svc.Earned(rewardToken, alice, t0+2*thor.Day, one)
	require.NoError(t, err)

	assert.Equal(t, bn.Units(6*3600), ea)
	// the idle interval was deferred to bob rather than lost
	assertClose(t, bn.Units(18*3600), eb)
}

func TestBoostScalesDelta(t *testing.T) {
	svc, schedules := newSvc()

	stake(t, svc, alice, bn.Units(1), t0)
	fund(t, svc, schedules, bn.Units(86_400), thor.Day, t0)

	twice := bn.Units(2)
	base, err := svc.Earned(rewardToken, alice, t0+100, one)
	require.NoError(t, err)
	boosted, err := svc.Earned(rewardToken, alice, t0+100, twice)
	require.NoError(t, err)
	doubled, _ := base.MulUint64(2)
	assert.Equal(t, doubled, boosted)

	require.NoError(t, svc.Checkpoint(tokens, &alice, t0+100, twice))
	accrued, _ := svc.Accrued(rewardToken, alice)
	assert.Equal(t, doubled, accrued)
}
