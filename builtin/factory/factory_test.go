// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/auth"
	"github.com/vechain/rewards/builtin/pool"
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

	factoryAddr = thor.BytesToAddress([]byte("factory"))
	lpAddr      = thor.BytesToAddress([]byte("lp"))
	otherLPAddr = thor.BytesToAddress([]byte("lp2"))
	rewardAddr  = thor.BytesToAddress([]byte("reward"))
)

func newFactory(t *testing.T) (*state.State, *Factory) {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	for _, addr := range []thor.Address{lpAddr, otherLPAddr, rewardAddr} {
		require.NoError(t, token.NewLedger(addr, st).Init(minter, false))
	}
	reward := token.NewLedger(rewardAddr, st)
	require.NoError(t, reward.Mint(minter, owner, bn.Units(1_000_000)))
	require.NoError(t, token.NewLedger(lpAddr, st).Mint(minter, alice, bn.Units(100)))

	f := New(factoryAddr, st, token.NewRegistry(st), nil)
	require.NoError(t, f.Init(owner))
	return st, f
}

func TestDeploy(t *testing.T) {
	st, f := newFactory(t)
	cfg := pool.Config{RewardTokens: []thor.Address{rewardAddr}}

	_, err := f.Deploy(alice, lpAddr, cfg)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	addr, err := f.Deploy(owner, lpAddr, cfg)
	require.NoError(t, err)
	assert.Equal(t, PoolAddress(factoryAddr, lpAddr), addr)
	assert.Equal(t, thor.CreateContractAddress(factoryAddr, lpAddr.Bytes()), addr)

	_, err = f.Deploy(owner, lpAddr, cfg)
	assert.ErrorIs(t, err, reverts.ErrAlreadyDeployed)

	addr2, err := f.Deploy(owner, otherLPAddr, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, addr, addr2)

	got, err := f.PoolAddress(lpAddr)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	none, _ := f.PoolAddress(rewardAddr)
	assert.True(t, none.IsZero())

	pools, err := f.Pools()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr, addr2}, pools)

	deployed := st.Events().Filter(tx.EventPoolDeployed)
	require.Len(t, deployed, 2)
	assert.Equal(t, addr, deployed[0].Account)
	assert.Equal(t, lpAddr, deployed[0].Token)

	p, err := f.Pool(lpAddr)
	require.NoError(t, err)
	poolOwner, _ := p.Policy().Owner()
	assert.Equal(t, owner, poolOwner)
	isRewarder, _ := p.Policy().HasRole(auth.RoleRewarder, factoryAddr)
	assert.True(t, isRewarder)
	pcfg, _ := p.Config()
	assert.Equal(t, lpAddr, pcfg.StakingToken)
}

func TestDeployRejectsBadConfig(t *testing.T) {
	_, f := newFactory(t)

	_, err := f.Deploy(owner, lpAddr, pool.Config{})
	assert.ErrorIs(t, err, reverts.ErrInvalidRewardParams)

	// nothing was recorded
	pools, _ := f.Pools()
	assert.Empty(t, pools)
	_, err = f.Deploy(owner, lpAddr, pool.Config{RewardTokens: []thor.Address{rewardAddr}})
	assert.NoError(t, err)
}

func TestAddRewardsRoutesThroughFactory(t *testing.T) {
	_, f := newFactory(t)
	_, err := f.Deploy(owner, lpAddr, pool.Config{RewardTokens: []thor.Address{rewardAddr}})
	require.NoError(t, err)

	err = f.AddRewards(owner, otherLPAddr, rewardAddr, bn.Units(1), 1, t0)
	assert.ErrorIs(t, err, reverts.ErrNotInitialized)
	err = f.AddRewards(alice, lpAddr, rewardAddr, bn.Units(1), 1, t0)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	p, _ := f.Pool(lpAddr)
	require.NoError(t, p.Stake(alice, bn.Units(10), t0))
	require.NoError(t, f.AddRewards(owner, lpAddr, rewardAddr, bn.Units(86_400), 1, t0))

	reward := token.NewLedger(rewardAddr, f.sctx.State())
	held, _ := reward.BalanceOf(p.Address())
	assert.Equal(t, bn.Units(86_400), held)
	left, _ := reward.BalanceOf(factoryAddr)
	assert.True(t, left.IsZero())

	earned, err := p.Earned(rewardAddr, alice, t0+thor.Day)
	require.NoError(t, err)
	assert.Equal(t, bn.Units(86_400), earned)

	// a failed top-up leaves the caller's funds in place
	err = f.AddRewards(owner, lpAddr, rewardAddr, bn.Units(1), 0, t0)
	assert.ErrorIs(t, err, reverts.ErrInvalidRewardParams)
	bal, _ := reward.BalanceOf(owner)
	assert.Equal(t, bn.Units(1_000_000-86_400), bal)
}
