// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory deploys one pool per staking token at a deterministic
// address and routes reward top-ups to them.
package factory

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/auth"
	"github.com/vechain/rewards/builtin/pool"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "factory")

	slotPools     = thor.BytesToBytes32([]byte("factory-pools"))
	slotPoolsList = thor.BytesToBytes32([]byte("factory-pools-list"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// PoolAddress derives the address of the pool for stakingToken deployed by factory.
func PoolAddress(factory, stakingToken thor.Address) thor.Address {
	return thor.CreateContractAddress(factory, stakingToken.Bytes())
}

type Factory struct {
	sctx     *solidity.Context
	policy   *auth.Policy
	pools    *solidity.Mapping[thor.Address, thor.Address]
	list     *solidity.Raw[[]thor.Address]
	tokens   token.Resolver
	boosters pool.BoostResolver
}

func New(addr thor.Address, st *state.State, tokens token.Resolver, boosters pool.BoostResolver) *Factory {
	sctx := solidity.NewContext(addr, st)
	return &Factory{
		sctx:     sctx,
		policy:   auth.New(sctx),
		pools:    solidity.NewMapping[thor.Address, thor.Address](sctx, slotPools),
		list:     solidity.NewRaw[[]thor.Address](sctx, slotPoolsList),
		tokens:   tokens,
		boosters: boosters,
	}
}

func (f *Factory) Address() thor.Address {
	return f.sctx.Address()
}

func (f *Factory) Init(owner thor.Address) error {
	return f.sctx.Atomic(func() error {
		return f.policy.Init(owner)
	})
}

func (f *Factory) Owner() (thor.Address, error) {
	return f.policy.Owner()
}

// Deploy creates the pool of stakingToken. The factory owner owns the pool and
// the factory holds its rewarder role. Owner only.
func (f *Factory) Deploy(caller, stakingToken thor.Address, cfg pool.Config) (thor.Address, error) {
	logger.Debug("deploy", "factory", f.Address(), "staking", stakingToken)
	addr := PoolAddress(f.Address(), stakingToken)
	err := f.sctx.Atomic(func() error {
		if err := f.policy.RequireOwner(caller); err != nil {
			return err
		}
		if exists, err := f.pools.Exists(stakingToken); err != nil {
			return errors.Wrap(err, "failed to get pool")
		} else if exists {
			return reverts.ErrAlreadyDeployed
		}
		owner, err := f.policy.Owner()
		if err != nil {
			return err
		}
		cfg.StakingToken = stakingToken
		if err := pool.New(addr, f.sctx.State(), f.tokens, f.boosters).Init(owner, f.Address(), cfg); err != nil {
			return err
		}
		if err := f.pools.Set(stakingToken, addr); err != nil {
			return errors.Wrap(err, "failed to set pool")
		}
		list, err := f.list.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get pools")
		}
		if err := f.list.Upsert(append(list, addr)); err != nil {
			return errors.Wrap(err, "failed to set pools")
		}
		f.sctx.Emit(&tx.Event{Name: tx.EventPoolDeployed, Account: addr, Token: stakingToken})
		return nil
	})
	if err != nil {
		return thor.Address{}, err
	}
	logger.Info("pool deployed", "factory", f.Address(), "staking", stakingToken, "pool", addr)
	return addr, nil
}

// AddRewards moves amount of rewardToken from caller to the factory, then funds
// the pool of stakingToken with it over days. Owner only.
func (f *Factory) AddRewards(caller, stakingToken, rewardToken thor.Address, amount bn.Amount, days uint64, now uint64) error {
	logger.Debug("add rewards", "factory", f.Address(), "staking", stakingToken, "token", rewardToken, "amount", amount)
	return f.sctx.Atomic(func() error {
		if err := f.policy.RequireOwner(caller); err != nil {
			return err
		}
		p, err := f.Pool(stakingToken)
		if err != nil {
			return err
		}
		if err := f.tokens.Resolve(rewardToken).Transfer(caller, f.Address(), amount); err != nil {
			return err
		}
		return p.AddRewards(f.Address(), rewardToken, amount, days, now)
	})
}

//
// Getters - no state change
//

// PoolAddress returns the pool of stakingToken, or the zero address if none was deployed.
func (f *Factory) PoolAddress(stakingToken thor.Address) (thor.Address, error) {
	addr, err := f.pools.Get(stakingToken)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get pool")
	}
	return addr, nil
}

// Pool binds the deployed pool of stakingToken.
func (f *Factory) Pool(stakingToken thor.Address) (*pool.Pool, error) {
	addr, err := f.PoolAddress(stakingToken)
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, reverts.ErrNotInitialized
	}
	return pool.New(addr, f.sctx.State(), f.tokens, f.boosters), nil
}

// Pools returns every deployed pool in deployment order.
func (f *Factory) Pools() ([]thor.Address, error) {
	list, err := f.list.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pools")
	}
	return list, nil
}
