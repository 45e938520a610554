// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/auth"
	"github.com/vechain/rewards/builtin/pool/ledger"
	"github.com/vechain/rewards/builtin/pool/schedule"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/builtin/token"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "pool")

	slotConfig = thor.BytesToBytes32([]byte("pool-config"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Config describes a pool. A non-zero FixedDuration makes it a flash farm
// funded through Fund; a non-zero Booster makes it a boostable farm.
type Config struct {
	StakingToken  thor.Address   `json:"stakingToken" yaml:"stakingToken"`
	RewardTokens  []thor.Address `json:"rewardTokens" yaml:"rewardTokens"`
	StartTime     uint64         `json:"startTime" yaml:"startTime"`
	FixedDuration uint64         `json:"fixedDuration" yaml:"fixedDuration"` // seconds
	Booster       thor.Address   `json:"booster" yaml:"booster"`
}

func (c *Config) validate() error {
	if c.StakingToken.IsZero() || len(c.RewardTokens) == 0 {
		return reverts.ErrInvalidRewardParams
	}
	for i, tok := range c.RewardTokens {
		if tok.IsZero() {
			return reverts.ErrInvalidRewardParams
		}
		if slices.Contains(c.RewardTokens[:i], tok) {
			return reverts.ErrTokenAlreadyAdded
		}
	}
	return nil
}

func (c *Config) hasRewardToken(tok thor.Address) bool {
	return slices.Contains(c.RewardTokens, tok)
}

// BoostRater computes the multiplier of an account, 1e18 meaning 1x.
// reference is the amount the account has staked in the farm.
type BoostRater interface {
	GetBoostRate(account thor.Address, reference bn.Amount) (bn.Amount, error)
}

// BoostResolver maps a booster address to its implementation.
type BoostResolver func(addr thor.Address) BoostRater

// Pool implements a staking pool or farm: one staked asset, one or more
// independently scheduled reward assets.
type Pool struct {
	sctx      *solidity.Context
	policy    *auth.Policy
	config    *solidity.Raw[*Config]
	schedules *schedule.Service
	ledger    *ledger.Service
	tokens    token.Resolver
	boosters  BoostResolver
}

// New binds the pool at addr. boosters may be nil for pools without a booster.
func New(addr thor.Address, st *state.State, tokens token.Resolver, boosters BoostResolver) *Pool {
	sctx := solidity.NewContext(addr, st)
	schedules := schedule.New(sctx)
	return &Pool{
		sctx:      sctx,
		policy:    auth.New(sctx),
		config:    solidity.NewRaw[*Config](sctx, slotConfig),
		schedules: schedules,
		ledger:    ledger.New(sctx, schedules),
		tokens:    tokens,
		boosters:  boosters,
	}
}

func (p *Pool) Address() thor.Address {
	return p.sctx.Address()
}

// Policy returns the capability policy of the pool.
func (p *Pool) Policy() *auth.Policy {
	return p.policy
}

// Init configures a fresh pool. rewarder, if set and different from owner,
// is granted the rewarder role.
func (p *Pool) Init(owner, rewarder thor.Address, cfg Config) error {
	return p.sctx.Atomic(func() error {
		if err := cfg.validate(); err != nil {
			return err
		}
		if existing, err := p.config.Get(); err != nil {
			return errors.Wrap(err, "failed to get config")
		} else if existing != nil {
			return reverts.ErrAlreadyInitialized
		}
		if err := p.policy.Init(owner); err != nil {
			return err
		}
		if err := p.config.Upsert(&cfg); err != nil {
			return errors.Wrap(err, "failed to set config")
		}
		if !rewarder.IsZero() && rewarder != owner {
			if err := p.policy.Grant(owner, auth.RoleRewarder, rewarder); err != nil {
				return err
			}
		}
		logger.Info("pool initialized", "pool", p.Address(), "owner", owner, "staking", cfg.StakingToken, "rewards", len(cfg.RewardTokens))
		return nil
	})
}

// Config returns the pool configuration.
func (p *Pool) Config() (*Config, error) {
	cfg, err := p.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if cfg == nil {
		return nil, reverts.ErrNotInitialized
	}
	return cfg, nil
}

// AddRewardToken appends a reward token to the registry. Owner only.
func (p *Pool) AddRewardToken(caller, tok thor.Address) error {
	logger.Debug("add reward token", "pool", p.Address(), "token", tok)
	return p.sctx.Atomic(func() error {
		if err := p.policy.RequireOwner(caller); err != nil {
			return err
		}
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		if tok.IsZero() {
			return reverts.ErrInvalidRewardParams
		}
		if cfg.hasRewardToken(tok) {
			return reverts.ErrTokenAlreadyAdded
		}
		cfg.RewardTokens = append(cfg.RewardTokens, tok)
		if err := p.config.Upsert(cfg); err != nil {
			return errors.Wrap(err, "failed to set config")
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventRewardTokenAdded, Account: caller, Token: tok})
		return nil
	})
}

// AddRewards funds amount of tok over days, blending any unspent budget.
// Rewarder only; the funds are pulled from caller.
func (p *Pool) AddRewards(caller, tok thor.Address, amount bn.Amount, days uint64, now uint64) error {
	logger.Debug("add rewards", "pool", p.Address(), "token", tok, "amount", amount, "days", days)
	if days > math.MaxUint64/thor.Day {
		return reverts.ErrInvalidRewardParams
	}
	return p.notify(caller, tok, amount, days*thor.Day, now)
}

// Fund funds a flash farm over its fixed duration. Rewarder only.
func (p *Pool) Fund(caller, tok thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("fund", "pool", p.Address(), "token", tok, "amount", amount)
	cfg, err := p.Config()
	if err != nil {
		return err
	}
	if cfg.FixedDuration == 0 {
		return reverts.ErrInvalidRewardParams
	}
	return p.notify(caller, tok, amount, cfg.FixedDuration, now)
}

func (p *Pool) notify(caller, tok thor.Address, amount bn.Amount, duration uint64, now uint64) error {
	err := p.sctx.Atomic(func() error {
		if err := p.policy.Require(auth.RoleRewarder, caller); err != nil {
			return err
		}
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		if !cfg.hasRewardToken(tok) {
			return reverts.ErrTokenNotEnabled
		}
		if amount.IsZero() || duration == 0 {
			return reverts.ErrInvalidRewardParams
		}
		if now < cfg.StartTime {
			return reverts.ErrNotReady
		}
		total, err := p.ledger.TotalStaked()
		if err != nil {
			return err
		}
		if _, err := p.schedules.Notify(tok, now, amount, duration, total); err != nil {
			return err
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventRewardAdded, Account: caller, Token: tok, Amount: amount, Duration: duration})

		return p.tokens.Resolve(tok).Transfer(caller, p.Address(), amount)
	})
	if err != nil {
		return err
	}
	logger.Info("reward added", "pool", p.Address(), "token", tok, "amount", amount, "duration", duration)
	return nil
}

// WithdrawAdminRewards pays the staking-asset surplus to to, or to caller if to
// is zero. Owner only. A zero surplus is a no-op.
func (p *Pool) WithdrawAdminRewards(caller, to thor.Address) error {
	logger.Debug("withdraw admin rewards", "pool", p.Address(), "to", to)
	if to.IsZero() {
		to = caller
	}
	var surplus bn.Amount
	err := p.sctx.Atomic(func() error {
		if err := p.policy.RequireOwner(caller); err != nil {
			return err
		}
		cfg, err := p.Config()
		if err != nil {
			return err
		}
		surplus, err = p.AdminSurplus()
		if err != nil || surplus.IsZero() {
			return err
		}
		p.sctx.Emit(&tx.Event{Name: tx.EventAdminRewardWithdrawn, Account: to, Token: cfg.StakingToken, Amount: surplus})

		return p.tokens.Resolve(cfg.StakingToken).Transfer(p.Address(), to, surplus)
	})
	if err != nil {
		return err
	}
	if !surplus.IsZero() {
		logger.Info("admin rewards withdrawn", "pool", p.Address(), "to", to, "amount", surplus)
	}
	return nil
}
