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
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	logger = log.WithContext("pkg", "booster")

	slotConfig = thor.BytesToBytes32([]byte("booster-config"))
	slotLocks  = thor.BytesToBytes32([]byte("booster-locks"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Category is a kind of boost collateral.
type Category uint8

const (
	Liquidity Category = iota // liquidity-pair tokens
	Escrow                    // vesting escrow tokens
)

func (c Category) String() string {
	if c == Escrow {
		return "escrow"
	}
	return "liquidity"
}

// Lock is a collateral amount held until Unlock.
type Lock struct {
	Amount bn.Amount `json:"amount"`
	Start  uint64    `json:"start"`
	Unlock uint64    `json:"unlock"`
}

type lockKey struct {
	category Category
	account  thor.Address
}

func (k lockKey) Bytes() []byte {
	return append([]byte{byte(k.category)}, k.account.Bytes()...)
}

// Config describes the collateral of a booster.
type Config struct {
	Pair           thor.Address `json:"pair" yaml:"pair"`                     // holds the reserves
	LPToken        thor.Address `json:"lpToken" yaml:"lpToken"`               // liquidity token of Pair
	ReferenceToken thor.Address `json:"referenceToken" yaml:"referenceToken"` // reference leg of Pair
	OtherToken     thor.Address `json:"otherToken" yaml:"otherToken"`
	Oracle         thor.Address `json:"oracle" yaml:"oracle"` // quotes OtherToken
	EscrowToken    thor.Address `json:"escrowToken" yaml:"escrowToken"`
	EscrowRate     bn.Amount    `json:"escrowRate" yaml:"escrowRate"`         // reference value of one escrow token
	ReferencePrice bn.Amount    `json:"referencePrice" yaml:"referencePrice"` // reference value of one staked unit
}

// Booster computes reward multipliers from locked collateral.
type Booster struct {
	sctx        *solidity.Context
	policy      *auth.Policy
	config      *solidity.Raw[*Config]
	locks       *solidity.Mapping[lockKey, []Lock]
	stakePeriod *solidity.ConfigVariable
	tokens      token.Resolver
}

func New(addr thor.Address, st *state.State, tokens token.Resolver) *Booster {
	sctx := solidity.NewContext(addr, st)
	return &Booster{
		sctx:        sctx,
		policy:      auth.New(sctx),
		config:      solidity.NewRaw[*Config](sctx, slotConfig),
		locks:       solidity.NewMapping[lockKey, []Lock](sctx, slotLocks),
		stakePeriod: solidity.NewConfigVariable(sctx, "booster-stake-period", thor.DefaultStakePeriod),
		tokens:      tokens,
	}
}

func (b *Booster) Address() thor.Address {
	return b.sctx.Address()
}

func (b *Booster) Init(owner thor.Address, cfg Config) error {
	return b.sctx.Atomic(func() error {
		if cfg.LPToken.IsZero() || cfg.EscrowToken.IsZero() || cfg.ReferencePrice.IsZero() {
			return reverts.ErrInvalidRewardParams
		}
		if err := b.policy.Init(owner); err != nil {
			return err
		}
		if err := b.config.Upsert(&cfg); err != nil {
			return errors.Wrap(err, "failed to set config")
		}
		logger.Info("booster initialized", "booster", b.Address(), "owner", owner)
		return nil
	})
}

func (b *Booster) Config() (*Config, error) {
	cfg, err := b.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if cfg == nil {
		return nil, reverts.ErrNotInitialized
	}
	return cfg, nil
}

func (b *Booster) tokenOf(cfg *Config, category Category) thor.Address {
	if category == Escrow {
		return cfg.EscrowToken
	}
	return cfg.LPToken
}

// Stake locks amount of liquidity tokens for the current stake period.
func (b *Booster) Stake(caller thor.Address, amount bn.Amount, now uint64) error {
	return b.lock(Liquidity, caller, amount, now)
}

// Unstake returns every matured liquidity lock of caller.
func (b *Booster) Unstake(caller thor.Address, now uint64) error {
	return b.unlock(Liquidity, caller, now)
}

// ZapStake locks amount of escrow tokens for the current stake period.
func (b *Booster) ZapStake(caller thor.Address, amount bn.Amount, now uint64) error {
	return b.lock(Escrow, caller, amount, now)
}

// ZapUnstake returns every matured escrow lock of caller.
func (b *Booster) ZapUnstake(caller thor.Address, now uint64) error {
	return b.unlock(Escrow, caller, now)
}

func (b *Booster) lock(category Category, caller thor.Address, amount bn.Amount, now uint64) error {
	logger.Debug("lock", "booster", b.Address(), "category", category, "account", caller, "amount", amount)
	err := b.sctx.Atomic(func() error {
		if amount.IsZero() {
			return reverts.ErrInvalidAmount
		}
		cfg, err := b.Config()
		if err != nil {
			return err
		}
		period, err := b.stakePeriod.Get()
		if err != nil {
			return err
		}
		key := lockKey{category, caller}
		locks, err := b.locks.Get(key)
		if err != nil {
			return errors.Wrap(err, "failed to get locks")
		}
		locks = append(locks, Lock{Amount: amount, Start: now, Unlock: now + period})
		if err := b.locks.Set(key, locks); err != nil {
			return errors.Wrap(err, "failed to set locks")
		}
		tok := b.tokenOf(cfg, category)
		b.sctx.Emit(&tx.Event{Name: tx.EventLocked, Account: caller, Token: tok, Amount: amount, Duration: period})

		return b.tokens.Resolve(tok).Transfer(caller, b.Address(), amount)
	})
	if err != nil {
		return err
	}
	logger.Info("locked", "booster", b.Address(), "category", category, "account", caller, "amount", amount)
	return nil
}

func (b *Booster) unlock(category Category, caller thor.Address, now uint64) error {
	logger.Debug("unlock", "booster", b.Address(), "category", category, "account", caller)
	var total bn.Amount
	err := b.sctx.Atomic(func() error {
		cfg, err := b.Config()
		if err != nil {
			return err
		}
		key := lockKey{category, caller}
		locks, err := b.locks.Get(key)
		if err != nil {
			return errors.Wrap(err, "failed to get locks")
		}
		var kept []Lock
		for _, l := range locks {
			if l.Unlock > now {
				kept = append(kept, l)
				continue
			}
			if total, err = total.Add(l.Amount); err != nil {
				return reverts.Checked(err)
			}
		}
		if total.IsZero() {
			return reverts.ErrNothingToUnstake
		}
		if len(kept) == 0 {
			b.locks.Delete(key)
		} else if err := b.locks.Set(key, kept); err != nil {
			return errors.Wrap(err, "failed to set locks")
		}
		tok := b.tokenOf(cfg, category)
		b.sctx.Emit(&tx.Event{Name: tx.EventUnlocked, Account: caller, Token: tok, Amount: total})

		return b.tokens.Resolve(tok).Transfer(b.Address(), caller, total)
	})
	if err != nil {
		return err
	}
	logger.Info("unlocked", "booster", b.Address(), "category", category, "account", caller, "amount", total)
	return nil
}

// SetStakePeriod sets the lock duration of future locks, in seconds. Owner only.
func (b *Booster) SetStakePeriod(caller thor.Address, period uint64) error {
	return b.sctx.Atomic(func() error {
		if err := b.policy.RequireOwner(caller); err != nil {
			return err
		}
		b.stakePeriod.Set(period)
		logger.Info("stake period set", "booster", b.Address(), "period", period)
		return nil
	})
}

//
// Getters - no state change
//

func (b *Booster) StakePeriod() (uint64, error) {
	return b.stakePeriod.Get()
}

func (b *Booster) Locks(category Category, account thor.Address) ([]Lock, error) {
	locks, err := b.locks.Get(lockKey{category, account})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get locks")
	}
	return locks, nil
}

// Locked returns the total amount account holds in category, matured or not.
func (b *Booster) Locked(category Category, account thor.Address) (bn.Amount, error) {
	locks, err := b.Locks(category, account)
	if err != nil {
		return bn.Amount{}, err
	}
	total := bn.Zero()
	for _, l := range locks {
		if total, err = total.Add(l.Amount); err != nil {
			return bn.Amount{}, reverts.Checked(err)
		}
	}
	return total, nil
}

// Pair returns the liquidity pair the booster values against.
func (b *Booster) Pair(cfg *Config) Pair {
	return NewLedgerPair(cfg.Pair, b.tokens.Resolve(cfg.LPToken), b.tokens.Resolve(cfg.ReferenceToken), b.tokens.Resolve(cfg.OtherToken))
}

// Oracle returns the price oracle of the pair's other leg.
func (b *Booster) Oracle(cfg *Config) PriceOracle {
	return NewStoredOracle(cfg.Oracle, b.sctx.State())
}

// BoostValue returns the reference value of everything account has locked.
func (b *Booster) BoostValue(account thor.Address) (bn.Amount, error) {
	cfg, err := b.Config()
	if err != nil {
		return bn.Amount{}, err
	}
	lp, err := b.Locked(Liquidity, account)
	if err != nil {
		return bn.Amount{}, err
	}
	escrow, err := b.Locked(Escrow, account)
	if err != nil {
		return bn.Amount{}, err
	}
	liquidity, err := LiquidityValue(b.Pair(cfg), b.Oracle(cfg), lp)
	if err != nil {
		return bn.Amount{}, err
	}
	escrowValue, err := escrow.MulFixed(cfg.EscrowRate)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	value, err := liquidity.Add(escrowValue)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	return value, nil
}

// GetBoostRate returns the multiplier of account staking reference units in a farm.
func (b *Booster) GetBoostRate(account thor.Address, reference bn.Amount) (bn.Amount, error) {
	cfg, err := b.Config()
	if err != nil {
		return bn.Amount{}, err
	}
	value, err := b.BoostValue(account)
	if err != nil {
		return bn.Amount{}, err
	}
	comparison, err := reference.MulFixed(cfg.ReferencePrice)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	return Rate(value, comparison), nil
}

// LiquidityValue converts lp liquidity tokens to reference units. The reference
// leg counts at par, the other leg at the oracle's virtual price.
func LiquidityValue(pair Pair, oracle PriceOracle, lp bn.Amount) (bn.Amount, error) {
	if lp.IsZero() {
		return bn.Zero(), nil
	}
	supply, err := pair.TotalSupply()
	if err != nil {
		return bn.Amount{}, err
	}
	if supply.IsZero() {
		return bn.Zero(), nil
	}
	reserveRef, reserveOther, err := pair.Reserves()
	if err != nil {
		return bn.Amount{}, err
	}
	price, err := oracle.VirtualPrice()
	if err != nil {
		return bn.Amount{}, err
	}
	refPart, err := lp.MulDiv(reserveRef, supply)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	otherPart, err := lp.MulDiv(reserveOther, supply)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	if otherPart, err = otherPart.MulFixed(price); err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	value, err := refPart.Add(otherPart)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	return value, nil
}

// Rate returns 1 + value/comparison, clamped to [1, MaxBoostMultiple].
func Rate(value, comparison bn.Amount) bn.Amount {
	floor := bn.One()
	if comparison.IsZero() {
		return floor
	}
	ceil := bn.Units(thor.MaxBoostMultiple)
	ratio, err := value.DivFixed(comparison)
	if err != nil {
		return ceil
	}
	rate, err := floor.Add(ratio)
	if err != nil {
		return ceil
	}
	return bn.Min(rate, ceil)
}
