// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/pool/schedule"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/thor"
)

var (
	slotBalances      = thor.BytesToBytes32([]byte(("stake-balances")))
	slotTotalStaked   = thor.BytesToBytes32([]byte(("stake-total")))
	slotRewardPerUnit = thor.BytesToBytes32([]byte(("stake-reward-per-unit-paid")))
	slotAccrued       = thor.BytesToBytes32([]byte(("stake-accrued")))
)

type accountKey struct {
	token   thor.Address
	account thor.Address
}

func (k accountKey) Bytes() []byte {
	return append(k.token.Bytes(), k.account.Bytes()...)
}

// Service is the continuous proportional accrual ledger of one pool.
// Every balance change must be preceded by a Checkpoint of the acting account.
type Service struct {
	schedules   *schedule.Service
	balances    *solidity.Mapping[thor.Address, bn.Amount]
	totalStaked *solidity.Uint256
	paid        *solidity.Mapping[accountKey, bn.Amount]
	accrued     *solidity.Mapping[accountKey, bn.Amount]
}

func New(sctx *solidity.Context, schedules *schedule.Service) *Service {
	return &Service{
		schedules:   schedules,
		balances:    solidity.NewMapping[thor.Address, bn.Amount](sctx, slotBalances),
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		paid:        solidity.NewMapping[accountKey, bn.Amount](sctx, slotRewardPerUnit),
		accrued:     solidity.NewMapping[accountKey, bn.Amount](sctx, slotAccrued),
	}
}

func (s *Service) TotalStaked() (bn.Amount, error) {
	total, err := s.totalStaked.Get()
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get total staked")
	}
	return total, nil
}

func (s *Service) BalanceOf(account thor.Address) (bn.Amount, error) {
	bal, err := s.balances.Get(account)
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

// RewardPerUnit projects the accumulator of token at now without mutating state.
func (s *Service) RewardPerUnit(token thor.Address, now uint64) (bn.Amount, error) {
	total, err := s.TotalStaked()
	if err != nil {
		return bn.Amount{}, err
	}
	sched, err := s.schedules.Get(token)
	if err != nil {
		return bn.Amount{}, err
	}
	return sched.RewardPerUnit(now, total)
}

// Earned projects the reward of account in token at now. The delta accrued
// since the last checkpoint is scaled by boost, where 1e18 means 1x.
func (s *Service) Earned(token, account thor.Address, now uint64, boost bn.Amount) (bn.Amount, error) {
	rpu, err := s.RewardPerUnit(token, now)
	if err != nil {
		return bn.Amount{}, err
	}
	delta, err := s.pending(token, account, rpu, boost)
	if err != nil {
		return bn.Amount{}, err
	}
	accrued, err := s.Accrued(token, account)
	if err != nil {
		return bn.Amount{}, err
	}
	earned, err := accrued.Add(delta)
	return earned, reverts.Checked(err)
}

// Accrued returns the settled but unpaid reward of account in token.
func (s *Service) Accrued(token, account thor.Address) (bn.Amount, error) {
	v, err := s.accrued.Get(accountKey{token, account})
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get accrued")
	}
	return v, nil
}

// pending returns staked * (rpu - paid) / 1e18 scaled by boost.
func (s *Service) pending(token, account thor.Address, rpu, boost bn.Amount) (bn.Amount, error) {
	staked, err := s.BalanceOf(account)
	if err != nil {
		return bn.Amount{}, err
	}
	if staked.IsZero() {
		return bn.Zero(), nil
	}
	paid, err := s.paid.Get(accountKey{token, account})
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get reward per unit paid")
	}
	diff, err := rpu.Sub(paid)
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	delta, err := staked.MulDiv(diff, bn.One())
	if err != nil {
		return bn.Amount{}, reverts.Checked(err)
	}
	if boost.IsZero() || boost.Cmp(bn.One()) == 0 {
		return delta, nil
	}
	delta, err = delta.MulFixed(boost)
	return delta, reverts.Checked(err)
}

// Checkpoint advances the accumulator of every token and, if account is not
// nil, settles its pending reward at the boost rate.
func (s *Service) Checkpoint(tokens []thor.Address, account *thor.Address, now uint64, boost bn.Amount) error {
	total, err := s.TotalStaked()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		sched, err := s.schedules.Checkpoint(token, now, total)
		if err != nil {
			return err
		}
		if account == nil {
			continue
		}
		if err := s.settle(token, *account, sched.RewardPerUnitStored, boost); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) settle(token, account thor.Address, rpu, boost bn.Amount) error {
	delta, err := s.pending(token, account, rpu, boost)
	if err != nil {
		return err
	}
	key := accountKey{token, account}
	if !delta.IsZero() {
		accrued, err := s.Accrued(token, account)
		if err != nil {
			return err
		}
		accrued, err = accrued.Add(delta)
		if err != nil {
			return reverts.Checked(err)
		}
		if err := s.accrued.Set(key, accrued); err != nil {
			return errors.Wrap(err, "failed to set accrued")
		}
	}
	if err := s.paid.Set(key, rpu); err != nil {
		return errors.Wrap(err, "failed to set reward per unit paid")
	}
	return nil
}

// Stake credits amount to account. The caller checkpoints first.
func (s *Service) Stake(account thor.Address, amount bn.Amount) error {
	if amount.IsZero() {
		return reverts.ErrInvalidAmount
	}
	bal, err := s.BalanceOf(account)
	if err != nil {
		return err
	}
	bal, err = bal.Add(amount)
	if err != nil {
		return reverts.Checked(err)
	}
	if err := s.totalStaked.Add(amount); err != nil {
		return reverts.Checked(err)
	}
	if err := s.balances.Set(account, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// Withdraw debits amount from account. The caller checkpoints first.
func (s *Service) Withdraw(account thor.Address, amount bn.Amount) error {
	if amount.IsZero() {
		return reverts.ErrInvalidAmount
	}
	bal, err := s.BalanceOf(account)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	bal, _ = bal.Sub(amount)
	if err := s.totalStaked.Sub(amount); err != nil {
		return reverts.Checked(err)
	}
	if err := s.balances.Set(account, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// TakeReward zeroes the accrued reward of account in token and records it as
// paid. The caller checkpoints first and transfers the returned amount.
func (s *Service) TakeReward(token, account thor.Address) (bn.Amount, error) {
	accrued, err := s.Accrued(token, account)
	if err != nil {
		return bn.Amount{}, err
	}
	if accrued.IsZero() {
		return accrued, nil
	}
	s.accrued.Delete(accountKey{token, account})
	if err := s.schedules.AddPaid(token, accrued); err != nil {
		return bn.Amount{}, err
	}
	return accrued, nil
}
