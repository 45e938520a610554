// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/reverts"
	"github.com/vechain/rewards/builtin/solidity"
	"github.com/vechain/rewards/thor"
)

var (
	slotSchedules = thor.BytesToBytes32([]byte(("reward-schedules")))
	slotFunded    = thor.BytesToBytes32([]byte(("reward-funded")))
	slotPaid      = thor.BytesToBytes32([]byte(("reward-paid")))
)

// Service keeps one Schedule per reward token, together with the cumulative
// budget funded and paid out for that token.
type Service struct {
	schedules *solidity.Mapping[thor.Address, *Schedule]
	funded    *solidity.Mapping[thor.Address, bn.Amount]
	paid      *solidity.Mapping[thor.Address, bn.Amount]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		schedules: solidity.NewMapping[thor.Address, *Schedule](sctx, slotSchedules),
		funded:    solidity.NewMapping[thor.Address, bn.Amount](sctx, slotFunded),
		paid:      solidity.NewMapping[thor.Address, bn.Amount](sctx, slotPaid),
	}
}

// Get returns the schedule of token. An unfunded token has the zero schedule.
func (s *Service) Get(token thor.Address) (*Schedule, error) {
	sched, err := s.schedules.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get schedule")
	}
	return sched, nil
}

func (s *Service) set(token thor.Address, sched *Schedule) error {
	if err := s.schedules.Set(token, sched); err != nil {
		return errors.Wrap(err, "failed to set schedule")
	}
	return nil
}

// Checkpoint folds the emission since LastUpdateTime into the accumulator.
// With nothing staked the schedule is left untouched, deferring that budget.
func (s *Service) Checkpoint(token thor.Address, now uint64, totalStaked bn.Amount) (*Schedule, error) {
	sched, err := s.Get(token)
	if err != nil {
		return nil, err
	}
	if totalStaked.IsZero() {
		return sched, nil
	}
	rpu, err := sched.RewardPerUnit(now, totalStaked)
	if err != nil {
		return nil, err
	}
	sched.RewardPerUnitStored = rpu
	if applicable := sched.LastTimeApplicable(now); applicable > sched.LastUpdateTime {
		sched.LastUpdateTime = applicable
	}
	if err := s.set(token, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Notify adds amount to the budget of token, emitted over duration seconds
// from now. Unspent budget of a running period is blended into the new rate.
func (s *Service) Notify(token thor.Address, now uint64, amount bn.Amount, duration uint64, totalStaked bn.Amount) (*Schedule, error) {
	if amount.IsZero() || duration == 0 {
		return nil, reverts.ErrInvalidRewardParams
	}
	sched, err := s.Checkpoint(token, now, totalStaked)
	if err != nil {
		return nil, err
	}
	remaining, err := sched.Remaining()
	if err != nil {
		return nil, err
	}
	budget, err := remaining.Add(amount)
	if err != nil {
		return nil, reverts.Checked(err)
	}
	rate, err := budget.DivUint64(duration)
	if err != nil {
		return nil, reverts.Checked(err)
	}
	if rate.IsZero() {
		return nil, reverts.ErrInvalidRewardParams
	}

	sched.Rate = rate
	sched.Duration = duration
	sched.PeriodFinish = now + duration
	sched.LastUpdateTime = now
	if err := s.set(token, sched); err != nil {
		return nil, err
	}

	funded, err := s.Funded(token)
	if err != nil {
		return nil, err
	}
	funded, err = funded.Add(amount)
	if err != nil {
		return nil, reverts.Checked(err)
	}
	if err := s.funded.Set(token, funded); err != nil {
		return nil, errors.Wrap(err, "failed to set funded")
	}
	return sched, nil
}

// Funded returns the cumulative budget ever added for token.
func (s *Service) Funded(token thor.Address) (bn.Amount, error) {
	v, err := s.funded.Get(token)
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get funded")
	}
	return v, nil
}

// Paid returns the cumulative reward paid out for token.
func (s *Service) Paid(token thor.Address) (bn.Amount, error) {
	v, err := s.paid.Get(token)
	if err != nil {
		return bn.Amount{}, errors.Wrap(err, "failed to get paid")
	}
	return v, nil
}

func (s *Service) AddPaid(token thor.Address, amount bn.Amount) error {
	paid, err := s.Paid(token)
	if err != nil {
		return err
	}
	paid, err = paid.Add(amount)
	if err != nil {
		return reverts.Checked(err)
	}
	if err := s.paid.Set(token, paid); err != nil {
		return errors.Wrap(err, "failed to set paid")
	}
	return nil
}

// Outstanding returns the funded budget not yet paid out, floored at zero.
func (s *Service) Outstanding(token thor.Address) (bn.Amount, error) {
	funded, err := s.Funded(token)
	if err != nil {
		return bn.Amount{}, err
	}
	paid, err := s.Paid(token)
	if err != nil {
		return bn.Amount{}, err
	}
	return funded.SubFloor(paid), nil
}
