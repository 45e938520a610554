// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/thor"
)

type Pools struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pools {
	return &Pools{rt}
}

func (p *Pools) getPool(addr thor.Address, now uint64) (*Pool, error) {
	pl := p.rt.Pool(addr)
	cfg, err := pl.Config()
	if err != nil {
		return nil, err
	}
	owner, err := pl.Policy().Owner()
	if err != nil {
		return nil, err
	}
	total, err := pl.TotalSupply()
	if err != nil {
		return nil, err
	}
	surplus, err := pl.AdminSurplus()
	if err != nil {
		return nil, err
	}
	result := &Pool{
		Address:       addr,
		Owner:         owner,
		StakingToken:  cfg.StakingToken,
		StartTime:     cfg.StartTime,
		FixedDuration: cfg.FixedDuration,
		Booster:       cfg.Booster,
		TotalSupply:   total,
		AdminSurplus:  surplus,
		Now:           now,
	}
	for _, tok := range cfg.RewardTokens {
		sched, err := pl.Schedule(tok)
		if err != nil {
			return nil, err
		}
		s := convertSchedule(tok, sched)
		if s.RewardPerUnit, err = pl.RewardPerUnit(tok, now); err != nil {
			return nil, err
		}
		if s.RewardForDuration, err = pl.RewardForDuration(tok); err != nil {
			return nil, err
		}
		if s.Funded, s.Paid, err = pl.Funded(tok); err != nil {
			return nil, err
		}
		result.Schedules = append(result.Schedules, s)
	}
	return result, nil
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "pool")
	if err != nil {
		return err
	}
	now, err := utils.QueryNow(req, p.rt)
	if err != nil {
		return err
	}
	var result *Pool
	if err := p.rt.View(func() (err error) {
		result, err = p.getPool(addr, now)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (p *Pools) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := utils.AddressVar(vars, "pool")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(vars, "account")
	if err != nil {
		return err
	}

	now, err := utils.QueryNow(req, p.rt)
	if err != nil {
		return err
	}

	result := &Account{Pool: addr, Account: account, Now: now}
	if err := p.rt.View(func() error {
		pl := p.rt.Pool(addr)
		tokens, err := pl.RewardTokens()
		if err != nil {
			return err
		}
		if result.Balance, err = pl.BalanceOf(account); err != nil {
			return err
		}
		for _, tok := range tokens {
			amount, err := pl.Earned(tok, account, result.Now)
			if err != nil {
				return err
			}
			result.Earned = append(result.Earned, &Earned{Token: tok, Amount: amount})
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{pool}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pool}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
}
