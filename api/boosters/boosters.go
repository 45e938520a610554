// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package boosters

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/booster"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/thor"
)

type Boosters struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Boosters {
	return &Boosters{rt}
}

type Account struct {
	Booster      thor.Address   `json:"booster"`
	Account      thor.Address   `json:"account"`
	Reference    bn.Amount      `json:"reference"`
	Liquidity    []booster.Lock `json:"liquidity"`
	Escrow       []booster.Lock `json:"escrow"`
	BoostValue   bn.Amount      `json:"boostValue"`
	BoostRate    bn.Amount      `json:"boostRate"`
	StakePeriod  uint64         `json:"stakePeriod"`
	VirtualPrice bn.Amount      `json:"virtualPrice"`
}

func (b *Boosters) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := utils.AddressVar(vars, "booster")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(vars, "account")
	if err != nil {
		return err
	}
	reference := bn.Zero()
	if s := req.URL.Query().Get("reference"); s != "" {
		if err := reference.UnmarshalText([]byte(s)); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "reference"))
		}
	}

	result := &Account{Booster: addr, Account: account, Reference: reference}
	if err := b.rt.View(func() (err error) {
		bst := b.rt.Booster(addr)
		cfg, err := bst.Config()
		if err != nil {
			return
		}
		if result.Liquidity, err = bst.Locks(booster.Liquidity, account); err != nil {
			return
		}
		if result.Escrow, err = bst.Locks(booster.Escrow, account); err != nil {
			return
		}
		if result.BoostValue, err = bst.BoostValue(account); err != nil {
			return
		}
		if result.BoostRate, err = bst.GetBoostRate(account, reference); err != nil {
			return
		}
		if result.StakePeriod, err = bst.StakePeriod(); err != nil {
			return
		}
		result.VirtualPrice, err = bst.Oracle(cfg).VirtualPrice()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (b *Boosters) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{booster}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /boosters/{booster}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetAccount))
}
