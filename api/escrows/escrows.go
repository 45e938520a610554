// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrows

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/escrow"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/thor"
)

type Escrows struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Escrows {
	return &Escrows{rt}
}

type Account struct {
	Escrow        thor.Address     `json:"escrow"`
	Account       thor.Address     `json:"account"`
	BaseToken     thor.Address     `json:"baseToken"`
	EscrowToken   thor.Address     `json:"escrowToken"`
	EscrowBalance bn.Amount        `json:"escrowBalance"`
	Position      *escrow.Position `json:"position"`
	Claimable     bn.Amount        `json:"claimable"`
	VestingPeriod uint64           `json:"vestingPeriod"`
	Now           uint64           `json:"now"`
}

func (e *Escrows) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := utils.AddressVar(vars, "escrow")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(vars, "account")
	if err != nil {
		return err
	}
	now, err := utils.QueryNow(req, e.rt)
	if err != nil {
		return err
	}

	result := &Account{Escrow: addr, Account: account, Now: now}
	if err := e.rt.View(func() (err error) {
		esc := e.rt.Escrow(addr)
		if result.BaseToken, err = esc.BaseToken(); err != nil {
			return
		}
		result.EscrowToken = esc.Token().Address()
		if result.EscrowBalance, err = esc.Token().BalanceOf(account); err != nil {
			return
		}
		if result.Position, err = esc.Position(account); err != nil {
			return
		}
		if result.Claimable, err = result.Position.Claimable(now); err != nil {
			return
		}
		result.VestingPeriod, err = esc.VestingPeriod()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (e *Escrows) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{escrow}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /escrows/{escrow}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetAccount))
}
