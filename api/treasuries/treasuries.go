// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasuries

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/builtin/treasury"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/thor"
)

type Treasuries struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Treasuries {
	return &Treasuries{rt}
}

type Earned struct {
	Token  thor.Address `json:"token"`
	Amount bn.Amount    `json:"amount"`
}

type Account struct {
	Treasury       thor.Address       `json:"treasury"`
	Account        thor.Address       `json:"account"`
	ReceiptBalance bn.Amount          `json:"receiptBalance"`
	Deposits       []treasury.Deposit `json:"deposits"`
	Withdrawable   bn.Amount          `json:"withdrawable"`
	LockPeriod     uint64             `json:"lockPeriod"`
	Earned         []*Earned          `json:"earned"`
	Now            uint64             `json:"now"`
}

func (t *Treasuries) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := utils.AddressVar(vars, "treasury")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(vars, "account")
	if err != nil {
		return err
	}
	now, err := utils.QueryNow(req, t.rt)
	if err != nil {
		return err
	}

	result := &Account{Treasury: addr, Account: account, Now: now}
	if err := t.rt.View(func() error {
		tr := t.rt.Treasury(addr)
		tokens, err := tr.Pool().RewardTokens()
		if err != nil {
			return err
		}
		if result.ReceiptBalance, err = tr.Receipt().BalanceOf(account); err != nil {
			return err
		}
		if result.Deposits, err = tr.Deposits(account); err != nil {
			return err
		}
		if result.Withdrawable, err = tr.Withdrawable(account, now); err != nil {
			return err
		}
		if result.LockPeriod, err = tr.LockPeriod(); err != nil {
			return err
		}
		for _, tok := range tokens {
			amount, err := tr.Earned(tok, account, now)
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

func (t *Treasuries) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{treasury}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /treasuries/{treasury}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAccount))
}
