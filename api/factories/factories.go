// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factories

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/runtime"
	"github.com/vechain/rewards/thor"
)

type Factories struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Factories {
	return &Factories{rt}
}

type Factory struct {
	Address thor.Address   `json:"address"`
	Owner   thor.Address   `json:"owner"`
	Pools   []thor.Address `json:"pools"`
}

type DeployedPool struct {
	Factory      thor.Address `json:"factory"`
	StakingToken thor.Address `json:"stakingToken"`
	Pool         thor.Address `json:"pool"`
}

func (f *Factories) handleGetFactory(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "factory")
	if err != nil {
		return err
	}
	result := &Factory{Address: addr}
	if err := f.rt.View(func() (err error) {
		fac := f.rt.Factory(addr)
		if result.Owner, err = fac.Owner(); err != nil {
			return
		}
		result.Pools, err = fac.Pools()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (f *Factories) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := utils.AddressVar(vars, "factory")
	if err != nil {
		return err
	}
	staking, err := utils.AddressVar(vars, "stakingToken")
	if err != nil {
		return err
	}
	result := &DeployedPool{Factory: addr, StakingToken: staking}
	if err := f.rt.View(func() (err error) {
		result.Pool, err = f.rt.Factory(addr).PoolAddress(staking)
		return
	}); err != nil {
		return err
	}
	if result.Pool.IsZero() {
		return utils.NotFound(errors.New("pool not deployed"))
	}
	return utils.WriteJSON(w, result)
}

func (f *Factories) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{factory}").
		Methods(http.MethodGet).
		Name("GET /factories/{factory}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFactory))
	sub.Path("/{factory}/pools/{stakingToken}").
		Methods(http.MethodGet).
		Name("GET /factories/{factory}/pools/{stakingToken}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPool))
}
