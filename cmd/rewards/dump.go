// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
)

// Slot is one committed storage entry.
type Slot struct {
	Contract thor.Address
	Key      thor.Bytes32
	Raw      []byte
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpState writes the committed slots of contract, or of every contract when
// contract is nil, grouped by contract address.
func dumpState(w io.Writer, st *state.State, contract *thor.Address) (int, error) {
	var (
		group []Slot
		last  thor.Address
		n     int
	)
	flush := func() {
		if len(group) > 0 {
			dumpConfig.Fdump(w, group)
			group = group[:0]
		}
	}
	err := st.ForEachStorage(contract, func(addr thor.Address, key thor.Bytes32, raw []byte) bool {
		if addr != last {
			flush()
			last = addr
		}
		group = append(group, Slot{Contract: addr, Key: key, Raw: raw})
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	flush()
	return n, nil
}

func dumpAction(ctx *cli.Context) error {
	initLogger(ctx)

	dataDir, err := requireDataDir(ctx)
	if err != nil {
		return err
	}

	var contract *thor.Address
	if s := ctx.String(addressFlag.Name); s != "" {
		var ref Ref
		if err := ref.UnmarshalText([]byte(s)); err != nil {
			return errors.WithMessage(err, "invalid --address")
		}
		addr := ref.Address()
		contract = &addr
	}

	mainDB, err := openMainDB(dataDir)
	if err != nil {
		return err
	}
	defer mainDB.Close()

	n, err := dumpState(os.Stdout, state.New(mainDB), contract)
	if err != nil {
		return err
	}
	logger.Info("dumped state", "slots", n)
	return nil
}
