// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

// Context binds a built-in contract address to the state it reads and writes.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Emit records an event log on behalf of the contract.
func (c *Context) Emit(ev *tx.Event) {
	ev.Address = c.address
	c.state.AddEvent(ev)
}

// Atomic runs fn against a fresh state checkpoint. If fn fails, every storage
// write and event made since the checkpoint is discarded, including those
// made by nested calls into other contracts.
func (c *Context) Atomic(fn func() error) error {
	rev := c.state.NewCheckpoint()
	if err := fn(); err != nil {
		c.state.RevertTo(rev)
		return err
	}
	return nil
}
