// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/thor"
)

// ConfigVariable is a contract parameter kept in storage, falling back to a
// compiled-in default until it is first set.
type ConfigVariable struct {
	context      *Context
	slot         thor.Bytes32
	name         string
	defaultValue uint64
}

func NewConfigVariable(context *Context, name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		context:      context,
		slot:         thor.BytesToBytes32([]byte(name)),
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() thor.Bytes32 {
	return c.slot
}

func (c *ConfigVariable) Default() uint64 {
	return c.defaultValue
}

func (c *ConfigVariable) Get() (uint64, error) {
	raw, err := c.context.state.GetRawStorage(c.context.address, c.slot)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return c.defaultValue, nil
	}
	if len(raw) != 8 {
		return 0, errors.Errorf("config %s: malformed value", c.name)
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Set stores a new value. Zero restores the default.
func (c *ConfigVariable) Set(value uint64) {
	if value == 0 {
		c.context.state.SetRawStorage(c.context.address, c.slot, nil)
		log.Debug("config value reset to default", "slot", c.name, "value", c.defaultValue)
		return
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], value)
	c.context.state.SetRawStorage(c.context.address, c.slot, raw[:])
	log.Debug("config value overridden", "slot", c.name, "value", value)
}
