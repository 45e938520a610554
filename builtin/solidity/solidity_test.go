// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

type TestStruct struct {
	Field1 uint64
	Addr1  thor.Address
	Amount bn.Amount
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext() *Context {
	db, _ := lvldb.NewMem()
	return NewContext(thor.Address{1}, state.New(db))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[thor.Address, *TestStruct](ctx, thor.Bytes32{1})
	key := thor.BytesToAddress([]byte("key"))

	v, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, v, "pointer values are allocated on miss")
	assert.Equal(t, TestStruct{}, *v)

	exists, err := m.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	in := &TestStruct{Field1: 42, Addr1: key, Amount: bn.Units(7)}
	require.NoError(t, m.Set(key, in))
	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, in, v)

	exists, _ = m.Exists(key)
	assert.True(t, exists)

	m.Delete(key)
	exists, _ = m.Exists(key)
	assert.False(t, exists)
}

func TestMappingDistinctBases(t *testing.T) {
	ctx := newTestContext()
	a := NewMapping[thor.Address, bn.Amount](ctx, thor.Bytes32{1})
	b := NewMapping[thor.Address, bn.Amount](ctx, thor.Bytes32{2})
	key := thor.BytesToAddress([]byte("key"))

	require.NoError(t, a.Set(key, bn.Units(1)))
	got, err := b.Get(key)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRaw(t *testing.T) {
	ctx := newTestContext()
	r := NewRaw[[]thor.Address](ctx, thor.BytesToBytes32([]byte("list")))

	list, err := r.Get()
	require.NoError(t, err)
	assert.Empty(t, list)

	want := []thor.Address{{1}, {2}}
	require.NoError(t, r.Upsert(want))
	list, err = r.Get()
	require.NoError(t, err)
	assert.Equal(t, want, list)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, u.Add(bn.Units(10)))
	require.NoError(t, u.Sub(bn.Units(4)))
	v, _ = u.Get()
	assert.Equal(t, bn.Units(6), v)

	err = u.Sub(bn.Units(7))
	assert.True(t, errors.Is(err, bn.ErrUnderflow))
	v, _ = u.Get()
	assert.Equal(t, bn.Units(6), v, "failed sub leaves the value untouched")

	require.NoError(t, u.Set(bn.Zero()))
	raw, _ := ctx.State().GetRawStorage(ctx.Address(), thor.BytesToBytes32([]byte("total")))
	assert.Nil(t, raw)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext()
	a := NewAddress(ctx, thor.BytesToBytes32([]byte("owner")))

	got, err := a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	owner := thor.BytesToAddress([]byte("owner"))
	a.Set(&owner)
	got, _ = a.Get()
	assert.Equal(t, owner, got)

	a.Set(nil)
	got, _ = a.Get()
	assert.True(t, got.IsZero())
}

func TestConfigVariable(t *testing.T) {
	ctx := newTestContext()
	config := NewConfigVariable(ctx, "stake-period", 10)

	assert.Equal(t, "stake-period", config.Name())
	assert.Equal(t, thor.BytesToBytes32([]byte("stake-period")), config.Slot())

	value, err := config.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), value)

	config.Set(99)
	value, _ = config.Get()
	assert.Equal(t, uint64(99), value)

	// visible through a second binding of the same contract
	value, _ = NewConfigVariable(ctx, "stake-period", 10).Get()
	assert.Equal(t, uint64(99), value)

	config.Set(0)
	value, _ = config.Get()
	assert.Equal(t, uint64(10), value)

	ctx.State().SetRawStorage(ctx.Address(), config.Slot(), []byte{1})
	_, err = config.Get()
	assert.Error(t, err)
}

func TestAtomic(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))
	require.NoError(t, u.Set(bn.Units(1)))

	failure := errors.New("boom")
	err := ctx.Atomic(func() error {
		if err := u.Add(bn.Units(5)); err != nil {
			return err
		}
		ctx.Emit(&tx.Event{Name: tx.EventStaked})
		// nested success is discarded with the outer failure
		if err := ctx.Atomic(func() error { return u.Add(bn.Units(1)) }); err != nil {
			return err
		}
		return failure
	})
	assert.Equal(t, failure, err)

	v, _ := u.Get()
	assert.Equal(t, bn.Units(1), v)
	assert.Empty(t, ctx.State().Events())

	require.NoError(t, ctx.Atomic(func() error {
		ctx.Emit(&tx.Event{Name: tx.EventStaked})
		return u.Add(bn.Units(2))
	}))
	v, _ = u.Get()
	assert.Equal(t, bn.Units(3), v)
	require.Len(t, ctx.State().Events(), 1)
	assert.Equal(t, ctx.Address(), ctx.State().Events()[0].Address)
}
