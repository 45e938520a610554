// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

func TestStateReadWrite(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	raw, err := st.GetRawStorage(addr, storageKey)
	require.NoError(t, err)
	assert.Nil(t, raw)

	st.SetRawStorage(addr, storageKey, []byte{1, 2, 3})
	raw, _ = st.GetRawStorage(addr, storageKey)
	assert.Equal(t, []byte{1, 2, 3}, raw)

	st.SetRawStorage(addr, storageKey, []byte{})
	raw, _ = st.GetRawStorage(addr, storageKey)
	assert.Nil(t, raw, "empty value clears the slot")
}

func TestStateRevert(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	values := [][]byte{{1}, {2}, {3}}
	var revisions []int
	for _, v := range values {
		revisions = append(revisions, st.NewCheckpoint())
		st.SetRawStorage(addr, storageKey, v)
		st.AddEvent(&tx.Event{Name: tx.EventStaked})
	}

	for i := len(revisions) - 1; i >= 0; i-- {
		st.RevertTo(revisions[i])
		raw, _ := st.GetRawStorage(addr, storageKey)
		if i > 0 {
			assert.Equal(t, values[i-1], raw)
		} else {
			assert.Nil(t, raw)
		}
		assert.Len(t, st.Events(), i)
	}

	assert.Panics(t, func() { st.RevertTo(revisions[0]) }, "revert to released revision")
}

func TestStateCommit(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr1 := thor.BytesToAddress([]byte("account1"))
	addr2 := thor.BytesToAddress([]byte("account2"))
	k1 := thor.BytesToBytes32([]byte("k1"))
	k2 := thor.BytesToBytes32([]byte("k2"))

	st.SetRawStorage(addr1, k1, []byte("v1"))
	st.SetRawStorage(addr1, k2, []byte("v2"))
	st.SetRawStorage(addr2, k1, []byte("x"))
	st.SetRawStorage(addr1, k1, []byte("v1'"))
	st.AddEvent(&tx.Event{Name: tx.EventStaked})
	require.NoError(t, st.Commit())
	assert.Empty(t, st.Events())

	// fresh state over the same store sees committed values
	st2 := New(db)
	raw, err := st2.GetRawStorage(addr1, k1)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1'"), raw)

	var keys []thor.Bytes32
	require.NoError(t, st2.ForEachStorage(&addr1, func(addr thor.Address, key thor.Bytes32, raw []byte) bool {
		assert.Equal(t, addr1, addr)
		keys = append(keys, key)
		return true
	}))
	assert.ElementsMatch(t, []thor.Bytes32{k1, k2}, keys)

	count := 0
	require.NoError(t, st2.ForEachStorage(nil, func(thor.Address, thor.Bytes32, []byte) bool {
		count++
		return true
	}))
	assert.Equal(t, 3, count)

	// deletion is persisted
	st2.SetRawStorage(addr1, k2, nil)
	require.NoError(t, st2.Commit())
	raw, _ = New(db).GetRawStorage(addr1, k2)
	assert.Nil(t, raw)
}

func TestStateEncodeDecode(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("key"))

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return []byte("hello"), nil
	}))
	var got string
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		got = string(raw)
		return nil
	}))
	assert.Equal(t, "hello", got)
}
