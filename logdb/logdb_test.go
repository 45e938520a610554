// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/bn"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

var (
	poolAddr  = thor.BytesToAddress([]byte("pool"))
	tokenAddr = thor.BytesToAddress([]byte("token"))
	alice     = thor.BytesToAddress([]byte("alice"))
	bob       = thor.BytesToAddress([]byte("bob"))
)

func receipts() tx.Receipts {
	return tx.Receipts{
		{Seq: 1, Time: 100, Origin: alice, Op: "stake", Events: tx.Events{
			{Address: tokenAddr, Name: tx.EventTransfer, Account: poolAddr, From: alice, Token: tokenAddr, Amount: bn.Units(5)},
			{Address: poolAddr, Name: tx.EventStaked, Account: alice, Token: tokenAddr, Amount: bn.Units(5)},
		}},
		{Seq: 2, Time: 200, Origin: bob, Op: "stake", Reverted: true, Error: "insufficient balance"},
		{Seq: 3, Time: 300, Origin: bob, Op: "stake", Events: tx.Events{
			{Address: poolAddr, Name: tx.EventStaked, Account: bob, Token: tokenAddr, Amount: bn.MustParse("1.5")},
		}},
	}
}

func newDB(t *testing.T) *LogDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Write(receipts()))
	return db
}

func TestFilterAll(t *testing.T) {
	db := newDB(t)

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, &Event{
		Seq:     1,
		Index:   0,
		Time:    100,
		Origin:  alice,
		Op:      "stake",
		Address: tokenAddr,
		Name:    tx.EventTransfer,
		Account: poolAddr,
		From:    alice,
		Token:   tokenAddr,
		Amount:  bn.Units(5),
	}, events[0])
	assert.Equal(t, bn.MustParse("1.5"), events[2].Amount)

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}

func TestFilterCriteria(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	staked := tx.EventStaked

	events, err := db.FilterEvents(ctx, &EventFilter{
		CriteriaSet: []*EventCriteria{{Address: &poolAddr, Name: &staked}},
		Order:       DESC,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, bob, events[0].Account)
	assert.Equal(t, alice, events[1].Account)

	events, err = db.FilterEvents(ctx, &EventFilter{
		CriteriaSet: []*EventCriteria{{Account: &bob}, {Account: &poolAddr}},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, tx.EventTransfer, events[0].Name)

	events, err = db.FilterEvents(ctx, &EventFilter{Range: &Range{From: 150, To: 400}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(3), events[0].Seq)

	events, err = db.FilterEvents(ctx, &EventFilter{Options: &Options{Offset: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tx.EventStaked, events[0].Name)
	assert.Equal(t, alice, events[0].Account)
}

func TestFilterCanceled(t *testing.T) {
	db := newDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.FilterEvents(ctx, &EventFilter{})
	assert.Error(t, err)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(receipts()))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())

	// rewriting the same receipts is idempotent
	require.NoError(t, db.Write(receipts()))
	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
