// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/rewards/kv"
	"github.com/vechain/rewards/stackedmap"
	"github.com/vechain/rewards/thor"
	"github.com/vechain/rewards/tx"
)

const (
	storageKeyPrefix = "s"
	cacheSize        = 16384
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(storageKeyPrefix)+thor.AddressLength+32)
	b = append(b, storageKeyPrefix...)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages contract storage on top of a kv store.
// Writes are journaled; NewCheckpoint/RevertTo give all-or-nothing semantics,
// and nothing reaches the kv store before Commit.
type State struct {
	db       kv.Store
	cache    *lru.Cache // committed values
	sm       *stackedmap.StackedMap[storageKey, []byte]
	events   tx.Events
	logMarks []int
}

// New create state object.
func New(db kv.Store) *State {
	cache, _ := lru.New(cacheSize)
	s := &State{
		db:    db,
		cache: cache,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.committedGetter)
	s.sm.Push()
	s.events = nil
	s.logMarks = []int{0}
}

// committedGetter implements stackedmap.MapGetter.
func (s *State) committedGetter(key storageKey) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		raw := v.([]byte)
		return raw, len(raw) > 0, nil
	}
	raw, err := s.db.Get(key.dbKey())
	if err != nil {
		if s.db.IsNotFound(err) {
			s.cache.Add(key, []byte(nil))
			return nil, false, nil
		}
		return nil, false, err
	}
	s.cache.Add(key, raw)
	return raw, true, nil
}

// GetRawStorage returns storage value in raw bytes.
// An absent slot reads as nil.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage set storage value in raw bytes.
// Setting an empty value clears the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw []byte) {
	if len(raw) == 0 {
		raw = nil
	}
	s.sm.Put(storageKey{addr, key}, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be passed through.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be passed through.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// AddEvent appends an event log. It is dropped if the enclosing checkpoint is reverted.
func (s *State) AddEvent(ev *tx.Event) {
	s.events = append(s.events, ev)
}

// Events returns the pending event logs, oldest first.
func (s *State) Events() tx.Events {
	return s.events
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	s.logMarks = append(s.logMarks, len(s.events))
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 || revision >= len(s.logMarks) {
		panic(fmt.Sprintf("state: invalid revision %d", revision))
	}
	s.sm.PopTo(revision)
	s.events = s.events[:s.logMarks[revision]]
	s.logMarks = s.logMarks[:revision]
}

// Commit flushes all journaled writes into the kv store in one batch, and
// clears the journal and the pending event logs.
func (s *State) Commit() error {
	latest := make(map[storageKey][]byte)
	var order []storageKey
	for _, entry := range s.sm.Journal() {
		if _, ok := latest[entry.Key]; !ok {
			order = append(order, entry.Key)
		}
		latest[entry.Key] = entry.Value
	}

	bulk := s.db.Bulk()
	for _, key := range order {
		val := latest[key]
		if len(val) == 0 {
			if err := bulk.Delete(key.dbKey()); err != nil {
				return &Error{err}
			}
		} else {
			if err := bulk.Put(key.dbKey(), val); err != nil {
				return &Error{err}
			}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for _, key := range order {
		s.cache.Add(key, latest[key])
	}
	s.reset()
	return nil
}

// ForEachStorage iterates committed storage slots of the given contract, or of all
// contracts if addr is nil. Iteration stops when fn returns false.
func (s *State) ForEachStorage(addr *thor.Address, fn func(addr thor.Address, key thor.Bytes32, raw []byte) bool) error {
	prefix := []byte(storageKeyPrefix)
	if addr != nil {
		prefix = append(prefix, addr.Bytes()...)
	}
	limit := append(bytes.Clone(prefix[:len(prefix)-1]), prefix[len(prefix)-1]+1)

	it := s.db.Iterate(kv.Range{Start: prefix, Limit: limit})
	defer it.Release()
	for it.Next() {
		k := it.Key()
		if len(k) != len(storageKeyPrefix)+thor.AddressLength+32 {
			continue
		}
		var (
			a   thor.Address
			key thor.Bytes32
		)
		copy(a[:], k[len(storageKeyPrefix):])
		copy(key[:], k[len(storageKeyPrefix)+thor.AddressLength:])
		if !fn(a, key, bytes.Clone(it.Value())) {
			break
		}
	}
	if err := it.Error(); err != nil {
		return &Error{err}
	}
	return nil
}
