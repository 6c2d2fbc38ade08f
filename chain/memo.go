// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/lightninglabs/neutrino/cache/lru"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// DefaultMemoSize is the default number of addresses whose transaction lists
// are retained by the memo.
const DefaultMemoSize = 1000

// memoEntry wraps a fetched transaction list so it satisfies the cache.Value
// interface required by the LRU cache.
type memoEntry struct {
	txns []Tx
}

// Size returns 1 so the memo is bounded by entry count rather than by bytes.
func (e *memoEntry) Size() (uint64, error) {
	return 1, nil
}

// TxMemo caches the most recently fetched transaction list per derived
// address.  It is not authoritative and may be discarded at any time without
// semantic loss; it exists purely to avoid redundant network round-trips
// within and across sync sessions.  Access is serialized by the LRU cache's
// internal mutex.
type TxMemo struct {
	txns *lru.Cache[waddrmgr.Terminal, *memoEntry]
}

// NewTxMemo creates a memo retaining the transaction lists of up to size
// addresses.
func NewTxMemo(size int) *TxMemo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	return &TxMemo{
		txns: lru.NewCache[waddrmgr.Terminal, *memoEntry](uint64(size)),
	}
}

// Lookup returns the memoized transaction list for the terminal, if any.
func (m *TxMemo) Lookup(term waddrmgr.Terminal) ([]Tx, bool) {
	entry, err := m.txns.Get(term)
	if err != nil {
		return nil, false
	}
	return entry.txns, true
}

// Store unconditionally overwrites the memo entry for the terminal with the
// given transaction list.
func (m *TxMemo) Store(term waddrmgr.Terminal, txns []Tx) {
	_, err := m.txns.Put(term, &memoEntry{txns: txns})
	if err != nil {
		// The only failure mode is an entry larger than the cache
		// capacity, which cannot happen with unit-sized entries.
		log.Errorf("Unable to memoize txns for %s: %v", term, err)
	}
}

// Stats derives the change-detection summary from the memoized transaction
// list of the terminal.  The zero value is returned when the address has no
// memo entry.
func (m *TxMemo) Stats(derive *waddrmgr.DerivedAddr) AddrStats {
	txns, ok := m.Lookup(derive.Terminal)
	if !ok {
		return AddrStats{}
	}

	var confirmed, unconfirmed uint64
	for i := range txns {
		if txns[i].Status.Confirmed {
			confirmed++
		} else {
			unconfirmed++
		}
	}
	return AddrStats{
		Address:      derive.Address.String(),
		ChainStats:   TxCountStats{TxCount: confirmed},
		MempoolStats: TxCountStats{TxCount: unconfirmed},
	}
}
