// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/waddrmgr"
	"github.com/coldsuite/coldwallet/wtxmgr"
)

// Cache is the authoritative local view of a wallet: per-keychain address
// statistics, a transaction store keyed by id, and the set of currently
// unspent outpoints.  It is produced and updated by the reconciliation
// engine and consumed by the balance, history and coin-selection views.
//
// A cache is exclusively owned by one reconciliation session at a time;
// concurrent writers are not supported.
//
// Invariants between reconciliation sessions:
//   - every outpoint in UTXOs references an existing transaction output
//     whose SpentBy marker is nil and whose beneficiary is wallet-owned;
//   - every address balance equals the sum of the values of the unspent
//     outputs classified to that address.
type Cache struct {
	// Addrs maps each keychain to its discovered addresses by derivation
	// index.
	Addrs map[waddrmgr.Keychain]map[uint32]*waddrmgr.WalletAddr

	// Txs is the transaction store.
	Txs map[chainhash.Hash]*wtxmgr.WalletTx

	// UTXOs is the set of outpoints currently unspent.
	UTXOs map[wire.OutPoint]struct{}
}

// NewCache returns an empty wallet cache.
func NewCache() *Cache {
	return &Cache{
		Addrs: make(map[waddrmgr.Keychain]map[uint32]*waddrmgr.WalletAddr),
		Txs:   make(map[chainhash.Hash]*wtxmgr.WalletTx),
		UTXOs: make(map[wire.OutPoint]struct{}),
	}
}

// LookupAddr returns the cached address statistics for the terminal, or nil
// if the address has not been discovered yet.
func (c *Cache) LookupAddr(term waddrmgr.Terminal) *waddrmgr.WalletAddr {
	return c.Addrs[term.Keychain][term.Index]
}

// setAddr inserts or replaces the address statistics entry at its terminal.
func (c *Cache) setAddr(addr *waddrmgr.WalletAddr) {
	keychain := addr.Terminal.Keychain
	if c.Addrs[keychain] == nil {
		c.Addrs[keychain] = make(map[uint32]*waddrmgr.WalletAddr)
	}
	c.Addrs[keychain][addr.Terminal.Index] = addr
}

// Balance returns the total wallet balance: the sum of the values of all
// unspent outputs.
func (c *Cache) Balance() btcutil.Amount {
	var total btcutil.Amount
	for outPoint := range c.UTXOs {
		tx, ok := c.Txs[outPoint.Hash]
		if !ok || outPoint.Index >= uint32(len(tx.Outputs)) {
			continue
		}
		total += tx.Outputs[outPoint.Index].Value
	}
	return total
}

// NextUnusedIndex returns the first derivation index past the highest
// discovered terminal of the keychain.
func (c *Cache) NextUnusedIndex(keychain waddrmgr.Keychain) uint32 {
	addrs := c.Addrs[keychain]
	if len(addrs) == 0 {
		return 0
	}
	var max uint32
	for index := range addrs {
		if index >= max {
			max = index + 1
		}
	}
	return max
}
