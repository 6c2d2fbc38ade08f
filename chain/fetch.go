// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// PageSize is the number of transactions Esplora-compatible indexers return
// per history page.  A page holding at least this many records is treated as
// possibly non-final and triggers a further page request.
const PageSize = 25

// FetchAddressTxns fetches the complete transaction history of a derived
// address, page by page, and memoizes the result.
//
// Unless force is set, a memoized list is returned without touching the
// network.  When fetching, each page request carries the id of the last
// record retrieved so far as its continuation cursor; a short page ends the
// fetch.  The concatenated result unconditionally overwrites any prior memo
// entry for the address.
func FetchAddressTxns(src Interface, memo *TxMemo,
	derive *waddrmgr.DerivedAddr, force bool) ([]Tx, error) {

	if !force && memo != nil {
		if txns, ok := memo.Lookup(derive.Terminal); ok {
			log.Tracef("Using memoized txns for address %s",
				derive)
			return txns, nil
		}
	}

	var (
		txns     []Tx
		lastSeen *chainhash.Hash
	)
	for {
		page, err := src.AddressTxns(derive, lastSeen)
		if err != nil {
			return nil, fmt.Errorf("fetch txns for %s: %w",
				derive, err)
		}
		txns = append(txns, page...)
		if len(page) < PageSize {
			break
		}

		cursor, err := chainhash.NewHashFromStr(page[len(page)-1].TxID)
		if err != nil {
			return nil, fmt.Errorf("malformed page cursor %q: %w",
				page[len(page)-1].TxID, err)
		}
		lastSeen = cursor
	}

	if memo != nil {
		memo.Store(derive.Terminal, txns)
	}
	return txns, nil
}
