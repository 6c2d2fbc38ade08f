// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// BackEnds returns a list of the available back ends.
func BackEnds() []string {
	return []string{
		"esplora",
		"mempool",
	}
}

// Interface allows more than one backing blockchain indexer, such as an
// Esplora REST server or a Mempool instance, as long as we write a driver
// for it.  Implementations are selected at construction time; the engine
// never branches on the backend kind.
type Interface interface {
	// AddressTxns returns one page of transactions referencing the given
	// derived address.  lastSeen is the pagination cursor: the id of the
	// last transaction retrieved so far, or nil for the first page.
	AddressTxns(derive *waddrmgr.DerivedAddr,
		lastSeen *chainhash.Hash) ([]Tx, error)

	// AddressStats returns lightweight confirmed/unconfirmed transaction
	// counts for the given address.  It is much cheaper than fetching the
	// full transaction list and is used for change detection.
	AddressStats(derive *waddrmgr.DerivedAddr) (AddrStats, error)

	// PublishTransaction broadcasts the transaction to the network via
	// the indexer and returns its id.
	PublishTransaction(tx *wire.MsgTx) (*chainhash.Hash, error)

	// BackEnd returns the name of the driver.
	BackEnd() string
}
