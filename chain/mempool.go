// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// MempoolClient talks to a Mempool (mempool.space) REST API.  The record
// shapes are Esplora-compatible, but transaction history is queried by
// address rather than by script hash.
type MempoolClient struct {
	restClient
}

// A compile-time check to ensure that MempoolClient satisfies the
// chain.Interface interface.
var _ Interface = (*MempoolClient)(nil)

// NewMempoolClient creates a client for the Mempool server at the given base
// URL.  No connection is established until the first query.
func NewMempoolClient(baseURL string) *MempoolClient {
	return &MempoolClient{restClient: newRESTClient(baseURL)}
}

// AddressTxns returns one page of transactions referencing the derived
// address, queried by address.
//
// This is part of the Interface interface.
func (c *MempoolClient) AddressTxns(derive *waddrmgr.DerivedAddr,
	lastSeen *chainhash.Hash) ([]Tx, error) {

	path := "/address/" + derive.Address.String() + "/txs"
	if lastSeen != nil {
		path += "/chain/" + lastSeen.String()
	}

	var page []Tx
	if err := c.getJSON(path, &page); err != nil {
		return nil, err
	}
	log.Tracef("Mempool returned %d txns for address %s", len(page),
		derive)
	return page, nil
}

// AddressStats returns the confirmed/unconfirmed transaction counts of the
// address.
//
// This is part of the Interface interface.
func (c *MempoolClient) AddressStats(
	derive *waddrmgr.DerivedAddr) (AddrStats, error) {

	return c.addrStats(derive)
}

// PublishTransaction broadcasts the transaction through the indexer.
//
// This is part of the Interface interface.
func (c *MempoolClient) PublishTransaction(
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	return c.publish(tx)
}

// BackEnd returns the name of the driver.
//
// This is part of the Interface interface.
func (c *MempoolClient) BackEnd() string {
	return "mempool"
}
