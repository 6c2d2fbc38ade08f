// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// defaultRequestTimeout bounds every single REST round-trip.  The engine
// itself has no cancellation layer, so a stuck request must not stall a sync
// session forever.
const defaultRequestTimeout = 30 * time.Second

// restClient is a minimal JSON-over-HTTP client shared by the Esplora and
// Mempool drivers.
type restClient struct {
	baseURL string
	client  *http.Client
}

func newRESTClient(baseURL string) restClient {
	return restClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

// getJSON performs a GET request against path and decodes the JSON response
// body into result.
func (c *restClient) getJSON(path string, result interface{}) error {
	url := c.baseURL + path
	resp, err := c.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url,
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// postText performs a POST request with a plain-text body and returns the
// trimmed response body.
func (c *restClient) postText(path, body string) (string, error) {
	url := c.baseURL + path
	resp, err := c.client.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("POST %s: status %d: %s", url,
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return strings.TrimSpace(string(respBody)), nil
}

// publish serializes and broadcasts a transaction through the indexer's
// POST /tx endpoint and parses the returned txid.
func (c *restClient) publish(tx *wire.MsgTx) (*chainhash.Hash, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	respBody, err := c.postText("/tx", hex.EncodeToString(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	txid, err := chainhash.NewHashFromStr(respBody)
	if err != nil {
		return nil, fmt.Errorf("unexpected broadcast response %q: %w",
			respBody, err)
	}
	return txid, nil
}

// addrStats fetches the GET /address/:addr summary shared by both drivers.
func (c *restClient) addrStats(derive *waddrmgr.DerivedAddr) (AddrStats,
	error) {

	var stats AddrStats
	path := "/address/" + derive.Address.String()
	if err := c.getJSON(path, &stats); err != nil {
		return AddrStats{}, err
	}
	return stats, nil
}

// EsploraClient talks to a Blockstream Esplora REST API.  Transactions are
// queried by script hash, which works for arbitrary locking scripts
// including ones without an address form.
type EsploraClient struct {
	restClient
}

// A compile-time check to ensure that EsploraClient satisfies the
// chain.Interface interface.
var _ Interface = (*EsploraClient)(nil)

// NewEsploraClient creates a client for the Esplora server at the given base
// URL.  No connection is established until the first query.
func NewEsploraClient(baseURL string) *EsploraClient {
	return &EsploraClient{restClient: newRESTClient(baseURL)}
}

// scriptHash returns the Esplora script hash of a locking script: its
// SHA-256 digest rendered in reversed-byte hex.
func scriptHash(pkScript []byte) string {
	return chainhash.HashH(pkScript).String()
}

// AddressTxns returns one page of transactions referencing the derived
// address, queried by script hash.
//
// This is part of the Interface interface.
func (c *EsploraClient) AddressTxns(derive *waddrmgr.DerivedAddr,
	lastSeen *chainhash.Hash) ([]Tx, error) {

	path := "/scripthash/" + scriptHash(derive.PkScript) + "/txs"
	if lastSeen != nil {
		path += "/chain/" + lastSeen.String()
	}

	var page []Tx
	if err := c.getJSON(path, &page); err != nil {
		return nil, err
	}
	log.Tracef("Esplora returned %d txns for address %s", len(page),
		derive)
	return page, nil
}

// AddressStats returns the confirmed/unconfirmed transaction counts of the
// address.
//
// This is part of the Interface interface.
func (c *EsploraClient) AddressStats(
	derive *waddrmgr.DerivedAddr) (AddrStats, error) {

	return c.addrStats(derive)
}

// PublishTransaction broadcasts the transaction through the indexer.
//
// This is part of the Interface interface.
func (c *EsploraClient) PublishTransaction(
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	return c.publish(tx)
}

// BackEnd returns the name of the driver.
//
// This is part of the Interface interface.
func (c *EsploraClient) BackEnd() string {
	return "esplora"
}
