// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func mustHashFromStr(t *testing.T, s string) *chainhash.Hash {
	t.Helper()
	hash, err := chainhash.NewHashFromStr(s)
	require.NoError(t, err)
	return hash
}

func TestEsploraAddressTxns(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	derive := testDerive(t, 0)
	basePath := "/scripthash/" + scriptHash(derive.PkScript) + "/txs"

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			require.NoError(json.NewEncoder(w).Encode(txPage(1, 2)))
		}))
	defer server.Close()

	client := NewEsploraClient(server.URL)
	require.Equal("esplora", client.BackEnd())

	page, err := client.AddressTxns(derive, nil)
	require.NoError(err)
	require.Len(page, 2)
	require.Equal(testTxid(1), page[0].TxID)
	require.True(page[0].Status.Confirmed)

	// A continuation request carries the cursor in the path.
	cursor := mustHashFromStr(t, page[1].TxID)
	_, err = client.AddressTxns(derive, cursor)
	require.NoError(err)

	require.Equal([]string{
		basePath,
		basePath + "/chain/" + testTxid(2),
	}, paths)
}

func TestMempoolAddressTxns(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	derive := testDerive(t, 0)
	basePath := "/address/" + derive.Address.String() + "/txs"

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			require.NoError(json.NewEncoder(w).Encode(txPage(1, 1)))
		}))
	defer server.Close()

	client := NewMempoolClient(server.URL)
	require.Equal("mempool", client.BackEnd())

	page, err := client.AddressTxns(derive, nil)
	require.NoError(err)
	require.Len(page, 1)

	cursor := mustHashFromStr(t, page[0].TxID)
	_, err = client.AddressTxns(derive, cursor)
	require.NoError(err)

	require.Equal([]string{
		basePath,
		basePath + "/chain/" + testTxid(1),
	}, paths)
}

func TestAddressStats(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	derive := testDerive(t, 0)
	expected := AddrStats{
		Address:      derive.Address.String(),
		ChainStats:   TxCountStats{TxCount: 12},
		MempoolStats: TxCountStats{TxCount: 1},
	}

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal("/address/"+derive.Address.String(),
				r.URL.Path)
			require.NoError(json.NewEncoder(w).Encode(expected))
		}))
	defer server.Close()

	stats, err := NewEsploraClient(server.URL).AddressStats(derive)
	require.NoError(err)
	require.Equal(expected, stats)
}

func TestPublishTransaction(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(5000, []byte{0x51}))

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(http.MethodPost, r.Method)
			require.Equal("/tx", r.URL.Path)

			// The body is the hex serialization of the original
			// transaction; answer with its txid like Esplora does.
			body, err := io.ReadAll(r.Body)
			require.NoError(err)
			rawTx, err := hex.DecodeString(string(body))
			require.NoError(err)

			var received wire.MsgTx
			require.NoError(received.Deserialize(
				bytes.NewReader(rawTx)))
			io.WriteString(w, received.TxHash().String())
		}))
	defer server.Close()

	txid, err := NewEsploraClient(server.URL).PublishTransaction(tx)
	require.NoError(err)
	expected := tx.TxHash()
	require.Equal(&expected, txid)
}

func TestHTTPErrorStatus(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Too Many Requests", 429)
		}))
	defer server.Close()

	client := NewEsploraClient(server.URL)
	_, err := client.AddressTxns(testDerive(t, 0), nil)
	require.ErrorContains(err, "status 429")

	_, err = client.PublishTransaction(wire.NewMsgTx(2))
	require.ErrorContains(err, "status 429")
}

func TestBackEnds(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{"esplora", "mempool"}, BackEnds())
}
