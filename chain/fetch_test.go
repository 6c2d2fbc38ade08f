// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// testDerive returns a deterministic derived address fixture.
func testDerive(t *testing.T, index uint32) *waddrmgr.DerivedAddr {
	t.Helper()

	seed := sha256.Sum256([]byte{'d', 'r', 'v', byte(index)})
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		seed[:20], &chaincfg.MainNetParams,
	)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return &waddrmgr.DerivedAddr{
		Terminal: waddrmgr.Terminal{
			Keychain: waddrmgr.ExternalKeychain,
			Index:    index,
		},
		Address:  addr,
		PkScript: pkScript,
	}
}

func testTxid(n int) string {
	return fmt.Sprintf("%064x", n)
}

// txPage builds n consecutive confirmed transaction records starting at id
// start.
func txPage(start, n int) []Tx {
	page := make([]Tx, n)
	for i := range page {
		page[i] = Tx{
			TxID:    testTxid(start + i),
			Version: 2,
			Status: TxStatus{
				Confirmed:   true,
				BlockHeight: int32(100 + start + i),
				BlockHash:   testTxid(100000 + start + i),
				BlockTime:   1700000000,
			},
		}
	}
	return page
}

// recordingSource serves preset history pages in order and records the
// continuation cursor of each request.
type recordingSource struct {
	pages   [][]Tx
	err     error
	calls   int
	cursors []*chainhash.Hash
}

var _ Interface = (*recordingSource)(nil)

func (s *recordingSource) AddressTxns(derive *waddrmgr.DerivedAddr,
	lastSeen *chainhash.Hash) ([]Tx, error) {

	s.cursors = append(s.cursors, lastSeen)
	call := s.calls
	s.calls++

	if s.err != nil {
		return nil, s.err
	}
	if call >= len(s.pages) {
		return nil, nil
	}
	return s.pages[call], nil
}

func (s *recordingSource) AddressStats(
	derive *waddrmgr.DerivedAddr) (AddrStats, error) {

	return AddrStats{}, nil
}

func (s *recordingSource) PublishTransaction(
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	return nil, errors.New("not supported")
}

func (s *recordingSource) BackEnd() string {
	return "recording"
}

func TestFetchShortPageEndsFetch(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &recordingSource{pages: [][]Tx{txPage(1, 3)}}
	memo := NewTxMemo(0)
	derive := testDerive(t, 0)

	txns, err := FetchAddressTxns(src, memo, derive, false)
	require.NoError(err)
	require.Len(txns, 3)
	require.Equal(1, src.calls)
	require.Nil(src.cursors[0])

	memoized, ok := memo.Lookup(derive.Terminal)
	require.True(ok)
	require.Equal(txns, memoized)
}

// TestFetchFullPageBoundary exercises the case where the history is an exact
// multiple of the page size: a full page must trigger one further request,
// carrying the last seen txid as the continuation cursor.
func TestFetchFullPageBoundary(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &recordingSource{pages: [][]Tx{txPage(1, PageSize), nil}}
	derive := testDerive(t, 0)

	txns, err := FetchAddressTxns(src, NewTxMemo(0), derive, false)
	require.NoError(err)
	require.Len(txns, PageSize)
	require.Equal(2, src.calls)

	require.Nil(src.cursors[0])
	require.NotNil(src.cursors[1])
	require.Equal(testTxid(PageSize), src.cursors[1].String())
}

func TestFetchConcatenatesPages(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &recordingSource{pages: [][]Tx{
		txPage(1, PageSize),
		txPage(1+PageSize, 7),
	}}

	txns, err := FetchAddressTxns(src, NewTxMemo(0), testDerive(t, 0), false)
	require.NoError(err)
	require.Len(txns, PageSize+7)
	require.Equal(testTxid(1), txns[0].TxID)
	require.Equal(testTxid(PageSize+7), txns[len(txns)-1].TxID)
}

func TestFetchMemoized(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &recordingSource{pages: [][]Tx{txPage(1, 2)}}
	memo := NewTxMemo(0)
	derive := testDerive(t, 0)

	first, err := FetchAddressTxns(src, memo, derive, false)
	require.NoError(err)
	require.Equal(1, src.calls)

	// A repeated fetch is served from the memo without a network call.
	second, err := FetchAddressTxns(src, memo, derive, false)
	require.NoError(err)
	require.Equal(1, src.calls)
	require.Equal(first, second)

	// Forcing bypasses the memo and overwrites it with the fresh result.
	src.pages = [][]Tx{txPage(1, 4)}
	src.calls = 0
	forced, err := FetchAddressTxns(src, memo, derive, true)
	require.NoError(err)
	require.Equal(1, src.calls)
	require.Len(forced, 4)

	memoized, ok := memo.Lookup(derive.Terminal)
	require.True(ok)
	require.Equal(forced, memoized)
}

func TestFetchErrorLeavesMemoUntouched(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &recordingSource{err: errors.New("connection refused")}
	memo := NewTxMemo(0)
	derive := testDerive(t, 0)

	_, err := FetchAddressTxns(src, memo, derive, false)
	require.ErrorContains(err, "connection refused")

	_, ok := memo.Lookup(derive.Terminal)
	require.False(ok)
}

func TestMemoStats(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	memo := NewTxMemo(0)
	derive := testDerive(t, 0)

	// An address without a memo entry yields the zero summary.
	require.Equal(AddrStats{}, memo.Stats(derive))

	txns := txPage(1, 3)
	txns = append(txns, Tx{TxID: testTxid(4)}) // unconfirmed
	memo.Store(derive.Terminal, txns)

	require.Equal(AddrStats{
		Address:      derive.Address.String(),
		ChainStats:   TxCountStats{TxCount: 3},
		MempoolStats: TxCountStats{TxCount: 1},
	}, memo.Stats(derive))

	// An empty history still counts as a memo hit with zero counts but a
	// resolved address.
	memo.Store(derive.Terminal, nil)
	require.Equal(AddrStats{Address: derive.Address.String()},
		memo.Stats(derive))
}

func TestMemoEviction(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	memo := NewTxMemo(2)
	first := testDerive(t, 0)
	second := testDerive(t, 1)
	third := testDerive(t, 2)

	memo.Store(first.Terminal, txPage(1, 1))
	memo.Store(second.Terminal, txPage(2, 1))
	memo.Store(third.Terminal, txPage(3, 1))

	// The least recently used entry is gone, the newer ones remain.
	_, ok := memo.Lookup(first.Terminal)
	require.False(ok)
	_, ok = memo.Lookup(second.Terminal)
	require.True(ok)
	_, ok = memo.Lookup(third.Terminal)
	require.True(ok)
}
