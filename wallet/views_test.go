// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/coldsuite/coldwallet/chain"
	"github.com/coldsuite/coldwallet/waddrmgr"
	"github.com/coldsuite/coldwallet/wtxmgr"
)

// viewScenario extends the standard scenario with an unconfirmed incoming
// payment so the views have both mined and mempool rows to order.
func viewScenario(t *testing.T) *Cache {
	t.Helper()

	descr, m := standardScenario(t)
	addrA, err := descr.DeriveAddr(waddrmgr.ExternalKeychain, 0)
	require.NoError(t, err)

	funding := foreignOut(3_1000_0000)
	unconfirmed := chain.Tx{
		TxID:    testTxid(3),
		Version: 2,
		Vin: []chain.Vin{{
			TxID:     testTxid(1000),
			Vout:     0,
			Prevout:  &funding,
			Sequence: ^uint32(0),
		}},
		Vout:   []chain.Vout{payTo(addrA, 3_0000_0000)},
		Fee:    1000_0000,
		Size:   250,
		Weight: 1000,
	}
	m.index(unconfirmed, addrA)

	engine := newTestEngine(t, m)
	cache, errs := engine.Create(descr)
	require.Empty(t, errs)
	return cache
}

func TestHistory(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := viewScenario(t)
	rows := cache.History()
	require.Len(rows, 3)

	// Confirmed rows first in height order, the unconfirmed row last.
	require.EqualValues(100, rows[0].Height)
	require.EqualValues(101, rows[1].Height)
	require.EqualValues(-1, rows[2].Height)

	// The coinbase credit: +50 BTC received, no counterparties.
	credit := rows[0]
	require.Equal(mustHash(t, testTxid(1)), credit.TxID)
	require.Equal(OpCredit, credit.Operation)
	require.Equal("+", credit.Operation.String())
	require.EqualValues(50_0000_0000, credit.Amount)
	require.Len(credit.Own, 1)
	require.Empty(credit.Counterparties)

	// The spend: -50 in, +19.9 change back, 30 to the counterparty.
	debit := rows[1]
	require.Equal(mustHash(t, testTxid(2)), debit.TxID)
	require.Equal(OpDebit, debit.Operation)
	require.Equal("-", debit.Operation.String())
	require.EqualValues(-30_1000_0000, debit.Amount)
	require.EqualValues(1000_0000, debit.Fee)

	require.Len(debit.Own, 2)
	require.EqualValues(-50_0000_0000, debit.Own[0].Value)
	require.EqualValues(19_9000_0000, debit.Own[1].Value)
	require.Len(debit.Counterparties, 1)
	require.EqualValues(-30_0000_0000, debit.Counterparties[0].Value)
	require.IsType(&wtxmgr.CounterParty{},
		debit.Counterparties[0].Party)

	// The unconfirmed credit.
	require.Equal(mustHash(t, testTxid(3)), rows[2].TxID)
	require.Equal(OpCredit, rows[2].Operation)
	require.EqualValues(3_0000_0000, rows[2].Amount)
}

func TestHistorySkipsForeignOnlyTxns(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	// A transaction with no wallet-owned side is not a history row.
	tx := &wtxmgr.WalletTx{
		TxID: mustHash(t, testTxid(9)),
		Outputs: []wtxmgr.TxDebit{{
			Beneficiary: &wtxmgr.UnknownParty{PkScript: []byte{0x51}},
			Value:       1000,
		}},
	}
	_, relevant := historyRow(tx)
	require.False(relevant)
}

func TestCoins(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := viewScenario(t)
	coins := cache.Coins()
	require.Len(coins, 2)

	// Confirmed change output first, the unconfirmed coinbase last.
	change := coins[0]
	require.Equal(wire.OutPoint{
		Hash: mustHash(t, testTxid(2)), Index: 1,
	}, change.OutPoint)
	require.EqualValues(19_9000_0000, change.Value)
	require.EqualValues(101, change.Height)
	require.Equal(waddrmgr.Terminal{
		Keychain: waddrmgr.ChangeKeychain, Index: 0,
	}, change.Terminal)
	require.NotNil(change.Address)

	pending := coins[1]
	require.Equal(wire.OutPoint{
		Hash: mustHash(t, testTxid(3)), Index: 0,
	}, pending.OutPoint)
	require.EqualValues(-1, pending.Height)
	require.Equal(waddrmgr.Terminal{
		Keychain: waddrmgr.ExternalKeychain, Index: 0,
	}, pending.Terminal)
}

func TestAddrBalances(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := viewScenario(t)
	rows := cache.AddrBalances()
	require.Len(rows, 2)

	// Sorted by terminal: keychain 0 before keychain 1.
	require.Equal(waddrmgr.Terminal{
		Keychain: waddrmgr.ExternalKeychain, Index: 0,
	}, rows[0].Terminal)
	require.EqualValues(2, rows[0].Used)
	require.EqualValues(53_0000_0000, rows[0].Volume)
	require.EqualValues(3_0000_0000, rows[0].Balance)

	require.Equal(waddrmgr.Terminal{
		Keychain: waddrmgr.ChangeKeychain, Index: 0,
	}, rows[1].Terminal)
	require.EqualValues(19_9000_0000, rows[1].Balance)
}

func TestNextUnusedIndex(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cache := NewCache()
	require.EqualValues(0, cache.NextUnusedIndex(waddrmgr.ExternalKeychain))

	cache.setAddr(&waddrmgr.WalletAddr{Terminal: waddrmgr.Terminal{
		Keychain: waddrmgr.ExternalKeychain, Index: 0,
	}})
	cache.setAddr(&waddrmgr.WalletAddr{Terminal: waddrmgr.Terminal{
		Keychain: waddrmgr.ExternalKeychain, Index: 4,
	}})
	require.EqualValues(5, cache.NextUnusedIndex(waddrmgr.ExternalKeychain))
	require.EqualValues(0, cache.NextUnusedIndex(waddrmgr.ChangeKeychain))
}
