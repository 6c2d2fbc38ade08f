// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/waddrmgr"
	"github.com/coldsuite/coldwallet/wtxmgr"
)

// Utxo describes one unspent output owned by the wallet.
type Utxo struct {
	// OutPoint is the unspent outpoint.
	OutPoint wire.OutPoint

	// Value is the amount held by the output.
	Value btcutil.Amount

	// Height is the confirmation height of the funding transaction, or
	// -1 while it is unconfirmed.
	Height int32

	// Address is the owning wallet address.
	Address btcutil.Address

	// Terminal is the derivation terminal of the owning address.
	Terminal waddrmgr.Terminal
}

// OpType tags a history row with the net direction of the operation from the
// wallet's perspective.
type OpType uint8

const (
	// OpCredit marks an operation that increased the wallet balance.
	OpCredit OpType = iota

	// OpDebit marks an operation that decreased the wallet balance.
	OpDebit
)

// String returns a fixed-width direction tag for display.
func (op OpType) String() string {
	if op == OpCredit {
		return "+"
	}
	return "-"
}

// PartyValue pairs a classified party with the signed value it contributed
// to a transaction, seen from the wallet's side.
type PartyValue struct {
	Party wtxmgr.Party
	Value btcutil.Amount
}

// HistoryRow is one wallet-affecting transaction in the operation history.
type HistoryRow struct {
	// Height is the confirmation height, or -1 while unconfirmed.
	Height int32

	// TxID is the transaction id.
	TxID chainhash.Hash

	// Operation is the net direction of the row.
	Operation OpType

	// Amount is the net balance change caused by the transaction:
	// wallet-owned outputs minus wallet-owned inputs.
	Amount btcutil.Amount

	// Fee is the miner fee paid by the transaction.
	Fee btcutil.Amount

	// Weight is the transaction weight, for fee-rate display.
	Weight uint64

	// Own lists the wallet-owned sides of the transaction: positive for
	// outputs received, negative for inputs spent.
	Own []PartyValue

	// Counterparties lists the foreign sides: positive for inputs funded
	// by the counterparty, negative for outputs paid to it.
	Counterparties []PartyValue
}

// AddrBalances returns the per-address statistics rows, sorted by terminal.
func (c *Cache) AddrBalances() []*waddrmgr.WalletAddr {
	var rows []*waddrmgr.WalletAddr
	for _, addrs := range c.Addrs {
		for _, addr := range addrs {
			rows = append(rows, addr)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].Terminal, rows[j].Terminal
		if ti.Keychain != tj.Keychain {
			return ti.Keychain < tj.Keychain
		}
		return ti.Index < tj.Index
	})
	return rows
}

// Coins returns the wallet's unspent outputs, sorted by confirmation height
// and outpoint.
func (c *Cache) Coins() []Utxo {
	coins := make([]Utxo, 0, len(c.UTXOs))
	for outPoint := range c.UTXOs {
		tx, ok := c.Txs[outPoint.Hash]
		if !ok || outPoint.Index >= uint32(len(tx.Outputs)) {
			continue
		}
		debit := &tx.Outputs[outPoint.Index]
		owner, ok := debit.Beneficiary.(*wtxmgr.WalletParty)
		if !ok {
			continue
		}

		height := int32(-1)
		if tx.Mined() {
			height = tx.Block.Height
		}
		coins = append(coins, Utxo{
			OutPoint: outPoint,
			Value:    debit.Value,
			Height:   height,
			Address:  owner.Address,
			Terminal: owner.Terminal,
		})
	}

	sort.Slice(coins, func(i, j int) bool {
		hi, hj := sortHeight(coins[i].Height), sortHeight(coins[j].Height)
		if hi != hj {
			return hi < hj
		}
		if coins[i].OutPoint.Hash != coins[j].OutPoint.Hash {
			return coins[i].OutPoint.Hash.String() <
				coins[j].OutPoint.Hash.String()
		}
		return coins[i].OutPoint.Index < coins[j].OutPoint.Index
	})
	return coins
}

// History returns the wallet's operation history: one row per transaction
// that moved wallet funds, sorted by confirmation height with unconfirmed
// rows last.
func (c *Cache) History() []HistoryRow {
	rows := make([]HistoryRow, 0, len(c.Txs))
	for _, tx := range c.Txs {
		row, relevant := historyRow(tx)
		if relevant {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		hi, hj := sortHeight(rows[i].Height), sortHeight(rows[j].Height)
		if hi != hj {
			return hi < hj
		}
		return rows[i].TxID.String() < rows[j].TxID.String()
	})
	return rows
}

// historyRow folds one transaction into a history row, reporting whether the
// transaction touches wallet funds at all.
func historyRow(tx *wtxmgr.WalletTx) (HistoryRow, bool) {
	row := HistoryRow{
		Height: -1,
		TxID:   tx.TxID,
		Fee:    tx.Fee,
		Weight: tx.Weight,
	}
	if tx.Mined() {
		row.Height = tx.Block.Height
	}

	var net btcutil.Amount
	for i := range tx.Inputs {
		credit := &tx.Inputs[i]
		switch credit.Payer.(type) {
		case *wtxmgr.WalletParty:
			row.Own = append(row.Own, PartyValue{
				Party: credit.Payer,
				Value: -credit.Value,
			})
			net -= credit.Value
		case *wtxmgr.CounterParty:
			row.Counterparties = append(row.Counterparties,
				PartyValue{
					Party: credit.Payer,
					Value: credit.Value,
				})
		}
	}
	for i := range tx.Outputs {
		debit := &tx.Outputs[i]
		switch debit.Beneficiary.(type) {
		case *wtxmgr.WalletParty:
			row.Own = append(row.Own, PartyValue{
				Party: debit.Beneficiary,
				Value: debit.Value,
			})
			net += debit.Value
		case *wtxmgr.CounterParty:
			row.Counterparties = append(row.Counterparties,
				PartyValue{
					Party: debit.Beneficiary,
					Value: -debit.Value,
				})
		}
	}

	row.Amount = net
	if net < 0 {
		row.Operation = OpDebit
	}
	return row, len(row.Own) > 0
}

// sortHeight orders unconfirmed rows (height -1) after all confirmed ones.
func sortHeight(height int32) int64 {
	if height < 0 {
		return int64(^uint32(0))
	}
	return int64(height)
}
