// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Block contains the minimum amount of data to uniquely identify any block on
// either the best or side chain.
type Block struct {
	Hash   chainhash.Hash
	Height int32
}

// BlockMeta contains the unique identification for a block and any metadata
// pertaining to the block.  At the moment, this additional metadata only
// includes the block time from the block header.
type BlockMeta struct {
	Block
	Time time.Time
}

// Spender identifies the transaction input that spends a previously recorded
// output.
type Spender struct {
	// TxID is the id of the spending transaction.
	TxID chainhash.Hash

	// Vin is the index of the spending input within that transaction.
	Vin uint32
}

// TxCredit is a single transaction input from the wallet's accounting
// perspective: value entering the transaction.  The payer classification
// starts as Unknown (carrying the previous output's locking script) and is
// refined during reconciliation.
type TxCredit struct {
	// OutPoint references the output being consumed by this input.
	OutPoint wire.OutPoint

	// Sequence is the input's sequence number.
	Sequence uint32

	// Coinbase is set when the input is the block subsidy claim of a
	// coinbase transaction.
	Coinbase bool

	// ScriptSig is the input's unlocking script.
	ScriptSig []byte

	// Witness is the input's witness stack.
	Witness wire.TxWitness

	// Value is the amount consumed by the input.
	Value btcutil.Amount

	// Payer classifies who provided the value.
	Payer Party
}

// TxDebit is a single transaction output from the wallet's accounting
// perspective: value leaving the transaction.  The beneficiary
// classification starts as Unknown and is refined during reconciliation.
type TxDebit struct {
	// OutPoint is the outpoint of this output.
	OutPoint wire.OutPoint

	// Beneficiary classifies who receives the value.
	Beneficiary Party

	// Value is the amount held by the output.
	Value btcutil.Amount

	// SpentBy references the input that later spends this output, or nil
	// while the output is unspent (or the spend has not been discovered).
	SpentBy *Spender
}

// WalletTx is a wallet-relevant transaction as reported by the blockchain
// indexer.  A record is created on first fetch and persists once inserted
// into the wallet cache; only the party classifications of its credits and
// debits, and the spent markers of its debits, are mutated afterwards.
type WalletTx struct {
	// TxID is the transaction id.
	TxID chainhash.Hash

	// Block describes the confirmation status: nil while the transaction
	// is unconfirmed, otherwise the mining block's metadata.
	Block *BlockMeta

	// Inputs are the transaction inputs, in consensus order.
	Inputs []TxCredit

	// Outputs are the transaction outputs, in consensus order.
	Outputs []TxDebit

	// Fee is the miner fee paid by the transaction.
	Fee btcutil.Amount

	// Size is the serialized transaction size in bytes.
	Size uint32

	// Weight is the transaction weight in weight units.
	Weight uint64

	Version  int32
	LockTime uint32
}

// Mined reports whether the transaction is confirmed in a block.
func (t *WalletTx) Mined() bool {
	return t.Block != nil
}
