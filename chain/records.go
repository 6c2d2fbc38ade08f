// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/wtxmgr"
)

// The types below mirror the JSON records returned by Esplora-compatible
// REST APIs.  They are kept separate from the wtxmgr types so that wire
// compatibility concerns stay inside this package.

// TxStatus is the confirmation status of an indexer-reported transaction.
type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int32  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   int64  `json:"block_time"`
}

// Vout is a transaction output as reported by the indexer.  It doubles as
// the prevout description attached to inputs.
type Vout struct {
	ScriptPubKey string `json:"scriptpubkey"`
	Value        int64  `json:"value"`
}

// Vin is a transaction input as reported by the indexer.
type Vin struct {
	TxID       string   `json:"txid"`
	Vout       uint32   `json:"vout"`
	Prevout    *Vout    `json:"prevout"`
	ScriptSig  string   `json:"scriptsig"`
	Sequence   uint32   `json:"sequence"`
	Witness    []string `json:"witness"`
	IsCoinbase bool     `json:"is_coinbase"`
}

// Tx is a full transaction record as reported by the indexer.
type Tx struct {
	TxID     string   `json:"txid"`
	Version  int32    `json:"version"`
	LockTime uint32   `json:"locktime"`
	Vin      []Vin    `json:"vin"`
	Vout     []Vout   `json:"vout"`
	Size     uint32   `json:"size"`
	Weight   uint64   `json:"weight"`
	Fee      int64    `json:"fee"`
	Status   TxStatus `json:"status"`
}

// TxCountStats carries the transaction count of one side (chain or mempool)
// of an address summary.
type TxCountStats struct {
	TxCount uint64 `json:"tx_count"`
}

// AddrStats is the lightweight per-address summary used for change
// detection.  A zero value means the summary could not be obtained or the
// address is unknown to the indexer.
type AddrStats struct {
	Address      string       `json:"address"`
	ChainStats   TxCountStats `json:"chain_stats"`
	MempoolStats TxCountStats `json:"mempool_stats"`
}

// blockMeta converts the confirmation status into wtxmgr block metadata,
// returning nil for unconfirmed transactions or statuses missing any of the
// mined fields.
func (s *TxStatus) blockMeta() (*wtxmgr.BlockMeta, error) {
	if !s.Confirmed || s.BlockHash == "" {
		return nil, nil
	}
	hash, err := chainhash.NewHashFromStr(s.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("malformed block hash %q: %w",
			s.BlockHash, err)
	}
	return &wtxmgr.BlockMeta{
		Block: wtxmgr.Block{
			Hash:   *hash,
			Height: s.BlockHeight,
		},
		Time: time.Unix(s.BlockTime, 0),
	}, nil
}

// credit converts the input into a wtxmgr credit.  Inputs without a prevout
// (coinbase) are classified Subsidy immediately; all others start with an
// Unknown payer carrying the prevout's locking script.
func (v *Vin) credit() (wtxmgr.TxCredit, error) {
	var credit wtxmgr.TxCredit

	prevTxID, err := chainhash.NewHashFromStr(v.TxID)
	if err != nil && !v.IsCoinbase {
		return credit, fmt.Errorf("malformed prevout txid %q: %w",
			v.TxID, err)
	}
	scriptSig, err := hex.DecodeString(v.ScriptSig)
	if err != nil {
		return credit, fmt.Errorf("malformed scriptsig: %w", err)
	}
	witness := make(wire.TxWitness, 0, len(v.Witness))
	for _, item := range v.Witness {
		data, err := hex.DecodeString(item)
		if err != nil {
			return credit, fmt.Errorf("malformed witness item: %w",
				err)
		}
		witness = append(witness, data)
	}

	credit = wtxmgr.TxCredit{
		Sequence:  v.Sequence,
		Coinbase:  v.IsCoinbase,
		ScriptSig: scriptSig,
		Witness:   witness,
	}
	if prevTxID != nil {
		credit.OutPoint = *wire.NewOutPoint(prevTxID, v.Vout)
	}

	if v.Prevout == nil {
		credit.Payer = &wtxmgr.SubsidyParty{}
		return credit, nil
	}

	pkScript, err := hex.DecodeString(v.Prevout.ScriptPubKey)
	if err != nil {
		return credit, fmt.Errorf("malformed prevout script: %w", err)
	}
	credit.Value = btcutil.Amount(v.Prevout.Value)
	credit.Payer = &wtxmgr.UnknownParty{PkScript: pkScript}
	return credit, nil
}

// WalletTx converts the raw indexer record into a wallet transaction record
// with all parties still unresolved (or Subsidy for coinbase credits).
func (tx *Tx) WalletTx() (*wtxmgr.WalletTx, error) {
	txid, err := chainhash.NewHashFromStr(tx.TxID)
	if err != nil {
		return nil, fmt.Errorf("malformed txid %q: %w", tx.TxID, err)
	}
	block, err := tx.Status.blockMeta()
	if err != nil {
		return nil, err
	}

	inputs := make([]wtxmgr.TxCredit, 0, len(tx.Vin))
	for i := range tx.Vin {
		credit, err := tx.Vin[i].credit()
		if err != nil {
			return nil, fmt.Errorf("tx %v input %d: %w", txid, i,
				err)
		}
		inputs = append(inputs, credit)
	}

	outputs := make([]wtxmgr.TxDebit, 0, len(tx.Vout))
	for i := range tx.Vout {
		pkScript, err := hex.DecodeString(tx.Vout[i].ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("tx %v output %d: malformed "+
				"script: %w", txid, i, err)
		}
		outputs = append(outputs, wtxmgr.TxDebit{
			OutPoint:    *wire.NewOutPoint(txid, uint32(i)),
			Beneficiary: &wtxmgr.UnknownParty{PkScript: pkScript},
			Value:       btcutil.Amount(tx.Vout[i].Value),
		})
	}

	return &wtxmgr.WalletTx{
		TxID:     *txid,
		Block:    block,
		Inputs:   inputs,
		Outputs:  outputs,
		Fee:      btcutil.Amount(tx.Fee),
		Size:     tx.Size,
		Weight:   tx.Weight,
		Version:  tx.Version,
		LockTime: tx.LockTime,
	}, nil
}
