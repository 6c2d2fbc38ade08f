// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldsuite/coldwallet/chain"
	"github.com/coldsuite/coldwallet/waddrmgr"
	"github.com/coldsuite/coldwallet/wtxmgr"
)

// DefaultGapLimit is the conventional maximum run of consecutive unused
// addresses scanned before a keychain is considered exhausted (BIP-44).
const DefaultGapLimit = 20

// Config holds the options used to construct a reconciliation engine.
type Config struct {
	// Chain is the indexer backend queried for address histories.
	Chain chain.Interface

	// GapLimit overrides DefaultGapLimit when non-zero.
	GapLimit uint32

	// MemoSize overrides the default capacity of the address-transaction
	// memo when non-zero.
	MemoSize int
}

// Engine reconciles a wallet cache against an external blockchain indexer.
// It walks each keychain of a descriptor with a gap-limited scan, fetches
// (or reuses memoized) per-address transaction histories, and merges the
// results into the cache with a two-pass ledger algorithm.
//
// Scanning is single-threaded and strictly sequential to keep gap-limit
// counting and the two-pass ordering deterministic.  A sync session runs to
// completion, accumulating non-fatal errors rather than failing fast.
type Engine struct {
	chain    chain.Interface
	memo     *chain.TxMemo
	gapLimit uint32
}

// NewEngine constructs a reconciliation engine from the config.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil || cfg.Chain == nil {
		return nil, errors.New("missing chain backend")
	}
	gapLimit := cfg.GapLimit
	if gapLimit == 0 {
		gapLimit = DefaultGapLimit
	}
	return &Engine{
		chain:    cfg.Chain,
		memo:     chain.NewTxMemo(cfg.MemoSize),
		gapLimit: gapLimit,
	}, nil
}

// scanEntry is the per-address result of one scan session: the statistics
// record the address resolves to, and the ids of the transactions newly
// relevant to it.
type scanEntry struct {
	script string
	addr   *waddrmgr.WalletAddr
	txids  []chainhash.Hash
}

// scanContext is the session-scoped address index built while scanning.  It
// covers every address visited in the session across all keychains, so that
// an output belonging to a different keychain than the one currently being
// reconciled (e.g. a change output) still resolves to a wallet-owned party.
// It is built once per session and threaded through both reconciliation
// passes.
type scanContext struct {
	order   []string
	entries map[string]*scanEntry
}

func newScanContext() *scanContext {
	return &scanContext{
		entries: make(map[string]*scanEntry),
	}
}

// insert records the scan result of one address.
func (s *scanContext) insert(script string, addr *waddrmgr.WalletAddr,
	txids []chainhash.Hash) {

	if _, ok := s.entries[script]; !ok {
		s.order = append(s.order, script)
	}
	s.entries[script] = &scanEntry{
		script: script,
		addr:   addr,
		txids:  txids,
	}
}

// owner resolves a locking script to a wallet address visited in this
// session, including ones without relevant transactions.
func (s *scanContext) owner(script string) *waddrmgr.WalletAddr {
	entry, ok := s.entries[script]
	if !ok {
		return nil
	}
	return entry.addr
}

// active returns, in visit order, the entries holding at least one relevant
// transaction.  Addresses with no relevant transactions take no part in the
// reconciliation passes.
func (s *scanContext) active() []*scanEntry {
	var live []*scanEntry
	for _, script := range s.order {
		if entry := s.entries[script]; len(entry.txids) > 0 {
			live = append(live, entry)
		}
	}
	return live
}

// Create builds a wallet cache from nothing, covering the full scanned
// address space of the descriptor.  It always returns a usable (possibly
// partial) cache together with the accumulated non-fatal errors.
func (e *Engine) Create(descr waddrmgr.Descriptor) (*Cache, []error) {
	cache := NewCache()
	var errs []error

	sctx := e.scanDescriptor(descr, cache, &errs, false)
	changed := e.reconcile(descr, cache, sctx)

	log.Infof("Created wallet cache: %d active addresses, %d txns, "+
		"%d utxos, %d errors", changed, len(cache.Txs),
		len(cache.UTXOs), len(errs))
	return cache, errs
}

// Update extends an existing cache: only newly discovered or changed
// addresses and transactions are merged, with unchanged addresses
// short-circuited by change detection.  It returns the number of changed
// addresses and the accumulated non-fatal errors.  It never aborts midway
// and discards partial progress.
func (e *Engine) Update(descr waddrmgr.Descriptor,
	cache *Cache) (int, []error) {

	var errs []error

	sctx := e.scanDescriptor(descr, cache, &errs, true)
	changed := e.reconcile(descr, cache, sctx)

	log.Infof("Updated wallet cache: %d changed addresses, %d errors",
		changed, len(errs))
	return changed, errs
}

// Publish broadcasts the transaction to the network via the indexer.
func (e *Engine) Publish(tx *wire.MsgTx) (*chainhash.Hash, error) {
	return e.chain.PublishTransaction(tx)
}

// scanDescriptor walks each keychain of the descriptor in increasing index
// order, maintaining a counter of consecutive empty addresses that resets
// whenever an address yields transactions.  Scanning of a keychain stops
// once the counter reaches the gap limit.
func (e *Engine) scanDescriptor(descr waddrmgr.Descriptor, cache *Cache,
	errs *[]error, update bool) *scanContext {

	sctx := newScanContext()
	for _, keychain := range descr.Keychains() {
		log.Debugf("Scanning keychain %s", keychain)

		var emptyCount uint32
		for index := uint32(0); ; index++ {
			empty := true

			derive, err := descr.DeriveAddr(keychain, index)
			if err != nil {
				*errs = append(*errs, fmt.Errorf("derive "+
					"%s/%d: %w", keychain, index, err))
			} else {
				empty = e.processAddress(derive, cache, sctx,
					errs, update)
			}

			if !empty {
				emptyCount = 0
				continue
			}
			emptyCount++
			if emptyCount >= e.gapLimit {
				break
			}
		}
	}
	return sctx
}

// processAddress decides fetch-vs-reuse for a single address, records any
// newly fetched transactions in the cache, and reports whether the address
// counts as empty for gap-limit purposes.
//
// Network failures are non-fatal: they are recorded and the address is
// treated as empty.  This is a deliberate trade-off: a transient outage can
// prematurely end a keychain's scan, which the caller can detect through the
// returned error list.
func (e *Engine) processAddress(derive *waddrmgr.DerivedAddr, cache *Cache,
	sctx *scanContext, errs *[]error, update bool) bool {

	script := string(derive.PkScript)

	// In update mode, compare a cheap remote summary against the summary
	// derived from the memo before paying for a full re-fetch.  A failed
	// summary call forces the fetch so new activity is never silently
	// missed.
	if update {
		remoteStats, err := e.chain.AddressStats(derive)
		switch {
		case err != nil:
			*errs = append(*errs, fmt.Errorf("summary for %s: %w",
				derive, err))

		case remoteStats.Address == "",
			remoteStats == e.memo.Stats(derive):

			// Unchanged.  An already cached address keeps its
			// statistics and stays resolvable for the session,
			// but counts as checked rather than as newly active.
			if cached := cache.LookupAddr(derive.Terminal); cached != nil {
				sctx.insert(script, cached, nil)
			}
			return true
		}
	}

	var txids []chainhash.Hash
	empty := false

	txns, err := chain.FetchAddressTxns(e.chain, e.memo, derive, update)
	switch {
	case err != nil:
		*errs = append(*errs, err)
		empty = true

	case len(txns) == 0:
		empty = true

	default:
		txids = make([]chainhash.Hash, 0, len(txns))
		for i := range txns {
			tx, err := txns[i].WalletTx()
			if err != nil {
				*errs = append(*errs, err)
				continue
			}
			cache.Txs[tx.TxID] = tx
			txids = append(txids, tx.TxID)
		}
	}

	sctx.insert(script, waddrmgr.NewWalletAddr(derive), txids)
	return empty
}

// reconcile runs the two-pass ledger algorithm over the session's scan
// results and merges them into the cache.  It returns the number of changed
// addresses.
//
// All outputs across the whole batch are resolved before any inputs are
// processed.  Interleaving the two would let a change output created earlier
// in the same session be misclassified, or be re-added to the unspent set
// after a spend of it was already applied.
func (e *Engine) reconcile(descr waddrmgr.Descriptor, cache *Cache,
	sctx *scanContext) int {

	active := sctx.active()

	for _, entry := range active {
		for _, txid := range entry.txids {
			tx, ok := cache.Txs[txid]
			if !ok {
				continue
			}
			e.processOutputs(descr, entry, tx, cache, sctx)
		}
	}

	for _, entry := range active {
		for _, txid := range entry.txids {
			tx, ok := cache.Txs[txid]
			if !ok {
				continue
			}
			e.processInputs(descr, entry, tx, cache, sctx)
		}
	}

	for _, entry := range active {
		cache.setAddr(entry.addr)
	}
	return len(active)
}

// processOutputs is phase A for one (address, transaction) pair: outputs
// paying to the address are classified wallet-owned, added to the unspent
// set and reflected in the address statistics.  Other still-unresolved
// outputs are resolved through the session context first, since they may
// belong to a different keychain than the one being processed, and only then
// through best-effort script decoding.
func (e *Engine) processOutputs(descr waddrmgr.Descriptor, entry *scanEntry,
	tx *wtxmgr.WalletTx, cache *Cache, sctx *scanContext) {

	addr := entry.addr
	for i := range tx.Outputs {
		debit := &tx.Outputs[i]
		script := debit.Beneficiary.Script()
		if script == nil {
			continue
		}

		switch {
		case string(script) == entry.script:
			cache.UTXOs[debit.OutPoint] = struct{}{}
			debit.Beneficiary = wtxmgr.OwnedBy(addr)
			addr.Used++
			addr.Volume += debit.Value
			addr.Balance += debit.Value

		case debit.Beneficiary.Unknown():
			if owner := sctx.owner(string(script)); owner != nil {
				debit.Beneficiary = wtxmgr.OwnedBy(owner)
				continue
			}
			if decoded := decodeScriptAddr(script, descr.Network()); decoded != nil {
				debit.Beneficiary = &wtxmgr.CounterParty{
					Address:  decoded,
					PkScript: script,
				}
			}
		}
	}
}

// processInputs is phase B for one (address, transaction) pair: payers are
// resolved the same way beneficiaries were in phase A, spends from the
// address are subtracted from its balance, and previously recorded funding
// outputs are marked spent (and, for confirmed spends, removed from the
// unspent set).  A funding transaction absent from the store is tolerated
// silently.
func (e *Engine) processInputs(descr waddrmgr.Descriptor, entry *scanEntry,
	tx *wtxmgr.WalletTx, cache *Cache, sctx *scanContext) {

	addr := entry.addr
	for i := range tx.Inputs {
		credit := &tx.Inputs[i]
		script := credit.Payer.Script()
		if script == nil {
			continue
		}

		switch {
		case string(script) == entry.script:
			credit.Payer = wtxmgr.OwnedBy(addr)
			addr.Balance -= credit.Value

		case credit.Payer.Unknown():
			if owner := sctx.owner(string(script)); owner != nil {
				credit.Payer = wtxmgr.OwnedBy(owner)
				continue
			}
			if decoded := decodeScriptAddr(script, descr.Network()); decoded != nil {
				credit.Payer = &wtxmgr.CounterParty{
					Address:  decoded,
					PkScript: script,
				}
			}
		}

		prevTx, ok := cache.Txs[credit.OutPoint.Hash]
		if !ok || credit.OutPoint.Index >= uint32(len(prevTx.Outputs)) {
			continue
		}
		spent := &prevTx.Outputs[credit.OutPoint.Index]
		if tx.Mined() {
			delete(cache.UTXOs, spent.OutPoint)
		}
		spent.SpentBy = &wtxmgr.Spender{
			TxID: tx.TxID,
			Vin:  uint32(i),
		}
	}
}

// decodeScriptAddr renders a locking script as a displayable network
// address on a best-effort basis, returning nil when the script has no
// standard address form.
func decodeScriptAddr(pkScript []byte,
	params *chaincfg.Params) btcutil.Address {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, params)
	if err != nil || len(addrs) == 0 {
		return nil
	}
	return addrs[0]
}
