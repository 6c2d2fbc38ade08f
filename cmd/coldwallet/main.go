// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/coldsuite/coldwallet/waddrmgr"
	"github.com/coldsuite/coldwallet/wallet"
)

func main() {
	if err := walletMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func walletMain() error {
	cfg, command, args, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	setLogLevels(cfg.LogLevel)

	client, err := cfg.chainClient()
	if err != nil {
		return err
	}
	engine, err := wallet.NewEngine(&wallet.Config{
		Chain:    client,
		GapLimit: cfg.GapLimit,
	})
	if err != nil {
		return err
	}

	// Broadcasting needs no descriptor, so handle it before the wallet is
	// derived.
	if command == "broadcast" {
		return broadcast(engine, args)
	}

	if cfg.Xpub == "" {
		return fmt.Errorf("command %q requires --xpub", command)
	}
	descr, err := waddrmgr.NewP2WPKHDescriptorFromString(
		cfg.Xpub, cfg.netParams(),
	)
	if err != nil {
		return err
	}

	switch command {
	case "sync":
		cache, errs := engine.Create(descr)
		reportErrors(errs)
		fmt.Printf("Synced %d transactions, %d unspent outputs, "+
			"balance %d sats\n", len(cache.Txs), len(cache.UTXOs),
			cache.Balance())

	case "balance":
		cache, errs := engine.Create(descr)
		reportErrors(errs)
		printBalance(cache, cfg.ShowAddrs, cfg.ShowUtxos)

	case "utxos":
		cache, errs := engine.Create(descr)
		reportErrors(errs)
		printBalance(cache, false, true)

	case "history":
		cache, errs := engine.Create(descr)
		reportErrors(errs)
		printHistory(cache, cfg.Details)

	case "address":
		cache, errs := engine.Create(descr)
		reportErrors(errs)
		index := cache.NextUnusedIndex(waddrmgr.ExternalKeychain)
		derive, err := descr.DeriveAddr(
			waddrmgr.ExternalKeychain, index,
		)
		if err != nil {
			return err
		}
		fmt.Printf("Term.\tAddress\n%s\t%s\n", derive.Terminal,
			derive.Address)

	case "watch":
		return watch(engine, descr, cfg)

	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
	return nil
}

// broadcast publishes a raw transaction given as a hex string argument.
func broadcast(engine *wallet.Engine, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("broadcast requires exactly one hex-" +
			"encoded transaction argument")
	}
	rawTx, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("invalid transaction hex: %w", err)
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	txid, err := engine.Publish(&tx)
	if err != nil {
		return err
	}
	fmt.Printf("Published transaction %v\n", txid)
	return nil
}

// watch performs an initial full sync and then keeps the cache fresh with
// incremental updates on the configured interval until interrupted.
func watch(engine *wallet.Engine, descr waddrmgr.Descriptor,
	cfg *config) error {

	cache, errs := engine.Create(descr)
	reportErrors(errs)
	fmt.Printf("Watching wallet, balance %d sats (resync every %v)\n",
		cache.Balance(), cfg.Interval)

	t := ticker.New(cfg.Interval)
	t.Resume()
	defer t.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-t.Ticks():
			changed, errs := engine.Update(descr, cache)
			reportErrors(errs)
			if changed > 0 {
				fmt.Printf("%d addresses changed, balance "+
					"%d sats\n", changed, cache.Balance())
			}

		case <-interrupt:
			log.Infof("Shutting down watch")
			return nil
		}
	}
}

func reportErrors(errs []error) {
	for _, err := range errs {
		log.Warnf("Sync: %v", err)
	}
}

// printBalance renders the balance command in its per-address and per-UTXO
// variants.
func printBalance(cache *wallet.Cache, showAddrs, showUtxos bool) {
	if showAddrs {
		fmt.Printf("Term.\t%-62s\t# used\tVol., sats\tBalance, sats\n",
			"Address")
		for _, addr := range cache.AddrBalances() {
			fmt.Printf("%s\t%-62s\t%d\t%d\t%d\n", addr.Terminal,
				addr.Address, addr.Used, int64(addr.Volume),
				int64(addr.Balance))
		}
	}
	if showUtxos {
		fmt.Printf("Height\t%12s\t%-68s\tAddress\n", "Amount, sats",
			"Outpoint")
		for _, coin := range cache.Coins() {
			fmt.Printf("%d\t%12d\t%-68v\t%s\n", coin.Height,
				int64(coin.Value), coin.OutPoint, coin.Address)
		}
	}
	fmt.Printf("\nWallet total balance: %d sats\n", int64(cache.Balance()))
}

// printHistory renders the history command.
func printHistory(cache *wallet.Cache, details bool) {
	fmt.Printf("Height\t%-64s\t%12s\tFee rate, sats/vbyte\n", "Txid",
		"Amount, sats")
	for _, row := range cache.History() {
		feeRate := 0.0
		if row.Weight > 0 {
			feeRate = float64(row.Fee) * 4 / float64(row.Weight)
		}
		fmt.Printf("%d\t%-64v\t%s%11d\t%8.2f\n", row.Height, row.TxID,
			row.Operation, abs64(int64(row.Amount)), feeRate)
		if !details {
			continue
		}
		for _, own := range row.Own {
			fmt.Printf("\t* %12d sats\t%s\n", int64(own.Value),
				own.Party)
		}
		for _, cp := range row.Counterparties {
			fmt.Printf("\t* %12d sats\t%s\n", int64(cp.Value),
				cp.Party)
		}
		fmt.Printf("\t* %12d sats\tminer fee\n", -int64(row.Fee))
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
