// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"

	"github.com/coldsuite/coldwallet/chain"
)

const (
	defaultLogLevel = "info"
	defaultBackEnd  = "esplora"
	defaultIndexer  = "https://blockstream.info/api"
	defaultInterval = 60 * time.Second
)

// config describes the configuration options of the coldwallet command.
type config struct {
	Xpub      string        `short:"x" long:"xpub" description:"Account-level extended public key of the wallet (BIP-84)"`
	Indexer   string        `short:"i" long:"indexer" description:"Base URL of the blockchain indexer"`
	BackEnd   string        `short:"b" long:"backend" description:"Indexer driver to use" choice:"esplora" choice:"mempool"`
	TestNet   bool          `long:"testnet" description:"Use the test network (default mainnet)"`
	GapLimit  uint32        `long:"gaplimit" description:"Maximum run of consecutive unused addresses scanned per keychain"`
	Interval  time.Duration `long:"interval" description:"Resync interval for the watch command"`
	ShowAddrs bool          `short:"a" long:"addr" description:"Print balance for each individual address"`
	ShowUtxos bool          `short:"u" long:"utxo" description:"Print information about individual UTXOs"`
	Details   bool          `long:"details" description:"Print operation details in history output"`
	LogFile   string        `long:"logfile" description:"Write log output to this file in addition to stdout"`
	LogLevel  string        `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// usage is printed when no valid command is given.
const usage = `Commands:
  sync       fetch the wallet state from the indexer and report totals
  balance    print the wallet balance (-a per address, -u per UTXO)
  history    print the wallet operation history
  utxos      print the unspent outputs
  address    print the next unused receiving address
  broadcast  publish a hex-encoded raw transaction
  watch      keep resyncing the wallet on an interval`

// loadConfig parses the command line into a config, the command name and its
// remaining arguments.
func loadConfig() (*config, string, []string, error) {
	cfg := config{
		Indexer:  defaultIndexer,
		BackEnd:  defaultBackEnd,
		Interval: defaultInterval,
		LogLevel: defaultLogLevel,
	}
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] COMMAND\n\n" + usage

	remaining, err := parser.Parse()
	if err != nil {
		return nil, "", nil, err
	}
	if len(remaining) == 0 {
		return nil, "", nil, fmt.Errorf("no command given\n\n%s", usage)
	}
	return &cfg, remaining[0], remaining[1:], nil
}

// netParams returns the chain parameters selected by the config.
func (c *config) netParams() *chaincfg.Params {
	if c.TestNet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// chainClient constructs the indexer driver selected by the config.
func (c *config) chainClient() (chain.Interface, error) {
	switch c.BackEnd {
	case "esplora":
		return chain.NewEsploraClient(c.Indexer), nil
	case "mempool":
		return chain.NewMempoolClient(c.Indexer), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (available: %v)",
			c.BackEnd, chain.BackEnds())
	}
}
