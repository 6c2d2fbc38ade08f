// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/coldsuite/coldwallet/waddrmgr"
)

// Party classifies the counterparty on one side of a transaction credit or
// debit.  A party starts out Unknown, carrying only the locking script seen
// on chain, and is refined during reconciliation:
//
//	Unknown -> WalletParty    (script belongs to one of our derived addresses)
//	Unknown -> CounterParty   (script decodes to a foreign network address)
//	Subsidy                   (coinbase credit, assigned at conversion time)
//
// WalletParty, CounterParty and Subsidy are terminal: a classification never
// regresses to Unknown.
type Party interface {
	// Script returns the locking script identifying the party, or nil
	// when no script is attributable (Subsidy).
	Script() []byte

	// Unknown reports whether the party is still unresolved.
	Unknown() bool

	// String renders the party for display.
	String() string
}

// UnknownParty is the initial classification of a credit or debit
// counterparty: nothing is known beyond the raw locking script.
type UnknownParty struct {
	PkScript []byte
}

// Script returns the raw locking script.
func (p *UnknownParty) Script() []byte { return p.PkScript }

// Unknown always returns true.
func (p *UnknownParty) Unknown() bool { return true }

// String renders the script as hex since no address form is known.
func (p *UnknownParty) String() string {
	return hex.EncodeToString(p.PkScript)
}

// SubsidyParty marks a coinbase credit: the value is the block subsidy and
// has no previous output.  This classification is permanent.
type SubsidyParty struct{}

// Script returns nil; a subsidy has no locking script.
func (p *SubsidyParty) Script() []byte { return nil }

// Unknown always returns false.
func (p *SubsidyParty) Unknown() bool { return false }

// String renders the subsidy marker.
func (p *SubsidyParty) String() string { return "coinbase" }

// WalletParty marks a credit or debit side as one of the wallet's own
// derived addresses.
type WalletParty struct {
	// Terminal is the derivation terminal of the owned address.
	Terminal waddrmgr.Terminal

	// Address is the owned address.
	Address btcutil.Address

	// PkScript is the locking script of the owned address.
	PkScript []byte
}

// Script returns the owned address's locking script.
func (p *WalletParty) Script() []byte { return p.PkScript }

// Unknown always returns false.
func (p *WalletParty) Unknown() bool { return false }

// String renders the terminal and address of the owned party.
func (p *WalletParty) String() string {
	return p.Terminal.String() + " " + p.Address.String()
}

// CounterParty marks a credit or debit side as a foreign address not derived
// by the wallet.
type CounterParty struct {
	// Address is the decoded foreign address.
	Address btcutil.Address

	// PkScript is the locking script paying to Address.
	PkScript []byte
}

// Script returns the counterparty's locking script.
func (p *CounterParty) Script() []byte { return p.PkScript }

// Unknown always returns false.
func (p *CounterParty) Unknown() bool { return false }

// String renders the counterparty address.
func (p *CounterParty) String() string { return p.Address.String() }

// OwnedBy returns the WalletParty classification for the given wallet
// address.
func OwnedBy(addr *waddrmgr.WalletAddr) Party {
	return &WalletParty{
		Terminal: addr.Terminal,
		Address:  addr.Address,
		PkScript: addr.PkScript,
	}
}
