// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package waddrmgr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Keychain is a named derivation branch of a wallet.  Following BIP-44
// conventions, branch 0 holds receiving (external) addresses and branch 1
// holds change (internal) addresses, though descriptors are free to expose
// additional branches.
type Keychain uint8

const (
	// ExternalKeychain is the branch receiving addresses are derived from.
	ExternalKeychain Keychain = 0

	// ChangeKeychain is the branch change addresses are derived from.
	ChangeKeychain Keychain = 1
)

// String returns the numeric identifier of the keychain.
func (k Keychain) String() string {
	return fmt.Sprintf("%d", uint8(k))
}

// Terminal identifies a single derived address as the (keychain, index) pair
// at the end of its derivation path.
type Terminal struct {
	Keychain Keychain
	Index    uint32
}

// String returns the terminal in its usual <keychain>/<index> notation.
func (t Terminal) String() string {
	return fmt.Sprintf("%s/%d", t.Keychain, t.Index)
}

// DerivedAddr is a single address produced by a Descriptor.  It is immutable
// once produced.
type DerivedAddr struct {
	// Terminal is the derivation terminal the address was produced at.
	Terminal Terminal

	// Address is the decoded network address.
	Address btcutil.Address

	// PkScript is the locking script paying to Address.
	PkScript []byte
}

// String returns the terminal together with the rendered address.
func (d *DerivedAddr) String() string {
	return fmt.Sprintf("%s %s", d.Terminal, d.Address)
}

// WalletAddr is the per-address aggregate maintained by the reconciliation
// engine.  An instance is created on first discovery of the address and
// mutated in place as transactions referencing it are reconciled.  Instances
// are never deleted from the wallet cache.
type WalletAddr struct {
	// Terminal is the derivation terminal of the address.
	Terminal Terminal

	// Address is the decoded network address.
	Address btcutil.Address

	// PkScript is the locking script paying to Address.
	PkScript []byte

	// Used is the number of transaction outputs seen paying to the
	// address.
	Used uint32

	// Volume is the cumulative amount ever received by the address.
	Volume btcutil.Amount

	// Balance is the amount currently spendable by the address.  It may
	// transiently go negative between the output and input passes of a
	// reconciliation session.
	Balance btcutil.Amount
}

// NewWalletAddr returns a WalletAddr for the given derived address with
// zeroed statistics.
func NewWalletAddr(derive *DerivedAddr) *WalletAddr {
	return &WalletAddr{
		Terminal: derive.Terminal,
		Address:  derive.Address,
		PkScript: derive.PkScript,
	}
}

// Descriptor describes a deterministic wallet to the reconciliation engine.
// For every keychain it produces an ordered, unbounded sequence of derived
// addresses, addressed by increasing index.
//
// Implementations must be deterministic: deriving the same terminal twice
// must yield the same address.
type Descriptor interface {
	// Keychains returns the set of keychains the descriptor derives
	// addresses for.
	Keychains() []Keychain

	// DeriveAddr derives the address at the given keychain and index.
	DeriveAddr(keychain Keychain, index uint32) (*DerivedAddr, error)

	// Network returns the network parameters addresses are encoded for.
	Network() *chaincfg.Params
}
