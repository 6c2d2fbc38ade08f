// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package waddrmgr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// P2WPKHDescriptor is a watch-only BIP-84 descriptor deriving native segwit
// (P2WPKH) addresses from an account-level extended public key.  It derives
// two keychains: external (receive) and internal (change).
type P2WPKHDescriptor struct {
	branches map[Keychain]*hdkeychain.ExtendedKey
	params   *chaincfg.Params
}

// A compile-time check to ensure that P2WPKHDescriptor satisfies the
// Descriptor interface.
var _ Descriptor = (*P2WPKHDescriptor)(nil)

// NewP2WPKHDescriptor derives the external and change branches from the
// given account-level extended key.  The key may be public only; private key
// material is never required for address derivation.
func NewP2WPKHDescriptor(acctKey *hdkeychain.ExtendedKey,
	params *chaincfg.Params) (*P2WPKHDescriptor, error) {

	branches := make(map[Keychain]*hdkeychain.ExtendedKey, 2)
	for _, keychain := range []Keychain{ExternalKeychain, ChangeKeychain} {
		branchKey, err := acctKey.Derive(uint32(keychain))
		if err != nil {
			return nil, fmt.Errorf("unable to derive branch %s: %w",
				keychain, err)
		}
		branches[keychain] = branchKey
	}

	return &P2WPKHDescriptor{
		branches: branches,
		params:   params,
	}, nil
}

// NewP2WPKHDescriptorFromString parses an account-level extended key in its
// base58 string encoding and constructs a descriptor from it.
func NewP2WPKHDescriptorFromString(acctKey string,
	params *chaincfg.Params) (*P2WPKHDescriptor, error) {

	key, err := hdkeychain.NewKeyFromString(acctKey)
	if err != nil {
		return nil, fmt.Errorf("invalid extended key: %w", err)
	}
	return NewP2WPKHDescriptor(key, params)
}

// Keychains returns the external and change keychains.
//
// This is part of the Descriptor interface.
func (d *P2WPKHDescriptor) Keychains() []Keychain {
	return []Keychain{ExternalKeychain, ChangeKeychain}
}

// DeriveAddr derives the P2WPKH address at the given keychain and index.
//
// This is part of the Descriptor interface.
func (d *P2WPKHDescriptor) DeriveAddr(keychain Keychain,
	index uint32) (*DerivedAddr, error) {

	branchKey, ok := d.branches[keychain]
	if !ok {
		return nil, fmt.Errorf("unknown keychain %s", keychain)
	}

	indexKey, err := branchKey.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("unable to derive index %d: %w",
			index, err)
	}
	pubKey, err := indexKey.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("unable to derive pubkey at %d: %w",
			index, err)
	}

	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, d.params)
	if err != nil {
		return nil, err
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}

	return &DerivedAddr{
		Terminal: Terminal{Keychain: keychain, Index: index},
		Address:  addr,
		PkScript: pkScript,
	}, nil
}

// Network returns the network parameters the descriptor encodes addresses
// for.
//
// This is part of the Descriptor interface.
func (d *P2WPKHDescriptor) Network() *chaincfg.Params {
	return d.params
}
