// Copyright (c) 2024-2026 The coldsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
)

// Beneficiary is one payment target of a transaction under construction.
type Beneficiary struct {
	// Address is the receiving address.
	Address btcutil.Address

	// Amount is the amount to pay.  When Max is set the beneficiary
	// receives an equal share of whatever remains after the fixed-amount
	// beneficiaries and the fee.
	Amount btcutil.Amount

	// Max requests the remaining wallet balance instead of a fixed
	// amount.
	Max bool
}

// Constructor assembles an unsigned payment artifact from selected coins and
// beneficiaries.  Transaction construction, coin selection and signing are
// external to the reconciliation core; this contract is what the core's
// consumers program against.
type Constructor interface {
	// Construct builds a partially signed transaction spending the given
	// coins to the given beneficiaries at the given fee.
	Construct(coins []Utxo, beneficiaries []Beneficiary,
		fee btcutil.Amount) (*psbt.Packet, error)
}
