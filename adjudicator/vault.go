//
// vault.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

// Party identifies one of the two participants. The adjudicator binds
// exactly two fixed parties at construction time; it is not a general
// multi-party ledger account.
type Party string

// Vault holds the escrowed collateral of both parties. It is mutated
// only by adjudicator transitions, and every terminal transition
// zeroes the entries it disburses before handing the amount back to
// the caller — spec.md §4.3's conservation invariant.
type Vault struct {
	balances map[Party]uint64
}

func newVault() *Vault {
	return &Vault{balances: make(map[Party]uint64)}
}

// Balance returns a party's current escrow.
func (v *Vault) Balance(p Party) uint64 {
	return v.balances[p]
}

// Sum returns the total escrowed across both parties.
func (v *Vault) Sum() uint64 {
	var sum uint64
	for _, b := range v.balances {
		sum += b
	}
	return sum
}

func (v *Vault) deposit(p Party, amount uint64) {
	v.balances[p] += amount
}

// refundOwn zeroes and returns p's own escrow.
func (v *Vault) refundOwn(p Party) uint64 {
	amt := v.balances[p]
	v.balances[p] = 0
	return amt
}

// payAllTo zeroes every listed party's escrow and returns the total,
// which the caller credits to the winner. Used for aborts (claim both
// deposits) and for slashing (transfer the full joint collateral from
// the cheating party to the honest counterparty).
func (v *Vault) payAllTo(parties ...Party) uint64 {
	var total uint64
	for _, p := range parties {
		total += v.balances[p]
		v.balances[p] = 0
	}
	return total
}
