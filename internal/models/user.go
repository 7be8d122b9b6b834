package models

import "math"

// User represents one participant of the ledger.
type User struct {
	// Name is the unique, case-sensitive identifier of the participant.
	Name string

	// AmountPaid is the cumulative amount this participant has fronted.
	AmountPaid float64

	// NetBalance is AmountPaid minus the participant's total fair share.
	// Positive = owed money, Negative = owes money.
	// Derived: only refreshed when a settlement is computed.
	NetBalance float64
}

// Settled reports whether the net balance is within eps of zero.
func (u User) Settled(eps float64) bool {
	return math.Abs(u.NetBalance) < eps
}
