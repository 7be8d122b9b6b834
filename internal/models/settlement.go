package models

import "fmt"

// Transfer is one instruction of a settlement plan: From pays To the Amount.
type Transfer struct {
	// From is the debtor.
	From string

	// To is the creditor.
	To string

	Amount float64
}

// String renders the transfer as a human-readable instruction with two decimals.
func (t Transfer) String() string {
	return fmt.Sprintf("%s should pay %s %.2f", t.From, t.To, t.Amount)
}
