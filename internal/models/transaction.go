package models

// Transaction represents one payment split across participants.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	// Empty for transactions restored from documents that predate IDs.
	ID string

	// Payer is the name of the participant who fronted the amount.
	// Informational only, balances are driven by User.AmountPaid.
	Payer string

	// Amount is the total paid.
	Amount float64

	// Shares lists every participant the amount was split across.
	Shares []Share

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}

// Share is one participant's portion of a transaction.
type Share struct {
	Name string

	// Weight is the participant's relative weight. Equal splits use 1.
	Weight uint8

	// FairShare is Amount * Weight / total weight, fixed at recording time.
	FairShare float64
}

// Clone returns a deep copy of the transaction.
func (t Transaction) Clone() Transaction {
	c := t
	c.Shares = append([]Share(nil), t.Shares...)
	return c
}
