package models

// Document is the complete persisted state of a ledger.
type Document struct {
	// Users in display order.
	Users []User

	// Transactions in recording order.
	Transactions []Transaction
}
