package ledger

import (
	"fmt"
	"math"

	"github.com/mmynk/dangidongi/internal/models"
)

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() *models.Document {
	return &models.Document{
		Users:        l.Users(),
		Transactions: l.Transactions(),
	}
}

// Replace swaps the ledger state for doc. The document is validated first;
// on error the ledger is left untouched.
func (l *Ledger) Replace(doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrSerialization)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	users := make(map[string]*models.User, len(doc.Users))
	order := make([]string, 0, len(doc.Users))
	for _, u := range doc.Users {
		users[u.Name] = &u
		order = append(order, u.Name)
	}
	transactions := make([]models.Transaction, len(doc.Transactions))
	for i, tx := range doc.Transactions {
		transactions[i] = tx.Clone()
	}

	l.users = users
	l.order = order
	l.transactions = transactions
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateDocument(doc *models.Document) error {
	seen := make(map[string]bool, len(doc.Users))
	for _, u := range doc.Users {
		if u.Name == "" || normalizeName(u.Name) != u.Name {
			return fmt.Errorf("%w: invalid participant name %q", ErrSerialization, u.Name)
		}
		if seen[u.Name] {
			return fmt.Errorf("%w: duplicate participant %q", ErrSerialization, u.Name)
		}
		seen[u.Name] = true
		if !finite(u.AmountPaid) || !finite(u.NetBalance) {
			return fmt.Errorf("%w: non-finite balance for %q", ErrSerialization, u.Name)
		}
	}

	ids := make(map[string]bool, len(doc.Transactions))
	for i, tx := range doc.Transactions {
		if tx.ID != "" {
			if ids[tx.ID] {
				return fmt.Errorf("%w: transaction %d: duplicate id %q", ErrSerialization, i, tx.ID)
			}
			ids[tx.ID] = true
		}
		if !finite(tx.Amount) {
			return fmt.Errorf("%w: transaction %d: non-finite amount", ErrSerialization, i)
		}
		names := make(map[string]bool, len(tx.Shares))
		for _, s := range tx.Shares {
			if s.Name == "" {
				return fmt.Errorf("%w: transaction %d: empty participant name", ErrSerialization, i)
			}
			if names[s.Name] {
				return fmt.Errorf("%w: transaction %d: duplicate participant %q", ErrSerialization, i, s.Name)
			}
			names[s.Name] = true
			if s.Weight == 0 {
				return fmt.Errorf("%w: transaction %d: zero weight for %q", ErrSerialization, i, s.Name)
			}
			if !finite(s.FairShare) {
				return fmt.Errorf("%w: transaction %d: non-finite fair share for %q", ErrSerialization, i, s.Name)
			}
		}
	}
	return nil
}
