package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mmynk/dangidongi/internal/models"
)

// The on-disk JSON layout. Pointer fields distinguish a missing key from a
// zero value so incomplete documents are rejected.
type wireDocument struct {
	Users        map[string]*wireUser `json:"users"`
	Transactions []*wireTransaction   `json:"transactions"`
}

type wireUser struct {
	AmountPaid *float64 `json:"amount_paid"`
	NetBalance *float64 `json:"net_balance"`
}

type wireTransaction struct {
	ID           string      `json:"id,omitempty"`
	Payer        string      `json:"payer,omitempty"`
	CreatedAt    int64       `json:"created_at,omitempty"`
	Amount       *float64    `json:"amount"`
	Participants []wireShare `json:"participants"`
}

type wireShare struct {
	Name      *string  `json:"name"`
	Weight    *uint8   `json:"weight"`
	FairShare *float64 `json:"fair_share"`
}

// EncodeDocument writes doc as indented JSON.
func EncodeDocument(w io.Writer, doc *models.Document) error {
	wire := wireDocument{
		Users:        make(map[string]*wireUser, len(doc.Users)),
		Transactions: make([]*wireTransaction, len(doc.Transactions)),
	}
	for _, u := range doc.Users {
		paid, net := u.AmountPaid, u.NetBalance
		wire.Users[u.Name] = &wireUser{AmountPaid: &paid, NetBalance: &net}
	}
	for i, tx := range doc.Transactions {
		amount := tx.Amount
		wt := &wireTransaction{
			ID:           tx.ID,
			Payer:        tx.Payer,
			CreatedAt:    tx.CreatedAt,
			Amount:       &amount,
			Participants: make([]wireShare, len(tx.Shares)),
		}
		for j, s := range tx.Shares {
			name, weight, fair := s.Name, s.Weight, s.FairShare
			wt.Participants[j] = wireShare{Name: &name, Weight: &weight, FairShare: &fair}
		}
		wire.Transactions[i] = wt
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	return nil
}

// DecodeDocument parses a JSON ledger document. Every schema violation is
// reported as ErrSerialization. Participants come back ordered by name.
func DecodeDocument(r io.Reader) (*models.Document, error) {
	dec := json.NewDecoder(r)
	var wire wireDocument
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after document", ErrSerialization)
	}

	if wire.Users == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrSerialization, "users")
	}
	if wire.Transactions == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrSerialization, "transactions")
	}

	doc := &models.Document{
		Users:        make([]models.User, 0, len(wire.Users)),
		Transactions: make([]models.Transaction, 0, len(wire.Transactions)),
	}

	names := make([]string, 0, len(wire.Users))
	for name := range wire.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wu := wire.Users[name]
		if wu == nil || wu.AmountPaid == nil || wu.NetBalance == nil {
			return nil, fmt.Errorf("%w: user %q: missing amount_paid or net_balance", ErrSerialization, name)
		}
		doc.Users = append(doc.Users, models.User{
			Name:       name,
			AmountPaid: *wu.AmountPaid,
			NetBalance: *wu.NetBalance,
		})
	}

	for i, wt := range wire.Transactions {
		if wt == nil || wt.Amount == nil || wt.Participants == nil {
			return nil, fmt.Errorf("%w: transaction %d: missing amount or participants", ErrSerialization, i)
		}
		tx := models.Transaction{
			ID:        wt.ID,
			Payer:     wt.Payer,
			CreatedAt: wt.CreatedAt,
			Amount:    *wt.Amount,
			Shares:    make([]models.Share, len(wt.Participants)),
		}
		for j, ws := range wt.Participants {
			if ws.Name == nil || ws.Weight == nil {
				return nil, fmt.Errorf("%w: transaction %d: participant %d: missing name or weight", ErrSerialization, i, j)
			}
			s := models.Share{Name: *ws.Name, Weight: *ws.Weight}
			if ws.FairShare != nil {
				s.FairShare = *ws.FairShare
			}
			tx.Shares[j] = s
		}
		doc.Transactions = append(doc.Transactions, tx)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Persist writes the full ledger as a JSON document.
func (l *Ledger) Persist(w io.Writer) error {
	return EncodeDocument(w, l.Snapshot())
}

// Restore replaces the ledger with the document read from r. On any error the
// existing state is preserved.
func (l *Ledger) Restore(r io.Reader) error {
	doc, err := DecodeDocument(r)
	if err != nil {
		return err
	}
	return l.Replace(doc)
}
