// Package ledger holds the shared-expense ledger: the participant registry,
// the ordered transaction history, and the settlement computed from them.
//
// A Ledger is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/dangidongi/internal/calculator"
	"github.com/mmynk/dangidongi/internal/models"
)

// Ledger is the aggregate of participants and transactions.
type Ledger struct {
	users        map[string]*models.User
	order        []string
	transactions []models.Transaction

	eps float64
	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEpsilon overrides the tolerance below which balances count as zero.
// Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(l *Ledger) {
		if eps > 0 {
			l.eps = eps
		}
	}
}

// WithClock sets the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		users: make(map[string]*models.User),
		eps:   calculator.DefaultEpsilon,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Epsilon returns the balance tolerance in use.
func (l *Ledger) Epsilon() float64 {
	return l.eps
}

// Weight is one entry of a Draft.
type Weight struct {
	Name   string
	Weight uint8
}

// Draft describes a weighted payment before it is recorded.
type Draft struct {
	Amount  float64
	Weights []Weight
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

// AddParticipant registers a new participant with zero balances.
// Leading and trailing whitespace is not part of the name.
func (l *Ledger) AddParticipant(name string) error {
	name = normalizeName(name)
	if name == "" {
		return ErrInvalidName
	}
	if _, exists := l.users[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateParticipant, name)
	}
	l.users[name] = &models.User{Name: name}
	l.order = append(l.order, name)
	return nil
}

// RemoveParticipant deletes a participant. Transactions that reference the
// name are kept as they are.
func (l *Ledger) RemoveParticipant(name string) error {
	name = normalizeName(name)
	if _, exists := l.users[name]; !exists {
		return fmt.Errorf("%w: %q", ErrParticipantNotFound, name)
	}
	delete(l.users, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListParticipants returns the participant names in the order they were added.
func (l *Ledger) ListParticipants() []string {
	return append([]string(nil), l.order...)
}

// Participant returns a copy of the named participant.
func (l *Ledger) Participant(name string) (models.User, bool) {
	u, ok := l.users[normalizeName(name)]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// Users returns copies of all participants in display order.
func (l *Ledger) Users() []models.User {
	out := make([]models.User, len(l.order))
	for i, name := range l.order {
		out[i] = *l.users[name]
	}
	return out
}

// Transactions returns copies of all transactions in recording order.
func (l *Ledger) Transactions() []models.Transaction {
	out := make([]models.Transaction, len(l.transactions))
	for i, tx := range l.transactions {
		out[i] = tx.Clone()
	}
	return out
}

// RecordEqualPayment records that payer fronted amount for everyone, split
// equally across all current participants.
func (l *Ledger) RecordEqualPayment(payer string, amount float64) (models.Transaction, error) {
	payer = normalizeName(payer)
	if err := validAmount(amount); err != nil {
		return models.Transaction{}, err
	}
	u, ok := l.users[payer]
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrParticipantNotFound, payer)
	}

	fair, err := calculator.EqualShares(amount, len(l.order))
	if err != nil {
		return models.Transaction{}, err
	}
	shares := make([]models.Share, len(l.order))
	for i, name := range l.order {
		shares[i] = models.Share{Name: name, Weight: 1, FairShare: fair[i]}
	}

	u.AmountPaid += amount
	return l.append(payer, amount, shares), nil
}

// RecordWeightedPayment records that payer fronted d.Amount, split by the
// draft's weights. The draft must name every current participant exactly once.
func (l *Ledger) RecordWeightedPayment(payer string, d Draft) (models.Transaction, error) {
	payer = normalizeName(payer)
	if err := validAmount(d.Amount); err != nil {
		return models.Transaction{}, err
	}
	if err := l.checkParticipantSet(d.Weights); err != nil {
		return models.Transaction{}, err
	}
	u, ok := l.users[payer]
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrParticipantNotFound, payer)
	}

	weights := make([]uint8, len(d.Weights))
	for i, w := range d.Weights {
		weights[i] = w.Weight
	}
	fair, err := calculator.FairShares(d.Amount, weights)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidWeight, err)
	}
	shares := make([]models.Share, len(d.Weights))
	for i, w := range d.Weights {
		shares[i] = models.Share{Name: normalizeName(w.Name), Weight: w.Weight, FairShare: fair[i]}
	}

	u.AmountPaid += d.Amount
	return l.append(payer, d.Amount, shares), nil
}

// checkParticipantSet verifies that weights name exactly the current
// participants, each once, with a positive weight.
func (l *Ledger) checkParticipantSet(weights []Weight) error {
	if len(weights) != len(l.users) {
		return fmt.Errorf("%w: got %d participants, ledger has %d", ErrInvalidParticipantSet, len(weights), len(l.users))
	}
	seen := make(map[string]bool, len(weights))
	for _, w := range weights {
		name := normalizeName(w.Name)
		if _, ok := l.users[name]; !ok {
			return fmt.Errorf("%w: unknown participant %q", ErrInvalidParticipantSet, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidParticipantSet, name)
		}
		seen[name] = true
	}
	for _, w := range weights {
		if w.Weight == 0 {
			return fmt.Errorf("%w: %q", ErrInvalidWeight, normalizeName(w.Name))
		}
	}
	return nil
}

func (l *Ledger) append(payer string, amount float64, shares []models.Share) models.Transaction {
	tx := models.Transaction{
		ID:        uuid.NewString(),
		Payer:     payer,
		Amount:    amount,
		Shares:    shares,
		CreatedAt: l.now().Unix(),
	}
	l.transactions = append(l.transactions, tx)
	return tx.Clone()
}

// ReversePayment subtracts amount from what payer has paid. The result is
// floored at zero; clamped reports whether the floor was applied.
func (l *Ledger) ReversePayment(payer string, amount float64) (clamped bool, err error) {
	payer = normalizeName(payer)
	if err := validAmount(amount); err != nil {
		return false, err
	}
	u, ok := l.users[payer]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrParticipantNotFound, payer)
	}
	u.AmountPaid -= amount
	if u.AmountPaid < 0 {
		u.AmountPaid = 0
		return true, nil
	}
	return false, nil
}

// RemoveTransaction deletes the transaction at index i. Amounts paid are not
// adjusted.
func (l *Ledger) RemoveTransaction(i int) (models.Transaction, error) {
	if i < 0 || i >= len(l.transactions) {
		return models.Transaction{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(l.transactions))
	}
	removed := l.transactions[i]
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	return removed, nil
}

// SettleUp zeroes every participant's balances and clears the history.
// Participants themselves are kept.
func (l *Ledger) SettleUp() {
	for _, u := range l.users {
		u.AmountPaid = 0
		u.NetBalance = 0
	}
	l.transactions = nil
}
