package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmynk/dangidongi/internal/ledger"
	"github.com/mmynk/dangidongi/internal/metrics"
	"github.com/mmynk/dangidongi/internal/models"
	"github.com/mmynk/dangidongi/internal/storage"
)

// Operation names used for metrics.
const (
	OpAddParticipant        = "add_participant"
	OpRemoveParticipant     = "remove_participant"
	OpRecordEqualPayment    = "record_equal_payment"
	OpRecordWeightedPayment = "record_weighted_payment"
	OpReversePayment        = "reverse_payment"
	OpRemoveTransaction     = "remove_transaction"
	OpSettleUp              = "settle_up"
	OpComputeSettlement     = "compute_settlement"
	OpRestore               = "restore"
)

// LedgerService is the entry point for front ends: it owns the ledger, loads
// and saves it through a storage.Store, and logs and counts every operation.
type LedgerService struct {
	ledger  *ledger.Ledger
	store   storage.Store
	metrics *metrics.Metrics
	dirty   bool
}

// NewLedgerService creates a LedgerService with an empty ledger.
// Call Load to populate it from the store.
func NewLedgerService(store storage.Store, m *metrics.Metrics, opts ...ledger.Option) *LedgerService {
	if m == nil {
		m = metrics.New()
	}
	return &LedgerService{
		ledger:  ledger.New(opts...),
		store:   store,
		metrics: m,
	}
}

// Metrics returns the collectors the service reports to.
func (s *LedgerService) Metrics() *metrics.Metrics {
	return s.metrics
}

// Dirty reports whether the ledger changed since the last Load or Save.
func (s *LedgerService) Dirty() bool {
	return s.dirty
}

func (s *LedgerService) observe(op string, err error) {
	s.metrics.ObserveOperation(op, err)
	s.metrics.SetLedgerSize(len(s.ledger.ListParticipants()), len(s.ledger.Transactions()))
	if err == nil && op != OpComputeSettlement {
		s.dirty = true
	}
}

// Load replaces the in-memory ledger with the stored one. A store with
// nothing saved yet leaves the ledger empty.
func (s *LedgerService) Load(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("No saved ledger, starting empty")
		s.dirty = false
		return nil
	}
	if err != nil {
		slog.Error("Load failed", "error", err)
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	if err := s.ledger.Replace(doc); err != nil {
		slog.Error("Load failed", "error", err)
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	s.metrics.SetLedgerSize(len(doc.Users), len(doc.Transactions))
	s.dirty = false
	slog.Debug("Ledger loaded", "participants", len(doc.Users), "transactions", len(doc.Transactions))
	return nil
}

// Save writes the ledger to the store.
func (s *LedgerService) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		slog.Error("Save failed", "error", err)
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	s.dirty = false
	slog.Debug("Ledger saved")
	return nil
}

// AddParticipant registers a new participant.
func (s *LedgerService) AddParticipant(name string) error {
	err := s.ledger.AddParticipant(name)
	s.observe(OpAddParticipant, err)
	if err != nil {
		slog.Warn("AddParticipant rejected", "name", name, "error", err)
		return err
	}
	slog.Info("Participant added", "name", name)
	return nil
}

// RemoveParticipant deletes a participant, keeping its transaction history.
func (s *LedgerService) RemoveParticipant(name string) error {
	err := s.ledger.RemoveParticipant(name)
	s.observe(OpRemoveParticipant, err)
	if err != nil {
		slog.Warn("RemoveParticipant rejected", "name", name, "error", err)
		return err
	}
	slog.Info("Participant removed", "name", name)
	return nil
}

// ListParticipants returns participant names in display order.
func (s *LedgerService) ListParticipants() []string {
	return s.ledger.ListParticipants()
}

// Participants returns participant records in display order.
func (s *LedgerService) Participants() []models.User {
	return s.ledger.Users()
}

// Transactions returns the transaction history in recording order.
func (s *LedgerService) Transactions() []models.Transaction {
	return s.ledger.Transactions()
}

// Epsilon returns the balance tolerance of the ledger.
func (s *LedgerService) Epsilon() float64 {
	return s.ledger.Epsilon()
}

// RecordEqualPayment records a payment split equally across everyone.
func (s *LedgerService) RecordEqualPayment(payer string, amount float64) (models.Transaction, error) {
	tx, err := s.ledger.RecordEqualPayment(payer, amount)
	s.observe(OpRecordEqualPayment, err)
	if err != nil {
		slog.Warn("RecordEqualPayment rejected", "payer", payer, "amount", amount, "error", err)
		return tx, err
	}
	slog.Info("Payment recorded", "payer", payer, "amount", amount, "participants", len(tx.Shares))
	return tx, nil
}

// RecordWeightedPayment records a payment split by explicit weights.
func (s *LedgerService) RecordWeightedPayment(payer string, d ledger.Draft) (models.Transaction, error) {
	tx, err := s.ledger.RecordWeightedPayment(payer, d)
	s.observe(OpRecordWeightedPayment, err)
	if err != nil {
		slog.Warn("RecordWeightedPayment rejected", "payer", payer, "amount", d.Amount, "error", err)
		return tx, err
	}
	slog.Info("Weighted payment recorded", "payer", payer, "amount", d.Amount, "participants", len(tx.Shares))
	return tx, nil
}

// ReversePayment takes back part of what payer has paid. clamped reports that
// the amount paid would have gone negative and was set to zero instead.
func (s *LedgerService) ReversePayment(payer string, amount float64) (clamped bool, err error) {
	clamped, err = s.ledger.ReversePayment(payer, amount)
	s.observe(OpReversePayment, err)
	if err != nil {
		slog.Warn("ReversePayment rejected", "payer", payer, "amount", amount, "error", err)
		return false, err
	}
	if clamped {
		slog.Warn("Amount paid would be negative, set to 0", "payer", payer, "amount", amount)
	}
	slog.Info("Payment reversed", "payer", payer, "amount", amount)
	return clamped, nil
}

// RemoveTransaction deletes the transaction at index.
func (s *LedgerService) RemoveTransaction(index int) (models.Transaction, error) {
	tx, err := s.ledger.RemoveTransaction(index)
	s.observe(OpRemoveTransaction, err)
	if err != nil {
		slog.Warn("RemoveTransaction rejected", "index", index, "error", err)
		return tx, err
	}
	slog.Info("Transaction removed", "index", index, "id", tx.ID, "amount", tx.Amount)
	return tx, nil
}

// SettleUp clears all balances and the transaction history.
func (s *LedgerService) SettleUp() {
	s.ledger.SettleUp()
	s.observe(OpSettleUp, nil)
	slog.Info("All participants settled up")
}

// ComputeSettlement returns the transfers that square everyone up.
// Fewer than two participants yields ledger.ErrInsufficientParticipants,
// which is an expected state for a new ledger.
func (s *LedgerService) ComputeSettlement() ([]models.Transfer, error) {
	plan, err := s.ledger.ComputeSettlement()
	s.observe(OpComputeSettlement, err)
	if err != nil {
		slog.Info("Settlement not available", "error", err)
		return nil, err
	}
	// Refreshed net balances are worth persisting.
	s.dirty = true
	s.metrics.ObservePlan(len(plan))
	slog.Debug("Settlement computed", "transfers", len(plan))
	return plan, nil
}

// Export writes the ledger as a JSON document.
func (s *LedgerService) Export(w io.Writer) error {
	return s.ledger.Persist(w)
}

// Import replaces the ledger with the JSON document read from r. On error the
// current ledger is kept.
func (s *LedgerService) Import(r io.Reader) error {
	err := s.ledger.Restore(r)
	s.observe(OpRestore, err)
	if err != nil {
		slog.Warn("Import rejected", "error", err)
		return err
	}
	slog.Info("Ledger imported", "participants", len(s.ledger.ListParticipants()), "transactions", len(s.ledger.Transactions()))
	return nil
}
