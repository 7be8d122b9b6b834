// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/dangidongi/internal/models"
	"github.com/mmynk/dangidongi/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored ledger with doc inside a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, doc *models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM shares", "DELETE FROM transactions", "DELETE FROM users"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}
	}

	for i, u := range doc.Users {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (name, position, amount_paid, net_balance) VALUES (?, ?, ?, ?)",
			u.Name, i, u.AmountPaid, u.NetBalance,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
	}

	for i, t := range doc.Transactions {
		// Documents restored from older files carry no IDs; the row still needs a key.
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO transactions (id, position, payer, amount, created_at) VALUES (?, ?, ?, ?, ?)",
			id, i, t.Payer, t.Amount, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		for j, share := range t.Shares {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO shares (transaction_id, position, name, weight, fair_share) VALUES (?, ?, ?, ?, ?)",
				id, j, share.Name, share.Weight, share.FairShare,
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledger_meta (id, saved_at) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at",
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load retrieves the full ledger, including all transactions and their shares.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Document, error) {
	var savedAt int64
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM ledger_meta WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger metadata: %w", err)
	}

	doc := &models.Document{
		Users:        []models.User{},
		Transactions: []models.Transaction{},
	}

	// Get users
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, amount_paid, net_balance FROM users ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Name, &u.AmountPaid, &u.NetBalance); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		doc.Users = append(doc.Users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	// Get shares grouped by transaction
	shares, err := s.loadShares(ctx)
	if err != nil {
		return nil, err
	}

	// Get transactions
	txRows, err := s.db.QueryContext(ctx,
		"SELECT id, payer, amount, created_at FROM transactions ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var t models.Transaction
		if err := txRows.Scan(&t.ID, &t.Payer, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Shares = shares[t.ID]
		if t.Shares == nil {
			t.Shares = []models.Share{}
		}
		doc.Transactions = append(doc.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return doc, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context) (map[string][]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, name, weight, fair_share FROM shares ORDER BY transaction_id, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string][]models.Share)
	for rows.Next() {
		var (
			txID   string
			share  models.Share
			weight int64
		)
		if err := rows.Scan(&txID, &share.Name, &weight, &share.FairShare); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if weight < 1 || weight > 255 {
			return nil, fmt.Errorf("invalid weight %d for %s in transaction %s", weight, share.Name, txID)
		}
		share.Weight = uint8(weight)
		shares[txID] = append(shares[txID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return shares, nil
}
