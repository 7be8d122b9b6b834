package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/dangidongi/internal/models"
	"github.com/mmynk/dangidongi/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "dangidongi-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Load on fresh database reports not found", func(t *testing.T) {
		_, err := store.Load(ctx)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Save and Load complete ledger", func(t *testing.T) {
		original := &models.Document{
			Users: []models.User{
				{Name: "Charlie", AmountPaid: 55, NetBalance: 27.5},
				{Name: "Diana", AmountPaid: 0, NetBalance: -27.5},
			},
			Transactions: []models.Transaction{
				{
					ID:        "tx-b",
					Payer:     "Charlie",
					Amount:    55,
					CreatedAt: 1700000000,
					Shares: []models.Share{
						{Name: "Diana", Weight: 1, FairShare: 27.5},
						{Name: "Charlie", Weight: 1, FairShare: 27.5},
					},
				},
				{
					ID:        "tx-a",
					Payer:     "Diana",
					Amount:    9,
					CreatedAt: 1700000100,
					Shares: []models.Share{
						{Name: "Charlie", Weight: 2, FairShare: 6},
						{Name: "Diana", Weight: 1, FairShare: 3},
					},
				},
			},
		}

		if err := store.Save(ctx, original); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		retrieved, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if len(retrieved.Users) != 2 {
			t.Fatalf("Expected 2 users, got %d", len(retrieved.Users))
		}
		for i, u := range original.Users {
			if retrieved.Users[i] != u {
				t.Errorf("User %d = %+v, want %+v", i, retrieved.Users[i], u)
			}
		}

		if len(retrieved.Transactions) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(retrieved.Transactions))
		}
		// Recording order survives even though IDs sort the other way.
		if retrieved.Transactions[0].ID != "tx-b" || retrieved.Transactions[1].ID != "tx-a" {
			t.Errorf("Transaction order = %s, %s", retrieved.Transactions[0].ID, retrieved.Transactions[1].ID)
		}
		got := retrieved.Transactions[1]
		if got.Payer != "Diana" || got.Amount != 9 || got.CreatedAt != 1700000100 {
			t.Errorf("Transaction fields mismatch: %+v", got)
		}
		if len(got.Shares) != 2 || got.Shares[0].Name != "Charlie" || got.Shares[0].Weight != 2 || got.Shares[0].FairShare != 6 {
			t.Errorf("Shares mismatch: %+v", got.Shares)
		}
	})

	t.Run("Save replaces previous state", func(t *testing.T) {
		doc := &models.Document{
			Users: []models.User{{Name: "Eve"}},
			Transactions: []models.Transaction{{
				Payer:  "Eve",
				Amount: 5,
				Shares: []models.Share{{Name: "Eve", Weight: 1, FairShare: 5}},
			}},
		}
		if err := store.Save(ctx, doc); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		retrieved, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(retrieved.Users) != 1 || retrieved.Users[0].Name != "Eve" {
			t.Errorf("Expected only Eve, got %+v", retrieved.Users)
		}
		if len(retrieved.Transactions) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(retrieved.Transactions))
		}
		if retrieved.Transactions[0].ID == "" {
			t.Error("Expected an ID to be generated for the stored transaction")
		}
	})

	t.Run("Empty ledger is distinguishable from no ledger", func(t *testing.T) {
		if err := store.Save(ctx, &models.Document{}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		retrieved, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(retrieved.Users) != 0 || len(retrieved.Transactions) != 0 {
			t.Errorf("Expected empty ledger, got %+v", retrieved)
		}
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "ledger.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	doc := &models.Document{Users: []models.User{{Name: "Frank", AmountPaid: 12}}}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	retrieved, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(retrieved.Users) != 1 || retrieved.Users[0].AmountPaid != 12 {
		t.Errorf("Expected Frank with 12 paid, got %+v", retrieved.Users)
	}
}
