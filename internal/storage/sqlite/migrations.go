package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// position columns keep display and recording order stable across saves.
const schema = `
CREATE TABLE IF NOT EXISTS ledger_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    saved_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    amount_paid REAL NOT NULL,
    net_balance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    payer TEXT NOT NULL,
    amount REAL NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS shares (
    transaction_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    weight INTEGER NOT NULL CHECK (weight BETWEEN 1 AND 255),
    fair_share REAL NOT NULL,
    PRIMARY KEY (transaction_id, name),
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_users_position ON users(position);
CREATE INDEX IF NOT EXISTS idx_transactions_position ON transactions(position);
CREATE INDEX IF NOT EXISTS idx_shares_transaction_id ON shares(transaction_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
