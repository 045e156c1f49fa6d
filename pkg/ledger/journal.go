package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Journal receives every committed transaction
type Journal interface {
	Record(ctx context.Context, sessionID string, tx Transaction) error
}

// JournalReader is a Journal whose history can be read back
type JournalReader interface {
	Journal
	List(ctx context.Context, sessionID string, kinds ...Kind) ([]Transaction, error)
}

// NoopJournal discards transactions
type NoopJournal struct{}

// Record implements Journal
func (NoopJournal) Record(context.Context, string, Transaction) error { return nil }

// Dialect selects the SQL flavour of a DBJournal
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DBJournal appends transactions to the ledger_transactions table
type DBJournal struct {
	db      *sql.DB
	dialect Dialect
}

// NewDBJournal creates a journal over db and makes sure its table exists
func NewDBJournal(db *sql.DB, dialect Dialect) (*DBJournal, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported journal dialect %q", dialect)
	}

	j := &DBJournal{db: db, dialect: dialect}
	if err := j.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger_transactions table: %w", err)
	}
	return j, nil
}

func (j *DBJournal) ensureTable() error {
	id := "id BIGSERIAL PRIMARY KEY"
	ts := "TIMESTAMP WITH TIME ZONE"
	if j.dialect == DialectSQLite {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		ts = "TIMESTAMP"
	}

	query := `
	CREATE TABLE IF NOT EXISTS ledger_transactions (
		` + id + `,
		session_id VARCHAR(64) NOT NULL,
		tx_id VARCHAR(64) NOT NULL,
		kind VARCHAR(16) NOT NULL,
		description TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at ` + ts + ` NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_transactions_session ON ledger_transactions(session_id, created_at);
	`

	_, err := j.db.Exec(query)
	return err
}

// Record implements Journal
func (j *DBJournal) Record(ctx context.Context, sessionID string, tx Transaction) error {
	query := `
		INSERT INTO ledger_transactions (session_id, tx_id, kind, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := j.db.ExecContext(ctx, j.rebind(query),
		sessionID, tx.ID, string(tx.Kind), tx.Description, tx.Amount, tx.Date.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger transaction: %w", err)
	}
	return nil
}

// List returns a session's journaled transactions, newest first, optionally
// restricted to the given kinds.
func (j *DBJournal) List(ctx context.Context, sessionID string, kinds ...Kind) ([]Transaction, error) {
	query := `
		SELECT tx_id, kind, description, amount, created_at
		FROM ledger_transactions
		WHERE session_id = $1`
	args := []interface{}{sessionID}

	if len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		if j.dialect == DialectPostgres {
			query += ` AND kind = ANY($2)`
			args = append(args, pq.Array(names))
		} else {
			marks := make([]string, len(names))
			for i, n := range names {
				marks[i] = "?"
				args = append(args, n)
			}
			query += ` AND kind IN (` + strings.Join(marks, ", ") + `)`
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := j.db.QueryContext(ctx, j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var kind string
		if err := rows.Scan(&tx.ID, &kind, &tx.Description, &tx.Amount, &tx.Date); err != nil {
			return nil, fmt.Errorf("failed to scan ledger transaction: %w", err)
		}
		tx.Kind = Kind(kind)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// rebind rewrites $N placeholders to ? for SQLite
func (j *DBJournal) rebind(query string) string {
	if j.dialect != DialectSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
