//go:build integration

package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresJournal(t *testing.T) (*DBJournal, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("ledger_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	journal, err := NewDBJournal(db, DialectPostgres)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}

	return journal, cleanup
}

func TestDBJournal_PostgresIntegration(t *testing.T) {
	journal, cleanup := setupPostgresJournal(t)
	defer cleanup()

	ctx := context.Background()
	l := New(Options{SessionID: "integration", Journal: journal})

	_, err := l.CreditWithID(ctx, "init", 6, "Welcome Bonus")
	require.NoError(t, err)
	_, err = l.Debit(ctx, 3, "Generated content with Social Media Factory")
	require.NoError(t, err)

	// table creation is idempotent
	_, err = NewDBJournal(journal.db, DialectPostgres)
	require.NoError(t, err)

	txs, err := journal.List(ctx, "integration")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, l.Balance(), Replay(txs))

	usage, err := journal.List(ctx, "integration", KindUsage)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "Generated content with Social Media Factory", usage[0].Description)
}
