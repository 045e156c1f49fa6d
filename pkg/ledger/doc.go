// Package ledger keeps a session's credit balance and its transaction log.
//
// The in-memory Ledger is authoritative. Every successful mutation is also
// handed to a Journal, which may persist it for auditing:
//
//	db, _ := sql.Open("postgres", dsn)
//	journal, err := ledger.NewDBJournal(db, ledger.DialectPostgres)
//	l := ledger.New(ledger.Options{SessionID: id, Journal: journal, Logger: logger})
//	l.CreditWithID(ctx, "init", 6, "Welcome Bonus")
//	if _, err := l.Debit(ctx, 5, "Generated content with AI Logo Generator"); errors.Is(err, ledger.ErrInsufficientCredits) { ... }
//
// A journal failure is logged and counted but never rolls back the in-memory
// mutation.
package ledger
