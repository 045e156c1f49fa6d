package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/platinummonkey/samonya/pkg/observability"
)

// Kind classifies a transaction
type Kind string

const (
	KindDeposit Kind = "DEPOSIT"
	KindUsage   Kind = "USAGE"
)

// ParseKind accepts a kind name in any case
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindDeposit, KindUsage:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Filter keeps the transactions of the given kinds, preserving order. No
// kinds keeps everything.
func Filter(txs []Transaction, kinds ...Kind) []Transaction {
	if len(kinds) == 0 {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		for _, k := range kinds {
			if tx.Kind == k {
				out = append(out, tx)
				break
			}
		}
	}
	return out
}

// Transaction is one immutable ledger entry. Amount is signed: deposits are
// positive, usage negative.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Kind        Kind      `json:"type"`
	Description string    `json:"description"`
	Amount      int       `json:"amount"`
}

// Options configures a Ledger. The zero value is a standalone ledger with no
// journal.
type Options struct {
	SessionID string
	Journal   Journal
	Logger    *observability.Logger
	Metrics   *observability.Metrics
	Now       func() time.Time
}

// Ledger holds a non-negative credit balance and the log that produced it
type Ledger struct {
	mu      sync.Mutex
	balance int
	txs     []Transaction // oldest first

	sessionID string
	journal   Journal
	logger    *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// New creates an empty ledger
func New(opts Options) *Ledger {
	if opts.Journal == nil {
		opts.Journal = NoopJournal{}
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		sessionID: opts.SessionID,
		journal:   opts.Journal,
		logger:    opts.Logger.WithField("component", "ledger"),
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
}

// Credit adds amount to the balance and records a DEPOSIT
func (l *Ledger) Credit(ctx context.Context, amount int, description string) (Transaction, error) {
	return l.CreditWithID(ctx, uuid.NewString(), amount, description)
}

// CreditWithID is Credit with a caller-chosen transaction ID
func (l *Ledger) CreditWithID(ctx context.Context, id string, amount int, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	tx := Transaction{
		ID:          id,
		Date:        l.now(),
		Kind:        KindDeposit,
		Description: description,
		Amount:      amount,
	}
	l.balance += amount
	l.txs = append(l.txs, tx)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.CreditsCreditedTotal.WithLabelValues(description).Add(float64(amount))
	}
	l.record(ctx, tx)
	return tx, nil
}

// Debit subtracts amount and records a USAGE entry. An amount larger than
// the balance fails with ErrInsufficientCredits and changes nothing.
func (l *Ledger) Debit(ctx context.Context, amount int, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	if amount > l.balance {
		balance := l.balance
		l.mu.Unlock()
		return Transaction{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCredits, amount, balance)
	}
	tx := Transaction{
		ID:          uuid.NewString(),
		Date:        l.now(),
		Kind:        KindUsage,
		Description: description,
		Amount:      -amount,
	}
	l.balance -= amount
	l.txs = append(l.txs, tx)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.CreditsDebitedTotal.WithLabelValues(description).Add(float64(amount))
	}
	l.record(ctx, tx)
	return tx, nil
}

// TryDebit is Debit reporting only whether it succeeded
func (l *Ledger) TryDebit(ctx context.Context, amount int, description string) bool {
	_, err := l.Debit(ctx, amount, description)
	return err == nil
}

// Balance returns the current balance
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Transactions returns a copy of the log, newest first
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.txs))
	for i, tx := range l.txs {
		out[len(l.txs)-1-i] = tx
	}
	return out
}

// Len returns the number of transactions
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}

// Reset drops the balance and the log. The journal keeps its history.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = 0
	l.txs = nil
}

// Verify checks that the log sums to the balance and the balance is not
// negative.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum := Replay(l.txs)
	if sum != l.balance {
		return fmt.Errorf("%w: log sums to %d, balance is %d", ErrInconsistent, sum, l.balance)
	}
	if l.balance < 0 {
		return fmt.Errorf("%w: negative balance %d", ErrInconsistent, l.balance)
	}
	return nil
}

// Replay recomputes a balance from a log in any order
func Replay(txs []Transaction) int {
	sum := 0
	for _, tx := range txs {
		sum += tx.Amount
	}
	return sum
}

func (l *Ledger) record(ctx context.Context, tx Transaction) {
	if err := l.journal.Record(ctx, l.sessionID, tx); err != nil {
		if l.metrics != nil {
			l.metrics.JournalErrorsTotal.Inc()
		}
		l.logger.WithError(err).
			WithField("tx_id", tx.ID).
			WithField("session_id", l.sessionID).
			Warn("Failed to journal ledger transaction")
	}
}
