package payment

import (
	"context"
	"time"

	"github.com/platinummonkey/samonya/pkg/observability"
)

// MinTransactionIDLength is the shortest ID the mock verifier accepts
const MinTransactionIDLength = 5

// Verifier confirms that a payment transaction happened
type Verifier interface {
	Verify(ctx context.Context, transactionID string) (bool, error)
}

// MockVerifier accepts any ID of at least MinTransactionIDLength characters,
// surrounding whitespace included, after an optional delay that imitates a payment provider round trip.
type MockVerifier struct {
	Delay  time.Duration
	Logger *observability.Logger
}

// Verify implements Verifier
func (v *MockVerifier) Verify(ctx context.Context, transactionID string) (bool, error) {
	if v.Delay > 0 {
		timer := time.NewTimer(v.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	valid := len(transactionID) >= MinTransactionIDLength
	if v.Logger != nil {
		v.Logger.WithField("transaction_id", transactionID).
			WithField("valid", valid).
			Info("Verified transaction ID")
	}
	return valid, nil
}
