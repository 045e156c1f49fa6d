package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/platinummonkey/samonya/pkg/catalog"
)

// Step is a purchase flow state
type Step string

const (
	StepSelect Step = "SELECT"
	StepPay    Step = "PAY"
	StepVerify Step = "VERIFY"
)

// User-facing flow messages
const (
	MsgEmptyTransactionID = "Please enter the Transaction ID."
	MsgVerificationFailed = "Transaction Verification Failed. Invalid ID (Use >5 chars for test)."
)

var (
	// ErrEmptyTransactionID is returned when Verify gets a blank ID
	ErrEmptyTransactionID = errors.New("transaction ID is required")

	// ErrVerificationFailed is returned when the verifier rejects an ID
	ErrVerificationFailed = errors.New("transaction verification failed")

	// ErrInvalidTransition is returned for an action the current step does not allow
	ErrInvalidTransition = errors.New("invalid purchase flow transition")
)

// Instructions tells the user how to pay for the selected plan
type Instructions struct {
	Amount       string `json:"amount"`
	Credits      int    `json:"credits"`
	MpesaTill    string `json:"mpesa_till"`
	WhatsAppLink string `json:"whatsapp_link"`
	Email        string `json:"email"`
}

// NewInstructions renders payment details for plan
func NewInstructions(plan catalog.Plan, company catalog.CompanyInfo) Instructions {
	return Instructions{
		Amount:       plan.PriceUSD,
		Credits:      plan.Credits,
		MpesaTill:    company.MpesaTill,
		WhatsAppLink: company.WhatsAppLink,
		Email:        company.Email,
	}
}

// State is a snapshot of the flow
type State struct {
	Step          Step          `json:"step"`
	Plan          *catalog.Plan `json:"plan,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Flow is one session's purchase state machine
type Flow struct {
	mu    sync.Mutex
	step  Step
	plan  *catalog.Plan
	txID  string
	error string
}

// NewFlow starts at SELECT
func NewFlow() *Flow {
	return &Flow{step: StepSelect}
}

// State returns the current snapshot
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := State{Step: f.step, TransactionID: f.txID, Error: f.error}
	if f.plan != nil {
		p := *f.plan
		s.Plan = &p
	}
	return s
}

// Select chooses a plan and moves to PAY. A plan may be re-selected while
// paying, but not while a verification is running.
func (f *Flow) Select(plan catalog.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepVerify {
		return fmt.Errorf("%w: select during %s", ErrInvalidTransition, f.step)
	}
	f.plan = &plan
	f.step = StepPay
	f.error = ""
	return nil
}

// Verify checks transactionID with verifier. On success the flow resets to
// SELECT and the purchased plan is returned. On rejection the flow returns
// to PAY with an error message and ErrVerificationFailed.
func (f *Flow) Verify(ctx context.Context, verifier Verifier, transactionID string) (catalog.Plan, error) {
	f.mu.Lock()
	if f.step != StepPay || f.plan == nil {
		step := f.step
		f.mu.Unlock()
		return catalog.Plan{}, fmt.Errorf("%w: verify during %s", ErrInvalidTransition, step)
	}
	f.txID = transactionID
	if strings.TrimSpace(transactionID) == "" {
		f.error = MsgEmptyTransactionID
		f.mu.Unlock()
		return catalog.Plan{}, ErrEmptyTransactionID
	}
	f.step = StepVerify
	f.error = ""
	plan := *f.plan
	f.mu.Unlock()

	ok, err := verifier.Verify(ctx, transactionID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil || !ok {
		// Back may have run while verifying
		if f.step == StepVerify {
			f.step = StepPay
			f.error = MsgVerificationFailed
		}
		if err != nil {
			return catalog.Plan{}, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		return catalog.Plan{}, ErrVerificationFailed
	}

	f.reset()
	return plan, nil
}

// Back abandons the purchase and returns to SELECT
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Flow) reset() {
	f.step = StepSelect
	f.plan = nil
	f.txID = ""
	f.error = ""
}
