package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, id string) (bool, error)

func (f verifierFunc) Verify(ctx context.Context, id string) (bool, error) { return f(ctx, id) }

func starter(t *testing.T) catalog.Plan {
	t.Helper()
	p, err := catalog.Default().Plan(catalog.TierStarter)
	require.NoError(t, err)
	return p
}

func TestMockVerifier(t *testing.T) {
	v := &MockVerifier{}
	tests := []struct {
		id   string
		want bool
	}{
		{"QWE123TYU", true},
		{"ABCDE", true},
		{"ABCD", false},
		{"", false},
		{"  AB  ", true},
		{"ABCD ", true},
		{" AB ", false},
	}
	for _, tt := range tests {
		ok, err := v.Verify(context.Background(), tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, tt.id)
	}
}

func TestMockVerifier_DelayHonorsContext(t *testing.T) {
	v := &MockVerifier{Delay: time.Minute}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := v.Verify(ctx, "QWE123TYU")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFlow_HappyPath(t *testing.T) {
	f := NewFlow()
	assert.Equal(t, StepSelect, f.State().Step)

	require.NoError(t, f.Select(starter(t)))
	s := f.State()
	assert.Equal(t, StepPay, s.Step)
	require.NotNil(t, s.Plan)
	assert.Equal(t, "Starter Pack", s.Plan.Name)

	var seenStep Step
	plan, err := f.Verify(context.Background(), verifierFunc(func(ctx context.Context, id string) (bool, error) {
		seenStep = f.State().Step
		return true, nil
	}), "QWE123TYU")
	require.NoError(t, err)
	assert.Equal(t, catalog.TierStarter, plan.ID)
	assert.Equal(t, StepVerify, seenStep)

	assert.Equal(t, State{Step: StepSelect}, f.State())
}

func TestFlow_EmptyTransactionID(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Select(starter(t)))

	_, err := f.Verify(context.Background(), &MockVerifier{}, "   ")
	assert.ErrorIs(t, err, ErrEmptyTransactionID)

	s := f.State()
	assert.Equal(t, StepPay, s.Step)
	assert.Equal(t, MsgEmptyTransactionID, s.Error)
}

func TestFlow_Rejected(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Select(starter(t)))

	_, err := f.Verify(context.Background(), &MockVerifier{}, "ABC")
	assert.ErrorIs(t, err, ErrVerificationFailed)

	s := f.State()
	assert.Equal(t, StepPay, s.Step)
	assert.Equal(t, MsgVerificationFailed, s.Error)
	assert.Equal(t, "ABC", s.TransactionID)
	require.NotNil(t, s.Plan)

	// a retry with a good ID succeeds
	_, err = f.Verify(context.Background(), &MockVerifier{}, "ABCDEF")
	require.NoError(t, err)
}

func TestFlow_VerifierError(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Select(starter(t)))

	_, err := f.Verify(context.Background(), verifierFunc(func(ctx context.Context, id string) (bool, error) {
		return false, context.Canceled
	}), "QWE123TYU")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StepPay, f.State().Step)
}

func TestFlow_InvalidTransitions(t *testing.T) {
	f := NewFlow()
	_, err := f.Verify(context.Background(), &MockVerifier{}, "QWE123TYU")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, f.Select(starter(t)))
	// re-selecting while paying switches plans and clears the error
	business, _ := catalog.Default().Plan(catalog.TierBusiness)
	_, _ = f.Verify(context.Background(), &MockVerifier{}, "")
	require.NoError(t, f.Select(business))
	assert.Empty(t, f.State().Error)
	assert.Equal(t, catalog.TierBusiness, f.State().Plan.ID)
}

func TestFlow_Back(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Select(starter(t)))
	_, _ = f.Verify(context.Background(), &MockVerifier{}, "ABC")

	f.Back()
	assert.Equal(t, State{Step: StepSelect}, f.State())
}

func TestNewInstructions(t *testing.T) {
	in := NewInstructions(starter(t), catalog.DefaultCompany())
	assert.Equal(t, "$1.00", in.Amount)
	assert.Equal(t, 120, in.Credits)
	assert.Equal(t, "0113558668", in.MpesaTill)
	assert.Equal(t, "https://wa.me/254113558668", in.WhatsAppLink)
}
