package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/generation"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/memory"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	generateFunc func(ctx context.Context, req generation.Request) (string, error)
	requests     []generation.Request
}

func (m *mockGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "## Your logo concept", nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestOrchestrator(gen generation.Generator, refund bool, metrics *observability.Metrics) *Orchestrator {
	return New(Options{
		Generator:       gen,
		RefundOnFailure: refund,
		Metrics:         metrics,
		Now:             func() time.Time { return fixedNow },
	})
}

func walletWith(t *testing.T, credits int) *ledger.Ledger {
	t.Helper()
	l := ledger.New(ledger.Options{})
	if credits > 0 {
		_, err := l.CreditWithID(context.Background(), "init", credits, "Welcome Bonus")
		require.NoError(t, err)
	}
	return l
}

func logoRequest(visual bool) Request {
	return Request{
		Tool: catalog.ToolLogoGenerator,
		Fields: map[string]string{
			"businessName": "Nairobi Coffees",
			"industry":     "Hospitality",
			"style":        "Bold & African",
		},
		Visual: visual,
	}
}

func TestSubmit_Success(t *testing.T) {
	gen := &mockGenerator{}
	metrics := observability.NewNopMetrics()
	o := newTestOrchestrator(gen, false, metrics)
	wallet := walletWith(t, 10)
	mem := memory.New()

	res, err := o.Submit(context.Background(), wallet, mem, logoRequest(false))
	require.NoError(t, err)

	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "## Your logo concept", res.Content)
	assert.Equal(t, "AI Logo Generator", res.ToolName)
	assert.Equal(t, 5, res.Cost)
	assert.Equal(t, 5, res.Charged)
	assert.Equal(t, fixedNow, res.CreatedAt)

	assert.Equal(t, 5, wallet.Balance())
	txs := wallet.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.KindUsage, txs[0].Kind)
	assert.Equal(t, -5, txs[0].Amount)
	assert.Equal(t, "Generated content with AI Logo Generator", txs[0].Description)

	name, ok := mem.Get(catalog.ConceptBusinessName)
	require.True(t, ok)
	assert.Equal(t, "Nairobi Coffees", name)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "AI Logo Generator", gen.requests[0].ToolName)
	assert.Equal(t, []generation.Input{
		{Key: "businessName", Value: "Nairobi Coffees"},
		{Key: "industry", Value: "Hospitality"},
		{Key: "style", Value: "Bold & African"},
	}, gen.requests[0].Inputs)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GenerationsTotal.WithLabelValues("LOGO_GENERATOR", "generated")))
}

func TestSubmit_VisualSurcharge(t *testing.T) {
	gen := &mockGenerator{}
	wallet := walletWith(t, 7)

	res, err := newTestOrchestrator(gen, false, nil).Submit(context.Background(), wallet, nil, logoRequest(true))
	require.NoError(t, err)
	assert.Equal(t, 7, res.Charged)
	assert.Equal(t, 0, wallet.Balance())
	assert.True(t, gen.requests[0].Visual)
}

func TestSubmit_InsufficientCredits(t *testing.T) {
	gen := &mockGenerator{}
	wallet := walletWith(t, 6)
	mem := memory.New()

	res, err := newTestOrchestrator(gen, false, nil).Submit(context.Background(), wallet, mem, logoRequest(true))
	require.Error(t, err)

	var insufficient *gate.InsufficientCreditsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 7, insufficient.Required)
	assert.Equal(t, 6, insufficient.Available)

	assert.Equal(t, OutcomePromptUpgrade, res.Outcome)
	assert.Equal(t, 0, res.Charged)
	assert.Empty(t, gen.requests)
	assert.Equal(t, 6, wallet.Balance())
	assert.Equal(t, 1, wallet.Len())
	assert.True(t, mem.Profile().Empty())
}

func TestSubmit_GeneratorFailure(t *testing.T) {
	failing := &mockGenerator{generateFunc: func(ctx context.Context, req generation.Request) (string, error) {
		return "", errors.New("upstream 503")
	}}

	t.Run("credits stay spent", func(t *testing.T) {
		wallet := walletWith(t, 6)
		mem := memory.New()
		res, err := newTestOrchestrator(failing, false, nil).Submit(context.Background(), wallet, mem, logoRequest(false))
		require.NoError(t, err)

		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.Equal(t, FailureText, res.Content)
		assert.False(t, res.Refunded)
		assert.Equal(t, 1, wallet.Balance())
		assert.True(t, mem.Profile().Empty())
	})

	t.Run("refund enabled", func(t *testing.T) {
		wallet := walletWith(t, 6)
		res, err := newTestOrchestrator(failing, true, nil).Submit(context.Background(), wallet, nil, logoRequest(false))
		require.NoError(t, err)

		assert.True(t, res.Refunded)
		assert.Equal(t, 6, wallet.Balance())
		txs := wallet.Transactions()
		require.Len(t, txs, 3)
		assert.Equal(t, "Refund: AI Logo Generator", txs[0].Description)
		assert.Equal(t, ledger.KindDeposit, txs[0].Kind)
		assert.NoError(t, wallet.Verify())
	})
}

func TestSubmit_CancelledAfterDebit(t *testing.T) {
	gen := &mockGenerator{generateFunc: func(ctx context.Context, req generation.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wallet := walletWith(t, 6)
	res, err := newTestOrchestrator(gen, true, nil).Submit(ctx, wallet, nil, logoRequest(false))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	// the refund is not lost to the cancelled request context
	assert.True(t, res.Refunded)
	assert.Equal(t, 6, wallet.Balance())
}

func TestSubmit_UnknownTool(t *testing.T) {
	wallet := walletWith(t, 6)
	_, err := newTestOrchestrator(&mockGenerator{}, false, nil).Submit(context.Background(), wallet, nil, Request{Tool: "TAROT"})
	assert.ErrorIs(t, err, catalog.ErrUnknownTool)
	assert.Equal(t, 6, wallet.Balance())
}

func TestInputs(t *testing.T) {
	tool, err := catalog.Default().Tool(catalog.ToolLogoGenerator)
	require.NoError(t, err)

	inputs := Inputs(tool, map[string]string{
		"description":    "Fresh roasts",
		"businessName":   "Nairobi Coffees",
		"industry":       "  ",
		"generateVisual": "true",
		"existingLogo":   "data:image/png;base64,AAAA",
		"zeta":           "z",
		"alpha":          "a",
	})
	assert.Equal(t, []generation.Input{
		{Key: "businessName", Value: "Nairobi Coffees"},
		{Key: "description", Value: "Fresh roasts"},
		{Key: "alpha", Value: "a"},
		{Key: "zeta", Value: "z"},
	}, inputs)
}
