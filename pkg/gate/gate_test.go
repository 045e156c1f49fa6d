package gate

import (
	"fmt"
	"testing"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAfford(t *testing.T) {
	assert.True(t, CanAfford(5, 5))
	assert.True(t, CanAfford(6, 5))
	assert.False(t, CanAfford(4, 5))
	assert.True(t, CanAfford(0, 0))
}

func TestGate_Decide(t *testing.T) {
	metrics := observability.NewNopMetrics()
	g := New(metrics)

	assert.Equal(t, Allow, g.Decide("LOGO_GENERATOR", 6, 5))
	assert.Equal(t, PromptUpgrade, g.Decide("LOGO_GENERATOR", 4, 5))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GateDecisionsTotal.WithLabelValues("LOGO_GENERATOR", "allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GateDecisionsTotal.WithLabelValues("LOGO_GENERATOR", "prompt_upgrade")))
}

func TestGate_Check(t *testing.T) {
	g := New(nil)
	require.NoError(t, g.Check("chat", 1, 1))

	err := g.Check("BRAND_KIT", 6, 10)
	require.Error(t, err)
	assert.True(t, IsInsufficientCredits(err))
	assert.False(t, IsUpgradeRequired(err))

	var ice *InsufficientCreditsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 10, ice.Required)
	assert.Equal(t, 6, ice.Available)

	// still detected when wrapped
	assert.True(t, IsInsufficientCredits(fmt.Errorf("submit: %w", err)))
}

func TestGate_Download(t *testing.T) {
	g := New(nil)

	tests := []struct {
		tier catalog.Tier
		want Decision
	}{
		{catalog.TierFree, PromptUpgrade},
		{catalog.TierStarter, Allow},
		{catalog.TierCreator, Allow},
		{catalog.TierBusiness, Allow},
		{"", Deny},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, g.DecideDownload(tt.tier))
			assert.Equal(t, tt.want == Allow, CanDownload(tt.tier))
		})
	}

	err := g.CheckDownload(catalog.TierFree)
	assert.True(t, IsUpgradeRequired(err))
	assert.Contains(t, err.Error(), "download requires a paid plan")
	assert.NoError(t, g.CheckDownload(catalog.TierStarter))
}
