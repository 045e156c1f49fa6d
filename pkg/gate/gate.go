package gate

import (
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/observability"
)

// Decision is the outcome of an access check
type Decision string

const (
	Allow         Decision = "allow"
	PromptUpgrade Decision = "prompt_upgrade"
	Deny          Decision = "deny"
)

// ActionDownload names the export action in decisions and errors
const ActionDownload = "download"

// CanAfford reports whether balance covers cost
func CanAfford(balance, cost int) bool {
	return balance >= cost
}

// CanDownload reports whether tier may export content
func CanDownload(tier catalog.Tier) bool {
	return tier.Paid()
}

// Gate makes access decisions and counts them
type Gate struct {
	metrics *observability.Metrics
}

// New creates a gate. metrics may be nil.
func New(metrics *observability.Metrics) *Gate {
	return &Gate{metrics: metrics}
}

// Decide returns Allow when balance covers cost, PromptUpgrade otherwise
func (g *Gate) Decide(action string, balance, cost int) Decision {
	d := PromptUpgrade
	if CanAfford(balance, cost) {
		d = Allow
	}
	g.observe(action, d)
	return d
}

// Check is Decide as an error: nil or *InsufficientCreditsError
func (g *Gate) Check(action string, balance, cost int) error {
	if g.Decide(action, balance, cost) != Allow {
		return &InsufficientCreditsError{Required: cost, Available: balance}
	}
	return nil
}

// DecideDownload allows paid tiers, prompts FREE users to upgrade and denies
// anything else (no user, unknown tier).
func (g *Gate) DecideDownload(tier catalog.Tier) Decision {
	var d Decision
	switch {
	case CanDownload(tier):
		d = Allow
	case tier == catalog.TierFree:
		d = PromptUpgrade
	default:
		d = Deny
	}
	g.observe(ActionDownload, d)
	return d
}

// CheckDownload is DecideDownload as an error: nil or *UpgradeRequiredError
func (g *Gate) CheckDownload(tier catalog.Tier) error {
	if g.DecideDownload(tier) != Allow {
		return &UpgradeRequiredError{Tier: tier, Action: ActionDownload}
	}
	return nil
}

func (g *Gate) observe(action string, d Decision) {
	if g.metrics != nil {
		g.metrics.GateDecisionsTotal.WithLabelValues(action, string(d)).Inc()
	}
}
