package pricing

import (
	"sync"

	"github.com/platinummonkey/samonya/pkg/catalog"
)

// Resolver computes tool costs against the current catalog snapshot
type Resolver struct {
	catalog catalog.Provider

	mu   sync.Mutex
	last *quote
}

type quote struct {
	tool   catalog.ToolID
	visual bool
	costs  *catalog.Costs
	cost   int
}

// NewResolver creates a resolver reading costs from provider
func NewResolver(provider catalog.Provider) *Resolver {
	return &Resolver{catalog: provider}
}

// Cost returns the base cost of tool, the default cost for tools without an
// entry, plus the image surcharge when visual is set.
func (r *Resolver) Cost(tool catalog.ToolID, visual bool) int {
	return costFor(&r.catalog.Current().Costs, tool, visual)
}

// ChatCost is the price of one assistant message
func (r *Resolver) ChatCost() int {
	return r.catalog.Current().Costs.ChatMessage
}

// Quote is Cost memoized on its most recent inputs. A catalog reload
// invalidates the memo.
func (r *Resolver) Quote(tool catalog.ToolID, visual bool) int {
	costs := &r.catalog.Current().Costs

	r.mu.Lock()
	defer r.mu.Unlock()
	if q := r.last; q != nil && q.tool == tool && q.visual == visual && q.costs == costs {
		return q.cost
	}
	cost := costFor(costs, tool, visual)
	r.last = &quote{tool: tool, visual: visual, costs: costs, cost: cost}
	return cost
}

func costFor(costs *catalog.Costs, tool catalog.ToolID, visual bool) int {
	cost, ok := costs.Tools[tool]
	if !ok {
		cost = costs.Default
	}
	if visual {
		cost += costs.ImageSurcharge
	}
	return cost
}
