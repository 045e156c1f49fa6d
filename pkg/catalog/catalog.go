package catalog

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrUnknownPlan     = errors.New("unknown plan")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownDocument = errors.New("unknown legal document")
)

// Catalog is an immutable snapshot of everything the marketplace sells
type Catalog struct {
	Plans       []Plan      `json:"plans"`
	Tools       []Tool      `json:"tools"`
	Costs       Costs       `json:"costs"`
	Company     CompanyInfo `json:"company"`
	Inspiration Inspiration `json:"inspiration"`
}

// Default returns the compiled-in catalog
func Default() *Catalog {
	return &Catalog{
		Plans:       defaultPlans(),
		Tools:       defaultTools(),
		Costs:       defaultCosts(),
		Company:     DefaultCompany(),
		Inspiration: DefaultInspiration(),
	}
}

// Plan looks up a plan by tier
func (c *Catalog) Plan(id Tier) (Plan, error) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, id)
}

// Tool looks up a tool by ID
func (c *Catalog) Tool(id ToolID) (Tool, error) {
	for _, t := range c.Tools {
		if t.ID == id {
			return t, nil
		}
	}
	return Tool{}, fmt.Errorf("%w: %s", ErrUnknownTool, id)
}

// ToolName returns the display name of a tool, or the raw ID when the tool
// is not in the catalog.
func (c *Catalog) ToolName(id ToolID) string {
	if t, err := c.Tool(id); err == nil {
		return t.Name
	}
	return string(id)
}

// Validate checks internal consistency of the catalog
func (c *Catalog) Validate() error {
	if len(c.Plans) == 0 {
		return errors.New("catalog has no plans")
	}
	seen := make(map[Tier]bool)
	for _, p := range c.Plans {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("plan %q defined twice", p.ID)
		}
		seen[p.ID] = true
	}
	if c.Costs.Default <= 0 {
		return errors.New("default cost must be positive")
	}
	if c.Costs.ImageSurcharge < 0 || c.Costs.ChatMessage < 0 {
		return errors.New("surcharge and chat cost must not be negative")
	}
	for id, cost := range c.Costs.Tools {
		if cost <= 0 {
			return fmt.Errorf("cost for %s must be positive", id)
		}
	}
	return nil
}

// Provider hands out the current catalog snapshot
type Provider interface {
	Current() *Catalog
}

// Current lets a bare catalog act as a fixed Provider
func (c *Catalog) Current() *Catalog {
	return c
}

// Holder is a Provider whose catalog can be swapped at runtime
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a holder seeded with c
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the active snapshot
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Set replaces the active snapshot after validating it
func (h *Holder) Set(c *Catalog) error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	h.current.Store(c)
	return nil
}

// LoadFile applies the YAML override at path on top of the compiled-in
// defaults and makes the result current.
func (h *Holder) LoadFile(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	return h.Set(c)
}
