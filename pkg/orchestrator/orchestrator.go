package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/generation"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/pricing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FailureText replaces the content of a failed generation
const FailureText = "Error generating content. Please try again."

// Outcome classifies a submission
type Outcome string

const (
	OutcomeGenerated     Outcome = "generated"
	OutcomePromptUpgrade Outcome = "prompt_upgrade"
	OutcomeFailed        Outcome = "failed"
)

// Wallet is the balance a generation is charged to
type Wallet interface {
	Balance() int
	Debit(ctx context.Context, amount int, description string) (ledger.Transaction, error)
	Credit(ctx context.Context, amount int, description string) (ledger.Transaction, error)
}

// Memory remembers what the client typed
type Memory interface {
	Update(tool catalog.Tool, fields map[string]string) bool
}

// Request is one tool form submission
type Request struct {
	Tool       catalog.ToolID    `json:"tool"`
	Fields     map[string]string `json:"fields"`
	Attachment string            `json:"attachment,omitempty"`
	Visual     bool              `json:"visual"`
}

// Result is the outcome of Submit
type Result struct {
	Tool      catalog.ToolID `json:"tool"`
	ToolName  string         `json:"tool_name"`
	Content   string         `json:"content"`
	Outcome   Outcome        `json:"outcome"`
	Cost      int            `json:"cost"`
	Charged   int            `json:"charged"`
	Refunded  bool           `json:"refunded,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Succeeded reports whether Content holds generated output
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeGenerated
}

// DebitDescription labels the ledger entry for a run of toolName
func DebitDescription(toolName string) string {
	return "Generated content with " + toolName
}

// RefundDescription labels the ledger entry returning a failed run's credits
func RefundDescription(toolName string) string {
	return "Refund: " + toolName
}

// Options configures an Orchestrator
type Options struct {
	Catalog   catalog.Provider
	Resolver  *pricing.Resolver
	Gate      *gate.Gate
	Generator generation.Generator

	// RefundOnFailure credits back the charge when the generator fails
	RefundOnFailure bool

	Logger  *observability.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// Orchestrator prices, charges and runs tool generations
type Orchestrator struct {
	catalog         catalog.Provider
	resolver        *pricing.Resolver
	gate            *gate.Gate
	generator       generation.Generator
	refundOnFailure bool
	logger          *observability.Logger
	metrics         *observability.Metrics
	now             func() time.Time
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	if opts.Catalog == nil {
		opts.Catalog = catalog.NewHolder(catalog.Default())
	}
	if opts.Resolver == nil {
		opts.Resolver = pricing.NewResolver(opts.Catalog)
	}
	if opts.Gate == nil {
		opts.Gate = gate.New(opts.Metrics)
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		catalog:         opts.Catalog,
		resolver:        opts.Resolver,
		gate:            opts.Gate,
		generator:       opts.Generator,
		refundOnFailure: opts.RefundOnFailure,
		logger:          opts.Logger.WithField("component", "orchestrator"),
		metrics:         opts.Metrics,
		now:             opts.Now,
	}
}

// Submit runs req against wallet.
//
// When the balance does not cover the cost nothing is charged and the error
// is a *gate.InsufficientCreditsError alongside a PromptUpgrade result. A
// generator failure is not an error: the result carries FailureText and the
// Failed outcome. mem may be nil.
func (o *Orchestrator) Submit(ctx context.Context, wallet Wallet, mem Memory, req Request) (Result, error) {
	tool, err := o.catalog.Current().Tool(req.Tool)
	if err != nil {
		return Result{}, err
	}

	ctx, span := observability.Tracer("orchestrator").Start(ctx, "orchestrator.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.id", string(tool.ID)),
		attribute.Bool("tool.visual", req.Visual),
	)

	cost := o.resolver.Cost(tool.ID, req.Visual)
	res := Result{
		Tool:      tool.ID,
		ToolName:  tool.Name,
		Cost:      cost,
		CreatedAt: o.now(),
	}

	if err := o.gate.Check(string(tool.ID), wallet.Balance(), cost); err != nil {
		res.Outcome = OutcomePromptUpgrade
		o.observe(tool.ID, res.Outcome, 0)
		span.SetAttributes(attribute.String("generation.outcome", string(res.Outcome)))
		return res, err
	}

	if _, err := wallet.Debit(ctx, cost, DebitDescription(tool.Name)); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("failed to charge generation: %w", err)
	}
	res.Charged = cost

	logger := o.logger.WithFields(map[string]interface{}{
		"tool":   tool.ID,
		"cost":   cost,
		"visual": req.Visual,
	})

	start := time.Now()
	content, err := o.generator.Generate(ctx, generation.Request{
		ToolName:   tool.Name,
		Inputs:     Inputs(tool, req.Fields),
		Attachment: req.Attachment,
		Visual:     req.Visual,
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.WithError(err).Warn("Generation failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")

		res.Content = FailureText
		res.Outcome = OutcomeFailed
		if o.refundOnFailure {
			res.Refunded = o.refund(context.WithoutCancel(ctx), wallet, tool, cost)
		}
		o.observe(tool.ID, res.Outcome, elapsed)
		return res, nil
	}

	if mem != nil {
		mem.Update(tool, req.Fields)
	}

	res.Content = content
	res.Outcome = OutcomeGenerated
	logger.WithField("duration_ms", elapsed.Milliseconds()).Info("Content generated")
	o.observe(tool.ID, res.Outcome, elapsed)
	span.SetAttributes(attribute.String("generation.outcome", string(res.Outcome)))
	return res, nil
}

func (o *Orchestrator) refund(ctx context.Context, wallet Wallet, tool catalog.Tool, cost int) bool {
	if cost <= 0 {
		return false
	}
	if _, err := wallet.Credit(ctx, cost, RefundDescription(tool.Name)); err != nil {
		o.logger.WithError(err).WithField("tool", tool.ID).Error("Failed to refund generation")
		return false
	}
	return true
}

func (o *Orchestrator) observe(tool catalog.ToolID, outcome Outcome, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.GenerationsTotal.WithLabelValues(string(tool), string(outcome)).Inc()
	if elapsed > 0 {
		o.metrics.GenerationDuration.WithLabelValues(string(tool)).Observe(elapsed.Seconds())
	}
}

// Inputs orders the submitted fields for the prompt: the tool's own text
// fields first in form order, then any extra keys sorted. File and checkbox
// fields and blank values are left out.
func Inputs(tool catalog.Tool, fields map[string]string) []generation.Input {
	var inputs []generation.Input
	seen := make(map[string]bool, len(fields))

	for _, f := range tool.Fields {
		seen[f.Name] = true
		if f.Type == catalog.FieldFile || f.Type == catalog.FieldCheckbox {
			continue
		}
		if v := strings.TrimSpace(fields[f.Name]); v != "" {
			inputs = append(inputs, generation.Input{Key: f.Name, Value: v})
		}
	}

	var extra []string
	for k := range fields {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		if v := strings.TrimSpace(fields[k]); v != "" {
			inputs = append(inputs, generation.Input{Key: k, Value: v})
		}
	}
	return inputs
}
