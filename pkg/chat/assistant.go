package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/pricing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DebitDescription labels the ledger entry for one message
	DebitDescription = "SAMN AI Chat Message"

	// EmptyReply stands in for a blank model answer
	EmptyReply = "I apologize, I'm having trouble processing that right now."

	// FailureReply stands in for a failed model call
	FailureReply = "Something went wrong. Please check your internet connection or try again."

	// historyWindow bounds how much dialogue is replayed to the model
	historyWindow = 20
)

// ErrEmptyMessage is returned for blank user input
var ErrEmptyMessage = errors.New("message is empty")

// DenyMessage is shown when the balance does not cover a message
func DenyMessage(cost int) string {
	unit := "Credits"
	if cost == 1 {
		unit = "Credit"
	}
	return fmt.Sprintf("%sI apologize, but you have insufficient credits (Cost: %d %s/msg). Please upgrade your plan via M-Pesa.",
		catalog.ChatPrefix, cost, unit)
}

// Wallet is the balance a message is charged to
type Wallet interface {
	Balance() int
	Debit(ctx context.Context, amount int, description string) (ledger.Transaction, error)
}

// Chatter answers the last user message of history
type Chatter interface {
	Reply(ctx context.Context, history []Message) (string, error)
}

// Outcome classifies a Send
type Outcome string

const (
	OutcomeReplied Outcome = "replied"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailed  Outcome = "failed"
)

// Result is what Send appended to the conversation
type Result struct {
	Reply   Message `json:"reply"`
	Outcome Outcome `json:"outcome"`
	Charged int     `json:"charged"`
}

// Assistant charges for and relays chat messages
type Assistant struct {
	chatter  Chatter
	resolver *pricing.Resolver
	gate     *gate.Gate
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewAssistant creates an assistant. metrics may be nil.
func NewAssistant(chatter Chatter, resolver *pricing.Resolver, g *gate.Gate, logger *observability.Logger, metrics *observability.Metrics) *Assistant {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if g == nil {
		g = gate.New(metrics)
	}
	return &Assistant{
		chatter:  chatter,
		resolver: resolver,
		gate:     g,
		logger:   logger.WithField("component", "chat"),
		metrics:  metrics,
	}
}

// Send charges one message to wallet and appends the exchange to conv.
//
// When the balance is short only a deny message is appended, nothing is
// charged and the returned error is a *gate.InsufficientCreditsError. A
// failed or empty model answer is still charged and replaced by a fallback
// reply; it is not an error.
func (a *Assistant) Send(ctx context.Context, wallet Wallet, conv *Conversation, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyMessage
	}

	ctx, span := observability.Tracer("chat").Start(ctx, "chat.Send")
	defer span.End()

	cost := a.resolver.ChatCost()
	if err := a.gate.Check("chat", wallet.Balance(), cost); err != nil {
		reply := conv.append(RoleModel, DenyMessage(cost), true)
		a.observe(OutcomeDenied)
		span.SetAttributes(attribute.String("chat.outcome", string(OutcomeDenied)))
		return Result{Reply: reply, Outcome: OutcomeDenied}, err
	}

	if cost > 0 {
		if _, err := wallet.Debit(ctx, cost, DebitDescription); err != nil {
			span.RecordError(err)
			return Result{}, fmt.Errorf("failed to charge chat message: %w", err)
		}
	}

	conv.append(RoleUser, text, false)

	outcome := OutcomeReplied
	answer, err := a.chatter.Reply(ctx, conv.exchange(historyWindow))
	switch {
	case err != nil:
		a.logger.WithError(err).Warn("Chat collaborator failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat collaborator failed")
		answer = FailureReply
		outcome = OutcomeFailed
	case strings.TrimSpace(answer) == "":
		answer = EmptyReply
	}

	reply := conv.append(RoleModel, withPrefix(answer), false)
	a.observe(outcome)
	span.SetAttributes(attribute.String("chat.outcome", string(outcome)))
	return Result{Reply: reply, Outcome: outcome, Charged: cost}, nil
}

func withPrefix(text string) string {
	if strings.HasPrefix(text, "🔷") {
		return text
	}
	return catalog.ChatPrefix + text
}

func (a *Assistant) observe(o Outcome) {
	if a.metrics != nil {
		a.metrics.ChatMessagesTotal.WithLabelValues(string(o)).Inc()
	}
}
