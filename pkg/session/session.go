package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/chat"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/memory"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/orchestrator"
	"github.com/platinummonkey/samonya/pkg/payment"
	"github.com/platinummonkey/samonya/pkg/pricing"
)

// DefaultEmail is recorded for every login until a provider supplies one
const DefaultEmail = "user@example.com"

// User is the logged-in client
type User struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Credits      int          `json:"credits"`
	Tier         catalog.Tier `json:"subscription_tier"`
	LastActivity time.Time    `json:"last_activity"`
}

// Deps are the collaborators shared by every session
type Deps struct {
	Catalog      catalog.Provider
	Resolver     *pricing.Resolver
	Gate         *gate.Gate
	Orchestrator *orchestrator.Orchestrator
	Assistant    *chat.Assistant
	Verifier     payment.Verifier
	Exporter     *export.Exporter
	Journal      ledger.Journal
	Profiles     memory.Store
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	Now          func() time.Time
}

func (d *Deps) defaults() {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Resolver == nil {
		d.Resolver = pricing.NewResolver(d.Catalog)
	}
	if d.Gate == nil {
		d.Gate = gate.New(d.Metrics)
	}
	if d.Logger == nil {
		d.Logger = observability.NewNopLogger()
	}
	if d.Orchestrator == nil {
		d.Orchestrator = orchestrator.New(orchestrator.Options{
			Catalog:  d.Catalog,
			Resolver: d.Resolver,
			Gate:     d.Gate,
			Logger:   d.Logger,
			Metrics:  d.Metrics,
		})
	}
	if d.Assistant == nil {
		d.Assistant = chat.NewAssistant(chat.OfflineChatter{}, d.Resolver, d.Gate, d.Logger, d.Metrics)
	}
	if d.Verifier == nil {
		d.Verifier = &payment.MockVerifier{Logger: d.Logger}
	}
	if d.Exporter == nil {
		d.Exporter = export.NewExporter(export.Options{Gate: d.Gate, Logger: d.Logger, Metrics: d.Metrics})
	}
	if d.Journal == nil {
		d.Journal = ledger.NoopJournal{}
	}
	if d.Profiles == nil {
		d.Profiles = memory.NewInMemoryStore()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Session is one client's state
type Session struct {
	id        string
	createdAt time.Time
	deps      *Deps
	logger    *observability.Logger

	mu            sync.Mutex
	user          *User
	profileKey    string
	ledger        *ledger.Ledger
	memory        *memory.Memory
	conversation  *chat.Conversation
	flow          *payment.Flow
	last          *orchestrator.Result
	pricingPrompt bool
}

func newSession(id string, deps *Deps) *Session {
	return &Session{
		id:        id,
		createdAt: deps.Now(),
		deps:      deps,
		logger:    deps.Logger.WithField("session_id", id),
		ledger: ledger.New(ledger.Options{
			SessionID: id,
			Journal:   deps.Journal,
			Logger:    deps.Logger,
			Metrics:   deps.Metrics,
			Now:       deps.Now,
		}),
		memory:       memory.New(),
		conversation: chat.NewConversation(),
		flow:         payment.NewFlow(),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// View is a point-in-time snapshot of a session
type View struct {
	ID            string            `json:"id"`
	User          *User             `json:"user"`
	PricingPrompt bool              `json:"pricing_prompt"`
	Profile       map[string]string `json:"client_memory"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Snapshot returns the current state. Credits always reflect the ledger.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:            s.id,
		PricingPrompt: s.pricingPrompt,
		Profile:       profileMap(s.memory.Profile()),
		CreatedAt:     s.createdAt,
	}
	if s.user != nil {
		u := *s.user
		u.Credits = s.ledger.Balance()
		v.User = &u
	}
	return v
}

func profileMap(p memory.Profile) map[string]string {
	out := make(map[string]string, len(p.Values))
	for k, v := range p.Values {
		out[string(k)] = v
	}
	return out
}

// login populates a fresh session and grants the welcome bonus. contact is
// what the OTP was sent to and keys the remembered client memory.
func (s *Session) login(ctx context.Context, name, phone, contact string, welcome int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := DefaultEmail
	if strings.Contains(contact, "@") {
		email = contact
	}
	s.user = &User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Tier:         catalog.TierFree,
		LastActivity: s.deps.Now(),
	}
	s.profileKey = contact
	if welcome > 0 {
		if _, err := s.ledger.CreditWithID(ctx, catalog.WelcomeTxID, welcome, catalog.WelcomeDescription); err != nil {
			return fmt.Errorf("failed to grant welcome bonus: %w", err)
		}
	}

	if s.profileKey != "" {
		p, err := s.deps.Profiles.Load(ctx, s.profileKey)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load client memory")
		} else if !p.Empty() {
			s.memory.Restore(p)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"tier":    s.user.Tier,
		"credits": s.ledger.Balance(),
	}).Info("User logged in")
	return nil
}

// Logout clears the user, their transactions and client memory
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotLoggedIn
	}
	if s.profileKey != "" {
		if err := s.deps.Profiles.Delete(ctx, s.profileKey); err != nil {
			s.logger.WithError(err).Warn("Failed to delete client memory")
		}
	}

	s.user = nil
	s.profileKey = ""
	s.ledger.Reset()
	s.memory.Clear()
	s.conversation = chat.NewConversation()
	s.flow = payment.NewFlow()
	s.last = nil
	s.pricingPrompt = false

	s.logger.Info("User logged out")
	return nil
}

// Transactions returns the ledger log, newest first, optionally restricted
// to kinds
func (s *Session) Transactions(kinds ...ledger.Kind) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrNotLoggedIn
	}
	return ledger.Filter(s.ledger.Transactions(), kinds...), nil
}

// JournalTransactions reads this session's history back from the durable
// journal, newest first. It fails with ErrNoJournal when the configured
// journal cannot be read.
func (s *Session) JournalTransactions(ctx context.Context, kinds ...ledger.Kind) ([]ledger.Transaction, error) {
	s.mu.Lock()
	loggedIn := s.user != nil
	s.mu.Unlock()
	if !loggedIn {
		return nil, ErrNotLoggedIn
	}

	reader, ok := s.deps.Journal.(ledger.JournalReader)
	if !ok {
		return nil, ErrNoJournal
	}
	txs, err := reader.List(ctx, s.id, kinds...)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return txs, nil
}

// Profile returns the client memory
func (s *Session) Profile() (memory.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return memory.Profile{}, ErrNotLoggedIn
	}
	return s.memory.Profile(), nil
}

// Purchase credits plan and moves the user to its tier
func (s *Session) Purchase(ctx context.Context, plan catalog.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purchase(ctx, plan)
}

func (s *Session) purchase(ctx context.Context, plan catalog.Plan) error {
	if s.user == nil {
		return ErrNotLoggedIn
	}
	if _, err := s.ledger.Credit(ctx, plan.Credits, "Verified Purchase: "+plan.Name); err != nil {
		return err
	}
	s.user.Tier = plan.ID
	s.pricingPrompt = false
	if s.deps.Metrics != nil {
		s.deps.Metrics.PurchasesTotal.WithLabelValues(string(plan.ID)).Inc()
	}
	s.logger.WithFields(map[string]interface{}{
		"plan":    plan.ID,
		"credits": plan.Credits,
	}).Info("Plan purchased")
	return nil
}

// Spend debits amount. When the balance is short it raises the pricing
// prompt and reports false.
func (s *Session) Spend(ctx context.Context, amount int, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false, ErrNotLoggedIn
	}
	if _, err := s.ledger.Debit(ctx, amount, description); err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			s.pricingPrompt = true
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DismissPricing hides the pricing prompt. The purchase flow is left where
// it was so reopening the prompt resumes it.
func (s *Session) DismissPricing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pricingPrompt = false
}

// Quote is what a tool run would cost right now
type Quote struct {
	Tool       catalog.ToolID    `json:"tool"`
	Cost       int               `json:"cost"`
	Balance    int               `json:"balance"`
	Affordable bool              `json:"affordable"`
	Prefill    map[string]string `json:"prefill"`
}

// Quote prices tool and returns the remembered values for its form
func (s *Session) Quote(toolID catalog.ToolID, visual bool) (Quote, error) {
	tool, err := s.deps.Catalog.Current().Tool(toolID)
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return Quote{}, ErrNotLoggedIn
	}

	cost := s.deps.Resolver.Quote(tool.ID, visual)
	balance := s.ledger.Balance()
	return Quote{
		Tool:       tool.ID,
		Cost:       cost,
		Balance:    balance,
		Affordable: gate.CanAfford(balance, cost),
		Prefill:    s.memory.Prefill(tool),
	}, nil
}

// Submit runs a tool generation. A successful result becomes the session's
// last result and updates client memory.
func (s *Session) Submit(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return orchestrator.Result{}, ErrNotLoggedIn
	}

	res, err := s.deps.Orchestrator.Submit(ctx, s.ledger, trackedMemory{s: s, ctx: ctx}, req)
	if err != nil {
		if gate.IsInsufficientCredits(err) {
			s.pricingPrompt = true
		}
		return res, err
	}
	if res.Succeeded() {
		r := res
		s.last = &r
	}
	return res, nil
}

// LastResult returns the most recent successful generation
func (s *Session) LastResult() (orchestrator.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return orchestrator.Result{}, false
	}
	return *s.last, true
}

// trackedMemory bumps the user's activity and mirrors the profile to the
// store whenever a generation updates it. It runs under the session lock.
type trackedMemory struct {
	s   *Session
	ctx context.Context
}

func (t trackedMemory) Update(tool catalog.Tool, fields map[string]string) bool {
	s := t.s
	changed := s.memory.Update(tool, fields)
	if s.user != nil {
		s.user.LastActivity = s.deps.Now()
	}
	if changed && s.profileKey != "" {
		if err := s.deps.Profiles.Save(t.ctx, s.profileKey, s.memory.Profile()); err != nil {
			s.logger.WithError(err).Warn("Failed to save client memory")
			if s.deps.Metrics != nil {
				s.deps.Metrics.ProfileStoreErrors.WithLabelValues("save").Inc()
			}
		}
	}
	return changed
}

// Chat sends a message to the assistant
func (s *Session) Chat(ctx context.Context, text string) (chat.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return chat.Result{}, ErrNotLoggedIn
	}
	return s.deps.Assistant.Send(ctx, s.ledger, s.conversation, text)
}

// ChatHistory returns the conversation so far
func (s *Session) ChatHistory() ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrNotLoggedIn
	}
	return s.conversation.Messages(), nil
}

// PurchaseState returns the purchase flow
func (s *Session) PurchaseState() (payment.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return payment.State{}, ErrNotLoggedIn
	}
	return s.flow.State(), nil
}

// SelectPlan starts paying for plan
func (s *Session) SelectPlan(id catalog.Tier) (payment.State, error) {
	plan, err := s.deps.Catalog.Current().Plan(id)
	if err != nil {
		return payment.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return payment.State{}, ErrNotLoggedIn
	}
	if err := s.flow.Select(plan); err != nil {
		return s.flow.State(), err
	}
	return s.flow.State(), nil
}

// VerifyPurchase checks transactionID and, when it is accepted, credits the
// selected plan. The returned state is the flow after verification.
func (s *Session) VerifyPurchase(ctx context.Context, transactionID string) (payment.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return payment.State{}, ErrNotLoggedIn
	}

	plan, err := s.flow.Verify(ctx, s.deps.Verifier, transactionID)
	if err != nil {
		s.observeVerification(err)
		return s.flow.State(), err
	}
	s.observeVerification(nil)
	if err := s.purchase(ctx, plan); err != nil {
		return s.flow.State(), err
	}
	return s.flow.State(), nil
}

func (s *Session) observeVerification(err error) {
	if s.deps.Metrics == nil {
		return
	}
	result := "verified"
	switch {
	case errors.Is(err, payment.ErrEmptyTransactionID):
		result = "empty"
	case errors.Is(err, payment.ErrInvalidTransition):
		result = "invalid_transition"
	case err != nil:
		result = "rejected"
	}
	s.deps.Metrics.VerificationsTotal.WithLabelValues(result).Inc()
}

// BackToPlans abandons the current purchase
func (s *Session) BackToPlans() (payment.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return payment.State{}, ErrNotLoggedIn
	}
	s.flow.Back()
	return s.flow.State(), nil
}

// Export stores the last result in format. Free users are refused and shown
// the pricing prompt.
func (s *Session) Export(ctx context.Context, format export.Format) ([]export.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, ErrNotLoggedIn
	}
	if !gate.CanDownload(s.user.Tier) {
		// the exporter refuses and counts the denial
		s.pricingPrompt = true
		return s.deps.Exporter.Export(ctx, s.id, s.user.Tier, "", "", format)
	}
	if s.last == nil {
		return nil, ErrNoResult
	}
	return s.deps.Exporter.Export(ctx, s.id, s.user.Tier, s.last.ToolName, s.last.Content, format)
}
