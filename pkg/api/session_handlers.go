package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/orchestrator"
	"github.com/platinummonkey/samonya/pkg/payment"
	"github.com/platinummonkey/samonya/pkg/session"
)

// SessionHandlers handles everything scoped to one logged-in session
type SessionHandlers struct {
	sessions SessionStore
	catalog  catalog.Provider
	logger   *observability.Logger
}

// NewSessionHandlers creates a new SessionHandlers
func NewSessionHandlers(sessions SessionStore, provider catalog.Provider, logger *observability.Logger) *SessionHandlers {
	if provider == nil {
		provider = catalog.Default()
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &SessionHandlers{
		sessions: sessions,
		catalog:  provider,
		logger:   logger.WithField("component", "session_handlers"),
	}
}

// RegisterRoutes registers session routes
func (h *SessionHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	router.HandleFunc("/sessions/{id}/logout", h.Logout).Methods("POST")
	router.HandleFunc("/sessions/{id}/transactions", h.ListTransactions).Methods("GET")
	router.HandleFunc("/sessions/{id}/memory", h.GetMemory).Methods("GET")

	// Tools
	router.HandleFunc("/sessions/{id}/tools/{tool}/quote", h.QuoteTool).Methods("GET")
	router.HandleFunc("/sessions/{id}/tools/{tool}/generate", h.GenerateTool).Methods("POST")

	// Chat
	router.HandleFunc("/sessions/{id}/chat", h.SendChat).Methods("POST")
	router.HandleFunc("/sessions/{id}/chat", h.GetChat).Methods("GET")

	// Purchase flow
	router.HandleFunc("/sessions/{id}/purchase", h.GetPurchase).Methods("GET")
	router.HandleFunc("/sessions/{id}/purchase/select", h.SelectPlan).Methods("POST")
	router.HandleFunc("/sessions/{id}/purchase/verify", h.VerifyPurchase).Methods("POST")
	router.HandleFunc("/sessions/{id}/purchase/back", h.BackToPlans).Methods("POST")

	router.HandleFunc("/sessions/{id}/export", h.Export).Methods("POST")
	router.HandleFunc("/sessions/{id}/pricing/dismiss", h.DismissPricing).Methods("POST")
}

// session resolves {id}, writing the error response when it cannot
func (h *SessionHandlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return nil, false
	}
	return s, true
}

func balance(s *session.Session) int {
	if u := s.Snapshot().User; u != nil {
		return u.Credits
	}
	return 0
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, s.Snapshot())
}

// Logout handles POST /sessions/{id}/logout
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := h.sessions.Logout(r.Context(), id); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteNoContent(w)
}

// ListTransactions handles GET /sessions/{id}/transactions. ?kind= filters
// by DEPOSIT or USAGE (repeatable) and ?source=journal reads the durable
// journal instead of the live log.
func (h *SessionHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var kinds []ledger.Kind
	for _, raw := range r.URL.Query()["kind"] {
		kind, err := ledger.ParseKind(raw)
		if err != nil {
			writeServiceError(w, r, err, nil)
			return
		}
		kinds = append(kinds, kind)
	}

	var txs []ledger.Transaction
	var err error
	switch source := httputil.ParseQueryString(r, "source", "session"); source {
	case "session":
		txs, err = s.Transactions(kinds...)
	case "journal":
		txs, err = s.JournalTransactions(r.Context(), kinds...)
	default:
		httputil.WriteValidationError(w, "source must be session or journal")
		return
	}
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, TransactionsResponse{Balance: balance(s), Transactions: txs})
}

// GetMemory handles GET /sessions/{id}/memory
func (h *SessionHandlers) GetMemory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	profile, err := s.Profile()
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, profile)
}

// QuoteTool handles GET /sessions/{id}/tools/{tool}/quote?visual=true
func (h *SessionHandlers) QuoteTool(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	visual, err := httputil.ParseQueryBool(r, "visual", false)
	if err != nil {
		httputil.WriteValidationError(w, "visual must be a boolean")
		return
	}

	quote, err := s.Quote(catalog.ToolID(mux.Vars(r)["tool"]), visual)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, quote)
}

// GenerateTool handles POST /sessions/{id}/tools/{tool}/generate. Credits
// are charged before generation; a failed generation still returns 200 with
// outcome "failed".
func (h *SessionHandlers) GenerateTool(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req GenerateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := s.Submit(r.Context(), orchestrator.Request{
		Tool:       catalog.ToolID(mux.Vars(r)["tool"]),
		Fields:     req.Fields,
		Attachment: req.Attachment,
		Visual:     req.Visual,
	})
	if err != nil {
		writeServiceError(w, r, err, map[string]interface{}{
			"tool":    result.Tool,
			"cost":    result.Cost,
			"outcome": result.Outcome,
		})
		return
	}
	httputil.WriteSuccess(w, GenerateResponse{Result: result, Balance: balance(s)})
}

// SendChat handles POST /sessions/{id}/chat
func (h *SessionHandlers) SendChat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ChatRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := s.Chat(r.Context(), req.Message)
	if err != nil {
		var details map[string]interface{}
		if result.Outcome != "" {
			details = map[string]interface{}{"reply": result.Reply}
		}
		writeServiceError(w, r, err, details)
		return
	}
	httputil.WriteSuccess(w, ChatResponse{Result: result, Balance: balance(s)})
}

// GetChat handles GET /sessions/{id}/chat
func (h *SessionHandlers) GetChat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	msgs, err := s.ChatHistory()
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, msgs)
}

func (h *SessionHandlers) purchaseResponse(state payment.State) PurchaseResponse {
	resp := PurchaseResponse{State: state}
	if state.Plan != nil {
		in := payment.NewInstructions(*state.Plan, h.catalog.Current().Company)
		resp.Instructions = &in
	}
	return resp
}

// GetPurchase handles GET /sessions/{id}/purchase
func (h *SessionHandlers) GetPurchase(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := s.PurchaseState()
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, h.purchaseResponse(state))
}

// SelectPlan handles POST /sessions/{id}/purchase/select
func (h *SessionHandlers) SelectPlan(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectPlanRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, string(req.Plan), "plan") {
		return
	}

	state, err := s.SelectPlan(req.Plan)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, h.purchaseResponse(state))
}

// VerifyPurchase handles POST /sessions/{id}/purchase/verify. On success the
// plan's credits are added and the updated user is returned.
func (h *SessionHandlers) VerifyPurchase(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req VerifyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	state, err := s.VerifyPurchase(r.Context(), req.TransactionID)
	if err != nil {
		writeServiceError(w, r, err, map[string]interface{}{"step": state.Step})
		return
	}
	resp := h.purchaseResponse(state)
	resp.User = s.Snapshot().User
	httputil.WriteSuccess(w, resp)
}

// BackToPlans handles POST /sessions/{id}/purchase/back
func (h *SessionHandlers) BackToPlans(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := s.BackToPlans()
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, h.purchaseResponse(state))
}

// Export handles POST /sessions/{id}/export
func (h *SessionHandlers) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ExportRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	files, err := s.Export(r.Context(), format)
	if err != nil {
		writeServiceError(w, r, err, map[string]interface{}{"format": format})
		return
	}
	httputil.WriteSuccess(w, ExportResponse{Format: format, Files: files})
}

// DismissPricing handles POST /sessions/{id}/pricing/dismiss
func (h *SessionHandlers) DismissPricing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.DismissPricing()
	httputil.WriteSuccess(w, s.Snapshot())
}
