package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/samonya/pkg/auth"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/observability"
)

// AuthHandlers handles OTP login
type AuthHandlers struct {
	sessions SessionStore
	logger   *observability.Logger
}

// NewAuthHandlers creates a new AuthHandlers
func NewAuthHandlers(sessions SessionStore, logger *observability.Logger) *AuthHandlers {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &AuthHandlers{
		sessions: sessions,
		logger:   logger.WithField("component", "auth_handlers"),
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/otp", h.SendOTP).Methods("POST")
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// SendOTP handles POST /auth/otp
func (h *AuthHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Contact, "contact") {
		return
	}

	sent, err := h.sessions.SendOTP(r.Context(), req.Contact)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	httputil.WriteSuccess(w, OTPResponse{Sent: sent})
}

// Login handles POST /auth/login. A correct code opens a session with the
// welcome bonus.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !httputil.ParseJSONOrError(w, r, &creds) {
		return
	}
	if !httputil.RequireNonEmpty(w, creds.Name, "name") {
		return
	}
	if creds.ContactKey() == "" {
		httputil.WriteValidationError(w, auth.ErrEmptyContact.Error())
		return
	}

	s, err := h.sessions.Login(r.Context(), creds)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"session_id": s.ID(),
		"request_id": observability.GetRequestID(r.Context()),
	}).Info("User logged in")
	httputil.WriteCreated(w, s.Snapshot())
}
