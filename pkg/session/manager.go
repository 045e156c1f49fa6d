package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/samonya/pkg/auth"
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/observability"
)

// Config bounds the session cache
type Config struct {
	// TTL is how long an untouched session survives
	TTL         time.Duration
	MaxSessions int
	// WelcomeCredits are granted at login. Zero means the default grant,
	// negative disables it.
	WelcomeCredits int
}

// DefaultConfig returns the default session settings
func DefaultConfig() Config {
	return Config{
		TTL:            30 * time.Minute,
		MaxSessions:    10000,
		WelcomeCredits: catalog.WelcomeCredits,
	}
}

// Manager creates, finds and ends sessions
type Manager struct {
	deps     *Deps
	otp      *auth.OTPService
	config   Config
	sessions *lru.LRU[string, *Session]
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewManager creates a manager. otp may be nil for the default service.
func NewManager(deps Deps, otp *auth.OTPService, cfg Config) *Manager {
	deps.defaults()
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaults.MaxSessions
	}
	switch {
	case cfg.WelcomeCredits == 0:
		cfg.WelcomeCredits = defaults.WelcomeCredits
	case cfg.WelcomeCredits < 0:
		cfg.WelcomeCredits = 0
	}
	if otp == nil {
		otp = auth.NewOTPService(auth.OTPOptions{Logger: deps.Logger})
	}

	m := &Manager{
		deps:    &deps,
		otp:     otp,
		config:  cfg,
		logger:  deps.Logger.WithField("component", "sessions"),
		metrics: deps.Metrics,
	}
	m.sessions = lru.NewLRU[string, *Session](cfg.MaxSessions, m.onEvict, cfg.TTL)
	return m
}

func (m *Manager) onEvict(id string, _ *Session) {
	if m.metrics != nil {
		m.metrics.ActiveSessions.Dec()
	}
	m.logger.WithField("session_id", id).Debug("Session evicted")
}

// SendOTP sends a login code to contact
func (m *Manager) SendOTP(ctx context.Context, contact string) (bool, error) {
	return m.otp.Send(ctx, contact)
}

// Login verifies the OTP and opens a session for the user
func (m *Manager) Login(ctx context.Context, creds auth.Credentials) (*Session, error) {
	name := strings.TrimSpace(creds.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	ok, err := m.otp.Verify(ctx, creds.ContactKey(), creds.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	s := newSession(uuid.NewString(), m.deps)
	if err := s.login(ctx, name, strings.TrimSpace(creds.Phone), creds.ContactKey(), m.config.WelcomeCredits); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	m.sessions.Add(s.id, s)
	if m.metrics != nil {
		m.metrics.ActiveSessions.Inc()
	}
	return s, nil
}

// Get returns a live session and restarts its idle timer
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.sessions.Add(id, s)
	return s, nil
}

// Logout clears the session and forgets it
func (m *Manager) Logout(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := s.Logout(ctx); err != nil {
		return err
	}
	m.sessions.Remove(id)
	return nil
}

// Len is the number of live sessions
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Close drops every session
func (m *Manager) Close() {
	m.sessions.Purge()
}
