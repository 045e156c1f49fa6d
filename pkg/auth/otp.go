package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/platinummonkey/samonya/pkg/observability"
)

// TestCode is the only code Verify accepts
const TestCode = "1234"

var (
	ErrEmptyContact = errors.New("phone number or email is required")
	ErrRateLimited  = errors.New("too many OTP requests, try again later")
)

// Limiter throttles OTP traffic by key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Credentials are what the login form submits
type Credentials struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Method  string `json:"method,omitempty"`
	Code    string `json:"code"`
	Contact string `json:"contact,omitempty"`
}

// ContactKey returns the contact the code was sent to, falling back to the
// phone number.
func (c Credentials) ContactKey() string {
	if v := strings.TrimSpace(c.Contact); v != "" {
		return v
	}
	return strings.TrimSpace(c.Phone)
}

// OTPOptions configures an OTPService
type OTPOptions struct {
	// Delay simulates delivery latency
	Delay   time.Duration
	Logger  *observability.Logger
	Limiter Limiter
}

// OTPService sends and checks one-time passwords
type OTPService struct {
	delay   time.Duration
	logger  *observability.Logger
	limiter Limiter
}

// NewOTPService creates an OTP service
func NewOTPService(opts OTPOptions) *OTPService {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &OTPService{
		delay:   opts.Delay,
		logger:  logger.WithField("component", "otp"),
		limiter: opts.Limiter,
	}
}

// Send pretends to deliver a code to contact. It always succeeds unless the
// contact is blank, the caller is throttled or ctx ends first.
func (s *OTPService) Send(ctx context.Context, contact string) (bool, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false, ErrEmptyContact
	}
	if err := s.throttle(ctx, "send:"+contact); err != nil {
		return false, err
	}
	if err := s.wait(ctx); err != nil {
		return false, err
	}

	s.logger.WithField("contact", mask(contact)).Info("OTP sent")
	s.logger.WithField("contact", contact).Debugf("OTP code is %s", TestCode)
	return true, nil
}

// Verify reports whether code is valid for contact
func (s *OTPService) Verify(ctx context.Context, contact, code string) (bool, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false, ErrEmptyContact
	}
	if err := s.throttle(ctx, "verify:"+contact); err != nil {
		return false, err
	}
	if err := s.wait(ctx); err != nil {
		return false, err
	}

	ok := strings.TrimSpace(code) == TestCode
	s.logger.WithFields(map[string]interface{}{
		"contact": mask(contact),
		"valid":   ok,
	}).Info("OTP verified")
	return ok, nil
}

func (s *OTPService) throttle(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, "otp:"+key)
	if err != nil {
		// fail open
		s.logger.WithError(err).Warn("OTP rate limiter unavailable")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (s *OTPService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mask keeps the last four characters of a contact
func mask(contact string) string {
	if len(contact) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(contact)-4) + contact[len(contact)-4:]
}
