package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/samonya/pkg/auth"
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/chat"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/payment"
	"github.com/platinummonkey/samonya/pkg/session"
)

// writeServiceError maps a domain error to its HTTP response. details are
// attached to 402 and 403 bodies.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, details map[string]interface{}) {
	var insufficient *gate.InsufficientCreditsError
	var upgrade *gate.UpgradeRequiredError

	switch {
	case errors.As(err, &insufficient):
		if details == nil {
			details = make(map[string]interface{})
		}
		details["required"] = insufficient.Required
		details["available"] = insufficient.Available
		httputil.WritePaymentRequired(w, "Insufficient credits. Please upgrade your plan.", details)
	case errors.As(err, &upgrade):
		httputil.WriteDetailedError(w, http.StatusForbidden, httputil.ErrorResponse{
			Error:         "Downloads are available on paid plans. Please upgrade.",
			PromptUpgrade: true,
			Details:       details,
		})

	case errors.Is(err, session.ErrSessionNotFound):
		httputil.WriteNotFoundError(w, "session not found")
	case errors.Is(err, session.ErrNoJournal):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, catalog.ErrUnknownTool),
		errors.Is(err, catalog.ErrUnknownDocument):
		httputil.WriteNotFoundError(w, err.Error())

	case errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, session.ErrInvalidOTP):
		httputil.WriteUnauthorized(w, err.Error())

	case errors.Is(err, session.ErrMissingName),
		errors.Is(err, auth.ErrEmptyContact),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, catalog.ErrUnknownPlan),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnknownKind):
		httputil.WriteValidationError(w, err.Error())
	case errors.Is(err, payment.ErrEmptyTransactionID):
		httputil.WriteDetailedError(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: payment.MsgEmptyTransactionID, Details: details,
		})
	case errors.Is(err, payment.ErrVerificationFailed):
		httputil.WriteDetailedError(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: payment.MsgVerificationFailed, Details: details,
		})

	case errors.Is(err, payment.ErrInvalidTransition),
		errors.Is(err, session.ErrNoResult),
		errors.Is(err, export.ErrNothingToExport):
		httputil.WriteConflict(w, err.Error())

	case errors.Is(err, auth.ErrRateLimited):
		httputil.WriteTooManyRequests(w, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httputil.WriteServiceUnavailable(w, "request cancelled")

	default:
		observability.FromContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).
			Error("Unhandled service error")
		httputil.WriteInternalError(w, errors.New("internal server error"))
	}
}
