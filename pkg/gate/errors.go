package gate

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/samonya/pkg/catalog"
)

// InsufficientCreditsError is returned when an action costs more than the
// user's balance
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// IsInsufficientCredits checks if an error is an insufficient credits error
func IsInsufficientCredits(err error) bool {
	var target *InsufficientCreditsError
	return errors.As(err, &target)
}

// UpgradeRequiredError is returned when the user's tier forbids an action
type UpgradeRequiredError struct {
	Tier   catalog.Tier
	Action string
}

func (e *UpgradeRequiredError) Error() string {
	return fmt.Sprintf("%s requires a paid plan (current tier %s)", e.Action, e.Tier)
}

// IsUpgradeRequired checks if an error is an upgrade required error
func IsUpgradeRequired(err error) bool {
	var target *UpgradeRequiredError
	return errors.As(err, &target)
}
