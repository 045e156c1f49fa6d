// Package gate decides whether a user may take a priced or tier-restricted
// action. It never mutates balances; callers debit the ledger only after an
// Allow decision.
package gate
