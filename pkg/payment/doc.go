// Package payment verifies M-Pesa transaction IDs and drives the plan
// purchase flow:
//
//	SELECT --Select--> PAY --Verify--> VERIFY --ok--> SELECT
//	                    ^                |
//	                    +----failed------+
//
// Back returns to SELECT from any step. The flow never touches credits; on
// a successful Verify the caller credits the ledger with the returned plan.
package payment
