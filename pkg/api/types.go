package api

import (
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/chat"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/orchestrator"
	"github.com/platinummonkey/samonya/pkg/payment"
	"github.com/platinummonkey/samonya/pkg/session"
)

// ToolSummary is a tool with its current prices
type ToolSummary struct {
	catalog.Tool
	Cost       int `json:"cost"`
	VisualCost int `json:"visual_cost"`
}

// LegalResponse is a rendered legal page
type LegalResponse struct {
	Document catalog.LegalDocument `json:"document"`
	Content  string                `json:"content"`
}

// OTPRequest asks for a login code
type OTPRequest struct {
	Contact string `json:"contact"`
}

// OTPResponse reports code delivery
type OTPResponse struct {
	Sent bool `json:"sent"`
}

// TransactionsResponse is the newest-first transaction log
type TransactionsResponse struct {
	Balance      int                  `json:"balance"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// GenerateRequest is the body of a tool run
type GenerateRequest struct {
	Fields     map[string]string `json:"fields"`
	Attachment string            `json:"attachment,omitempty"`
	Visual     bool              `json:"visual"`
}

// ChatRequest is a message to SAMN AI
type ChatRequest struct {
	Message string `json:"message"`
}

// SelectPlanRequest picks a plan to pay for
type SelectPlanRequest struct {
	Plan catalog.Tier `json:"plan"`
}

// VerifyRequest submits an M-Pesa transaction ID
type VerifyRequest struct {
	TransactionID string `json:"transaction_id"`
}

// PurchaseResponse is the flow state plus payment instructions
type PurchaseResponse struct {
	payment.State
	Instructions *payment.Instructions `json:"instructions,omitempty"`
	User         *session.User         `json:"user,omitempty"`
}

// ExportRequest picks an export format
type ExportRequest struct {
	Format string `json:"format"`
}

// ExportResponse lists the stored artifacts
type ExportResponse struct {
	Format export.Format     `json:"format"`
	Files  []export.Location `json:"files"`
}

// GenerateResponse is a tool run result with the balance after it
type GenerateResponse struct {
	orchestrator.Result
	Balance int `json:"balance"`
}

// ChatResponse is the assistant's reply with the balance after it
type ChatResponse struct {
	chat.Result
	Balance int `json:"balance"`
}
