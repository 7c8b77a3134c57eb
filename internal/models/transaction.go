package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	// Deposit credits a target account
	Deposit TransactionType = "deposit"

	// Withdrawal debits a source account
	Withdrawal TransactionType = "withdrawal"

	// Transfer moves money from a source to a target account
	Transfer TransactionType = "transfer"

	// InterestAccrual applies accrued interest to a savings or credit account
	InterestAccrual TransactionType = "interest_accrual"
)

type TransactionStatus string

const (
	// Completed indicates the transaction was executed
	Completed TransactionStatus = "completed"

	// Failed indicates execution was attempted and rejected
	Failed TransactionStatus = "failed"

	// Compensated indicates a transfer whose second leg failed and whose first leg was reversed
	Compensated TransactionStatus = "compensated"
)

// TransactionRecord is the journal entry written for every executed transaction.
// Transaction and account IDs are only unique within one BankID.
type TransactionRecord struct {
	ID              string            `json:"id"`
	Reference       string            `json:"reference"`
	BankID          string            `json:"bank_id"`
	TransactionID   int64             `json:"transaction_id"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	SourceAccountID int64             `json:"source_account_id,omitempty"`
	TargetAccountID int64             `json:"target_account_id,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Applied         decimal.Decimal   `json:"applied"`
	Source          *AccountSnapshot  `json:"source,omitempty"`
	Target          *AccountSnapshot  `json:"target,omitempty"`
	Error           string            `json:"error,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ExecutedAt      time.Time         `json:"executed_at"`
}

// represents the API response for journal data
type TransactionResponse struct {
	ID              string            `json:"id"`
	BankID          string            `json:"bank_id"`
	TransactionID   int64             `json:"transaction_id"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	SourceAccountID int64             `json:"source_account_id,omitempty"`
	TargetAccountID int64             `json:"target_account_id,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Applied         decimal.Decimal   `json:"applied"`
	Error           string            `json:"error,omitempty"`
	ExecutedAt      time.Time         `json:"executed_at"`
}

// NewTransactionResponse converts a journal record into its API shape
func NewTransactionResponse(rec *TransactionRecord) *TransactionResponse {
	return &TransactionResponse{
		ID:              rec.ID,
		BankID:          rec.BankID,
		TransactionID:   rec.TransactionID,
		Type:            rec.Type,
		Status:          rec.Status,
		SourceAccountID: rec.SourceAccountID,
		TargetAccountID: rec.TargetAccountID,
		Amount:          rec.Amount,
		Currency:        rec.Currency,
		Applied:         rec.Applied,
		Error:           rec.Error,
		ExecutedAt:      rec.ExecutedAt,
	}
}

// Touches reports whether the record involves the given account
func (r *TransactionRecord) Touches(accountID int64) bool {
	return r.SourceAccountID == accountID || r.TargetAccountID == accountID
}

// SnapshotOf returns the post-execution snapshot of the given account, if any
func (r *TransactionRecord) SnapshotOf(accountID int64) *AccountSnapshot {
	if r.Source != nil && r.Source.ID == accountID {
		return r.Source
	}
	if r.Target != nil && r.Target.ID == accountID {
		return r.Target
	}
	return nil
}
