package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the account variant.
type AccountKind string

const (
	Checking AccountKind = "checking"
	Savings  AccountKind = "savings"
	Credit   AccountKind = "credit"
)

// AccountSnapshot is the state of an account captured after a transaction leg.
type AccountSnapshot struct {
	BankID   string          `json:"bank_id"`
	ID       int64           `json:"id"`
	Kind     AccountKind     `json:"kind"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Limit    decimal.Decimal `json:"limit"`
	Credit   decimal.Decimal `json:"credit"`
	Blocked  bool            `json:"blocked"`
}

// AccountActivity summarizes the journal entries touching one account.
type AccountActivity struct {
	BankID       string                 `json:"bank_id"`
	AccountID    int64                  `json:"account_id"`
	LastSnapshot *AccountSnapshot       `json:"last_snapshot,omitempty"`
	LastActivity time.Time              `json:"last_activity"`
	Transactions []*TransactionResponse `json:"transactions"`
}
