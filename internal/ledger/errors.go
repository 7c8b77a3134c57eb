package ledger

import (
	"errors"

	"github.com/abkawan/retail-ledger/internal/currency"
)

// Ledger errors. Callers match them with errors.Is; returned errors wrap
// them with the offending values.
var (
	ErrInvalidCurrency         = currency.ErrUnsupportedCurrency
	ErrInvalidOwner            = errors.New("invalid account owner")
	ErrInvalidAccountReference = errors.New("invalid account reference")
	ErrInvalidUser             = errors.New("invalid user")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrCreditLimitExceeded     = errors.New("credit limit exceeded")
	ErrOverpayment             = errors.New("repayment exceeds outstanding debt")
	ErrInvalidInterestParams   = errors.New("invalid interest parameters")
	ErrAccountBlocked          = errors.New("account is blocked")
	ErrMissingEndpoint         = errors.New("missing transaction endpoint")
	ErrUnsupportedAccountType  = errors.New("unsupported account type")
	ErrAlreadyExecuted         = errors.New("transaction already executed")
	ErrRateUnavailable         = currency.ErrRateUnavailable
)
