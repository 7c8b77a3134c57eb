package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/models"
)

// Kind tags the account variant.
type Kind = models.AccountKind

const (
	Checking = models.Checking
	Savings  = models.Savings
	Credit   = models.Credit
)

// amountEpsilon is the largest amount still treated as zero.
var amountEpsilon = decimal.New(1, -8)

// Account is a checking, savings or credit account. Savings and credit
// accounts accrue interest; for a credit account Balance is the credit still
// available and Credit is the accrued interest not yet repaid.
type Account struct {
	id       int64
	kind     Kind
	currency currency.Code
	balance  decimal.Decimal
	owner    *User
	blocked  bool

	terms        InterestTerms
	lastInterest time.Time

	limit  decimal.Decimal
	credit decimal.Decimal

	env *env
}

func (a *Account) ID() int64 { return a.id }

func (a *Account) Kind() Kind { return a.kind }

func (a *Account) Currency() currency.Code { return a.currency }

func (a *Account) Balance() decimal.Decimal { return a.balance }

// Owner is a back-reference; the account does not own the user.
func (a *Account) Owner() *User { return a.owner }

func (a *Account) Blocked() bool { return a.blocked }

// Limit is zero for checking and savings accounts.
func (a *Account) Limit() decimal.Decimal { return a.limit }

// Credit is the accrued interest a credit account has not repaid yet.
func (a *Account) Credit() decimal.Decimal { return a.credit }

// Terms returns the interest terms, or false for checking accounts.
func (a *Account) Terms() (InterestTerms, bool) {
	return a.terms, a.kind != Checking
}

// LastInterestDate is the zero time for checking accounts.
func (a *Account) LastInterestDate() time.Time {
	return a.lastInterest
}

// Outstanding is what keeps the account from being closed: the balance for
// checking and savings accounts, used credit plus unpaid interest for credit
// accounts.
func (a *Account) Outstanding() decimal.Decimal {
	if a.kind == Credit {
		return a.limit.Sub(a.balance).Add(a.credit)
	}
	return a.balance
}

func (a *Account) String() string {
	return fmt.Sprintf("%s account #%d (%s)", a.kind, a.id, a.currency)
}

// Snapshot captures the current state for the journal.
func (a *Account) Snapshot() *models.AccountSnapshot {
	return &models.AccountSnapshot{
		ID:       a.id,
		BankID:   a.env.bank,
		Kind:     a.kind,
		Currency: string(a.currency),
		Balance:  a.balance,
		Limit:    a.limit,
		Credit:   a.credit,
		Blocked:  a.blocked,
	}
}

func (a *Account) Block() {
	a.blocked = true
}

func (a *Account) Unblock() {
	a.blocked = false
}

// Deposit converts amount from code into the account currency and adds it.
// On a credit account the deposit repays accrued interest first and then
// restores available credit up to the limit.
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal, code currency.Code) error {
	_, err := a.deposit(ctx, amount, code)
	return err
}

// Withdraw converts amount from code into the account currency and subtracts
// it. Checking and savings accounts cannot go below zero; credit accounts
// cannot spend more than their available credit.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal, code currency.Code) error {
	_, err := a.withdraw(ctx, amount, code)
	return err
}

// deposit returns the amount credited, in the account currency.
func (a *Account) deposit(ctx context.Context, amount decimal.Decimal, code currency.Code) (decimal.Decimal, error) {
	converted, err := a.prepare(ctx, "deposit", amount, code)
	if err != nil {
		return decimal.Zero, err
	}

	if a.kind == Credit {
		if err := a.repay(converted); err != nil {
			return decimal.Zero, err
		}
		return converted, nil
	}
	a.balance = a.balance.Add(converted)
	return converted, nil
}

// withdraw returns the amount debited, in the account currency.
func (a *Account) withdraw(ctx context.Context, amount decimal.Decimal, code currency.Code) (decimal.Decimal, error) {
	converted, err := a.prepare(ctx, "withdrawal", amount, code)
	if err != nil {
		return decimal.Zero, err
	}

	remaining := a.balance.Sub(converted)
	if remaining.IsNegative() {
		if a.kind == Credit {
			return decimal.Zero, a.env.fail(fmt.Sprintf("withdrawal from account #%d rejected", a.id),
				fmt.Errorf("%w: available %s %s, requested %s", ErrCreditLimitExceeded, a.balance, a.currency, converted))
		}
		return decimal.Zero, a.env.fail(fmt.Sprintf("withdrawal from account #%d rejected", a.id),
			fmt.Errorf("%w: balance %s %s, requested %s", ErrInsufficientFunds, a.balance, a.currency, converted))
	}

	a.balance = remaining
	return converted, nil
}

// CalculateInterest applies the interest of every full period elapsed since
// the last accrual and returns the amount applied. Savings interest compounds
// into the balance; credit interest compounds the used credit and is added to
// the unpaid Credit. Nothing changes when no full period has elapsed.
func (a *Account) CalculateInterest() (decimal.Decimal, error) {
	if a.kind == Checking {
		return decimal.Zero, a.env.fail(fmt.Sprintf("interest on account #%d rejected", a.id),
			fmt.Errorf("%w: %s accounts do not accrue interest", ErrUnsupportedAccountType, a.kind))
	}
	if a.blocked {
		return decimal.Zero, a.env.fail(fmt.Sprintf("interest on account #%d rejected", a.id),
			fmt.Errorf("%w: #%d", ErrAccountBlocked, a.id))
	}

	today := a.env.now()
	periods := fullPeriods(a.lastInterest, today, a.terms.Period)
	if periods < 1 {
		return decimal.Zero, nil
	}

	interest := decimal.Zero
	switch a.kind {
	case Savings:
		before := a.balance
		a.balance = compound(a.balance, a.terms.Percent, periods)
		interest = a.balance.Sub(before)
	case Credit:
		used := a.limit.Sub(a.balance)
		if used.IsPositive() {
			interest = compound(used, a.terms.Percent, periods).Sub(used)
			a.credit = a.credit.Add(interest)
		}
	}

	a.lastInterest = today
	a.env.info(fmt.Sprintf("accrued %s %s interest over %d period(s) on account #%d", interest, a.currency, periods, a.id))
	return interest, nil
}

// prepare validates a balance change and converts amount into the account currency.
func (a *Account) prepare(ctx context.Context, op string, amount decimal.Decimal, code currency.Code) (decimal.Decimal, error) {
	msg := fmt.Sprintf("%s on account #%d rejected", op, a.id)

	if a.blocked {
		return decimal.Zero, a.env.fail(msg, fmt.Errorf("%w: #%d", ErrAccountBlocked, a.id))
	}
	if amount.LessThanOrEqual(amountEpsilon) {
		return decimal.Zero, a.env.fail(msg, fmt.Errorf("%w: %s", ErrInvalidAmount, amount))
	}
	if !code.Valid() {
		return decimal.Zero, a.env.fail(msg, fmt.Errorf("%w: %q", ErrInvalidCurrency, code))
	}

	converted, err := a.env.conv.Convert(ctx, amount, code, a.currency)
	if err != nil {
		return decimal.Zero, a.env.fail(msg, err)
	}
	return converted, nil
}

// repay applies a converted deposit to a credit account.
func (a *Account) repay(amount decimal.Decimal) error {
	owed := a.Outstanding()
	if amount.GreaterThan(owed) {
		return a.env.fail(fmt.Sprintf("repayment on account #%d rejected", a.id),
			fmt.Errorf("%w: owed %s %s, paid %s", ErrOverpayment, owed, a.currency, amount))
	}

	toInterest := decimal.Min(amount, a.credit)
	a.credit = a.credit.Sub(toInterest)
	a.balance = a.balance.Add(amount.Sub(toInterest))
	return nil
}

// reverseWithdrawal undoes a successful Withdraw of amount in the account currency.
func (a *Account) reverseWithdrawal(amount decimal.Decimal) {
	a.balance = a.balance.Add(amount)
}
