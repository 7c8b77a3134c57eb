package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/models"
)

// State of a transaction. A transaction that fails validation is never
// created, so every Transaction starts out Validated.
type State int

const (
	StateValidated State = iota
	StateExecuted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidated:
		return "validated"
	case StateExecuted:
		return "executed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transaction is a single balance-changing operation against one or two
// accounts. It is validated when built and runs at most once.
type Transaction struct {
	id        int64
	reference string
	typ       models.TransactionType
	source    *Account
	target    *Account
	amount    decimal.Decimal
	currency  currency.Code
	createdAt time.Time

	state   State
	status  models.TransactionStatus
	applied decimal.Decimal
	err     error

	env *env
}

// TxOption adjusts a deposit or withdrawal before validation.
type TxOption func(*Transaction)

// WithCurrency denominates the amount in code instead of the account currency.
func WithCurrency(code currency.Code) TxOption {
	return func(t *Transaction) {
		t.currency = code
	}
}

// WithReference sets the idempotency reference carried into the journal.
func WithReference(ref string) TxOption {
	return func(t *Transaction) {
		if ref != "" {
			t.reference = ref
		}
	}
}

func (t *Transaction) ID() int64                    { return t.id }
func (t *Transaction) Reference() string            { return t.reference }
func (t *Transaction) Type() models.TransactionType { return t.typ }
func (t *Transaction) Source() *Account             { return t.source }
func (t *Transaction) Target() *Account             { return t.target }
func (t *Transaction) Currency() currency.Code      { return t.currency }
func (t *Transaction) Timestamp() time.Time         { return t.createdAt }
func (t *Transaction) State() State                 { return t.state }

// Amount is the requested amount, or for interest accruals the amount
// applied once executed.
func (t *Transaction) Amount() decimal.Decimal { return t.amount }

// Applied is the amount that reached the target account, in its currency.
func (t *Transaction) Applied() decimal.Decimal { return t.applied }

// Err is the execution error of a failed transaction.
func (t *Transaction) Err() error { return t.err }

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction #%d: amount = %s, date = %s", t.id, t.amount, t.createdAt.Format(time.DateTime))
}

// NewDeposit builds a deposit of amount into target. The amount is in the
// target's currency unless WithCurrency says otherwise.
func (b *Bank) NewDeposit(amount decimal.Decimal, target *Account, opts ...TxOption) (*Transaction, error) {
	if target == nil {
		return nil, b.rejectTx(models.Deposit, fmt.Errorf("%w: deposit needs a target", ErrMissingEndpoint))
	}
	return b.newTransaction(models.Deposit, amount, nil, target, target.currency, opts)
}

// NewWithdrawal builds a withdrawal of amount from source. The amount is in
// the source's currency unless WithCurrency says otherwise.
func (b *Bank) NewWithdrawal(amount decimal.Decimal, source *Account, opts ...TxOption) (*Transaction, error) {
	if source == nil {
		return nil, b.rejectTx(models.Withdrawal, fmt.Errorf("%w: withdrawal needs a source", ErrMissingEndpoint))
	}
	return b.newTransaction(models.Withdrawal, amount, source, nil, source.currency, opts)
}

// NewTransfer builds a transfer of amount, in the source currency, from
// source to target.
func (b *Bank) NewTransfer(amount decimal.Decimal, source, target *Account, opts ...TxOption) (*Transaction, error) {
	if source == nil || target == nil {
		return nil, b.rejectTx(models.Transfer, fmt.Errorf("%w: transfer needs both a source and a target", ErrMissingEndpoint))
	}
	return b.newTransaction(models.Transfer, amount, source, target, source.currency, opts)
}

// NewInterestAccrual builds an accrual for a savings or credit account. Its
// amount is computed when executed.
func (b *Bank) NewInterestAccrual(target *Account, opts ...TxOption) (*Transaction, error) {
	if target == nil {
		return nil, b.rejectTx(models.InterestAccrual, fmt.Errorf("%w: interest accrual needs a target", ErrMissingEndpoint))
	}
	if target.kind == Checking {
		return nil, b.rejectTx(models.InterestAccrual, fmt.Errorf("%w: %s", ErrUnsupportedAccountType, target))
	}
	return b.newTransaction(models.InterestAccrual, decimal.Zero, nil, target, target.currency, opts)
}

func (b *Bank) newTransaction(typ models.TransactionType, amount decimal.Decimal, source, target *Account, code currency.Code, opts []TxOption) (*Transaction, error) {
	if amount.IsNegative() {
		return nil, b.rejectTx(typ, fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidAmount, amount))
	}
	for _, acc := range []*Account{source, target} {
		if acc != nil && !b.owns(acc) {
			return nil, b.rejectTx(typ, fmt.Errorf("%w: %s is not registered with %s", ErrInvalidAccountReference, acc, b.name))
		}
	}

	t := &Transaction{
		reference: uuid.New().String(),
		typ:       typ,
		source:    source,
		target:    target,
		amount:    amount,
		currency:  code,
		createdAt: b.env.now(),
		state:     StateValidated,
		applied:   decimal.Zero,
		env:       b.env,
	}
	for _, opt := range opts {
		opt(t)
	}
	if !t.currency.Valid() {
		return nil, b.rejectTx(typ, fmt.Errorf("%w: %q", ErrInvalidCurrency, t.currency))
	}
	if (typ == models.Transfer || typ == models.InterestAccrual) && t.currency != code {
		return nil, b.rejectTx(typ, fmt.Errorf("%w: %s amounts are in %s", ErrInvalidCurrency, typ, code))
	}

	t.id = b.txSeq.Next()
	b.env.info(fmt.Sprintf("created %s transaction #%d", typ, t.id))
	return t, nil
}

func (b *Bank) rejectTx(typ models.TransactionType, err error) error {
	return b.env.fail(fmt.Sprintf("%s transaction rejected", typ), err)
}

// Execute applies the transaction to its accounts. Blocked endpoints are
// rejected before anything is touched. A transfer whose deposit leg fails
// re-credits the source, so the source balance is unchanged on error.
func (t *Transaction) Execute(ctx context.Context) error {
	if t.state != StateValidated {
		return fmt.Errorf("%w: transaction #%d is %s", ErrAlreadyExecuted, t.id, t.state)
	}

	err := t.checkBlocked()
	if err == nil {
		err = t.run(ctx)
	}

	if err != nil {
		t.state = StateFailed
		if t.status == "" {
			t.status = models.Failed
		}
		t.err = err
		t.env.fail(fmt.Sprintf("transaction #%d failed", t.id), err)
	} else {
		t.state = StateExecuted
		t.status = models.Completed
		t.env.info(fmt.Sprintf("executed %s transaction #%d, applied %s", t.typ, t.id, t.applied))
	}

	t.publish(ctx)
	return err
}

func (t *Transaction) checkBlocked() error {
	for _, acc := range []*Account{t.source, t.target} {
		if acc != nil && acc.blocked {
			return fmt.Errorf("%w: #%d", ErrAccountBlocked, acc.id)
		}
	}
	return nil
}

func (t *Transaction) run(ctx context.Context) error {
	switch t.typ {
	case models.Deposit:
		applied, err := t.target.deposit(ctx, t.amount, t.currency)
		if err != nil {
			return err
		}
		t.applied = applied
		return nil

	case models.Withdrawal:
		applied, err := t.source.withdraw(ctx, t.amount, t.currency)
		if err != nil {
			return err
		}
		t.applied = applied
		return nil

	case models.Transfer:
		return t.transfer(ctx)

	case models.InterestAccrual:
		interest, err := t.target.CalculateInterest()
		if err != nil {
			return err
		}
		t.amount = interest
		t.applied = interest
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedAccountType, t.typ)
}

func (t *Transaction) transfer(ctx context.Context) error {
	converted, err := t.env.conv.Convert(ctx, t.amount, t.source.currency, t.target.currency)
	if err != nil {
		return err
	}

	if _, err := t.source.withdraw(ctx, t.amount, t.source.currency); err != nil {
		return err
	}

	applied, err := t.target.deposit(ctx, converted, t.target.currency)
	if err != nil {
		t.source.reverseWithdrawal(t.amount)
		t.status = models.Compensated
		t.env.warn(fmt.Sprintf("transaction #%d: deposit to #%d failed, re-credited %s %s to #%d",
			t.id, t.target.id, t.amount, t.source.currency, t.source.id), err)
		return err
	}

	t.applied = applied
	return nil
}

func (t *Transaction) publish(ctx context.Context) {
	if t.env.journal == nil {
		return
	}
	if err := t.env.journal.Publish(ctx, t.Record()); err != nil {
		t.env.warn(fmt.Sprintf("failed to journal transaction #%d", t.id), err)
	}
}

// Record builds the journal entry for the transaction in its current state.
func (t *Transaction) Record() *models.TransactionRecord {
	rec := &models.TransactionRecord{
		ID:            uuid.New().String(),
		Reference:     t.reference,
		BankID:        t.env.bank,
		TransactionID: t.id,
		Type:          t.typ,
		Status:        t.status,
		Amount:        t.amount,
		Currency:      string(t.currency),
		Applied:       t.applied,
		CreatedAt:     t.createdAt,
		ExecutedAt:    t.env.now(),
	}
	if t.source != nil {
		rec.SourceAccountID = t.source.id
		rec.Source = t.source.Snapshot()
	}
	if t.target != nil {
		rec.TargetAccountID = t.target.id
		rec.Target = t.target.Snapshot()
	}
	if t.err != nil {
		rec.Error = t.err.Error()
	}
	return rec
}
