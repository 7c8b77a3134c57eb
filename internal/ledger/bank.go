package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abkawan/retail-ledger/internal/currency"
)

// Bank registers users and is the only place accounts are opened. It owns
// the sequences that number users, accounts and transactions. Those numbers
// restart with every Bank, so journal records also carry the bank's instance
// ID.
type Bank struct {
	name    string
	address string

	users    map[int64]*User
	accounts map[int64]*Account

	userSeq    *Sequence
	accountSeq *Sequence
	txSeq      *Sequence

	env *env
}

// BankOption configures a Bank.
type BankOption func(*Bank)

// WithEventSink routes the event log to sink.
func WithEventSink(sink EventSink) BankOption {
	return func(b *Bank) {
		if sink != nil {
			b.env.sink = sink
		}
	}
}

// WithJournal publishes every executed transaction to j.
func WithJournal(j Journal) BankOption {
	return func(b *Bank) {
		b.env.journal = j
	}
}

// WithClock replaces time.Now for timestamps and interest accrual.
func WithClock(now func() time.Time) BankOption {
	return func(b *Bank) {
		if now != nil {
			b.env.now = now
		}
	}
}

// NewBank creates an empty bank converting currencies through conv.
func NewBank(name, address string, conv Converter, opts ...BankOption) *Bank {
	b := &Bank{
		name:       name,
		address:    address,
		users:      make(map[int64]*User),
		accounts:   make(map[int64]*Account),
		userSeq:    NewSequence(),
		accountSeq: NewSequence(),
		txSeq:      NewSequence(),
		env: &env{
			bank: uuid.New().String(),
			conv: conv,
			sink: nopSink{},
			now:  time.Now,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.env.info(fmt.Sprintf("bank %q created at %s, instance %s", b.name, b.address, b.env.bank))
	return b
}

func (b *Bank) Name() string { return b.name }

func (b *Bank) Address() string { return b.address }

// InstanceID scopes the bank's user, account and transaction numbers.
func (b *Bank) InstanceID() string { return b.env.bank }

func (b *Bank) String() string {
	return fmt.Sprintf("Bank: %s, address: %s", b.name, b.address)
}

// AddUser registers a new user. Email and phone are optional.
func (b *Bank) AddUser(firstName, lastName, email, phone string) (*User, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, b.env.fail("user registration rejected",
			fmt.Errorf("%w: first and last name are required", ErrInvalidUser))
	}

	u := &User{
		id:        b.userSeq.Next(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		accounts:  make(map[int64]*Account),
	}
	b.users[u.id] = u

	b.env.info(fmt.Sprintf("registered %s", u))
	return u, nil
}

func (b *Bank) User(id int64) (*User, bool) {
	u, ok := b.users[id]
	return u, ok
}

func (b *Bank) Account(id int64) (*Account, bool) {
	acc, ok := b.accounts[id]
	return acc, ok
}

// Accounts returns every registered account ordered by ID.
func (b *Bank) Accounts() []*Account {
	out := make([]*Account, 0, len(b.accounts))
	for _, acc := range b.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// OpenChecking opens a checking account with a zero balance.
func (b *Bank) OpenChecking(owner *User, code currency.Code) (*Account, error) {
	acc, err := b.newAccount(Checking, owner, code)
	if err != nil {
		return nil, err
	}
	return b.register(acc), nil
}

// OpenSavings opens a savings account; interest is first due one full period from now.
func (b *Bank) OpenSavings(owner *User, code currency.Code, terms InterestTerms) (*Account, error) {
	acc, err := b.newAccount(Savings, owner, code)
	if err != nil {
		return nil, err
	}
	if err := terms.validate(); err != nil {
		return nil, b.env.fail("savings account rejected", err)
	}
	acc.terms = terms
	acc.lastInterest = b.env.now()
	return b.register(acc), nil
}

// OpenCredit opens a credit account whose available balance starts at limit.
func (b *Bank) OpenCredit(owner *User, code currency.Code, limit decimal.Decimal, terms InterestTerms) (*Account, error) {
	acc, err := b.newAccount(Credit, owner, code)
	if err != nil {
		return nil, err
	}
	if !limit.IsPositive() {
		return nil, b.env.fail("credit account rejected",
			fmt.Errorf("%w: credit limit must be positive, got %s", ErrInvalidAmount, limit))
	}
	if err := terms.validate(); err != nil {
		return nil, b.env.fail("credit account rejected", err)
	}
	acc.terms = terms
	acc.lastInterest = b.env.now()
	acc.limit = limit
	acc.balance = limit
	return b.register(acc), nil
}

// Closure reports the outcome of CloseAccount.
type Closure struct {
	Closed      bool
	Outstanding decimal.Decimal
}

// CloseAccount blocks acc when nothing is outstanding on it: a zero balance
// for checking and savings, a fully restored limit and no unpaid interest for
// credit. Otherwise the account is left untouched and the outstanding amount
// is reported.
func (b *Bank) CloseAccount(acc *Account) (Closure, error) {
	if !b.owns(acc) {
		return Closure{}, b.env.fail("account closure rejected", fmt.Errorf("%w: not registered with %s", ErrInvalidAccountReference, b.name))
	}

	outstanding := acc.Outstanding()
	if !outstanding.IsZero() {
		b.env.warn(fmt.Sprintf("account #%d not closed, %s %s outstanding", acc.id, outstanding, acc.currency), nil)
		return Closure{Outstanding: outstanding}, nil
	}

	acc.Block()
	b.env.info(fmt.Sprintf("closed account #%d", acc.id))
	return Closure{Closed: true, Outstanding: decimal.Zero}, nil
}

func (b *Bank) newAccount(kind Kind, owner *User, code currency.Code) (*Account, error) {
	msg := fmt.Sprintf("%s account rejected", kind)
	if !code.Valid() {
		return nil, b.env.fail(msg, fmt.Errorf("%w: %q", ErrInvalidCurrency, code))
	}
	if owner == nil {
		return nil, b.env.fail(msg, fmt.Errorf("%w: no owner given", ErrInvalidOwner))
	}
	if b.users[owner.id] != owner {
		return nil, b.env.fail(msg, fmt.Errorf("%w: %s is not registered with %s", ErrInvalidOwner, owner, b.name))
	}
	return &Account{
		kind:     kind,
		currency: code,
		balance:  decimal.Zero,
		owner:    owner,
		env:      b.env,
	}, nil
}

// register assigns the ID only once the account passed validation so rejected
// accounts do not consume identifiers.
func (b *Bank) register(acc *Account) *Account {
	acc.id = b.accountSeq.Next()
	b.accounts[acc.id] = acc
	acc.owner.addAccount(acc)
	b.env.info(fmt.Sprintf("opened %s for %s", acc, acc.owner))
	return acc
}

func (b *Bank) owns(acc *Account) bool {
	return acc != nil && b.accounts[acc.id] == acc
}
