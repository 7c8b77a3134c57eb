package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/models"
)

type fixedRates map[currency.Code]currency.Rate

func (r fixedRates) FetchRates(ctx context.Context) (map[currency.Code]currency.Rate, error) {
	return r, nil
}

var testRates = fixedRates{
	currency.USD: {Buy: decimal.NewFromInt(40), Sell: decimal.NewFromInt(42)},
	currency.EUR: {Buy: decimal.NewFromInt(44), Sell: decimal.NewFromInt(46)},
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advanceMonths(n int) {
	c.now = c.now.AddDate(0, n, 0)
}

type recordedEvent struct {
	level   models.EventLevel
	message string
	err     error
}

type recordingSink struct {
	events []recordedEvent
}

func (s *recordingSink) Record(level models.EventLevel, message string, err error) {
	s.events = append(s.events, recordedEvent{level, message, err})
}

func (s *recordingSink) count(level models.EventLevel) int {
	n := 0
	for _, e := range s.events {
		if e.level == level {
			n++
		}
	}
	return n
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Publish(ctx context.Context, rec *models.TransactionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestBank(t *testing.T, opts ...BankOption) (*Bank, *testClock) {
	t.Helper()
	clk := &testClock{now: time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)}
	conv := currency.NewConverter(testRates, currency.WithClock(clk.Now))
	opts = append([]BankOption{WithClock(clk.Now)}, opts...)
	return NewBank("Test Bank", "1 Khreshchatyk St", conv, opts...), clk
}

func newTestUser(t *testing.T, b *Bank) *User {
	t.Helper()
	u, err := b.AddUser("Olena", "Kovalenko", "olena@example.com", "")
	require.NoError(t, err)
	return u
}

func monthly(percent string) InterestTerms {
	return InterestTerms{Period: 1, Percent: dec(percent)}
}

func fund(t *testing.T, acc *Account, amount string) {
	t.Helper()
	require.NoError(t, acc.Deposit(context.Background(), dec(amount), acc.Currency()))
}

// driftingRates quotes a dearer dollar on every fetch.
type driftingRates struct {
	fetches int
}

func (d *driftingRates) FetchRates(ctx context.Context) (map[currency.Code]currency.Rate, error) {
	d.fetches++
	usd := decimal.NewFromInt(int64(40 + 10*d.fetches))
	return map[currency.Code]currency.Rate{
		currency.USD: {Buy: usd, Sell: usd},
		currency.EUR: {Buy: decimal.NewFromInt(60), Sell: decimal.NewFromInt(60)},
	}, nil
}

// newDriftingBank builds a bank whose cached rates have always expired by the
// next conversion.
func newDriftingBank(t *testing.T) (*Bank, *driftingRates) {
	t.Helper()
	src := &driftingRates{}
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(2 * time.Hour)
		return now
	}
	conv := currency.NewConverter(src, currency.WithClock(clock))
	return NewBank("Test Bank", "1 Khreshchatyk St", conv), src
}
