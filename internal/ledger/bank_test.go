package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abkawan/retail-ledger/internal/currency"
)

func TestBank_AddUser(t *testing.T) {
	b, _ := newTestBank(t)

	first, err := b.AddUser("Olena", "Kovalenko", "", "")
	require.NoError(t, err)
	second, err := b.AddUser("Ivan", "Franko", "ivan@example.com", "+380501234567")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID())
	assert.Equal(t, int64(2), second.ID())
	assert.Equal(t, "User #2: Ivan Franko", second.String())

	got, ok := b.User(2)
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = b.User(99)
	assert.False(t, ok)

	_, err = b.AddUser(" ", "Franko", "", "")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestBank_OpenAccountsIndexesBothRegistries(t *testing.T) {
	b, _ := newTestBank(t)
	user := newTestUser(t, b)

	checking, err := b.OpenChecking(user, currency.UAH)
	require.NoError(t, err)
	savings, err := b.OpenSavings(user, currency.USD, monthly("0.01"))
	require.NoError(t, err)
	credit, err := b.OpenCredit(user, currency.EUR, dec("1000"), monthly("0.02"))
	require.NoError(t, err)

	for i, acc := range []*Account{checking, savings, credit} {
		assert.Equal(t, int64(i+1), acc.ID())
		assert.Same(t, user, acc.Owner())
		assert.False(t, acc.Blocked())

		fromBank, ok := b.Account(acc.ID())
		require.True(t, ok)
		assert.Same(t, acc, fromBank)

		fromUser, ok := user.Account(acc.ID())
		require.True(t, ok)
		assert.Same(t, acc, fromUser)
	}

	assert.Equal(t, []*Account{checking, savings, credit}, user.Accounts())
	assert.Equal(t, []*Account{checking, savings, credit}, b.Accounts())
	assert.True(t, checking.Balance().IsZero())
	assert.True(t, credit.Balance().Equal(dec("1000")))
	assert.True(t, credit.Credit().IsZero())
}

func TestBank_OpenAccountValidation(t *testing.T) {
	b, _ := newTestBank(t)
	user := newTestUser(t, b)
	other, _ := newTestBank(t)
	stranger := newTestUser(t, other)

	_, err := b.OpenChecking(user, "GBP")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = b.OpenChecking(nil, currency.UAH)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = b.OpenChecking(stranger, currency.UAH)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = b.OpenSavings(user, currency.UAH, InterestTerms{Period: 0, Percent: dec("0.1")})
	assert.ErrorIs(t, err, ErrInvalidInterestParams)

	_, err = b.OpenSavings(user, currency.UAH, InterestTerms{Period: 1, Percent: dec("10")})
	assert.ErrorIs(t, err, ErrInvalidInterestParams)

	_, err = b.OpenCredit(user, currency.UAH, dec("0"), monthly("0.1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Empty(t, b.Accounts())

	acc, err := b.OpenChecking(user, currency.UAH)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID(), "rejected accounts must not consume identifiers")
}

func TestBank_CloseAccount(t *testing.T) {
	b, _ := newTestBank(t)
	user := newTestUser(t, b)

	t.Run("empty checking is closed", func(t *testing.T) {
		acc, err := b.OpenChecking(user, currency.UAH)
		require.NoError(t, err)

		res, err := b.CloseAccount(acc)
		require.NoError(t, err)
		assert.True(t, res.Closed)
		assert.True(t, acc.Blocked())
	})

	t.Run("funded savings stays open", func(t *testing.T) {
		acc, err := b.OpenSavings(user, currency.UAH, monthly("0.1"))
		require.NoError(t, err)
		fund(t, acc, "50")

		res, err := b.CloseAccount(acc)
		require.NoError(t, err)
		assert.False(t, res.Closed)
		assert.True(t, res.Outstanding.Equal(dec("50")))
		assert.False(t, acc.Blocked())
	})

	t.Run("repaid credit is closed", func(t *testing.T) {
		acc, err := b.OpenCredit(user, currency.UAH, dec("300"), monthly("0.1"))
		require.NoError(t, err)

		res, err := b.CloseAccount(acc)
		require.NoError(t, err)
		assert.True(t, res.Closed)
	})

	t.Run("credit in use stays open", func(t *testing.T) {
		acc, err := b.OpenCredit(user, currency.UAH, dec("300"), monthly("0.1"))
		require.NoError(t, err)
		require.NoError(t, acc.Withdraw(context.Background(), dec("120"), currency.UAH))

		res, err := b.CloseAccount(acc)
		require.NoError(t, err)
		assert.False(t, res.Closed)
		assert.True(t, res.Outstanding.Equal(dec("120")))
	})

	t.Run("foreign account", func(t *testing.T) {
		other, _ := newTestBank(t)
		acc, err := other.OpenChecking(newTestUser(t, other), currency.UAH)
		require.NoError(t, err)

		_, err = b.CloseAccount(acc)
		assert.ErrorIs(t, err, ErrInvalidAccountReference)
		assert.False(t, acc.Blocked())
	})
}

func TestSequence(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(0), seq.Last())

	seen := make(map[int64]bool)
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := seq.Next()
		assert.Greater(t, id, prev)
		assert.False(t, seen[id])
		seen[id] = true
		prev = id
	}
	assert.Equal(t, int64(100), seq.Last())
}
