package queue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abkawan/retail-ledger/internal/models"
)

func TestDecodeRejectsRecordsWithoutReference(t *testing.T) {
	_, err := Decode([]byte(`{"id":"abc","type":"deposit"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeKeepsDecimalPrecision(t *testing.T) {
	rec := &models.TransactionRecord{
		ID:            "f1c6a4a8-1b7e-4d55-9a0b-0d1b5c7f9e21",
		Reference:     "ref-7",
		BankID:        "2e7d4c1a-9b3f-4a6e-8d5c-7f1e2a3b4c5d",
		TransactionID: 7,
		Type:          models.Transfer,
		Status:        models.Completed,
		Amount:        decimal.RequireFromString("100"),
		Applied:       decimal.RequireFromString("2.3863636363636364"),
		Currency:      "USD",
		Target:        &models.AccountSnapshot{ID: 2, Kind: models.Checking, Balance: decimal.RequireFromString("2.3863636363636364")},
		ExecutedAt:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	body, err := Encode(rec)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"applied":"2.3863636363636364"`)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.True(t, got.Applied.Equal(rec.Applied))
	assert.Equal(t, int64(2), got.Target.ID)
	assert.Equal(t, rec.BankID, got.BankID)
}
