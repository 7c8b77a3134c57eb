package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/db"
	"github.com/abkawan/retail-ledger/internal/models"
	"github.com/abkawan/retail-ledger/internal/service"
)

type fakeJournal struct {
	records []*models.TransactionRecord
}

func (f *fakeJournal) SaveRecord(ctx context.Context, rec *models.TransactionRecord) (bool, error) {
	f.records = append(f.records, rec)
	return true, nil
}

func (f *fakeJournal) GetRecord(ctx context.Context, id string) (*models.TransactionRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, db.ErrRecordNotFound
}

func (f *fakeJournal) GetRecordsByAccountID(ctx context.Context, bankID string, accountID int64, limit, offset int) ([]*models.TransactionRecord, error) {
	var out []*models.TransactionRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].BankID == bankID && f.records[i].Touches(accountID) {
			out = append(out, f.records[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeEvents struct {
	events []*models.Event
	err    error
}

func (f *fakeEvents) GetEvents(ctx context.Context, level models.EventLevel, limit, offset int) ([]*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Event
	for _, e := range f.events {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out, nil
}

type staticRates map[currency.Code]currency.Rate

func (s staticRates) FetchRates(ctx context.Context) (map[currency.Code]currency.Rate, error) {
	return s, nil
}

const (
	firstRun  = "3f6b2a10-8c4d-4e7f-9a1b-2c3d4e5f6a7b"
	secondRun = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, &fakeEvents{events: []*models.Event{
		{ID: "e1", Level: models.LevelInfo, Message: "opened checking account #1"},
		{ID: "e2", Level: models.LevelException, Message: "withdrawal on account #1 rejected", Error: "insufficient funds"},
	}})
}

func newTestServerWith(t *testing.T, events *fakeEvents) *httptest.Server {
	t.Helper()
	executed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	journal := &fakeJournal{records: []*models.TransactionRecord{
		{
			ID: "rec-1", Reference: "ref-1", BankID: firstRun, TransactionID: 1, Type: models.Deposit, Status: models.Completed,
			TargetAccountID: 1, Amount: decimal.NewFromInt(500), Applied: decimal.NewFromInt(500), Currency: "UAH",
			Target:     &models.AccountSnapshot{BankID: firstRun, ID: 1, Kind: models.Checking, Currency: "UAH", Balance: decimal.NewFromInt(500)},
			ExecutedAt: executed,
		},
		{
			ID: "rec-2", Reference: "ref-2", BankID: firstRun, TransactionID: 2, Type: models.Withdrawal, Status: models.Completed,
			SourceAccountID: 1, Amount: decimal.NewFromInt(200), Applied: decimal.NewFromInt(200), Currency: "UAH",
			Source:     &models.AccountSnapshot{BankID: firstRun, ID: 1, Kind: models.Checking, Currency: "UAH", Balance: decimal.NewFromInt(300)},
			ExecutedAt: executed.Add(time.Minute),
		},
		{
			// same account and transaction numbers, written by a later run
			ID: "rec-3", Reference: "ref-3", BankID: secondRun, TransactionID: 1, Type: models.Deposit, Status: models.Completed,
			TargetAccountID: 1, Amount: decimal.NewFromInt(9000), Applied: decimal.NewFromInt(9000), Currency: "UAH",
			Target:     &models.AccountSnapshot{BankID: secondRun, ID: 1, Kind: models.Checking, Currency: "UAH", Balance: decimal.NewFromInt(9000)},
			ExecutedAt: executed.Add(24 * time.Hour),
		},
	}}
	quoter := currency.NewConverter(staticRates{
		currency.USD: {Buy: decimal.NewFromInt(40), Sell: decimal.NewFromInt(42)},
	})

	h := NewHandler(
		service.NewAccountService(journal),
		service.NewJournalService(journal, nil),
		service.NewEventService(events),
		quoter,
	)
	router := mux.NewRouter()
	SetupRoutes(router, h)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantCode int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	getJSON(t, srv.URL+"/health", http.StatusOK, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestGetTransaction(t *testing.T) {
	srv := newTestServer(t)

	var rec models.TransactionRecord
	getJSON(t, srv.URL+"/transactions/rec-2", http.StatusOK, &rec)
	assert.Equal(t, models.Withdrawal, rec.Type)
	assert.Equal(t, firstRun, rec.BankID)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(200)))

	getJSON(t, srv.URL+"/transactions/nope", http.StatusNotFound, nil)
}

func TestGetTransactions(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/banks/" + firstRun

	var list []models.TransactionResponse
	getJSON(t, base+"/accounts/1/transactions", http.StatusOK, &list)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].TransactionID)

	getJSON(t, base+"/accounts/1/transactions?limit=1&offset=1", http.StatusOK, &list)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].TransactionID)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(500)))

	getJSON(t, base+"/accounts/abc/transactions", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/banks/not-a-uuid/accounts/1/transactions", http.StatusBadRequest, nil)
}

func TestGetAccountActivity(t *testing.T) {
	srv := newTestServer(t)

	var activity models.AccountActivity
	getJSON(t, srv.URL+"/banks/"+firstRun+"/accounts/1/activity", http.StatusOK, &activity)
	require.NotNil(t, activity.LastSnapshot)
	assert.Equal(t, firstRun, activity.BankID)
	assert.True(t, activity.LastSnapshot.Balance.Equal(decimal.NewFromInt(300)))
	assert.Len(t, activity.Transactions, 2)

	getJSON(t, srv.URL+"/banks/"+firstRun+"/accounts/42/activity", http.StatusNotFound, nil)
}

func TestGetAccountActivity_RunsAreKeptApart(t *testing.T) {
	srv := newTestServer(t)

	var first, second models.AccountActivity
	getJSON(t, srv.URL+"/banks/"+firstRun+"/accounts/1/activity", http.StatusOK, &first)
	getJSON(t, srv.URL+"/banks/"+secondRun+"/accounts/1/activity", http.StatusOK, &second)

	for _, tx := range first.Transactions {
		assert.Equal(t, firstRun, tx.BankID)
	}
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, secondRun, second.Transactions[0].BankID)
	assert.True(t, first.LastSnapshot.Balance.Equal(decimal.NewFromInt(300)))
	assert.True(t, second.LastSnapshot.Balance.Equal(decimal.NewFromInt(9000)))
}

func TestGetEvents(t *testing.T) {
	srv := newTestServer(t)

	var events []models.Event
	getJSON(t, srv.URL+"/events?level=exception", http.StatusOK, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "insufficient funds", events[0].Error)

	getJSON(t, srv.URL+"/events?level=verbose", http.StatusBadRequest, nil)
}

func TestGetEvents_StoreFailure(t *testing.T) {
	srv := newTestServerWith(t, &fakeEvents{err: errors.New("server selection timeout")})

	getJSON(t, srv.URL+"/events", http.StatusInternalServerError, nil)
	getJSON(t, srv.URL+"/events?level=verbose", http.StatusBadRequest, nil)
}

func TestGetRates(t *testing.T) {
	srv := newTestServer(t)

	var rates map[currency.Code]currency.Rate
	getJSON(t, srv.URL+"/rates", http.StatusOK, &rates)
	require.Contains(t, rates, currency.USD)
	assert.True(t, rates[currency.USD].Buy.Equal(decimal.NewFromInt(40)))
	assert.True(t, rates[currency.USD].Sell.Equal(decimal.NewFromInt(42)))
}

func TestConvert(t *testing.T) {
	srv := newTestServer(t)

	var quote ConversionResponse
	getJSON(t, srv.URL+"/rates/convert?amount=10&from=USD&to=UAH", http.StatusOK, &quote)
	assert.True(t, quote.Converted.Equal(decimal.NewFromInt(420)))

	getJSON(t, srv.URL+"/rates/convert?amount=10&from=UAH&to=UAH", http.StatusOK, &quote)
	assert.True(t, quote.Converted.Equal(decimal.NewFromInt(10)))

	getJSON(t, srv.URL+"/rates/convert?amount=10&from=GBP&to=UAH", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/rates/convert?amount=10&from=UAH&to=EUR", http.StatusServiceUnavailable, nil)
	getJSON(t, srv.URL+"/rates/convert?amount=ten&from=USD&to=UAH", http.StatusBadRequest, nil)
}
