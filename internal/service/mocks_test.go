package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/abkawan/retail-ledger/internal/models"
)

type MockJournalStore struct {
	mock.Mock
}

func (m *MockJournalStore) SaveRecord(ctx context.Context, rec *models.TransactionRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalStore) GetRecord(ctx context.Context, id string) (*models.TransactionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionRecord), args.Error(1)
}

func (m *MockJournalStore) GetRecordsByAccountID(ctx context.Context, bankID string, accountID int64, limit, offset int) ([]*models.TransactionRecord, error) {
	args := m.Called(ctx, bankID, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransactionRecord), args.Error(1)
}

type MockConsumer struct {
	mock.Mock
	handle func(context.Context, *models.TransactionRecord) error
}

func (m *MockConsumer) ConsumeRecords(ctx context.Context, handle func(context.Context, *models.TransactionRecord) error) error {
	m.handle = handle
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) GetEvents(ctx context.Context, level models.EventLevel, limit, offset int) ([]*models.Event, error) {
	args := m.Called(ctx, level, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}
