package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/abkawan/retail-ledger/internal/models"
)

var ErrInvalidRecord = errors.New("invalid journal record")

// JournalStore is the append-only transaction journal
type JournalStore interface {
	SaveRecord(ctx context.Context, rec *models.TransactionRecord) (bool, error)
	GetRecord(ctx context.Context, id string) (*models.TransactionRecord, error)
	GetRecordsByAccountID(ctx context.Context, bankID string, accountID int64, limit, offset int) ([]*models.TransactionRecord, error)
}

// RecordConsumer delivers queued journal records
type RecordConsumer interface {
	ConsumeRecords(ctx context.Context, handle func(context.Context, *models.TransactionRecord) error) error
}

// handles journal operations
type JournalService struct {
	store    JournalStore
	consumer RecordConsumer
}

// creates a new JournalService
func NewJournalService(store JournalStore, consumer RecordConsumer) *JournalService {
	return &JournalService{
		store:    store,
		consumer: consumer,
	}
}

// stores a queued record; records already journaled under the same reference are skipped
func (s *JournalService) ProcessRecord(ctx context.Context, rec *models.TransactionRecord) error {
	if rec.ID == "" || rec.Reference == "" || rec.BankID == "" || rec.TransactionID == 0 {
		return fmt.Errorf("%w: id, reference, bank and transaction id are required", ErrInvalidRecord)
	}
	if rec.SourceAccountID == 0 && rec.TargetAccountID == 0 {
		return fmt.Errorf("%w: record %s touches no account", ErrInvalidRecord, rec.Reference)
	}

	inserted, err := s.store.SaveRecord(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to journal record: %w", err)
	}

	if !inserted {
		log.Printf("Skipping duplicate journal record %s", rec.Reference)
	}
	return nil
}

// GetTransaction retrieves a journal record by ID
func (s *JournalService) GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return rec, nil
}

// retrieves journal records for an account of one bank instance
func (s *JournalService) GetTransactionsByAccountID(ctx context.Context, bankID string, accountID int64, limit, offset int) ([]*models.TransactionRecord, error) {
	recs, err := s.store.GetRecordsByAccountID(ctx, bankID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return recs, nil
}

// starts consuming the journal queue
func (s *JournalService) StartProcessor(ctx context.Context) error {
	err := s.consumer.ConsumeRecords(ctx, func(ctx context.Context, rec *models.TransactionRecord) error {
		if err := s.ProcessRecord(ctx, rec); err != nil {
			if errors.Is(err, ErrInvalidRecord) {
				// redelivery cannot fix a malformed record
				log.Printf("Dropping journal record %s: %v", rec.Reference, err)
				return nil
			}
			return err
		}
		log.Printf("Journaled %s transaction #%d (%s)", rec.Type, rec.TransactionID, rec.Status)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to consume journal records: %w", err)
	}

	return nil
}
