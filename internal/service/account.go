package service

import (
	"context"
	"fmt"

	"github.com/abkawan/retail-ledger/internal/models"
)

// builds account views from the journal
type AccountService struct {
	journal JournalStore
}

// creates a new Account Service
func NewAccountService(journal JournalStore) *AccountService {
	return &AccountService{
		journal: journal,
	}
}

// returns the latest journal entries for an account and the state it was left in
func (s *AccountService) GetActivity(ctx context.Context, bankID string, accountID int64, limit, offset int) (*models.AccountActivity, error) {
	if bankID == "" {
		return nil, fmt.Errorf("missing bank id")
	}
	if accountID <= 0 {
		return nil, fmt.Errorf("invalid account id %d", accountID)
	}

	recs, err := s.journal.GetRecordsByAccountID(ctx, bankID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get account activity: %w", err)
	}

	activity := &models.AccountActivity{
		BankID:       bankID,
		AccountID:    accountID,
		Transactions: make([]*models.TransactionResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		activity.Transactions = append(activity.Transactions, models.NewTransactionResponse(rec))

		// records arrive newest first
		if activity.LastSnapshot == nil {
			if snap := rec.SnapshotOf(accountID); snap != nil {
				activity.LastSnapshot = snap
				activity.LastActivity = rec.ExecutedAt
			}
		}
	}

	return activity, nil
}
