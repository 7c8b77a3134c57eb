package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abkawan/retail-ledger/internal/models"
	_ "github.com/lib/pq"
)

// ErrRecordNotFound is returned when no journal record matches
var ErrRecordNotFound = errors.New("journal record not found")

// Postgres.go keeps the append-only transaction journal in PostgreSQL
type Postgres struct {
	db *sql.DB
}

// creates a new Postgres instance
func NewPostgres(connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// initialize the journal schema
func (p *Postgres) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS transaction_journal (
		id VARCHAR(36) PRIMARY KEY,
		reference VARCHAR(64) NOT NULL UNIQUE,
		bank_id VARCHAR(36) NOT NULL,
		transaction_id BIGINT NOT NULL,
		type VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL,
		source_account_id BIGINT,
		target_account_id BIGINT,
		amount NUMERIC(30, 10) NOT NULL,
		currency CHAR(3) NOT NULL,
		applied NUMERIC(30, 10) NOT NULL,
		source_snapshot JSONB,
		target_snapshot JSONB,
		error TEXT,
		created_at TIMESTAMP NOT NULL,
		executed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_source ON transaction_journal (bank_id, source_account_id);
	CREATE INDEX IF NOT EXISTS idx_journal_target ON transaction_journal (bank_id, target_account_id);`

	_, err := p.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create journal table: %w", err)
	}
	return nil
}

// appends a record; returns false when the reference was already journaled
func (p *Postgres) SaveRecord(ctx context.Context, rec *models.TransactionRecord) (bool, error) {
	source, err := marshalSnapshot(rec.Source)
	if err != nil {
		return false, err
	}
	target, err := marshalSnapshot(rec.Target)
	if err != nil {
		return false, err
	}

	query := `
	INSERT INTO transaction_journal (
		id, reference, bank_id, transaction_id, type, status, source_account_id, target_account_id,
		amount, currency, applied, source_snapshot, target_snapshot, error, created_at, executed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (reference) DO NOTHING`

	res, err := p.db.ExecContext(ctx, query,
		rec.ID, rec.Reference, rec.BankID, rec.TransactionID, rec.Type, rec.Status,
		nullableID(rec.SourceAccountID), nullableID(rec.TargetAccountID),
		rec.Amount, rec.Currency, rec.Applied, source, target,
		sql.NullString{String: rec.Error, Valid: rec.Error != ""},
		rec.CreatedAt, rec.ExecutedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert journal record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n == 1, nil
}

const recordColumns = `
	id, reference, bank_id, transaction_id, type, status, source_account_id, target_account_id,
	amount, currency, applied, source_snapshot, target_snapshot, error, created_at, executed_at`

// retrieves a journal record by ID
func (p *Postgres) GetRecord(ctx context.Context, id string) (*models.TransactionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM transaction_journal WHERE id = $1`

	rec, err := scanRecord(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get journal record: %w", err)
	}
	return rec, nil
}

// retrieves the records touching one bank's account, newest first
func (p *Postgres) GetRecordsByAccountID(ctx context.Context, bankID string, accountID int64, limit, offset int) ([]*models.TransactionRecord, error) {
	query := `SELECT ` + recordColumns + `
	FROM transaction_journal
	WHERE bank_id = $1 AND (source_account_id = $2 OR target_account_id = $2)
	ORDER BY executed_at DESC, transaction_id DESC
	LIMIT $3 OFFSET $4`

	rows, err := p.db.QueryContext(ctx, query, bankID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var records []*models.TransactionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.TransactionRecord, error) {
	var (
		rec              models.TransactionRecord
		source, target   sql.NullInt64
		srcSnap, dstSnap []byte
		errText          sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.Reference, &rec.BankID, &rec.TransactionID, &rec.Type, &rec.Status, &source, &target,
		&rec.Amount, &rec.Currency, &rec.Applied, &srcSnap, &dstSnap, &errText, &rec.CreatedAt, &rec.ExecutedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.SourceAccountID = source.Int64
	rec.TargetAccountID = target.Int64
	rec.Error = errText.String
	if rec.Source, err = unmarshalSnapshot(srcSnap); err != nil {
		return nil, err
	}
	if rec.Target, err = unmarshalSnapshot(dstSnap); err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// snapshots are sent as text; lib/pq would encode []byte as bytea
func marshalSnapshot(s *models.AccountSnapshot) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal account snapshot: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalSnapshot(b []byte) (*models.AccountSnapshot, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s models.AccountSnapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account snapshot: %w", err)
	}
	return &s, nil
}
