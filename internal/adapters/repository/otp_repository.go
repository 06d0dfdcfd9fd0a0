package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/ports"
)

// OTPRepositoryImpl implements the OTPRepository interface
type OTPRepositoryImpl struct {
	db *sqlx.DB
}

// NewOTPRepository creates a new otp repository
func NewOTPRepository(db *sqlx.DB) ports.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

func (r *OTPRepositoryImpl) Create(ctx context.Context, record *entities.OTPRecord) error {
	query := `
		INSERT INTO otps (email, code_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, record.Email, record.CodeHash).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("create otp record: %w", err)
	}

	return nil
}

// LatestByEmail returns the most recently created record for the address.
// Newest-first ordering is the contract that makes "last issued wins" hold
// when two issuances race.
func (r *OTPRepositoryImpl) LatestByEmail(ctx context.Context, email string) (*entities.OTPRecord, error) {
	query := `
		SELECT id, email, code_hash, created_at
		FROM otps
		WHERE email = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var record entities.OTPRecord
	err := r.db.GetContext(ctx, &record, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNoActiveOTP
		}
		return nil, fmt.Errorf("get latest otp: %w", err)
	}

	return &record, nil
}

func (r *OTPRepositoryImpl) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM otps WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return deleted, nil
}
