package repository

import (
	"context"
	"errors"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository defines storage operations for registration accounts and
// one-time passcodes.
type AccountRepository interface {
	CreateAccount(ctx context.Context, acc models.Account) (*models.Account, error)
	GetAccount(ctx context.Context, accountId string) (*models.Account, error)
	GetPendingAccounts(ctx context.Context, limit, offset int) ([]models.Account, error)
	UpdateAccountStatus(ctx context.Context, accountId string, status models.AccountStatus) (*models.Account, error)
	SaveVerification(ctx context.Context, v models.Verification) error
	GetVerification(ctx context.Context, email, code string) (*models.Verification, error)
	DeleteVerification(ctx context.Context, email string) error
}

// PostgresAccountRepository implements AccountRepository on PostgreSQL.
type PostgresAccountRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

const accountColumns = `id, username, password_hash, vendor_name, email, contact_number, status, created_at`

func scanAccount(row pgx.Row, acc *models.Account) error {
	return row.Scan(
		&acc.ID,
		&acc.Username,
		&acc.PasswordHash,
		&acc.VendorName,
		&acc.Email,
		&acc.ContactNumber,
		&acc.Status,
		&acc.CreatedAt,
	)
}

// CreateAccount inserts a new pending account.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, acc models.Account) (*models.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	acc.Status = models.PendingAccount
	acc.CreatedAt = time.Now().UTC()

	_, err := r.DB.Exec(ctx, `
		INSERT INTO account (id, username, password_hash, vendor_name, email, contact_number, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acc.ID, acc.Username, acc.PasswordHash, acc.VendorName, acc.Email, acc.ContactNumber, acc.Status, acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetAccount returns one account, or nil if none exists.
func (r *PostgresAccountRepository) GetAccount(ctx context.Context, accountId string) (*models.Account, error) {
	var acc models.Account
	err := scanAccount(r.DB.QueryRow(ctx, `SELECT `+accountColumns+` FROM account WHERE id = $1`, accountId), &acc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

// GetPendingAccounts returns a page of accounts awaiting approval.
func (r *PostgresAccountRepository) GetPendingAccounts(ctx context.Context, limit, offset int) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, models.PendingAccount, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := scanAccount(rows, &acc); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// UpdateAccountStatus sets the account status and returns the updated row.
func (r *PostgresAccountRepository) UpdateAccountStatus(ctx context.Context, accountId string, status models.AccountStatus) (*models.Account, error) {
	var acc models.Account
	query := `UPDATE account SET status = $1 WHERE id = $2 RETURNING ` + accountColumns
	err := scanAccount(r.DB.QueryRow(ctx, query, status, accountId), &acc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

// SaveVerification stores a one-time passcode, replacing any prior code for
// the same email.
func (r *PostgresAccountRepository) SaveVerification(ctx context.Context, v models.Verification) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO verification (email, otp, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at`,
		v.Email, v.Code, v.ExpiresAt)
	return err
}

// GetVerification returns a matching passcode row, or nil if none exists.
func (r *PostgresAccountRepository) GetVerification(ctx context.Context, email, code string) (*models.Verification, error) {
	var v models.Verification
	err := r.DB.QueryRow(ctx, `SELECT email, otp, expires_at FROM verification WHERE email = $1 AND otp = $2`, email, code).
		Scan(&v.Email, &v.Code, &v.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// DeleteVerification removes any passcode issued to the email.
func (r *PostgresAccountRepository) DeleteVerification(ctx context.Context, email string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM verification WHERE email = $1`, email)
	return err
}
