package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/account"
)

type accountRow struct {
	ID                int64        `db:"id"`
	Name              string       `db:"name"`
	Email             string       `db:"email"`
	PasswordHash      []byte       `db:"password_hash"`
	Role              string       `db:"role"`
	IsActive          bool         `db:"is_active"`
	ResetTokenHash    []byte       `db:"reset_token_hash"`
	ResetTokenExpires sql.NullTime `db:"reset_token_expires"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

func (r accountRow) toAccount() account.Account {
	return account.Account{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		Role:              r.Role,
		IsActive:          r.IsActive,
		ResetTokenHash:    r.ResetTokenHash,
		ResetTokenExpires: fromNullTime(r.ResetTokenExpires),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

const accountCols = `id, name, email, password_hash, role, is_active, reset_token_hash, reset_token_expires, created_at, updated_at`

type AccountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (repo *AccountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	query := `SELECT EXISTS (SELECT 1 FROM account WHERE email = $1`
	args := []interface{}{email}
	if len(excluded) > 0 {
		query += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *AccountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	query := `
		INSERT INTO account (name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		acct.Name, acct.Email, acct.PasswordHash, acct.Role, acct.IsActive, acct.CreatedAt, acct.UpdatedAt,
	).Scan(&acct.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acct, nil
}

func (repo *AccountRepository) getAccount(ctx context.Context, query string, args ...interface{}) (account.Account, error) {
	var row accountRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "querying account")
	}
	return row.toAccount(), nil
}

func (repo *AccountRepository) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	return repo.getAccount(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id)
}

func (repo *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	return repo.getAccount(ctx, `SELECT `+accountCols+` FROM account WHERE email = $1`, email)
}

func (repo *AccountRepository) GetAccountByResetTokenHash(ctx context.Context, hash []byte) (account.Account, error) {
	return repo.getAccount(ctx, `SELECT `+accountCols+` FROM account WHERE reset_token_hash = $1`, hash)
}

func (repo *AccountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	query := `
		UPDATE account
		SET name = $1, email = $2, password_hash = $3, is_active = $4,
		    reset_token_hash = $5, reset_token_expires = $6, updated_at = $7
		WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		acct.Name, acct.Email, acct.PasswordHash, acct.IsActive,
		acct.ResetTokenHash, nullTime(acct.ResetTokenExpires), acct.UpdatedAt, acct.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return acct, nil
}

func (repo *AccountRepository) DeleteAccountsByID(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM account WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return nil
}
