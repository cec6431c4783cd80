package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/finance"
)

type feeRow struct {
	ID            int64          `db:"id"`
	StudentID     int64          `db:"student_id"`
	Amount        float64        `db:"amount"`
	Type          string         `db:"type"`
	DueDate       time.Time      `db:"due_date"`
	Status        string         `db:"status"`
	TransactionID sql.NullString `db:"transaction_id"`
	PaymentDate   sql.NullTime   `db:"payment_date"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r feeRow) toFee() finance.Fee {
	return finance.Fee{
		ID:            r.ID,
		StudentID:     r.StudentID,
		Amount:        r.Amount,
		Type:          r.Type,
		DueDate:       r.DueDate,
		Status:        r.Status,
		TransactionID: r.TransactionID.String,
		PaymentDate:   timePtr(r.PaymentDate),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const feeCols = `id, student_id, amount, type, due_date, status, transaction_id, payment_date, created_at, updated_at`

type FinanceRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*FinanceRepository)(nil)

func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (repo *FinanceRepository) CreateFee(ctx context.Context, f finance.Fee) (finance.Fee, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO fee (student_id, amount, type, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		f.StudentID, f.Amount, f.Type, f.DueDate, f.Status, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
	if err != nil {
		return finance.Fee{}, errors.Wrap(err, "inserting fee")
	}
	return f, nil
}

func (repo *FinanceRepository) GetFeeByID(ctx context.Context, id int64) (finance.Fee, error) {
	var row feeRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+feeCols+` FROM fee WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return finance.Fee{}, finance.ErrFeeNotFound
		}
		return finance.Fee{}, errors.Wrap(err, "querying fee")
	}
	return row.toFee(), nil
}

func (repo *FinanceRepository) QueryAllFees(ctx context.Context) ([]finance.Fee, error) {
	type row struct {
		feeRow
		RollNumber  string `db:"roll_number"`
		Department  string `db:"department"`
		Batch       string `db:"batch"`
		AccountID   int64  `db:"account_id"`
		AccountName string `db:"account_name"`
	}

	var rows []row
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT f.id, f.student_id, f.amount, f.type, f.due_date, f.status,
		       f.transaction_id, f.payment_date, f.created_at, f.updated_at,
		       s.roll_number, s.department, s.batch, s.account_id, a.name AS account_name
		FROM fee f
		JOIN student s ON s.id = f.student_id
		JOIN account a ON a.id = s.account_id
		ORDER BY f.due_date DESC, f.id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying fees")
	}

	fees := make([]finance.Fee, 0, len(rows))
	for _, r := range rows {
		f := r.toFee()
		f.Student = &academic.Student{
			ID:         r.StudentID,
			AccountID:  r.AccountID,
			RollNumber: r.RollNumber,
			Department: r.Department,
			Batch:      r.Batch,
			Account:    account.Account{ID: r.AccountID, Name: r.AccountName},
		}
		fees = append(fees, f)
	}
	return fees, nil
}

func (repo *FinanceRepository) FeesForStudent(ctx context.Context, studentID int64) ([]finance.Fee, error) {
	var rows []feeRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+feeCols+` FROM fee WHERE student_id = $1 ORDER BY due_date DESC, id`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student fees")
	}
	fees := make([]finance.Fee, 0, len(rows))
	for _, r := range rows {
		fees = append(fees, r.toFee())
	}
	return fees, nil
}

func (repo *FinanceRepository) UpdateFee(ctx context.Context, f finance.Fee) (finance.Fee, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE fee
		SET status = $1, transaction_id = $2, payment_date = $3, updated_at = $4
		WHERE id = $5`,
		f.Status, nullString(f.TransactionID), nullTimePtr(f.PaymentDate), f.UpdatedAt, f.ID,
	)
	if err != nil {
		return finance.Fee{}, errors.Wrap(err, "updating fee")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.Fee{}, finance.ErrFeeNotFound
	}
	return f, nil
}
