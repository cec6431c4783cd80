package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
)

var (
	// errors
	ErrFeeNotFound = errors.New("fee not found")
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		GetFeeByID(ctx context.Context, id int64) (Fee, error)
		// QueryAllFees returns every fee, student and account populated.
		QueryAllFees(ctx context.Context) ([]Fee, error)
		FeesForStudent(ctx context.Context, studentID int64) ([]Fee, error)
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
	}

	Service struct {
		repo     Repository
		students *academic.Service
	}
)

func NewService(repo Repository, students *academic.Service) *Service {
	return &Service{repo: repo, students: students}
}

func (svc *Service) Create(ctx context.Context, nf NewFee, dueDate time.Time) (Fee, error) {
	now := nowFunc().UTC()
	f := Fee{
		StudentID: nf.StudentID,
		Amount:    nf.Amount,
		Type:      nf.Type,
		DueDate:   dueDate,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateFee(ctx, f)
}

// Pay transitions a fee to Paid unconditionally. Paying an already-Paid fee
// does not fail; it overwrites the transaction id and payment date. A missing
// transaction id is synthesized from the current timestamp.
func (svc *Service) Pay(ctx context.Context, id int64, transactionID string) (Fee, error) {
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}

	now := nowFunc().UTC()
	if transactionID == "" {
		transactionID = fmt.Sprintf("TXN_%d", now.UnixNano()/int64(time.Millisecond))
	}
	f.Status = StatusPaid
	f.TransactionID = transactionID
	f.PaymentDate = &now
	f.UpdatedAt = now
	return svc.repo.UpdateFee(ctx, f)
}

// StudentFees lists the fees owed by the Account's Student profile.
func (svc *Service) StudentFees(ctx context.Context, accountID int64) ([]Fee, error) {
	st, err := svc.students.GetStudentByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student profile")
	}
	return svc.repo.FeesForStudent(ctx, st.ID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Fee, error) {
	return svc.repo.QueryAllFees(ctx)
}
