package finance_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/finance"
	inmemdb "github.com/campusops/acerp/storage/database/inmem"
)

var txnIDRegex = regexp.MustCompile(`^TXN_\d+$`)

func setup(t *testing.T) (*finance.Service, academic.Student) {
	t.Helper()
	db := inmemdb.Open()
	students := academic.NewService(inmemdb.NewAcademicRepository(db))
	svc := finance.NewService(inmemdb.NewFinanceRepository(db), students)

	st, err := students.CreateStudent(context.Background(), academic.NewStudent{
		Name: "Alice", Email: "alice@uni.test", Password: "s3cr3t!",
		RollNumber: "CS-001", Department: "CS", Batch: "2026",
	})
	require.NoError(t, err)
	return svc, st
}

func Test_financeService_Create(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	fee, err := svc.Create(ctx, finance.NewFee{StudentID: st.ID, Amount: 5000, Type: "Tuition"}, due)
	require.NoError(t, err)

	assert.NotZero(t, fee.ID)
	assert.Equal(t, finance.StatusPending, fee.Status)
	assert.Equal(t, 5000.0, fee.Amount)
	assert.Empty(t, fee.TransactionID)
	assert.Nil(t, fee.PaymentDate)
}

func Test_financeService_Pay(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	fee, err := svc.Create(ctx, finance.NewFee{StudentID: st.ID, Amount: 5000, Type: "Tuition"}, due)
	require.NoError(t, err)

	t.Run("synthesizes a transaction id", func(t *testing.T) {
		paid, err := svc.Pay(ctx, fee.ID, "")
		require.NoError(t, err)
		assert.Equal(t, finance.StatusPaid, paid.Status)
		assert.Regexp(t, txnIDRegex, paid.TransactionID)
		require.NotNil(t, paid.PaymentDate)
		assert.False(t, paid.PaymentDate.IsZero())
	})

	t.Run("repaying overwrites the receipt", func(t *testing.T) {
		paid, err := svc.Pay(ctx, fee.ID, "BANK-REF-42")
		require.NoError(t, err)
		assert.Equal(t, finance.StatusPaid, paid.Status)
		assert.Equal(t, "BANK-REF-42", paid.TransactionID)
	})

	t.Run("unknown fee", func(t *testing.T) {
		_, err := svc.Pay(ctx, 9999, "")
		assert.Equal(t, finance.ErrFeeNotFound, err)
	})
}

func Test_financeService_StudentFees(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	for _, typ := range []string{"Tuition", "Library"} {
		_, err := svc.Create(ctx, finance.NewFee{StudentID: st.ID, Amount: 100, Type: typ}, due)
		require.NoError(t, err)
	}

	fees, err := svc.StudentFees(ctx, st.AccountID)
	require.NoError(t, err)
	assert.Len(t, fees, 2)

	_, err = svc.StudentFees(ctx, 9999)
	assert.Error(t, err)
}
