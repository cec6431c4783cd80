package inmemdb

import (
	"context"
	"sort"

	"github.com/campusops/acerp/core/finance"
)

type FinanceRepository struct {
	db *DB
}

var _ finance.Repository = (*FinanceRepository)(nil)

func NewFinanceRepository(db *DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (repo *FinanceRepository) CreateFee(ctx context.Context, f finance.Fee) (finance.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	f.ID = repo.db.nextID()
	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *FinanceRepository) GetFeeByID(ctx context.Context, id int64) (finance.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if f, ok := repo.db.fees[id]; ok {
		return *f, nil
	}
	return finance.Fee{}, finance.ErrFeeNotFound
}

func (repo *FinanceRepository) QueryAllFees(ctx context.Context) ([]finance.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	fees := make([]finance.Fee, 0, len(repo.db.fees))
	for _, f := range repo.db.fees {
		copied := *f
		if st, ok := repo.db.students[f.StudentID]; ok {
			s := *st
			if acct, ok := repo.db.accounts[s.AccountID]; ok {
				s.Account = *acct
			}
			copied.Student = &s
		}
		fees = append(fees, copied)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees, nil
}

func (repo *FinanceRepository) FeesForStudent(ctx context.Context, studentID int64) ([]finance.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	fees := make([]finance.Fee, 0)
	for _, f := range repo.db.fees {
		if f.StudentID == studentID {
			fees = append(fees, *f)
		}
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees, nil
}

func (repo *FinanceRepository) UpdateFee(ctx context.Context, f finance.Fee) (finance.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.fees[f.ID]; !ok {
		return finance.Fee{}, finance.ErrFeeNotFound
	}
	f.Student = nil
	repo.db.fees[f.ID] = &f
	return f, nil
}
