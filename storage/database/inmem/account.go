package inmemdb

import (
	"bytes"
	"context"

	"github.com/campusops/acerp/core/account"
)

type AccountRepository struct {
	db *DB
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (repo *AccountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Email == email && !accountExcluded(*acct, excluded) {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *AccountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.accounts {
		if existing.Email == acct.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}
	acct.ID = repo.db.nextID()
	repo.db.accounts[acct.ID] = &acct
	return acct, nil
}

func (repo *AccountRepository) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acct, ok := repo.db.accounts[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Email == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *AccountRepository) GetAccountByResetTokenHash(ctx context.Context, hash []byte) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.db.accounts {
		if len(acct.ResetTokenHash) > 0 && bytes.Equal(acct.ResetTokenHash, hash) {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *AccountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.accounts[acct.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	repo.db.accounts[acct.ID] = &acct
	return acct, nil
}

func (repo *AccountRepository) DeleteAccountsByID(ctx context.Context, ids ...int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.accounts, id)
		for sid, st := range repo.db.students {
			if st.AccountID == id {
				delete(repo.db.students, sid)
			}
		}
	}
	return nil
}

func accountExcluded(acct account.Account, excluded []account.Account) bool {
	for _, e := range excluded {
		if e.ID == acct.ID {
			return true
		}
	}
	return false
}
