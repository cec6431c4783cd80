package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid token")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Account) error
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByID(ctx context.Context, id int64) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		GetAccountByResetTokenHash(ctx context.Context, hash []byte) (Account, error)
		UpdateAccount(ctx context.Context, acct Account) (Account, error)
		DeleteAccountsByID(ctx context.Context, ids ...int64) error
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{conf: conf, repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkUniqueness(email string, excluded ...Account) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	now := nowFunc().UTC()
	acct := Account{
		Name:      na.Name,
		Email:     na.Email,
		Role:      na.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acct)
}

// Authenticate checks an email/password pair against the stored hash. The
// email must match the stored address exactly; accounts are created with a
// lowercased address, so a mixed-case login fails. Lookup and comparison
// failures are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acct, err := svc.repo.GetAccountByEmail(ctx, core.CleanString(email))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acct.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) UpdateProfile(ctx context.Context, orig Account, up UpdateProfile) (Account, error) {
	orig.Name = up.Name
	orig.Email = up.Email
	orig.UpdatedAt = nowFunc().UTC()
	if up.Password != "" {
		if err := orig.SetPassword(up.Password); err != nil {
			return Account{}, err
		}
	}
	return svc.repo.UpdateAccount(ctx, orig)
}

// RequestPasswordReset stores a hashed single-use token on the account and
// mails the raw token. ErrNotFound surfaces to the caller so the handler can
// swallow it without leaking account existence.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	raw, hash := makeResetToken()
	acct.ResetTokenHash = hash
	acct.ResetTokenExpires = nowFunc().UTC().Add(svc.conf.Server.PasswordResetTimeoutDelta)
	acct.UpdatedAt = nowFunc().UTC()
	if _, err = svc.repo.UpdateAccount(ctx, acct); err != nil {
		return errors.Wrap(err, "storing reset token")
	}

	resetURL := fmt.Sprintf("%s/#/reset-password/%s", svc.conf.FrontendBaseURL, raw)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acct.Name, Address: acct.Email}},
		Subject: "Password Reset",
		BodyStr: "You requested a password reset. Follow this link to choose a new password:\n\n" + resetURL,
	})
	return nil
}

// ResetPassword completes a reset: the supplied raw token is hashed and
// matched against the stored hash with the expiry still valid. The stored
// token is cleared on success.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) (Account, error) {
	acct, err := svc.repo.GetAccountByResetTokenHash(ctx, hashResetToken(rp.Token))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidResetToken
		}
		return Account{}, errors.Wrap(err, "finding account by reset token")
	}
	if acct.ResetTokenExpires.IsZero() || nowFunc().After(acct.ResetTokenExpires) {
		return Account{}, ErrInvalidResetToken
	}

	if err = acct.SetPassword(rp.Password); err != nil {
		return Account{}, err
	}
	acct.ResetTokenHash = nil
	acct.ResetTokenExpires = time.Time{}
	acct.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateAccount(ctx, acct)
}

func (svc *Service) Delete(ctx context.Context, ids ...int64) error {
	return svc.repo.DeleteAccountsByID(ctx, ids...)
}
