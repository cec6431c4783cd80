package account_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/account"
	emailsvc "github.com/campusops/acerp/services/email"
	inmemdb "github.com/campusops/acerp/storage/database/inmem"
)

var resetURLRegex = regexp.MustCompile(`/#/reset-password/([0-9a-f]+)`)

func setup(t *testing.T) (*account.Service, account.Repository) {
	t.Helper()
	conf := core.NewTestConfig()
	repo := inmemdb.NewAccountRepository(inmemdb.Open())
	svc := account.NewService(conf, repo, emailsvc.NewConsoleServiceMock(conf))
	emailsvc.ClearSentMessages()
	return svc, repo
}

func createAccount(t *testing.T, svc *account.Service, name, email, pwd, role string) account.Account {
	t.Helper()
	acct, err := svc.Create(context.Background(), account.NewAccount{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
	require.NoError(t, err)
	return acct
}

func Test_accountService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	acct := createAccount(t, svc, "Jane Roe", "jane@uni.test", "s3cr3t!", account.RoleAdmin)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "jane@uni.test", "s3cr3t!")
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
	})
	t.Run("email match is exact", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "JANE@Uni.Test", "s3cr3t!")
		assert.Equal(t, account.ErrInvalidCredentials, err)

		// surrounding whitespace is still stripped
		_, err = svc.Authenticate(ctx, "  jane@uni.test ", "s3cr3t!")
		assert.NoError(t, err)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "jane@uni.test", "nope")
		assert.Equal(t, account.ErrInvalidCredentials, err)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@uni.test", "s3cr3t!")
		assert.Equal(t, account.ErrInvalidCredentials, err)
	})
	t.Run("deactivated account", func(t *testing.T) {
		acct.IsActive = false
		_, err := repo.UpdateAccount(ctx, acct)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "jane@uni.test", "s3cr3t!")
		assert.Equal(t, account.ErrInvalidCredentials, err)
	})
}

func Test_accountService_PasswordReset(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	createAccount(t, svc, "John Doe", "john@uni.test", "origpwd", account.RoleFaculty)

	t.Run("unknown email surfaces not found", func(t *testing.T) {
		err := svc.RequestPasswordReset(ctx, "ghost@uni.test")
		assert.Equal(t, account.ErrNotFound, err)
	})

	var rawToken string
	t.Run("request mails a raw token", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(ctx, "john@uni.test"))

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "Password Reset", sent[0].Subject)

		m := resetURLRegex.FindStringSubmatch(sent[0].TextContent)
		require.NotNil(t, m, "reset email must contain the reset link")
		rawToken = m[1]
	})

	t.Run("only the token hash is stored", func(t *testing.T) {
		acct, err := svc.GetByEmail(ctx, "john@uni.test")
		require.NoError(t, err)
		assert.NotEmpty(t, acct.ResetTokenHash)
		assert.NotContains(t, string(acct.ResetTokenHash), rawToken)
		assert.True(t, acct.ResetTokenExpires.After(time.Now()))
	})

	t.Run("bad token rejected", func(t *testing.T) {
		_, err := svc.ResetPassword(ctx, account.ResetPassword{Token: "bogus", Password: "newpwd1"})
		assert.Equal(t, account.ErrInvalidResetToken, err)
	})

	t.Run("valid token resets the password once", func(t *testing.T) {
		_, err := svc.ResetPassword(ctx, account.ResetPassword{Token: rawToken, Password: "newpwd1"})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "john@uni.test", "newpwd1")
		assert.NoError(t, err)
		_, err = svc.Authenticate(ctx, "john@uni.test", "origpwd")
		assert.Equal(t, account.ErrInvalidCredentials, err)

		// token is single-use
		_, err = svc.ResetPassword(ctx, account.ResetPassword{Token: rawToken, Password: "newpwd2"})
		assert.Equal(t, account.ErrInvalidResetToken, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		require.NoError(t, svc.RequestPasswordReset(ctx, "john@uni.test"))

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 1)
		m := resetURLRegex.FindStringSubmatch(sent[0].TextContent)
		require.NotNil(t, m)

		acct, err := svc.GetByEmail(ctx, "john@uni.test")
		require.NoError(t, err)
		acct.ResetTokenExpires = time.Now().Add(-time.Minute)
		_, err = repo.UpdateAccount(ctx, acct)
		require.NoError(t, err)

		_, err = svc.ResetPassword(ctx, account.ResetPassword{Token: m[1], Password: "newpwd3"})
		assert.Equal(t, account.ErrInvalidResetToken, err)
	})
}

func Test_accountService_UpdateProfile(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	acct := createAccount(t, svc, "Old Name", "old@uni.test", "s3cr3t!", account.RoleStudent)

	got, err := svc.UpdateProfile(ctx, acct, account.UpdateProfile{
		Name:     "New Name",
		Email:    "new@uni.test",
		Password: "changed1",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "new@uni.test", got.Email)

	_, err = svc.Authenticate(ctx, "new@uni.test", "changed1")
	assert.NoError(t, err)
}
