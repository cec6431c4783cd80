package tests

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/account"
	emailsvc "github.com/campusops/acerp/services/email"
)

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     []byte(`{"email": "admin@uni.test", "password": "s3cr3t!"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "admin@uni.test", "password": "nope"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "invalid email or password"}),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "ghost@uni.test", "password": "s3cr3t!"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "invalid email or password"}),
		},
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/auth/login", tt.body)
			app.server.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token   string          `json:"token"`
					Account account.Account `json:"account"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, admin.ID, resp.Account.ID)
				assert.Equal(t, admin.Email, resp.Account.Email)
			}
		})
	}
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)

	tests := []httpTest{
		{
			name:     "authentication required",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "ok",
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/v1/auth/me", tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)
	faculty := app.createAccount(t, "Prof", "prof@uni.test", account.RoleFaculty)

	body := []byte(`{
		"name": "New Prof", "email": "newprof@uni.test", "role": "faculty",
		"password": "s3cr3t!", "password_confirm": "s3cr3t!"
	}`)

	tests := []httpTest{
		{
			name:     "authentication required",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "admin only",
			body:     body,
			token:    app.getToken(t, faculty),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "role faculty is not authorized, requires admin"}),
		},
		{
			name:     "ok",
			body:     body,
			token:    app.getToken(t, admin),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     body,
			token:    app.getToken(t, admin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "an account with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/auth/register", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code)
			var acct account.Account
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acct))
			assert.Equal(t, "newprof@uni.test", acct.Email)
			assert.Equal(t, account.RoleFaculty, acct.Role)
			assert.True(t, acct.IsActive)
		})
	}
}

func Test_authApi_passwordReset(t *testing.T) {
	app := setup(t)
	app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)
	emailsvc.ClearSentMessages()

	t.Run("unknown email still succeeds", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/v1/auth/forgot-password", []byte(`{"email": "ghost@uni.test"}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, emailsvc.GetSentMessages())
	})

	var rawToken string
	t.Run("known email gets a reset link", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/v1/auth/forgot-password", []byte(`{"email": "admin@uni.test"}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 1)
		m := regexp.MustCompile(`/#/reset-password/([0-9a-f]+)`).FindStringSubmatch(sent[0].TextContent)
		require.NotNil(t, m)
		rawToken = m[1]
	})

	t.Run("confirm with the mailed token", func(t *testing.T) {
		body := []byte(`{"password": "newpwd1", "password_confirm": "newpwd1"}`)
		req, rec := newRequest(http.MethodPut, "/api/v1/auth/reset-password/"+rawToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// a fresh session comes back with the new credentials
		var resp struct {
			Token   string          `json:"token"`
			Account account.Account `json:"account"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin@uni.test", resp.Account.Email)

		// old password no longer works
		req, rec = newRequest(http.MethodPost, "/api/v1/auth/login", []byte(`{"email": "admin@uni.test", "password": "s3cr3t!"}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req, rec = newRequest(http.MethodPost, "/api/v1/auth/login", []byte(`{"email": "admin@uni.test", "password": "newpwd1"}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stale token rejected", func(t *testing.T) {
		body := []byte(`{"password": "newpwd2", "password_confirm": "newpwd2"}`)
		req, rec := newRequest(http.MethodPut, "/api/v1/auth/reset-password/"+rawToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
