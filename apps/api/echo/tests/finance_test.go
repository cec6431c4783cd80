package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/finance"
)

func Test_financeApi(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)
	faculty := app.createAccount(t, "Prof", "prof@uni.test", account.RoleFaculty)
	alice := app.createStudent(t, "Alice", "alice@uni.test", "CS-001")
	adminToken := app.getToken(t, admin)
	studentToken := app.getToken(t, alice.Account)

	var created finance.Fee
	t.Run("billing is admin only", func(t *testing.T) {
		body := marchallObj(t, finance.NewFee{StudentID: alice.ID, Amount: 5000, Type: "Tuition", DueDate: "2026-09-30"})

		req, rec := newAuthRequest(http.MethodPost, "/api/v1/finance", studentToken, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "role student is not authorized, requires admin"}),
		}, rec)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/finance", adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, finance.StatusPending, created.Status)
		assert.Empty(t, created.TransactionID)
		// a pending fee has no payment date at all
		assert.NotContains(t, rec.Body.String(), "payment_date")
	})

	t.Run("students see their own fees", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/finance/my", studentToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var fees []finance.Fee
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fees))
		require.Len(t, fees, 1)
		assert.Equal(t, created.ID, fees[0].ID)
	})

	t.Run("faculty cannot pay", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/v1/finance/%d/pay", created.ID), app.getToken(t, faculty), []byte(`{}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("paying synthesizes a transaction id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/v1/finance/%d/pay", created.ID), studentToken, []byte(`{}`))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var paid finance.Fee
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
		assert.Equal(t, finance.StatusPaid, paid.Status)
		assert.Regexp(t, `^TXN_\d+$`, paid.TransactionID)
		require.NotNil(t, paid.PaymentDate)
	})

	t.Run("explicit transaction id is kept", func(t *testing.T) {
		body := marchallObj(t, finance.PayFee{TransactionID: "BANK-REF-42"})
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/v1/finance/%d/pay", created.ID), studentToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var paid finance.Fee
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
		assert.Equal(t, "BANK-REF-42", paid.TransactionID)
	})

	t.Run("unknown fee", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "fee not found"}),
		}
		req, rec := newAuthRequest(http.MethodPut, "/api/v1/finance/9999/pay", studentToken, []byte(`{}`))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin ledger carries the student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/finance", adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var fees []finance.Fee
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fees))
		require.Len(t, fees, 1)
		require.NotNil(t, fees[0].Student)
		assert.Equal(t, "CS-001", fees[0].Student.RollNumber)
	})
}
