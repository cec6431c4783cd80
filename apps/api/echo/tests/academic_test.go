package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
)

func Test_academicApi_students(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)
	faculty := app.createAccount(t, "Prof", "prof@uni.test", account.RoleFaculty)
	adminToken := app.getToken(t, admin)

	var created academic.Student
	t.Run("enrollment is admin only", func(t *testing.T) {
		body := []byte(`{
			"name": "Alice", "email": "alice@uni.test", "password": "s3cr3t!",
			"roll_number": "CS-001", "department": "CS", "batch": "2026"
		}`)

		req, rec := newAuthRequest(http.MethodPost, "/api/v1/students", app.getToken(t, faculty), body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/students", adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "CS-001", created.RollNumber)
		// the owning account rides along
		assert.Equal(t, "alice@uni.test", created.Account.Email)
		assert.Equal(t, account.RoleStudent, created.Account.Role)
	})

	t.Run("duplicate roll number", func(t *testing.T) {
		body := []byte(`{
			"name": "Bob", "email": "bob@uni.test", "password": "s3cr3t!",
			"roll_number": "CS-001", "department": "CS", "batch": "2026"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/students", adminToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := []byte(`{
			"name": "Alice Again", "email": "alice@uni.test", "password": "s3cr3t!",
			"roll_number": "CS-009", "department": "CS", "batch": "2026"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/students", adminToken, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "an account with this email already exists"}),
		}, rec)
	})

	t.Run("staff list students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/students", app.getToken(t, faculty))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page academic.StudentPage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 1, page.Page)
		require.Len(t, page.Students, 1)
		assert.Equal(t, created.ID, page.Students[0].ID)
	})

	t.Run("filtering misses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/students?department=EE", adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page academic.StudentPage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Zero(t, page.Total)
		assert.Empty(t, page.Students)
	})

	t.Run("students cannot browse the roster", func(t *testing.T) {
		studentToken := app.getToken(t, created.Account)
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/students", studentToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		// but they see their own profile
		req, rec = newAuthRequest(http.MethodGet, "/api/v1/students/me", studentToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var st academic.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
		assert.Equal(t, created.ID, st.ID)
	})

	t.Run("update", func(t *testing.T) {
		body := []byte(`{"roll_number": "CS-001", "department": "CS", "batch": "2027", "contact_number": "555-0101"}`)
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/v1/students/%d", created.ID), adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var st academic.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
		assert.Equal(t, "2027", st.Batch)
		assert.Equal(t, "555-0101", st.ContactNumber)
	})

	t.Run("delete removes the account too", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/v1/students/%d", created.ID), adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/v1/students/%d", created.ID), adminToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// orphaned login is gone
		req, rec = newRequest(http.MethodPost, "/api/v1/auth/login", []byte(`{"email": "alice@uni.test", "password": "s3cr3t!"}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		// and so is a token issued before the delete
		req, rec = newAuthRequest(http.MethodGet, "/api/v1/auth/me", app.getToken(t, created.Account))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_academicApi_courses(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "Admin", "admin@uni.test", account.RoleAdmin)
	faculty := app.createAccount(t, "Prof", "prof@uni.test", account.RoleFaculty)
	student := app.createStudent(t, "Alice", "alice@uni.test", "CS-001")
	adminToken := app.getToken(t, admin)

	var created academic.Course
	t.Run("create is admin only", func(t *testing.T) {
		body := marchallObj(t, academic.NewCourse{
			Code: "CS101", Name: "Intro to CS", Credits: 4, Department: "CS", Semester: 1, FacultyID: faculty.ID,
		})

		req, rec := newAuthRequest(http.MethodPost, "/api/v1/courses", app.getToken(t, student.Account), body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/courses", adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "CS101", created.Code)
	})

	t.Run("duplicate code", func(t *testing.T) {
		body := marchallObj(t, academic.NewCourse{
			Code: "CS101", Name: "Other", Credits: 3, Department: "CS", Semester: 2,
		})
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a course with this code already exists"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/courses", adminToken, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("any authenticated account can browse", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/courses", app.getToken(t, student.Account))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var courses []academic.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		require.Len(t, courses, 1)
		assert.Equal(t, created.ID, courses[0].ID)
	})

	t.Run("faculty list their own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/courses/mine", app.getToken(t, faculty))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var courses []academic.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		require.Len(t, courses, 1)
		assert.Equal(t, created.ID, courses[0].ID)
	})

	t.Run("unknown course", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "course not found"}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/courses/9999", adminToken)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/v1/courses/%d", created.ID), adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/courses", adminToken)
		app.server.ServeHTTP(rec, req)
		var courses []academic.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		assert.Empty(t, courses)
	})
}
