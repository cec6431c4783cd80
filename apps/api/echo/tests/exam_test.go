package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/exam"
)

func Test_examApi(t *testing.T) {
	app := setup(t)
	faculty := app.createAccount(t, "Prof", "prof@uni.test", account.RoleFaculty)
	alice := app.createStudent(t, "Alice", "alice@uni.test", "CS-001")
	course := app.createCourse(t, "CS101", "Intro to CS", 4)
	facultyToken := app.getToken(t, faculty)
	studentToken := app.getToken(t, alice.Account)

	var created exam.Exam
	t.Run("staff schedule an exam", func(t *testing.T) {
		body := marchallObj(t, exam.NewExam{CourseID: course.ID, Name: "Mid-term", Date: "2026-05-20", TotalMarks: 100})

		req, rec := newAuthRequest(http.MethodPost, "/api/v1/exams", studentToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/exams", facultyToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
	})

	t.Run("unknown course", func(t *testing.T) {
		body := marchallObj(t, exam.NewExam{CourseID: 9999, Name: "Final", Date: "2026-06-20", TotalMarks: 100})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/exams", facultyToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("record result derives the grade", func(t *testing.T) {
		body := marchallObj(t, exam.NewResult{ExamID: created.ID, StudentID: alice.ID, MarksObtained: 92})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/exams/results", facultyToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var r exam.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		assert.Equal(t, "A+", r.Grade)
	})

	t.Run("re-recording overwrites in place", func(t *testing.T) {
		body := marchallObj(t, exam.NewResult{ExamID: created.ID, StudentID: alice.ID, MarksObtained: 92})
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/exams/results", facultyToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/v1/exams/%d/results", created.ID), facultyToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var results []exam.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "A+", results[0].Grade)
		// roster view carries the student
		require.NotNil(t, results[0].Student)
		assert.Equal(t, "CS-001", results[0].Student.RollNumber)
	})

	t.Run("exam list counts results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/exams", facultyToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var exams []exam.Exam
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exams))
		require.Len(t, exams, 1)
		assert.Equal(t, 1, exams[0].ResultCount)
		require.NotNil(t, exams[0].Course)
		assert.Equal(t, "CS101", exams[0].Course.Code)
	})

	t.Run("student results with GPA", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/exams/my-results", studentToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Results []exam.Result `json:"results"`
			GPA     string        `json:"gpa"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "4.00", resp.GPA)
	})

	t.Run("staff have no personal results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/exams/my-results", facultyToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
