package exam_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/exam"
	inmemdb "github.com/campusops/acerp/storage/database/inmem"
)

func setup(t *testing.T) (*exam.Service, academic.Course, academic.Student) {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.Open()
	students := academic.NewService(inmemdb.NewAcademicRepository(db))
	svc := exam.NewService(inmemdb.NewExamRepository(db), students)

	course, err := students.CreateCourse(ctx, academic.NewCourse{
		Code: "CS101", Name: "Intro to CS", Credits: 4, Department: "CS", Semester: 1,
	})
	require.NoError(t, err)
	st, err := students.CreateStudent(ctx, academic.NewStudent{
		Name: "Alice", Email: "alice@uni.test", Password: "s3cr3t!",
		RollNumber: "CS-001", Department: "CS", Batch: "2026",
	})
	require.NoError(t, err)
	return svc, course, st
}

func Test_examService_CreateExam(t *testing.T) {
	svc, course, _ := setup(t)
	ctx := context.Background()
	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	e, err := svc.CreateExam(ctx, exam.NewExam{CourseID: course.ID, Name: "Mid-term", TotalMarks: 100}, date)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, course.ID, e.CourseID)

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.CreateExam(ctx, exam.NewExam{CourseID: 9999, Name: "Final", TotalMarks: 100}, date)
		assert.Error(t, err)
	})
}

func Test_examService_RecordResult(t *testing.T) {
	svc, course, st := setup(t)
	ctx := context.Background()
	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	e, err := svc.CreateExam(ctx, exam.NewExam{CourseID: course.ID, Name: "Mid-term", TotalMarks: 100}, date)
	require.NoError(t, err)

	r, err := svc.RecordResult(ctx, exam.NewResult{ExamID: e.ID, StudentID: st.ID, MarksObtained: 92})
	require.NoError(t, err)
	assert.Equal(t, "A+", r.Grade)

	t.Run("re-recording overwrites in place", func(t *testing.T) {
		again, err := svc.RecordResult(ctx, exam.NewResult{ExamID: e.ID, StudentID: st.ID, MarksObtained: 58})
		require.NoError(t, err)
		assert.Equal(t, r.ID, again.ID)
		assert.Equal(t, "D", again.Grade)

		results, err := svc.ExamResults(ctx, e.ID)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("grade scales to the exam total", func(t *testing.T) {
		quiz, err := svc.CreateExam(ctx, exam.NewExam{CourseID: course.ID, Name: "Quiz 1", TotalMarks: 20}, date)
		require.NoError(t, err)

		res, err := svc.RecordResult(ctx, exam.NewResult{ExamID: quiz.ID, StudentID: st.ID, MarksObtained: 17})
		require.NoError(t, err)
		assert.Equal(t, "A", res.Grade)
	})

	t.Run("unknown exam", func(t *testing.T) {
		_, err := svc.RecordResult(ctx, exam.NewResult{ExamID: 9999, StudentID: st.ID, MarksObtained: 50})
		assert.Equal(t, exam.ErrExamNotFound, err)
	})
}

func Test_examService_StudentResults(t *testing.T) {
	svc, course, st := setup(t)
	ctx := context.Background()
	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	e, err := svc.CreateExam(ctx, exam.NewExam{CourseID: course.ID, Name: "Final", TotalMarks: 100}, date)
	require.NoError(t, err)
	_, err = svc.RecordResult(ctx, exam.NewResult{ExamID: e.ID, StudentID: st.ID, MarksObtained: 75})
	require.NoError(t, err)

	results, err := svc.StudentResults(ctx, st.AccountID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Exam)
	require.NotNil(t, results[0].Exam.Course)
	assert.Equal(t, "CS101", results[0].Exam.Course.Code)
	assert.Equal(t, "3.30", exam.GPA(results))
}
