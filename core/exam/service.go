package exam

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
)

var (
	// errors
	ErrExamNotFound   = errors.New("exam not found")
	ErrResultNotFound = errors.New("result not found")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, e Exam) (Exam, error)
		GetExamByID(ctx context.Context, id int64) (Exam, error)
		// QueryAllExams returns all exams with their course populated and
		// recorded-result counts attached.
		QueryAllExams(ctx context.Context) ([]Exam, error)
		// UpsertResult atomically inserts or overwrites the result for
		// (exam, student).
		UpsertResult(ctx context.Context, r Result) (Result, error)
		// ResultsForStudent returns a student's results, exam and course populated.
		ResultsForStudent(ctx context.Context, studentID int64) ([]Result, error)
		// ResultsForExam returns an exam's roster, student and account populated.
		ResultsForExam(ctx context.Context, examID int64) ([]Result, error)
	}

	Service struct {
		repo     Repository
		students *academic.Service
	}
)

func NewService(repo Repository, students *academic.Service) *Service {
	return &Service{repo: repo, students: students}
}

func (svc *Service) CreateExam(ctx context.Context, ne NewExam, date time.Time) (Exam, error) {
	if _, err := svc.students.GetCourseByID(ctx, ne.CourseID); err != nil {
		return Exam{}, errors.Wrap(err, "resolving course")
	}
	now := time.Now().UTC()
	e := Exam{
		CourseID:   ne.CourseID,
		Name:       ne.Name,
		Date:       date,
		TotalMarks: ne.TotalMarks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateExam(ctx, e)
}

func (svc *Service) GetExamByID(ctx context.Context, id int64) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

// QueryAllExams lists every exam with its course and result count.
func (svc *Service) QueryAllExams(ctx context.Context) ([]Exam, error) {
	return svc.repo.QueryAllExams(ctx)
}

// RecordResult upserts the result for (exam, student) and derives the grade
// from the exam's total marks. The exam must exist; the grade cannot be
// computed without it.
func (svc *Service) RecordResult(ctx context.Context, nr NewResult) (Result, error) {
	e, err := svc.repo.GetExamByID(ctx, nr.ExamID)
	if err != nil {
		if errors.Cause(err) == ErrExamNotFound {
			return Result{}, ErrExamNotFound
		}
		return Result{}, errors.Wrap(err, "resolving exam")
	}

	now := time.Now().UTC()
	r := Result{
		ExamID:        nr.ExamID,
		StudentID:     nr.StudentID,
		MarksObtained: nr.MarksObtained,
		Grade:         Grade(nr.MarksObtained, e.TotalMarks),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.UpsertResult(ctx, r)
}

// StudentResults returns the Account's result history, exam and course populated.
func (svc *Service) StudentResults(ctx context.Context, accountID int64) ([]Result, error) {
	st, err := svc.students.GetStudentByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student profile")
	}
	return svc.repo.ResultsForStudent(ctx, st.ID)
}

// ExamResults returns the roster of results recorded for an exam.
func (svc *Service) ExamResults(ctx context.Context, examID int64) ([]Result, error) {
	return svc.repo.ResultsForExam(ctx, examID)
}
