package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/exam"
)

type examRow struct {
	ID         int64     `db:"id"`
	CourseID   int64     `db:"course_id"`
	Name       string    `db:"name"`
	Date       time.Time `db:"date"`
	TotalMarks float64   `db:"total_marks"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r examRow) toExam() exam.Exam {
	return exam.Exam{
		ID:         r.ID,
		CourseID:   r.CourseID,
		Name:       r.Name,
		Date:       r.Date,
		TotalMarks: r.TotalMarks,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type ExamRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*ExamRepository)(nil)

func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (repo *ExamRepository) CreateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO exam (course_id, name, date, total_marks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.CourseID, e.Name, e.Date, e.TotalMarks, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return e, nil
}

func (repo *ExamRepository) GetExamByID(ctx context.Context, id int64) (exam.Exam, error) {
	var row examRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, course_id, name, date, total_marks, created_at, updated_at FROM exam WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return exam.Exam{}, exam.ErrExamNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "querying exam")
	}
	return row.toExam(), nil
}

func (repo *ExamRepository) QueryAllExams(ctx context.Context) ([]exam.Exam, error) {
	type row struct {
		examRow
		CourseCode       string `db:"course_code"`
		CourseName       string `db:"course_name"`
		CourseCredits    int    `db:"course_credits"`
		CourseDepartment string `db:"course_department"`
		CourseSemester   int    `db:"course_semester"`
		ResultCount      int    `db:"result_count"`
	}

	var rows []row
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT e.id, e.course_id, e.name, e.date, e.total_marks, e.created_at, e.updated_at,
		       c.code AS course_code, c.name AS course_name, c.credits AS course_credits,
		       c.department AS course_department, c.semester AS course_semester,
		       COUNT(r.id) AS result_count
		FROM exam e
		JOIN course c ON c.id = e.course_id
		LEFT JOIN result r ON r.exam_id = e.id
		GROUP BY e.id, c.id
		ORDER BY e.date DESC, e.id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}

	exams := make([]exam.Exam, 0, len(rows))
	for _, r := range rows {
		e := r.toExam()
		e.Course = &academic.Course{
			ID:         r.CourseID,
			Code:       r.CourseCode,
			Name:       r.CourseName,
			Credits:    r.CourseCredits,
			Department: r.CourseDepartment,
			Semester:   r.CourseSemester,
		}
		e.ResultCount = r.ResultCount
		exams = append(exams, e)
	}
	return exams, nil
}

func (repo *ExamRepository) UpsertResult(ctx context.Context, r exam.Result) (exam.Result, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO result (exam_id, student_id, marks_obtained, grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (exam_id, student_id) DO UPDATE
		SET marks_obtained = EXCLUDED.marks_obtained, grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		r.ExamID, r.StudentID, r.MarksObtained, r.Grade, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return exam.Result{}, errors.Wrap(err, "upserting result")
	}
	return r, nil
}

// ResultsForStudent populates each result's exam and the exam's course, the
// inputs GPA needs.
func (repo *ExamRepository) ResultsForStudent(ctx context.Context, studentID int64) ([]exam.Result, error) {
	type row struct {
		ID            int64     `db:"id"`
		ExamID        int64     `db:"exam_id"`
		StudentID     int64     `db:"student_id"`
		MarksObtained float64   `db:"marks_obtained"`
		Grade         string    `db:"grade"`
		CreatedAt     time.Time `db:"created_at"`
		UpdatedAt     time.Time `db:"updated_at"`

		ExamName       string    `db:"exam_name"`
		ExamDate       time.Time `db:"exam_date"`
		ExamTotalMarks float64   `db:"exam_total_marks"`
		CourseID       int64     `db:"course_id"`
		CourseCode     string    `db:"course_code"`
		CourseName     string    `db:"course_name"`
		CourseCredits  int       `db:"course_credits"`
	}

	var rows []row
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.exam_id, r.student_id, r.marks_obtained, r.grade, r.created_at, r.updated_at,
		       e.name AS exam_name, e.date AS exam_date, e.total_marks AS exam_total_marks,
		       c.id AS course_id, c.code AS course_code, c.name AS course_name, c.credits AS course_credits
		FROM result r
		JOIN exam e ON e.id = r.exam_id
		JOIN course c ON c.id = e.course_id
		WHERE r.student_id = $1
		ORDER BY e.date DESC, r.id`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying student results")
	}

	results := make([]exam.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, exam.Result{
			ID:            r.ID,
			ExamID:        r.ExamID,
			StudentID:     r.StudentID,
			MarksObtained: r.MarksObtained,
			Grade:         r.Grade,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
			Exam: &exam.Exam{
				ID:         r.ExamID,
				CourseID:   r.CourseID,
				Name:       r.ExamName,
				Date:       r.ExamDate,
				TotalMarks: r.ExamTotalMarks,
				Course: &academic.Course{
					ID:      r.CourseID,
					Code:    r.CourseCode,
					Name:    r.CourseName,
					Credits: r.CourseCredits,
				},
			},
		})
	}
	return results, nil
}

func (repo *ExamRepository) ResultsForExam(ctx context.Context, examID int64) ([]exam.Result, error) {
	type row struct {
		ID            int64     `db:"id"`
		ExamID        int64     `db:"exam_id"`
		StudentID     int64     `db:"student_id"`
		MarksObtained float64   `db:"marks_obtained"`
		Grade         string    `db:"grade"`
		CreatedAt     time.Time `db:"created_at"`
		UpdatedAt     time.Time `db:"updated_at"`

		RollNumber  string `db:"roll_number"`
		Department  string `db:"department"`
		Batch       string `db:"batch"`
		AccountID   int64  `db:"account_id"`
		AccountName string `db:"account_name"`
	}

	var rows []row
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.exam_id, r.student_id, r.marks_obtained, r.grade, r.created_at, r.updated_at,
		       s.roll_number, s.department, s.batch, s.account_id, a.name AS account_name
		FROM result r
		JOIN student s ON s.id = r.student_id
		JOIN account a ON a.id = s.account_id
		WHERE r.exam_id = $1
		ORDER BY s.roll_number`,
		examID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying exam results")
	}

	results := make([]exam.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, exam.Result{
			ID:            r.ID,
			ExamID:        r.ExamID,
			StudentID:     r.StudentID,
			MarksObtained: r.MarksObtained,
			Grade:         r.Grade,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
			Student: &academic.Student{
				ID:         r.StudentID,
				AccountID:  r.AccountID,
				RollNumber: r.RollNumber,
				Department: r.Department,
				Batch:      r.Batch,
				Account:    account.Account{ID: r.AccountID, Name: r.AccountName},
			},
		})
	}
	return results, nil
}
