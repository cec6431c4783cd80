package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/academic"
)

type (
	Exam struct {
		ID         int64     `json:"id"`
		CourseID   int64     `json:"course_id"`
		Name       string    `json:"name"` // Mid-term, Final, Quiz 1
		Date       time.Time `json:"date"`
		TotalMarks float64   `json:"total_marks"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC

		Course      *academic.Course `json:"course,omitempty"`
		ResultCount int              `json:"result_count"`
	}

	// Result is a student's scored outcome for one Exam.
	// At most one Result exists per (exam, student); re-recording overwrites
	// marks and recomputes the grade.
	Result struct {
		ID            int64     `json:"id"`
		ExamID        int64     `json:"exam_id"`
		StudentID     int64     `json:"student_id"`
		MarksObtained float64   `json:"marks_obtained"`
		Grade         string    `json:"grade"`
		CreatedAt     time.Time `json:"created_at"` // UTC
		UpdatedAt     time.Time `json:"updated_at"` // UTC

		Exam    *Exam             `json:"exam,omitempty"`
		Student *academic.Student `json:"student,omitempty"`
	}
)

type NewExam struct {
	CourseID   int64   `json:"course" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Date       string  `json:"date" validate:"required"`
	TotalMarks float64 `json:"totalMarks" validate:"required,gt=0"`
}

func (ne *NewExam) Validate(validate *validator.Validate) (time.Time, error) {
	ne.Name = core.CleanString(ne.Name)
	if err := validate.Struct(ne); err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse("2006-01-02", ne.Date)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid YYYY-MM-DD date"})
	}
	return date, nil
}

type NewResult struct {
	ExamID        int64   `json:"exam" validate:"required"`
	StudentID     int64   `json:"student" validate:"required"`
	MarksObtained float64 `json:"marksObtained" validate:"gte=0"`
}

func (nr NewResult) Validate(validate *validator.Validate) error {
	return validate.Struct(nr)
}
