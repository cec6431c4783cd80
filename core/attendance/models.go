package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusops/acerp/core"
)

// Statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
)

type (
	// Sheet is the attendance record for one (course, date) pair.
	// At most one Sheet exists per pair; re-marking replaces its entries wholesale.
	Sheet struct {
		ID        int64     `json:"id"`
		CourseID  int64     `json:"course_id"`
		Date      time.Time `json:"date"`
		Entries   []Entry   `json:"records"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Entry struct {
		StudentID int64  `json:"student"`
		Status    string `json:"status"`
	}

	// CourseRef is the course slice a student sees in their history.
	CourseRef struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	}

	// StudentDay is one day of a student's attendance history. Recorded is
	// false when a sheet exists for the day but the student was left off its
	// roster, which is distinct from being marked Absent.
	StudentDay struct {
		Date     time.Time `json:"date"`
		Course   CourseRef `json:"course"`
		Status   string    `json:"status,omitempty"`
		Recorded bool      `json:"recorded"`
	}
)

// Mark is the payload for marking attendance for a course on a date.
type Mark struct {
	CourseID int64       `json:"courseId" validate:"required"`
	Date     string      `json:"date" validate:"required"`
	Records  []MarkEntry `json:"records" validate:"required,min=1,dive"`
}

type MarkEntry struct {
	StudentID int64  `json:"student" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=Present Absent Late"`
}

func (m *Mark) Validate(validate *validator.Validate) (time.Time, error) {
	if err := validate.Struct(m); err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid YYYY-MM-DD date"})
	}
	return date, nil
}
