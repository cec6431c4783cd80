package finance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/academic"
)

// Statuses
const (
	StatusPending = "Pending"
	StatusPaid    = "Paid"
)

// Fee is a billable charge owed by a student. TransactionID and PaymentDate
// are populated if and only if Status is Paid.
type Fee struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	Amount        float64   `json:"amount"`
	Type          string    `json:"type"` // Tuition, Library, Hostel, etc.
	DueDate       time.Time `json:"due_date"`
	Status        string    `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC

	Student *academic.Student `json:"student,omitempty"`
}

type NewFee struct {
	StudentID int64   `json:"student" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Type      string  `json:"type" validate:"required"`
	DueDate   string  `json:"dueDate" validate:"required"`
}

func (nf *NewFee) Validate(validate *validator.Validate) (time.Time, error) {
	nf.Type = core.CleanString(nf.Type)
	if err := validate.Struct(nf); err != nil {
		return time.Time{}, err
	}
	due, err := time.Parse("2006-01-02", nf.DueDate)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "dueDate", Error: "must be a valid YYYY-MM-DD date"})
	}
	return due, nil
}

type PayFee struct {
	TransactionID string `json:"transactionId"`
}
