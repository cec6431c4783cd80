package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/account"
)

// Student is the academic-record extension of a student Account.
// Exactly one Student exists per student Account.
type Student struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	RollNumber    string    `json:"roll_number"`
	Department    string    `json:"department"`
	Batch         string    `json:"batch"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC

	Account account.Account `json:"account"`
}

type Course struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Credits    int       `json:"credits"`
	Department string    `json:"department"`
	Semester   int       `json:"semester"`
	FacultyID  int64     `json:"faculty_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewStudent contains information needed to enroll a new Student.
// Its owning Account is provisioned in the same transaction.
type NewStudent struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	RollNumber    string `json:"roll_number" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Batch         string `json:"batch" validate:"required"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.Department = core.CleanString(ns.Department)
	ns.Batch = core.CleanString(ns.Batch)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if err := svc.checkEmailUniqueness(ns.Email); err != nil {
		return err
	}
	return svc.checkRollNumberUniqueness(ns.RollNumber)
}

// UpdateStudent defines what may be modified on an existing Student and its Account.
type UpdateStudent struct {
	Name          string `json:"name"`
	Email         string `json:"email" validate:"omitempty,email"`
	RollNumber    string `json:"roll_number"`
	Department    string `json:"department"`
	Batch         string `json:"batch"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc *Service) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.RollNumber = core.CleanString(us.RollNumber)
	if us.RollNumber == "" {
		us.RollNumber = orig.RollNumber
	}
	if us.Department = core.CleanString(us.Department); us.Department == "" {
		us.Department = orig.Department
	}
	if us.Batch = core.CleanString(us.Batch); us.Batch == "" {
		us.Batch = orig.Batch
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Email != "" {
		if err := svc.checkEmailUniqueness(us.Email, orig.AccountID); err != nil {
			return err
		}
	}
	return svc.checkRollNumberUniqueness(us.RollNumber, orig)
}

type NewCourse struct {
	Code       string `json:"code" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Credits    int    `json:"credits" validate:"required,gt=0"`
	Department string `json:"department" validate:"required"`
	Semester   int    `json:"semester" validate:"required,gt=0"`
	FacultyID  int64  `json:"faculty_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc *Service) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Department = core.CleanString(nc.Department)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkCourseCodeUniqueness(nc.Code)
}

type UpdateCourse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Credits    int    `json:"credits" validate:"omitempty,gt=0"`
	Department string `json:"department"`
	Semester   int    `json:"semester" validate:"omitempty,gt=0"`
	FacultyID  int64  `json:"faculty_id"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate, svc *Service) error {
	if uc.Code = core.CleanString(uc.Code); uc.Code == "" {
		uc.Code = orig.Code
	}
	if uc.Name = core.CleanString(uc.Name); uc.Name == "" {
		uc.Name = orig.Name
	}
	if uc.Credits == 0 {
		uc.Credits = orig.Credits
	}
	if uc.Department = core.CleanString(uc.Department); uc.Department == "" {
		uc.Department = orig.Department
	}
	if uc.Semester == 0 {
		uc.Semester = orig.Semester
	}
	if uc.FacultyID == 0 {
		uc.FacultyID = orig.FacultyID
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.checkCourseCodeUniqueness(uc.Code, orig)
}

// QueryFilter narrows and pages the student list.
// Filters apply an AND operation; text filters match case-insensitively.
type QueryFilter struct {
	Department string `query:"department"`
	Batch      string `query:"batch"`
	Name       string `query:"name"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	SortBy     string `query:"sortBy"`
	SortOrder  string `query:"sortOrder"`
}

func (qf *QueryFilter) Clean() {
	qf.Department = core.CleanString(qf.Department)
	qf.Batch = core.CleanString(qf.Batch)
	qf.Name = core.CleanString(qf.Name)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.Limit < 1 {
		qf.Limit = 10
	}
	switch qf.SortBy {
	case "roll_number", "department", "batch", "created_at":
	default:
		qf.SortBy = "created_at"
	}
	if qf.SortOrder != "asc" {
		qf.SortOrder = "desc"
	}
}

// StudentPage is one page of a filtered student list.
type StudentPage struct {
	Students []Student `json:"students"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}
