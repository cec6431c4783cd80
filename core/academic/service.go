package academic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/account"
)

var (
	// errors
	ErrStudentNotFound  = errors.New("student not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrRollNumberExists = errors.New("a student with this roll number already exists")
	ErrCourseCodeExists = errors.New("a course with this code already exists")
)

type (
	Repository interface {
		// CheckEmailUniqueness reports account.ErrEmailExists when another
		// account already holds the email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedAccountIDs ...int64) error
		CheckRollNumberUniqueness(ctx context.Context, rollNumber string, excluded ...Student) error
		// CreateStudent persists the owning Account and its Student profile atomically.
		CreateStudent(ctx context.Context, acct account.Account, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id int64) (Student, error)
		GetStudentByAccountID(ctx context.Context, accountID int64) (Student, error)
		// FilterStudents applies an AND operation on available QueryFilter fields
		// and returns the page plus the unpaged total.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, int, error)
		// UpdateStudent persists profile changes and any Account name/email change atomically.
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		// DeleteStudent removes the Student and its owning Account.
		DeleteStudent(ctx context.Context, id int64) error

		CheckCourseCodeUniqueness(ctx context.Context, code string, excluded ...Course) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id int64) (Course, error)
		GetCoursesByFaculty(ctx context.Context, facultyID int64) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkEmailUniqueness(email string, excludedAccountIDs ...int64) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excludedAccountIDs...); err != nil {
		if errors.Cause(err) == account.ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) checkRollNumberUniqueness(roll string, excluded ...Student) error {
	if err := svc.repo.CheckRollNumberUniqueness(context.Background(), roll, excluded...); err != nil {
		if errors.Cause(err) == ErrRollNumberExists {
			return core.NewValidationError(err, core.FieldError{Field: "roll_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) checkCourseCodeUniqueness(code string, excluded ...Course) error {
	if err := svc.repo.CheckCourseCodeUniqueness(context.Background(), code, excluded...); err != nil {
		if errors.Cause(err) == ErrCourseCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	acct := account.Account{
		Name:      ns.Name,
		Email:     ns.Email,
		Role:      account.RoleStudent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}

	st := Student{
		RollNumber:    ns.RollNumber,
		Department:    ns.Department,
		Batch:         ns.Batch,
		ContactNumber: ns.ContactNumber,
		Address:       ns.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudent(ctx, acct, st)
}

func (svc *Service) GetStudentByID(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// GetStudentByAccount resolves the Student profile owned by an Account.
func (svc *Service) GetStudentByAccount(ctx context.Context, accountID int64) (Student, error) {
	return svc.repo.GetStudentByAccountID(ctx, accountID)
}

func (svc *Service) FilterStudents(ctx context.Context, filter QueryFilter) (StudentPage, error) {
	filter.Clean()
	students, total, err := svc.repo.FilterStudents(ctx, filter)
	if err != nil {
		return StudentPage{}, err
	}
	if students == nil {
		students = []Student{}
	}
	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return StudentPage{Students: students, Total: total, Page: filter.Page, Pages: pages}, nil
}

func (svc *Service) UpdateStudent(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	orig.RollNumber = us.RollNumber
	orig.Department = us.Department
	orig.Batch = us.Batch
	if us.ContactNumber != "" {
		orig.ContactNumber = us.ContactNumber
	}
	if us.Address != "" {
		orig.Address = us.Address
	}
	if us.Name != "" {
		orig.Account.Name = us.Name
	}
	if us.Email != "" {
		orig.Account.Email = us.Email
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, orig)
}

func (svc *Service) DeleteStudent(ctx context.Context, id int64) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	c := Course{
		Code:       nc.Code,
		Name:       nc.Name,
		Credits:    nc.Credits,
		Department: nc.Department,
		Semester:   nc.Semester,
		FacultyID:  nc.FacultyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) QueryAllCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetCourseByID(ctx context.Context, id int64) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetCoursesByFaculty(ctx context.Context, facultyID int64) ([]Course, error) {
	return svc.repo.GetCoursesByFaculty(ctx, facultyID)
}

func (svc *Service) UpdateCourse(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	orig.Code = uc.Code
	orig.Name = uc.Name
	orig.Credits = uc.Credits
	orig.Department = uc.Department
	orig.Semester = uc.Semester
	orig.FacultyID = uc.FacultyID
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, orig)
}

func (svc *Service) DeleteCourse(ctx context.Context, id int64) error {
	return svc.repo.DeleteCourse(ctx, id)
}
