package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
)

type studentRow struct {
	ID            int64     `db:"id"`
	AccountID     int64     `db:"account_id"`
	RollNumber    string    `db:"roll_number"`
	Department    string    `db:"department"`
	Batch         string    `db:"batch"`
	ContactNumber string    `db:"contact_number"`
	Address       string    `db:"address"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	AccountName     string `db:"account_name"`
	AccountEmail    string `db:"account_email"`
	AccountRole     string `db:"account_role"`
	AccountIsActive bool   `db:"account_is_active"`
}

func (r studentRow) toStudent() academic.Student {
	return academic.Student{
		ID:            r.ID,
		AccountID:     r.AccountID,
		RollNumber:    r.RollNumber,
		Department:    r.Department,
		Batch:         r.Batch,
		ContactNumber: r.ContactNumber,
		Address:       r.Address,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Account: account.Account{
			ID:       r.AccountID,
			Name:     r.AccountName,
			Email:    r.AccountEmail,
			Role:     r.AccountRole,
			IsActive: r.AccountIsActive,
		},
	}
}

type courseRow struct {
	ID         int64         `db:"id"`
	Code       string        `db:"code"`
	Name       string        `db:"name"`
	Credits    int           `db:"credits"`
	Department string        `db:"department"`
	Semester   int           `db:"semester"`
	FacultyID  sql.NullInt64 `db:"faculty_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

func (r courseRow) toCourse() academic.Course {
	return academic.Course{
		ID:         r.ID,
		Code:       r.Code,
		Name:       r.Name,
		Credits:    r.Credits,
		Department: r.Department,
		Semester:   r.Semester,
		FacultyID:  r.FacultyID.Int64,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const studentCols = `
	s.id, s.account_id, s.roll_number, s.department, s.batch, s.contact_number, s.address,
	s.created_at, s.updated_at,
	a.name AS account_name, a.email AS account_email, a.role AS account_role, a.is_active AS account_is_active`

const courseCols = `id, code, name, credits, department, semester, faculty_id, created_at, updated_at`

type AcademicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*AcademicRepository)(nil)

func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

func (repo *AcademicRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAccountIDs ...int64) error {
	query := `SELECT EXISTS (SELECT 1 FROM account WHERE email = $1`
	args := []interface{}{email}
	if len(excludedAccountIDs) > 0 {
		query += ` AND id != $2`
		args = append(args, excludedAccountIDs[0])
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *AcademicRepository) CheckRollNumberUniqueness(ctx context.Context, roll string, excluded ...academic.Student) error {
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE roll_number = $1`
	args := []interface{}{roll}
	if len(excluded) > 0 {
		query += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking roll number uniqueness")
	}
	if exists {
		return academic.ErrRollNumberExists
	}
	return nil
}

// CreateStudent inserts the owning account and the student profile in one
// transaction so a failure cannot leave an orphaned account behind.
func (repo *AcademicRepository) CreateStudent(ctx context.Context, acct account.Account, st academic.Student) (academic.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO account (name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		acct.Name, acct.Email, acct.PasswordHash, acct.Role, acct.IsActive, acct.CreatedAt, acct.UpdatedAt,
	).Scan(&acct.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Student{}, account.ErrEmailExists
		}
		return academic.Student{}, errors.Wrap(err, "inserting account")
	}

	st.AccountID = acct.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO student (account_id, roll_number, department, batch, contact_number, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		st.AccountID, st.RollNumber, st.Department, st.Batch, st.ContactNumber, st.Address, st.CreatedAt, st.UpdatedAt,
	).Scan(&st.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Student{}, academic.ErrRollNumberExists
		}
		return academic.Student{}, errors.Wrap(err, "inserting student")
	}

	if err = tx.Commit(); err != nil {
		return academic.Student{}, errors.Wrap(err, "committing tx")
	}
	st.Account = acct
	return st, nil
}

func (repo *AcademicRepository) getStudent(ctx context.Context, query string, args ...interface{}) (academic.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return academic.Student{}, academic.ErrStudentNotFound
		}
		return academic.Student{}, errors.Wrap(err, "querying student")
	}
	return row.toStudent(), nil
}

func (repo *AcademicRepository) GetStudentByID(ctx context.Context, id int64) (academic.Student, error) {
	return repo.getStudent(ctx,
		`SELECT `+studentCols+` FROM student s JOIN account a ON a.id = s.account_id WHERE s.id = $1`, id)
}

func (repo *AcademicRepository) GetStudentByAccountID(ctx context.Context, accountID int64) (academic.Student, error) {
	return repo.getStudent(ctx,
		`SELECT `+studentCols+` FROM student s JOIN account a ON a.id = s.account_id WHERE s.account_id = $1`, accountID)
}

func (repo *AcademicRepository) FilterStudents(ctx context.Context, filter academic.QueryFilter) ([]academic.Student, int, error) {
	where := ` WHERE TRUE`
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Department != "" {
		where += ` AND s.department ILIKE ` + arg("%"+filter.Department+"%")
	}
	if filter.Batch != "" {
		where += ` AND s.batch ILIKE ` + arg("%"+filter.Batch+"%")
	}
	if filter.Name != "" {
		where += ` AND a.name ILIKE ` + arg("%"+filter.Name+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM student s JOIN account a ON a.id = s.account_id` + where
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	// filter.Clean() restricts SortBy/SortOrder to known values
	query := `SELECT ` + studentCols + ` FROM student s JOIN account a ON a.id = s.account_id` + where +
		fmt.Sprintf(` ORDER BY s.%s %s LIMIT %s OFFSET %s`,
			filter.SortBy, filter.SortOrder, arg(filter.Limit), arg((filter.Page-1)*filter.Limit))

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying students")
	}

	students := make([]academic.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, total, nil
}

// UpdateStudent persists the profile and any account name/email change in one transaction.
func (repo *AcademicRepository) UpdateStudent(ctx context.Context, st academic.Student) (academic.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE student
		SET roll_number = $1, department = $2, batch = $3, contact_number = $4, address = $5, updated_at = $6
		WHERE id = $7`,
		st.RollNumber, st.Department, st.Batch, st.ContactNumber, st.Address, st.UpdatedAt, st.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Student{}, academic.ErrRollNumberExists
		}
		return academic.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Student{}, academic.ErrStudentNotFound
	}

	_, err = tx.ExecContext(ctx, `UPDATE account SET name = $1, email = $2, updated_at = $3 WHERE id = $4`,
		st.Account.Name, st.Account.Email, st.UpdatedAt, st.AccountID)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Student{}, account.ErrEmailExists
		}
		return academic.Student{}, errors.Wrap(err, "updating account")
	}

	if err = tx.Commit(); err != nil {
		return academic.Student{}, errors.Wrap(err, "committing tx")
	}
	return st, nil
}

// DeleteStudent removes the owning account; the student row goes with it via
// ON DELETE CASCADE.
func (repo *AcademicRepository) DeleteStudent(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM account WHERE id = (SELECT account_id FROM student WHERE id = $1)`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrStudentNotFound
	}
	return nil
}

func (repo *AcademicRepository) CheckCourseCodeUniqueness(ctx context.Context, code string, excluded ...academic.Course) error {
	query := `SELECT EXISTS (SELECT 1 FROM course WHERE code = $1`
	args := []interface{}{code}
	if len(excluded) > 0 {
		query += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if exists {
		return academic.ErrCourseCodeExists
	}
	return nil
}

func (repo *AcademicRepository) CreateCourse(ctx context.Context, c academic.Course) (academic.Course, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO course (code, name, credits, department, semester, faculty_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.Code, c.Name, c.Credits, c.Department, c.Semester, nullInt64(c.FacultyID), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Course{}, academic.ErrCourseCodeExists
		}
		return academic.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *AcademicRepository) queryCourses(ctx context.Context, query string, args ...interface{}) ([]academic.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]academic.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *AcademicRepository) QueryAllCourses(ctx context.Context) ([]academic.Course, error) {
	return repo.queryCourses(ctx, `SELECT `+courseCols+` FROM course ORDER BY code`)
}

func (repo *AcademicRepository) GetCourseByID(ctx context.Context, id int64) (academic.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseCols+` FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Course{}, academic.ErrCourseNotFound
		}
		return academic.Course{}, errors.Wrap(err, "querying course")
	}
	return row.toCourse(), nil
}

func (repo *AcademicRepository) GetCoursesByFaculty(ctx context.Context, facultyID int64) ([]academic.Course, error) {
	return repo.queryCourses(ctx, `SELECT `+courseCols+` FROM course WHERE faculty_id = $1 ORDER BY code`, facultyID)
}

func (repo *AcademicRepository) UpdateCourse(ctx context.Context, c academic.Course) (academic.Course, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE course
		SET code = $1, name = $2, credits = $3, department = $4, semester = $5, faculty_id = $6, updated_at = $7
		WHERE id = $8`,
		c.Code, c.Name, c.Credits, c.Department, c.Semester, nullInt64(c.FacultyID), c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return academic.Course{}, academic.ErrCourseCodeExists
		}
		return academic.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Course{}, academic.ErrCourseNotFound
	}
	return c, nil
}

func (repo *AcademicRepository) DeleteCourse(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrCourseNotFound
	}
	return nil
}
