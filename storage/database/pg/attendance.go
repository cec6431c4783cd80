package pg

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/attendance"
)

type AttendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertSheet inserts or refreshes the (course, date) sheet and replaces its
// entries wholesale, all in one transaction.
func (repo *AttendanceRepository) UpsertSheet(ctx context.Context, sheet attendance.Sheet) (attendance.Sheet, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return attendance.Sheet{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_sheet (course_id, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, date) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		sheet.CourseID, sheet.Date, sheet.CreatedAt, sheet.UpdatedAt,
	).Scan(&sheet.ID, &sheet.CreatedAt)
	if err != nil {
		return attendance.Sheet{}, errors.Wrap(err, "upserting sheet")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_entry WHERE sheet_id = $1`, sheet.ID); err != nil {
		return attendance.Sheet{}, errors.Wrap(err, "clearing entries")
	}
	for i, e := range sheet.Entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attendance_entry (sheet_id, student_id, status, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (sheet_id, student_id) DO UPDATE SET status = EXCLUDED.status`,
			sheet.ID, e.StudentID, e.Status, i,
		)
		if err != nil {
			return attendance.Sheet{}, errors.Wrap(err, "inserting entry")
		}
	}

	if err = tx.Commit(); err != nil {
		return attendance.Sheet{}, errors.Wrap(err, "committing tx")
	}
	return sheet, nil
}

func (repo *AttendanceRepository) SheetsForStudentCourses(ctx context.Context, studentID int64) ([]attendance.Sheet, map[int64]attendance.CourseRef, error) {
	type sheetRow struct {
		ID         int64     `db:"id"`
		CourseID   int64     `db:"course_id"`
		Date       time.Time `db:"date"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
		CourseCode string    `db:"course_code"`
		CourseName string    `db:"course_name"`
	}

	var rows []sheetRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT sh.id, sh.course_id, sh.date, sh.created_at, sh.updated_at,
		       c.code AS course_code, c.name AS course_name
		FROM attendance_sheet sh
		JOIN course c ON c.id = sh.course_id
		WHERE sh.course_id IN (
			SELECT DISTINCT s2.course_id
			FROM attendance_sheet s2
			JOIN attendance_entry e2 ON e2.sheet_id = s2.id
			WHERE e2.student_id = $1
		)
		ORDER BY sh.date DESC, sh.id`,
		studentID,
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying sheets")
	}
	if len(rows) == 0 {
		return nil, map[int64]attendance.CourseRef{}, nil
	}

	ids := make([]int64, 0, len(rows))
	courses := make(map[int64]attendance.CourseRef)
	sheets := make([]attendance.Sheet, 0, len(rows))
	byID := make(map[int64]int, len(rows))
	for i, row := range rows {
		ids = append(ids, row.ID)
		courses[row.CourseID] = attendance.CourseRef{ID: row.CourseID, Code: row.CourseCode, Name: row.CourseName}
		sheets = append(sheets, attendance.Sheet{
			ID:        row.ID,
			CourseID:  row.CourseID,
			Date:      row.Date,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
		byID[row.ID] = i
	}

	type entryRow struct {
		SheetID   int64  `db:"sheet_id"`
		StudentID int64  `db:"student_id"`
		Status    string `db:"status"`
	}
	query, args, err := sqlx.In(
		`SELECT sheet_id, student_id, status FROM attendance_entry WHERE sheet_id IN (?) ORDER BY sheet_id, position`, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "building entries query")
	}
	var entries []entryRow
	if err = repo.db.SelectContext(ctx, &entries, repo.db.Rebind(query), args...); err != nil {
		return nil, nil, errors.Wrap(err, "querying entries")
	}
	for _, e := range entries {
		i := byID[e.SheetID]
		sheets[i].Entries = append(sheets[i].Entries, attendance.Entry{StudentID: e.StudentID, Status: e.Status})
	}
	return sheets, courses, nil
}
