package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/academic"
)

type (
	Repository interface {
		// UpsertSheet atomically inserts or replaces the sheet for
		// (course, date), dropping any previous entries.
		UpsertSheet(ctx context.Context, sheet Sheet) (Sheet, error)
		// SheetsForStudentCourses returns every sheet of every course in which
		// the student has appeared on at least one roster, course populated.
		SheetsForStudentCourses(ctx context.Context, studentID int64) ([]Sheet, map[int64]CourseRef, error)
	}

	Service struct {
		repo     Repository
		students *academic.Service
	}
)

func NewService(repo Repository, students *academic.Service) *Service {
	return &Service{repo: repo, students: students}
}

// Mark upserts the sheet for (course, date). The supplied entries replace any
// previously stored roster; a resubmission with a subset drops the rest.
func (svc *Service) Mark(ctx context.Context, m Mark, date time.Time) (Sheet, error) {
	now := time.Now().UTC()
	sheet := Sheet{
		CourseID:  m.CourseID,
		Date:      date,
		Entries:   make([]Entry, 0, len(m.Records)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, rec := range m.Records {
		status := rec.Status
		if status == "" {
			status = StatusPresent
		}
		sheet.Entries = append(sheet.Entries, Entry{StudentID: rec.StudentID, Status: status})
	}
	return svc.repo.UpsertSheet(ctx, sheet)
}

// StudentHistory projects the per-student attendance view for the Account's
// Student profile. Days where the student is missing from a sheet's roster
// are reported with Recorded=false instead of being silently omitted.
func (svc *Service) StudentHistory(ctx context.Context, accountID int64) ([]StudentDay, error) {
	st, err := svc.students.GetStudentByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student profile")
	}

	sheets, courses, err := svc.repo.SheetsForStudentCourses(ctx, st.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sheets")
	}

	days := make([]StudentDay, 0, len(sheets))
	for _, sheet := range sheets {
		day := StudentDay{Date: sheet.Date, Course: courses[sheet.CourseID]}
		for _, e := range sheet.Entries {
			if e.StudentID == st.ID {
				day.Status = e.Status
				day.Recorded = true
				break
			}
		}
		days = append(days, day)
	}
	return days, nil
}
