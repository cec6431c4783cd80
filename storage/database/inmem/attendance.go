package inmemdb

import (
	"context"
	"sort"

	"github.com/campusops/acerp/core/attendance"
)

type AttendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (repo *AttendanceRepository) UpsertSheet(ctx context.Context, sheet attendance.Sheet) (attendance.Sheet, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.sheets {
		if existing.CourseID == sheet.CourseID && existing.Date.Equal(sheet.Date) {
			sheet.ID = existing.ID
			sheet.CreatedAt = existing.CreatedAt
			repo.db.sheets[sheet.ID] = &sheet
			return sheet, nil
		}
	}
	sheet.ID = repo.db.nextID()
	repo.db.sheets[sheet.ID] = &sheet
	return sheet, nil
}

func (repo *AttendanceRepository) SheetsForStudentCourses(ctx context.Context, studentID int64) ([]attendance.Sheet, map[int64]attendance.CourseRef, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courseIDs := make(map[int64]bool)
	for _, sheet := range repo.db.sheets {
		for _, e := range sheet.Entries {
			if e.StudentID == studentID {
				courseIDs[sheet.CourseID] = true
				break
			}
		}
	}

	sheets := make([]attendance.Sheet, 0)
	courses := make(map[int64]attendance.CourseRef)
	for _, sheet := range repo.db.sheets {
		if !courseIDs[sheet.CourseID] {
			continue
		}
		sheets = append(sheets, *sheet)
		if c, ok := repo.db.courses[sheet.CourseID]; ok {
			courses[c.ID] = attendance.CourseRef{ID: c.ID, Code: c.Code, Name: c.Name}
		}
	}
	sort.Slice(sheets, func(i, j int) bool {
		if !sheets[i].Date.Equal(sheets[j].Date) {
			return sheets[i].Date.After(sheets[j].Date)
		}
		return sheets[i].ID < sheets[j].ID
	})
	return sheets, courses, nil
}
