package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/attendance"
	inmemdb "github.com/campusops/acerp/storage/database/inmem"
)

type fixture struct {
	svc      *attendance.Service
	students *academic.Service
	course   academic.Course
	alice    academic.Student
	bob      academic.Student
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.Open()
	students := academic.NewService(inmemdb.NewAcademicRepository(db))
	svc := attendance.NewService(inmemdb.NewAttendanceRepository(db), students)

	course, err := students.CreateCourse(ctx, academic.NewCourse{
		Code: "CS101", Name: "Intro to CS", Credits: 4, Department: "CS", Semester: 1,
	})
	require.NoError(t, err)

	alice, err := students.CreateStudent(ctx, academic.NewStudent{
		Name: "Alice", Email: "alice@uni.test", Password: "s3cr3t!",
		RollNumber: "CS-001", Department: "CS", Batch: "2026",
	})
	require.NoError(t, err)
	bob, err := students.CreateStudent(ctx, academic.NewStudent{
		Name: "Bob", Email: "bob@uni.test", Password: "s3cr3t!",
		RollNumber: "CS-002", Department: "CS", Batch: "2026",
	})
	require.NoError(t, err)

	return fixture{svc: svc, students: students, course: course, alice: alice, bob: bob}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return date
}

func Test_attendanceService_Mark(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	mark := attendance.Mark{
		CourseID: fx.course.ID,
		Date:     "2026-03-02",
		Records: []attendance.MarkEntry{
			{StudentID: fx.alice.ID, Status: attendance.StatusAbsent},
			{StudentID: fx.bob.ID}, // empty status defaults to Present
		},
	}
	sheet, err := fx.svc.Mark(ctx, mark, mustDate(t, mark.Date))
	require.NoError(t, err)
	assert.NotZero(t, sheet.ID)
	assert.Equal(t, fx.course.ID, sheet.CourseID)
	require.Len(t, sheet.Entries, 2)
	assert.Equal(t, attendance.StatusAbsent, sheet.Entries[0].Status)
	assert.Equal(t, attendance.StatusPresent, sheet.Entries[1].Status)

	t.Run("re-marking replaces the roster", func(t *testing.T) {
		remark := attendance.Mark{
			CourseID: fx.course.ID,
			Date:     mark.Date,
			Records:  []attendance.MarkEntry{{StudentID: fx.alice.ID, Status: attendance.StatusLate}},
		}
		resheet, err := fx.svc.Mark(ctx, remark, mustDate(t, remark.Date))
		require.NoError(t, err)
		assert.Equal(t, sheet.ID, resheet.ID)
		require.Len(t, resheet.Entries, 1)
		assert.Equal(t, attendance.StatusLate, resheet.Entries[0].Status)
	})

	t.Run("a new date gets its own sheet", func(t *testing.T) {
		next := attendance.Mark{
			CourseID: fx.course.ID,
			Date:     "2026-03-03",
			Records:  []attendance.MarkEntry{{StudentID: fx.alice.ID}},
		}
		nextSheet, err := fx.svc.Mark(ctx, next, mustDate(t, next.Date))
		require.NoError(t, err)
		assert.NotEqual(t, sheet.ID, nextSheet.ID)
	})
}

func Test_attendanceService_StudentHistory(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	// day 1: both on the roster; day 2: bob left off
	_, err := fx.svc.Mark(ctx, attendance.Mark{
		CourseID: fx.course.ID,
		Date:     "2026-03-02",
		Records: []attendance.MarkEntry{
			{StudentID: fx.alice.ID, Status: attendance.StatusPresent},
			{StudentID: fx.bob.ID, Status: attendance.StatusAbsent},
		},
	}, mustDate(t, "2026-03-02"))
	require.NoError(t, err)

	_, err = fx.svc.Mark(ctx, attendance.Mark{
		CourseID: fx.course.ID,
		Date:     "2026-03-03",
		Records:  []attendance.MarkEntry{{StudentID: fx.alice.ID, Status: attendance.StatusLate}},
	}, mustDate(t, "2026-03-03"))
	require.NoError(t, err)

	t.Run("roster member sees statuses", func(t *testing.T) {
		days, err := fx.svc.StudentHistory(ctx, fx.alice.AccountID)
		require.NoError(t, err)
		require.Len(t, days, 2)
		for _, d := range days {
			assert.True(t, d.Recorded)
			assert.Equal(t, fx.course.ID, d.Course.ID)
			assert.Equal(t, "CS101", d.Course.Code)
		}
	})

	t.Run("off-roster day is reported unrecorded", func(t *testing.T) {
		days, err := fx.svc.StudentHistory(ctx, fx.bob.AccountID)
		require.NoError(t, err)
		require.Len(t, days, 2)

		var recorded, unrecorded int
		for _, d := range days {
			if d.Recorded {
				recorded++
				assert.Equal(t, attendance.StatusAbsent, d.Status)
			} else {
				unrecorded++
				assert.Empty(t, d.Status)
			}
		}
		assert.Equal(t, 1, recorded)
		assert.Equal(t, 1, unrecorded)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := fx.svc.StudentHistory(ctx, 9999)
		assert.Error(t, err)
	})
}
