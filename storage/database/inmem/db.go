// Package inmemdb backs the domain repositories with mutex-guarded maps.
// It exists for handler and service tests; nothing here persists.
package inmemdb

import (
	"sync"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/attendance"
	"github.com/campusops/acerp/core/exam"
	"github.com/campusops/acerp/core/finance"
	"github.com/campusops/acerp/core/hostel"
	"github.com/campusops/acerp/core/library"
	"github.com/campusops/acerp/core/notification"
	"github.com/campusops/acerp/core/timetable"
)

type DB struct {
	mutex sync.RWMutex
	seq   int64

	accounts      map[int64]*account.Account
	students      map[int64]*academic.Student
	courses       map[int64]*academic.Course
	sheets        map[int64]*attendance.Sheet
	exams         map[int64]*exam.Exam
	results       map[int64]*exam.Result
	fees          map[int64]*finance.Fee
	books         map[int64]*library.Book
	rooms         map[int64]*hostel.Room
	timetable     map[int64]*timetable.Entry
	notifications map[int64]*notification.Notification
}

func Open() *DB {
	return &DB{
		accounts:      make(map[int64]*account.Account),
		students:      make(map[int64]*academic.Student),
		courses:       make(map[int64]*academic.Course),
		sheets:        make(map[int64]*attendance.Sheet),
		exams:         make(map[int64]*exam.Exam),
		results:       make(map[int64]*exam.Result),
		fees:          make(map[int64]*finance.Fee),
		books:         make(map[int64]*library.Book),
		rooms:         make(map[int64]*hostel.Room),
		timetable:     make(map[int64]*timetable.Entry),
		notifications: make(map[int64]*notification.Notification),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}
