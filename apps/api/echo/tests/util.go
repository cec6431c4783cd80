package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/campusops/acerp/apps/api/echo"
	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
	"github.com/campusops/acerp/core/attendance"
	"github.com/campusops/acerp/core/exam"
	"github.com/campusops/acerp/core/finance"
	"github.com/campusops/acerp/core/hostel"
	"github.com/campusops/acerp/core/library"
	"github.com/campusops/acerp/core/notification"
	"github.com/campusops/acerp/core/timetable"
	emailsvc "github.com/campusops/acerp/services/email"
	logsvc "github.com/campusops/acerp/services/logger"
	inmemdb "github.com/campusops/acerp/storage/database/inmem"
)

var errMissingToken = httpErr{Message: "missing or malformed jwt"}

type testApp struct {
	conf   *core.Config
	server Server

	acctSvc         *account.Service
	academicSvc     *academic.Service
	attendanceSvc   *attendance.Service
	examSvc         *exam.Service
	financeSvc      *finance.Service
	librarySvc      *library.Service
	hostelSvc       *hostel.Service
	timetableSvc    *timetable.Service
	notificationSvc *notification.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	conf := core.NewTestConfig()
	db := inmemdb.Open()
	acctRepo := inmemdb.NewAccountRepository(db)
	academicRepo := inmemdb.NewAcademicRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	acctSvc := account.NewService(conf, acctRepo, mailSvc)
	academicSvc := academic.NewService(academicRepo)
	attendanceSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), academicSvc)
	examSvc := exam.NewService(inmemdb.NewExamRepository(db), academicSvc)
	financeSvc := finance.NewService(inmemdb.NewFinanceRepository(db), academicSvc)
	librarySvc := library.NewService(inmemdb.NewLibraryRepository(db))
	hostelSvc := hostel.NewService(inmemdb.NewHostelRepository(db))
	timetableSvc := timetable.NewService(inmemdb.NewTimetableRepository(db))
	notificationSvc := notification.NewService(inmemdb.NewNotificationRepository(db))

	// set up server
	server := NewServer(
		&Options{
			Conf:            conf,
			Logger:          logsvc.NewConsoleLogger(log.New(io.Discard, "", 0)),
			DisableReqLogs:  true,
			AccountSvc:      acctSvc,
			AcademicSvc:     academicSvc,
			AttendanceSvc:   attendanceSvc,
			ExamSvc:         examSvc,
			FinanceSvc:      financeSvc,
			LibrarySvc:      librarySvc,
			HostelSvc:       hostelSvc,
			TimetableSvc:    timetableSvc,
			NotificationSvc: notificationSvc,
		},
	)

	return &testApp{
		conf:            conf,
		server:          server,
		acctSvc:         acctSvc,
		academicSvc:     academicSvc,
		attendanceSvc:   attendanceSvc,
		examSvc:         examSvc,
		financeSvc:      financeSvc,
		librarySvc:      librarySvc,
		hostelSvc:       hostelSvc,
		timetableSvc:    timetableSvc,
		notificationSvc: notificationSvc,
	}
}

func (app *testApp) createAccount(t *testing.T, name, email, role string) account.Account {
	t.Helper()
	acct, err := app.acctSvc.Create(context.Background(), account.NewAccount{
		Name:            name,
		Email:           email,
		Password:        "s3cr3t!",
		PasswordConfirm: "s3cr3t!",
		Role:            role,
	})
	if err != nil {
		t.Fatalf("createAccount(): %v", err)
	}
	return acct
}

func (app *testApp) createStudent(t *testing.T, name, email, rollNumber string) academic.Student {
	t.Helper()
	st, err := app.academicSvc.CreateStudent(context.Background(), academic.NewStudent{
		Name:       name,
		Email:      email,
		Password:   "s3cr3t!",
		RollNumber: rollNumber,
		Department: "CS",
		Batch:      "2026",
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return st
}

func (app *testApp) createCourse(t *testing.T, code, name string, credits int) academic.Course {
	t.Helper()
	c, err := app.academicSvc.CreateCourse(context.Background(), academic.NewCourse{
		Code:       code,
		Name:       name,
		Credits:    credits,
		Department: "CS",
		Semester:   1,
	})
	if err != nil {
		t.Fatalf("createCourse(): %v", err)
	}
	return c
}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) getToken(t *testing.T, acct account.Account) string {
	t.Helper()
	token, err := GenerateToken(app.conf, GetAccountClaims(app.conf, acct))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
