package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/campusops/acerp/apps/api/echo"
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
	"github.com/campusops/acerp/storage/database"
	"github.com/campusops/acerp/storage/database/pg"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	accountSvc := account.NewService(conf, pg.NewAccountRepository(db), mailSvc)
	academicSvc := academic.NewService(pg.NewAcademicRepository(db))
	attendanceSvc := attendance.NewService(pg.NewAttendanceRepository(db), academicSvc)
	examSvc := exam.NewService(pg.NewExamRepository(db), academicSvc)
	financeSvc := finance.NewService(pg.NewFinanceRepository(db), academicSvc)
	librarySvc := library.NewService(pg.NewLibraryRepository(db))
	hostelSvc := hostel.NewService(pg.NewHostelRepository(db))
	timetableSvc := timetable.NewService(pg.NewTimetableRepository(db))
	notificationSvc := notification.NewService(pg.NewNotificationRepository(db))

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Conf:            conf,
		Logger:          logger,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
		AccountSvc:      accountSvc,
		AcademicSvc:     academicSvc,
		AttendanceSvc:   attendanceSvc,
		ExamSvc:         examSvc,
		FinanceSvc:      financeSvc,
		LibrarySvc:      librarySvc,
		HostelSvc:       hostelSvc,
		TimetableSvc:    timetableSvc,
		NotificationSvc: notificationSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(db); err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
