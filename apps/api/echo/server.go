package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool
		SignalShutdown func()

		AccountSvc      *account.Service
		AcademicSvc     *academic.Service
		AttendanceSvc   *attendance.Service
		ExamSvc         *exam.Service
		FinanceSvc      *finance.Service
		LibrarySvc      *library.Service
		HostelSvc       *hostel.Service
		TimetableSvc    *timetable.Service
		NotificationSvc *notification.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	validate, translator := core.NewValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		validate:   validate,
		translator: translator,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware())

	signalShutdown := s.opts.SignalShutdown
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/health", health)
	s.app.GET("/metrics", metricsHandler())

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(v1, jwt, s.authAPI())
	registerAcademicAPI(v1, jwt, s.academicAPI())
	registerAttendanceAPI(v1, jwt, s.attendanceAPI())
	registerExamAPI(v1, jwt, s.examAPI())
	registerFinanceAPI(v1, jwt, s.financeAPI())
	registerRecordsAPI(v1, jwt, s.recordsAPI())
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) authAPI() *authApi {
	return &authApi{
		conf:     s.opts.Conf,
		svc:      s.opts.AccountSvc,
		validate: s.validate,
	}
}

func (s *server) academicAPI() *academicApi {
	return &academicApi{
		svc:      s.opts.AcademicSvc,
		validate: s.validate,
	}
}

func (s *server) attendanceAPI() *attendanceApi {
	return &attendanceApi{
		svc:      s.opts.AttendanceSvc,
		validate: s.validate,
	}
}

func (s *server) examAPI() *examApi {
	return &examApi{
		svc:      s.opts.ExamSvc,
		validate: s.validate,
	}
}

func (s *server) financeAPI() *financeApi {
	return &financeApi{
		svc:      s.opts.FinanceSvc,
		validate: s.validate,
	}
}

func (s *server) recordsAPI() *recordsApi {
	return &recordsApi{
		librarySvc:      s.opts.LibrarySvc,
		hostelSvc:       s.opts.HostelSvc,
		timetableSvc:    s.opts.TimetableSvc,
		notificationSvc: s.opts.NotificationSvc,
		validate:        s.validate,
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ACE ERP API!")
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "UP"})
}
