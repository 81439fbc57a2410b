package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
)

type (
	GradeService interface {
		PeriodGrades(ctx context.Context, studentID string, semester int) (grade.PeriodGrades, error)
		Unmatched(ctx context.Context, studentID string) ([]grade.Suggestion, error)
	}

	AbsenceService interface {
		Absences(ctx context.Context, studentID string, filter absence.QueryFilter) ([]absence.Absence, error)
	}

	SyllabusService interface {
		Query(ctx context.Context, filter syllabus.QueryFilter) ([]syllabus.Syllabus, error)
		Get(ctx context.Context, id string) (syllabus.Syllabus, error)
	}

	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		AppName        string
		DisableReqLogs bool
		Logger         core.Logger
		SignalShutdown func()

		GradeSvc    GradeService
		AbsenceSvc  AbsenceService
		SyllabusSvc SyllabusService
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

// routes under studentsPath are about the student of the `:id` param
const studentsPath = "/v1/students/"

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerGradeAPI(v1, s.opts.GradeSvc)
	registerAbsenceAPI(v1, s.opts.AbsenceSvc)
	registerSyllabusAPI(v1, s.opts.SyllabusSvc)
}

func (s *server) Start() error {
	err := s.app.Start(s.opts.Address)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	name := s.opts.AppName
	if name == "" {
		name = "Releve"
	}
	return ctx.String(http.StatusOK, "Welcome to "+name+" API!")
}
