package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/exam"
)

type examApi struct {
	svc      *exam.Service
	validate *validator.Validate
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *examApi) {
	eg := g.Group("/exams", jwt)
	eg.POST("", api.createExam, staffMiddleware())
	eg.GET("", api.queryExams, staffMiddleware())
	eg.GET("/:id/results", api.examResults, staffMiddleware())
	eg.POST("/results", api.recordResult, staffMiddleware())
	eg.GET("/my-results", api.myResults, studentMiddleware())
}

// Handlers

func (api *examApi) createExam(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	date, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	e, err := api.svc.CreateExam(ctx.Request().Context(), data, date)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) queryExams(ctx echo.Context) error {
	exams, err := api.svc.QueryAllExams(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) recordResult(ctx echo.Context) error {
	var data exam.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.RecordResult(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording result")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *examApi) examResults(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	results, err := api.svc.ExamResults(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying exam results")
	}
	if results == nil {
		results = []exam.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

// myResults returns the student's full result history together with the
// credit-weighted GPA derived from it.
func (api *examApi) myResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	results, err := api.svc.StudentResults(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	if results == nil {
		results = []exam.Result{}
	}
	return ctx.JSON(http.StatusOK, StudentResultsResponse{
		Results: results,
		GPA:     exam.GPA(results),
	})
}

type StudentResultsResponse struct {
	Results []exam.Result `json:"results"`
	GPA     string        `json:"gpa"`
}
