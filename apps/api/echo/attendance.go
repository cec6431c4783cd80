package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *attendanceApi) {
	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark, staffMiddleware())
	ag.GET("/my", api.myHistory, studentMiddleware())
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	date, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	sheet, err := api.svc.Mark(ctx.Request().Context(), data, date)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, sheet)
}

func (api *attendanceApi) myHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	days, err := api.svc.StudentHistory(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return errors.Wrap(err, "querying attendance history")
	}
	if days == nil {
		days = []attendance.StudentDay{}
	}
	return ctx.JSON(http.StatusOK, days)
}
