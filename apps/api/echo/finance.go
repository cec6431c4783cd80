package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/finance"
)

type financeApi struct {
	svc      *finance.Service
	validate *validator.Validate
}

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *financeApi) {
	fg := g.Group("/finance", jwt)
	fg.POST("", api.createFee, adminMiddleware())
	fg.GET("", api.queryFees, adminMiddleware())
	fg.GET("/my", api.myFees, studentMiddleware())
	fg.PUT("/:id/pay", api.payFee, studentMiddleware())
}

// Handlers

func (api *financeApi) createFee(ctx echo.Context) error {
	var data finance.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	dueDate, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), data, dueDate)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *financeApi) queryFees(ctx echo.Context) error {
	fees, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	if fees == nil {
		fees = []finance.Fee{}
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *financeApi) myFees(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fees, err := api.svc.StudentFees(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return errors.Wrap(err, "querying student fees")
	}
	if fees == nil {
		fees = []finance.Fee{}
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *financeApi) payFee(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data finance.PayFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PayFee")
	}

	f, err := api.svc.Pay(ctx.Request().Context(), id, data.TransactionID)
	if err != nil {
		return errors.Wrap(err, "paying fee")
	}
	return ctx.JSON(http.StatusOK, f)
}
