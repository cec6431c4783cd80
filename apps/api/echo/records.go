package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/hostel"
	"github.com/campusops/acerp/core/library"
	"github.com/campusops/acerp/core/notification"
	"github.com/campusops/acerp/core/timetable"
)

// recordsApi groups the campus-record surfaces: library, hostel, timetable
// and notifications.
type recordsApi struct {
	librarySvc      *library.Service
	hostelSvc       *hostel.Service
	timetableSvc    *timetable.Service
	notificationSvc *notification.Service
	validate        *validator.Validate
}

func registerRecordsAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *recordsApi) {
	lg := g.Group("/library", jwt)
	lg.GET("", api.queryBooks)
	lg.POST("", api.createBook, adminMiddleware())
	lg.PUT("/:id", api.updateBook, adminMiddleware())
	lg.DELETE("/:id", api.destroyBook, adminMiddleware())

	hg := g.Group("/hostel", jwt)
	hg.GET("", api.queryRooms)
	hg.POST("", api.createRoom, adminMiddleware())
	hg.PUT("/:id", api.updateRoom, adminMiddleware())
	hg.DELETE("/:id", api.destroyRoom, adminMiddleware())

	tg := g.Group("/timetable", jwt)
	tg.GET("", api.queryTimetable)
	tg.POST("", api.createTimetableEntry, adminMiddleware())
	tg.DELETE("/:id", api.destroyTimetableEntry, adminMiddleware())

	ng := g.Group("/notifications", jwt)
	ng.GET("/me", api.myNotifications)
	ng.POST("", api.sendNotification, adminMiddleware())
	ng.PUT("/:id/read", api.markNotificationRead)
}

// Library handlers

func (api *recordsApi) queryBooks(ctx echo.Context) error {
	books, err := api.librarySvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying books")
	}
	if books == nil {
		books = []library.Book{}
	}
	return ctx.JSON(http.StatusOK, books)
}

func (api *recordsApi) createBook(ctx echo.Context) error {
	var data library.NewBook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBook")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, err := api.librarySvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating book")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *recordsApi) updateBook(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data library.UpdateBook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBook")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	b, err := api.librarySvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating book")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *recordsApi) destroyBook(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.librarySvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting book")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Hostel handlers

func (api *recordsApi) queryRooms(ctx echo.Context) error {
	rooms, err := api.hostelSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []hostel.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *recordsApi) createRoom(ctx echo.Context) error {
	var data hostel.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.hostelSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *recordsApi) updateRoom(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data hostel.UpdateRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRoom")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	r, err := api.hostelSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *recordsApi) destroyRoom(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.hostelSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Timetable handlers

func (api *recordsApi) queryTimetable(ctx echo.Context) error {
	entries, err := api.timetableSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying timetable")
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *recordsApi) createTimetableEntry(ctx echo.Context) error {
	var data timetable.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.timetableSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating timetable entry")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *recordsApi) destroyTimetableEntry(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.timetableSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting timetable entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Notification handlers

func (api *recordsApi) myNotifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	notifs, err := api.notificationSvc.ForAccount(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *recordsApi) sendNotification(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.notificationSvc.Send(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *recordsApi) markNotificationRead(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	n, err := api.notificationSvc.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, n)
}
