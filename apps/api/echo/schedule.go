package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/schedule"
)

type scheduleApi struct {
	stores storeFactory
}

func registerScheduleAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, stores storeFactory) {
	api := scheduleApi{stores: stores}

	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.GET("/next", api.next)
	cg.GET("/hours", api.hours)

	// tutor endpoints
	tutor := []echo.MiddlewareFunc{jwt, active, tutorMiddleware()}
	cg.POST("", api.create, tutor...)
	cg.PUT("/:id", api.update, tutor...)
	cg.DELETE("/:id", api.destroy, tutor...)
}

// Handlers

func (api *scheduleApi) query(ctx echo.Context) error {
	var filter ClassFilter
	if err := filter.Bind(ctx); err != nil {
		return err
	}

	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	var sessions []schedule.ClassSession
	now := core.NowFunc()
	switch filter.When {
	case whenUpcoming:
		sessions = store.ListUpcoming(now)
	case whenPast:
		sessions = store.ListPast(now)
	default:
		sessions = store.Sessions()
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) next(ctx echo.Context) error {
	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	cs, ok := store.NextSession(core.NowFunc())
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no upcoming class")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *scheduleApi) hours(ctx echo.Context) error {
	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	return ctx.JSON(http.StatusOK, store.TeachingHours(core.NowFunc()))
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewClassSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassSession")
	}

	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	cs, err := store.AddSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding class session")
	}
	return ctx.JSON(http.StatusCreated, cs)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.NewClassSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassSession")
	}

	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	cs, err := store.UpdateSession(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class session")
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	store, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	if err = store.RemoveSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing class session")
	}
	return ctx.NoContent(http.StatusNoContent)
}
