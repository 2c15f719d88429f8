package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
)

type courseApi struct {
	stores    storeFactory
	validator *core.Validator
}

func registerCourseAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, stores storeFactory, validator *core.Validator) {
	api := courseApi{
		stores:    stores,
		validator: validator,
	}

	g.GET("/modules", api.queryModules)
	g.GET("/progress", api.progress)

	// any signed-in user may track progress
	g.PUT("/modules/:moduleId/lessons/:lessonId/status", api.updateStatus, jwt, active)
}

// Handlers

func (api *courseApi) queryModules(ctx echo.Context) error {
	store, err := api.stores.progressStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	return ctx.JSON(http.StatusOK, newModuleResponses(store.Modules()))
}

func (api *courseApi) progress(ctx echo.Context) error {
	store, err := api.stores.progressStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	return ctx.JSON(http.StatusOK, store.Progress())
}

func (api *courseApi) updateStatus(ctx echo.Context) error {
	var data course.StatusChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusChange")
	}
	if err := data.Validate(api.validator); err != nil {
		return err
	}

	store, err := api.stores.progressStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer store.Release()

	moduleID := ctx.Param("moduleId")
	err = store.UpdateLessonStatus(ctx.Request().Context(), moduleID, ctx.Param("lessonId"), course.LessonStatus(data.Status))
	if err != nil {
		return errors.Wrap(err, "updating lesson status")
	}

	resp := StatusUpdateResponse{Progress: store.Progress()}
	for _, m := range store.Modules() {
		if m.ID == moduleID {
			resp.Module = newModuleResponse(m)
			break
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	ModuleResponse struct {
		course.Module
		Progress int `json:"progress"`
	}

	StatusUpdateResponse struct {
		Module   ModuleResponse           `json:"module"`
		Progress course.AggregateProgress `json:"progress"`
	}
)

func newModuleResponse(m course.Module) ModuleResponse {
	return ModuleResponse{Module: m, Progress: course.ComputeModuleProgress(m)}
}

func newModuleResponses(modules []course.Module) []ModuleResponse {
	resp := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		resp = append(resp, newModuleResponse(m))
	}
	return resp
}
