package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/schedule"
)

type dashboardApi struct {
	stores storeFactory
	conf   *core.Config
}

func registerDashboardAPI(g *echo.Group, stores storeFactory, conf *core.Config) {
	api := dashboardApi{stores: stores, conf: conf}
	g.GET("/dashboard", api.summary)
}

type DashboardResponse struct {
	Progress      course.AggregateProgress `json:"progress"`
	Modules       []ModuleResponse         `json:"modules"`
	TeachingHours schedule.TeachingHours   `json:"teaching_hours"`
	NextClass     *schedule.ClassSession   `json:"next_class"`
	ExamCountdown *course.ExamCountdown    `json:"exam_countdown"`
}

func (api *dashboardApi) summary(ctx echo.Context) error {
	progress, err := api.stores.progressStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer progress.Release()

	classes, err := api.stores.scheduleStore(ctx.Request().Context())
	if err != nil {
		return err
	}
	defer classes.Release()

	now := core.NowFunc()
	resp := DashboardResponse{
		Progress:      progress.Progress(),
		Modules:       newModuleResponses(progress.Modules()),
		TeachingHours: classes.TeachingHours(now),
	}
	if cs, ok := classes.NextSession(now); ok {
		resp.NextClass = &cs
	}
	if !api.conf.ExamDate.IsZero() {
		cd := course.ComputeExamCountdown(api.conf.ExamDate, now)
		resp.ExamCountdown = &cd
	}
	return ctx.JSON(http.StatusOK, resp)
}
