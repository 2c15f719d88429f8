package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/ccourse/apps/api/echo"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/user"
	"github.com/trezcool/ccourse/tests"
)

func statusPath(moduleID, lessonID string) string {
	return "/v1/modules/" + moduleID + "/lessons/" + lessonID + "/status"
}

func Test_courseApi_queryModules(t *testing.T) {
	reset(t)

	var want []ModuleResponse
	for _, m := range course.DefaultCurriculum() {
		want = append(want, ModuleResponse{Module: m, Progress: 0})
	}

	tests := []httpTest{
		{name: "nothing tracked yet", path: "/v1/modules", wantData: marchallObj(t, want)},
		{
			name: "progress", path: "/v1/progress",
			wantData: marchallObj(t, course.AggregateProgress{TotalLessons: 9, NotStartedLessons: 9}),
		},
	}
	runHTTPTests(t, tests)
}

func Test_courseApi_updateStatus(t *testing.T) {
	reset(t)

	_, studentToken := createTutorAndStudent(t)
	naughty := testutil.CreateUser(t, usrRepo, "Naughty", "naughty@example.com", "", []string{user.RoleStudent}, false)
	completed := []byte(`{"status":"completed"}`)

	tests := []httpTest{
		{
			name: "auth required", method: "PUT", path: statusPath("module-1", "lesson-1-1"), body: completed,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "deactivated account", method: "PUT", path: statusPath("module-1", "lesson-1-1"), body: completed,
			token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "missing status", method: "PUT", path: statusPath("module-1", "lesson-1-1"), body: []byte(`{}`),
			token: studentToken, wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"this field is required"}`),
		},
		{
			name: "invalid status", method: "PUT", path: statusPath("module-1", "lesson-1-1"), body: []byte(`{"status":"done"}`),
			token: studentToken, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"status":"must be one of not-started, in-progress or completed"}`),
		},
		{
			name: "unknown module", method: "PUT", path: statusPath("module-9", "lesson-1-1"), body: completed,
			token: studentToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: `module "module-9" not found`}),
		},
		{
			name: "unknown lesson", method: "PUT", path: statusPath("module-1", "lesson-2-1"), body: completed,
			token: studentToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: `lesson "lesson-2-1" not found`}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := serve("PUT", statusPath("module-1", "lesson-1-1"), studentToken, completed)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp StatusUpdateResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, "module-1", resp.Module.ID)
		assert.Equal(t, 33, resp.Module.Progress)
		assert.Equal(t, course.StatusCompleted, resp.Module.Lessons[0].Status)
		assert.Equal(t, 1, resp.Progress.CompletedLessons)
		assert.Equal(t, 11, resp.Progress.CompletionPercentage)

		rec = serve("PUT", statusPath("module-1", "lesson-1-2"), studentToken, []byte(`{"status":"in-progress"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// visible to the next request
		rec = serve("GET", "/v1/progress", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var progress course.AggregateProgress
		unmarshal(t, rec, &progress)
		assert.Equal(t, course.AggregateProgress{
			TotalLessons:         9,
			CompletedLessons:     1,
			InProgressLessons:    1,
			NotStartedLessons:    7,
			CompletionPercentage: 11,
		}, progress)
	})
}

type unavailableProgressRepo struct {
	course.ProgressRepository
}

func (unavailableProgressRepo) QueryLessonProgress(context.Context) ([]course.LessonProgress, error) {
	return nil, errors.New("connection refused")
}

func Test_courseApi_unavailableStore(t *testing.T) {
	reset(t)

	validator := testutil.NewValidator()
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NewLogger(),
		Validator:      validator,
		Curriculum:     course.DefaultCurriculum(),
		ProgressRepo:   unavailableProgressRepo{progRepo},
		ScheduleRepo:   schedRepo,
		UserSvc:        user.NewService(usrRepo, validator),
		DisableReqLogs: true,
	})

	want := marchallObj(t, httpErr{Error: "the course data store is unavailable, please retry"})
	for _, path := range []string{"/v1/modules", "/v1/progress", "/v1/dashboard"} {
		t.Run(path, func(t *testing.T) {
			req, rec := newRequest("GET", path)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusServiceUnavailable, wantData: want}, rec)
		})
	}
}
