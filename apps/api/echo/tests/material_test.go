package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/tests"
)

func createMaterial(t *testing.T, token string, nm material.NewMaterial) material.Material {
	rec := serve("POST", "/v1/materials", token, marchallObj(t, nm))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mat material.Material
	unmarshal(t, rec, &mat)
	return mat
}

func Test_materialApi(t *testing.T) {
	reset(t)

	tutorToken, studentToken := createTutorAndStudent(t)
	valid := material.NewMaterial{ModuleID: "module-1", Title: "Slides", FileURL: "#"}

	tests := []httpTest{
		{name: "no materials", path: "/v1/materials", wantData: []byte(`[]`)},
		{name: "auth required", method: "POST", path: "/v1/materials", body: marchallObj(t, valid), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "tutor required", method: "POST", path: "/v1/materials", body: marchallObj(t, valid), token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "empty payload", method: "POST", path: "/v1/materials", body: []byte(`{}`), token: tutorToken, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"module_id":"this field is required","title":"this field is required","file_url":"this field is required"}`),
		},
		{
			name: "unknown module", method: "POST", path: "/v1/materials", token: tutorToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, material.NewMaterial{ModuleID: "module-9", Title: "Slides", FileURL: "#"}),
			wantData: []byte(`{"module_id":"unknown module"}`),
		},
		{
			name: "lesson of another module", method: "POST", path: "/v1/materials", token: tutorToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, material.NewMaterial{ModuleID: "module-1", LessonID: "lesson-2-1", Title: "Slides", FileURL: "#"}),
			wantData: []byte(`{"lesson_id":"unknown lesson for this module"}`),
		},
		{
			name: "invalid file", method: "POST", path: "/v1/materials", token: tutorToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, material.NewMaterial{ModuleID: "module-1", Title: "Slides", FileURL: "slides.pdf", FileType: "exe"}),
			wantData: []byte(`{"file_url":"must be a valid URL or #","file_type":"must be one of pdf, doc, code, link or other"}`),
		},
		{
			name: "unknown material", path: "/v1/materials/nope", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: `material "nope" not found`}),
		},
	}
	runHTTPTests(t, tests)

	testutil.FreezeTime(t, testNow)
	slides := createMaterial(t, tutorToken, valid)
	assert.Equal(t, material.FileTypePDF, slides.FileType)
	assert.False(t, slides.LessonID.Valid)

	testutil.FreezeTime(t, testNow.Add(1))
	code := createMaterial(t, tutorToken, material.NewMaterial{
		ModuleID: "module-2", LessonID: "lesson-2-2", Title: "Sorting", FileURL: "https://example.com/sort.c", FileType: "CODE",
	})
	assert.Equal(t, "code", code.FileType)
	assert.Equal(t, "lesson-2-2", code.LessonID.String)

	tests = []httpTest{
		{name: "newest first", path: "/v1/materials", wantData: marchallObj(t, []material.Material{code, slides})},
		{name: "by module", path: "/v1/materials?module_id=module-1", wantData: marchallObj(t, []material.Material{slides})},
		{name: "unknown module filter", path: "/v1/materials?module_id=module-9", wantData: []byte(`[]`)},
		{name: "retrieve", path: "/v1/materials/" + code.ID, wantData: marchallObj(t, code)},
		{
			name: "update: tutor required", method: "PUT", path: "/v1/materials/" + slides.ID, body: marchallObj(t, valid),
			token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "update: unknown", method: "PUT", path: "/v1/materials/nope", body: marchallObj(t, valid),
			token: tutorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: `material "nope" not found`}),
		},
		{
			name: "destroy: unknown", method: "DELETE", path: "/v1/materials/nope",
			token: tutorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: `material "nope" not found`}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, material.NewMaterial{ModuleID: "module-1", LessonID: "lesson-1-3", Title: "Loops", FileURL: "https://example.com/loops.pdf"})
		rec := serve("PUT", "/v1/materials/"+slides.ID, tutorToken, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var mat material.Material
		unmarshal(t, rec, &mat)
		assert.Equal(t, "Loops", mat.Title)
		assert.Equal(t, "lesson-1-3", mat.LessonID.String)
		assert.True(t, mat.UploadDate.Equal(slides.UploadDate))
	})

	t.Run("destroy", func(t *testing.T) {
		rec := serve("DELETE", "/v1/materials/"+slides.ID, tutorToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = serve("GET", "/v1/materials/"+slides.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
