package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-storefront/core/user"
)

func Test_adminApi_permissions(t *testing.T) {
	s, _ := setup(t)
	studentToken := getToken(t, s, student, studentSession)
	instructor := user.User{ID: "u3", Name: "Instructor", Email: "instructor@test.cd", Role: user.RoleInstructor}
	instructorToken := getToken(t, s, instructor, "connect.sid=instructor")

	forbidden := marshallObj(t, httpErr{Error: "permission denied"})
	runHTTPTests(t, s, []httpTest{
		{name: "auth required", path: "/v1/admin/courses", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "student", path: "/v1/admin/courses", token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "instructor", method: http.MethodDelete, path: "/v1/admin/courses/c1", token: instructorToken,
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "invalid token", path: "/v1/admin/courses", token: studentToken + "x",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
	})
}

func Test_adminApi_courses(t *testing.T) {
	s, fb := setup(t)
	token := getToken(t, s, admin, adminSession)

	fb.json("GET /courses", http.StatusOK, `{"courses":[`+goCourse+`],"pagination":{"total":25,"page":1,"limit":10,"totalPages":3}}`)
	fb.json("POST /courses", http.StatusCreated, `{"success":true,"data":`+goCourse+`}`)
	fb.json("PATCH /courses/c1", http.StatusOK, `{"success":true,"data":`+goCourse+`}`)
	fb.json("DELETE /courses/c1", http.StatusOK, `{"success":true}`)

	t.Run("query", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/courses", token)
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var view CatalogView
		decode(t, rec, &view)
		assert.Equal(t, 10, view.Limit)
		assert.Nil(t, view.LimitChoices)
		require.NotNil(t, view.Controls)
		assert.Equal(t, "1 2 3", view.Controls.Pages.String())

		breq, _ := fb.last(http.MethodGet, "/courses")
		assert.Equal(t, adminSession, breq.cookie)
	})

	newCourse := `{"title":"Go in Practice","description":"Learn Go the practical way","instructor":"Jane","price":49.5,` +
		`"category":"programming","tags":["go"," go ",""],"modules":[` +
		`{"title":"Concurrency","description":"Goroutines","duration":50,"order":7},` +
		`{"title":"Basics","description":"Syntax","video_url":"https://youtu.be/dQw4w9WgXcQ","duration":40,"order":3}],` +
		`"batches":[{"batch_id":"b1","start_date":"2024-03-01"}]}`

	runHTTPTests(t, s, []httpTest{
		{
			name: "create: invalid", method: http.MethodPost, path: "/v1/admin/courses", token: token,
			body:     []byte(`{"title":"Go","description":"Learn Go the practical way","instructor":"Jane","category":"programming","batches":[]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"title":   "title must be at least 3 characters in length",
				"batches": "batches must contain at least 1 item",
			}),
		},
		{
			name: "update: nothing to update", method: http.MethodPut, path: "/v1/admin/courses/c1", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "nothing to update"}),
		},
		{
			name: "update: unknown course", method: http.MethodPut, path: "/v1/admin/courses/c404", token: token,
			body:     []byte(`{"title":"Rust in Practice"}`),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/admin/courses/c1", token: token, wantCode: http.StatusNoContent},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/courses", token, []byte(newCourse))
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		breq, _ := fb.last(http.MethodPost, "/courses")
		assert.Equal(t, []interface{}{"go"}, breq.body["tags"])
		mods := breq.body["modules"].([]interface{})
		require.Len(t, mods, 2)
		assert.Equal(t, "Basics", mods[0].(map[string]interface{})["title"])
		assert.Equal(t, 1.0, mods[0].(map[string]interface{})["order"])
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", mods[0].(map[string]interface{})["videoUrl"])
		assert.Equal(t, 2.0, mods[1].(map[string]interface{})["order"])
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/courses/c1", token, []byte(`{"title":" Go in Practice ","price":0}`))
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		breq, _ := fb.last(http.MethodPatch, "/courses/c1")
		assert.Equal(t, map[string]interface{}{"title": "Go in Practice", "price": 0.0}, breq.body)
	})
}
