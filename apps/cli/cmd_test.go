package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/user"
	backendsvc "github.com/trezcool/masomo-storefront/services/backend"
)

const goCourse = `{"_id":"c1","title":"Go in Practice","description":"Learn Go the practical way","instructor":"Jane",` +
	`"price":49.5,"category":"programming","tags":["go","web"],` +
	`"modules":[{"_id":"m2","title":"Concurrency","duration":50,"order":2},{"_id":"m1","title":"Basics","duration":40,"order":1}],` +
	`"batches":[{"batchId":"b1","startDate":"2024-03-01"}]}`

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func setup(t *testing.T, routes map[string]http.HandlerFunc) (*commandLine, *bytes.Buffer) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		reply(http.StatusNotFound, `{"success":false,"message":"Route not found"}`)(w, r)
	}))
	t.Cleanup(srv.Close)

	conf := &core.Config{
		TestMode: true,
		Backend:  core.BackendConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
		Catalog:  core.CatalogConfig{DefaultLimit: 8, MaxVisiblePages: 5},
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	client := backendsvc.NewClient(conf, nopLogger{})
	courseRepo := backendsvc.NewCourseRepository(client)

	out := new(bytes.Buffer)
	return &commandLine{
		out:       out,
		conf:      conf.Catalog,
		validate:  validate,
		usrSvc:    user.NewService(backendsvc.NewUserRepository(client)),
		courseSvc: course.NewService(courseRepo),
		enrSvc:    enrollment.NewService(backendsvc.NewEnrollmentRepository(client), courseRepo),
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string // fragment of the error
	wantOut    []string // fragments of the output
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"storefront"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, frag := range tt.wantOut {
				assert.Contains(t, out.String(), frag)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t, nil)
	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: []string{"courses [-page N]"}},
		{name: "unknown flag", args: []string{"courses", "-lol"}, wantErr: errHelp},
		{name: "course: no id", args: []string{"course"}, wantErr: errHelp, wantOut: []string{"The course ID."}},
		{name: "progress: no session", args: []string{"progress"}, wantErr: errHelp},
	})
}

func Test_commandLine_courses(t *testing.T) {
	var lastQuery string
	cli, out := setup(t, map[string]http.HandlerFunc{
		"GET /courses": func(w http.ResponseWriter, r *http.Request) {
			lastQuery = r.URL.RawQuery
			if r.URL.Query().Get("search") == "garbage" {
				reply(http.StatusOK, `{"unexpected":"shape"}`)(w, r)
				return
			}
			if r.URL.Query().Get("search") == "cobol" {
				reply(http.StatusOK, `{"courses":[],"pagination":{"total":0,"page":1,"limit":8,"totalPages":0}}`)(w, r)
				return
			}
			reply(http.StatusOK, `{"success":true,"data":{"courses":[`+goCourse+`],`+
				`"pagination":{"total":42,"page":2,"limit":8,"totalPages":6}}}`)(w, r)
		},
		"GET /courses/c1": reply(http.StatusOK, `{"success":true,"data":`+goCourse+`}`),
	})

	runCLITests(t, cli, out, []cliTest{
		{
			name: "page of many", args: []string{"courses", "-page", "2", "-sort", "price", "-order", "desc"},
			wantOut: []string{"Showing 1 of 42 courses", "Go in Practice", "$49.50", "1h 30m", "[2]", "Page 2 of 6 • 42 total courses"},
		},
		{name: "nothing found", args: []string{"courses", "-search", "cobol"}, wantOut: []string{"Showing 0 of 0 courses"}},
		{name: "unreadable catalog", args: []string{"courses", "-search", "garbage"}, wantOut: []string{"The catalog could not be read"}},
		{name: "invalid sort", args: []string{"courses", "-sort", "rating"}, wantErrStr: "'oneof' tag"},
		{
			name: "course outline", args: []string{"course", "-id", "c1"},
			wantOut: []string{"Go in Practice (1h 30m)", "tags: go, web", "1.  Basics", "2.  Concurrency", "b1  starts 2024-03-01"},
		},
		{name: "unknown course", args: []string{"course", "-id", "c404"}, wantErr: course.ErrNotFound},
	})

	assert.Contains(t, lastQuery, "search=garbage")
}

func Test_commandLine_login(t *testing.T) {
	cli, out := setup(t, map[string]http.HandlerFunc{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "abc", Path: "/"})
			reply(http.StatusOK, `{"success":true,"data":{"user":{"_id":"u1","name":"Jane Doe","email":"jane@test.cd","role":"student"}}}`)(w, r)
		},
	})

	type extra struct {
		pwd string
		err error
	}
	errTTY := errors.New("inappropriate ioctl for device")

	tests := []cliTest{
		{name: "no email", args: []string{"login"}, wantErr: errHelp},
		{name: "no password", args: []string{"login", "-email", "jane@test.cd"}, wantErr: errHelp},
		{name: "unreadable password", args: []string{"login", "-email", "jane@test.cd"}, extra: extra{err: errTTY}, wantErr: errTTY},
		{name: "invalid email", args: []string{"login", "-email", "jane"}, extra: extra{pwd: "secret12"}, wantErrStr: "'email' tag"},
		{
			name: "success", args: []string{"login", "-email", "jane@test.cd"}, extra: extra{pwd: "secret12"},
			wantOut: []string{"Logged in as Jane Doe <jane@test.cd> (student)", "session: connect.sid=abc"},
		},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), extra.err
			}
			return nil, nil
		}
		runCLITests(t, cli, out, []cliTest{tt})
	}
}

func Test_commandLine_progress(t *testing.T) {
	cli, out := setup(t, map[string]http.HandlerFunc{
		"GET /courses/enroll/my-enrollments": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") != "connect.sid=abc" {
				reply(http.StatusUnauthorized, `{"success":false,"message":"Not authenticated"}`)(w, r)
				return
			}
			reply(http.StatusOK, `{"success":true,"data":[`+
				`{"_id":"e1","courseId":`+goCourse+`,"batchId":"b1","progress":100,"completedModules":["m1","m2"]},`+
				`{"_id":"e2","courseId":{"_id":"c2","title":"Rust"},"batchId":"b1","progress":40}]}`)(w, r)
		},
	})

	runCLITests(t, cli, out, []cliTest{
		{
			name: "all", args: []string{"progress", "-session", "connect.sid=abc"},
			wantOut: []string{"Enrolled courses:  2", "Completed modules: 2", "Average progress:  70%", "Go in Practice", "Rust"},
		},
		{name: "search", args: []string{"progress", "-session", "connect.sid=abc", "-status", "completed", "-search", "rust"}, wantOut: []string{"No courses found"}},
	})

	t.Run("expired session", func(t *testing.T) {
		err := cli.run([]string{"storefront", "progress", "-session", "connect.sid=stale"})
		require.Error(t, err)
		var berr *backendsvc.Error
		require.True(t, errors.As(err, &berr))
		assert.Equal(t, http.StatusUnauthorized, berr.StatusCode)
	})
}
