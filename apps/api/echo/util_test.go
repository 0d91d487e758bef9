package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/user"
	backendsvc "github.com/trezcool/masomo-storefront/services/backend"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}

	student = user.User{ID: "u1", Name: "Jane Doe", Email: "jane@test.cd", Role: user.RoleStudent}
	admin   = user.User{ID: "u2", Name: "Admin", Email: "admin@test.cd", Role: user.RoleAdmin}
)

const (
	studentSession = "connect.sid=student"
	adminSession   = "connect.sid=admin"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// backendReq is a request received by the fake backend.
type backendReq struct {
	method, path, query, cookie string
	body                        map[string]interface{}
}

// fakeBackend answers each "METHOD /path" with a canned answer.
type fakeBackend struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []backendReq
}

func (fb *fakeBackend) handle(route string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = h
}

func (fb *fakeBackend) json(route string, status int, body string) {
	fb.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := backendReq{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, cookie: r.Header.Get("Cookie")}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &req.body)
	}
	fb.mu.Lock()
	fb.requests = append(fb.requests, req)
	h, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"Route not found"}`)
		return
	}
	h(w, r)
}

// last returns the last request received on path.
func (fb *fakeBackend) last(method, path string) (backendReq, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := len(fb.requests) - 1; i >= 0; i-- {
		if r := fb.requests[i]; r.method == method && r.path == path {
			return r, true
		}
	}
	return backendReq{}, false
}

func testConfig(backendURL string) *core.Config {
	return &core.Config{
		TestMode:  true,
		AppName:   "Masomo",
		SecretKey: "secret",
		Server: core.ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Backend: core.BackendConfig{
			BaseURL: backendURL,
			Timeout: 2 * time.Second,
		},
		Catalog: core.CatalogConfig{
			DefaultLimit:    8,
			AdminLimit:      10,
			DashboardLimit:  4,
			MaxVisiblePages: 5,
		},
	}
}

func setup(t *testing.T) (*Server, *fakeBackend) {
	fb := &fakeBackend{routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	conf := testConfig(srv.URL)
	logger := nopLogger{}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	cl := backendsvc.NewClient(conf, logger)
	courseRepo := backendsvc.NewCourseRepository(cl)

	s := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       user.NewService(backendsvc.NewUserRepository(cl)),
		CourseSvc:     course.NewService(courseRepo),
		EnrollmentSvc: enrollment.NewService(backendsvc.NewEnrollmentRepository(cl), courseRepo),
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s, fb
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, s *Server, usr user.User, session string) string {
	token, err := s.auth.generateToken(s.auth.userClaims(usr, session))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, s *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			s.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// decode decodes the recorded answer into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}
