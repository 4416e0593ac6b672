package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/dashboard"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
	emailsvc "github.com/trezcool/coursehub/services/email"
	logsvc "github.com/trezcool/coursehub/services/logger"
	inmemdb "github.com/trezcool/coursehub/storage/database/inmem"
	"github.com/trezcool/coursehub/storage/fixtures"
)

// seeded fixture ids
const (
	adminID       = "user-admin"
	instructor1ID = "user-instructor-1"
	instructor2ID = "user-instructor-2"
	tutorID       = "user-tutor-1"
	student1ID    = "user-student-1"
	student2ID    = "user-student-2"
	inactiveID    = "user-student-3"

	fixturePassword = "Welcome#2024"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testApp struct {
	srv  *Server
	deps ServerDeps
	db   *inmemdb.DB
	mail *emailsvc.ConsoleServiceMock
}

// newTestApp builds a Server over a fresh, seeded in-memory DB.
func newTestApp(t *testing.T, confs ...func(*core.Config)) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	for _, fn := range confs {
		fn(conf)
	}
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)

	db, err := inmemdb.Open()
	require.NoError(t, err)
	fx, err := fixtures.Default()
	require.NoError(t, err)
	require.NoError(t, db.Seed(fx))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc)
	crsSvc := course.NewService(inmemdb.NewCourseRepository(db))
	enrSvc := enrollment.NewService(inmemdb.NewEnrollmentRepository(db), mailSvc)
	evtSvc := calendar.NewService(inmemdb.NewEventRepository(db))
	chatSvc := chat.NewService(inmemdb.NewChatRepository(db), usrSvc)
	grdSvc := grade.NewService(inmemdb.NewGradeRepository(db))

	deps := ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		EnrollmentSvc: enrSvc,
		EventSvc:      evtSvc,
		ChatSvc:       chatSvc,
		GradeSvc:      grdSvc,
		DashboardSvc:  dashboard.NewService(usrSvc, crsSvc, enrSvc, evtSvc, grdSvc),
	}
	srv := NewServer(deps)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testApp{srv: srv, deps: deps, db: db, mail: mailSvc}
}

func (app *testApp) getUser(t *testing.T, id string) user.User {
	t.Helper()
	usr, err := app.deps.UserSvc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return usr
}

func (app *testApp) getCourse(t *testing.T, id string) course.Course {
	t.Helper()
	crs, err := app.deps.CourseSvc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return crs
}

func (app *testApp) getToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := app.srv.auth.generateToken(app.srv.auth.userClaims(app.getUser(t, userID)))
	require.NoError(t, err)
	return token
}

// tokens returns a token per user id.
func (app *testApp) tokens(t *testing.T, ids ...string) map[string]string {
	t.Helper()
	tokens := make(map[string]string, len(ids))
	for _, id := range ids {
		tokens[id] = app.getToken(t, id)
	}
	return tokens
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.srv.ServeHTTP(rec, req)
	return rec
}

// run executes the table of httpTest. An empty wantData only checks the status code.
func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
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
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
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

// decodeIDs returns the `id` of every object listed under key in the response body.
func decodeIDs(t *testing.T, rec *httptest.ResponseRecorder, key string) []string {
	t.Helper()
	var body map[string][]struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	ids := make([]string, 0, len(body[key]))
	for _, obj := range body[key] {
		ids = append(ids, obj.ID)
	}
	return ids
}

// decodeObj decodes the object found under key in the response body into v.
func decodeObj(t *testing.T, rec *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	raw, ok := body[key]
	require.True(t, ok, "key %q not found in %s", key, rec.Body.String())
	require.NoError(t, json.Unmarshal(raw, v))
}
