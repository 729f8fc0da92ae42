package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/shanmukhasaireddy13/study-tracker/apps/api/echo"
	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/revision"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/tracking"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	"github.com/shanmukhasaireddy13/study-tracker/services/email"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/sqlx"
	"github.com/shanmukhasaireddy13/study-tracker/tests"
)

var (
	usrRepo    user.Repository
	subjectSvc *subject.Service
	mailSvc    *emailsvc.ConsoleService
	clock      *testutil.FixedClock

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) Server {
	core.Conf.TestMode = true

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)
	studyRepo := sqlxrepos.NewStudyRepository(db)
	streakRepo := sqlxrepos.NewStreakRepository(db)
	achRepo := sqlxrepos.NewAchievementRepository(db)
	progressRepo := sqlxrepos.NewProgressRepository(db)

	// set up services
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	clock = testutil.NewFixedClock(testutil.IST(2024, 7, 1, 20, 0))

	mailSvc = emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc)
	subjectSvc = subject.NewService(sqlxrepos.NewSubjectRepository(db), validate)
	tracker := progress.NewTracker(progressRepo)
	trackingSvc := tracking.NewService(tracking.Deps{
		Study:        study.NewService(studyRepo, subjectSvc, validate),
		Streaks:      streak.NewEngine(streakRepo, studyRepo, achRepo, streak.DefaultWindowDays),
		Progress:     tracker,
		Achievements: achievement.NewNotifier(achRepo, tracker),
		Planner:      revision.NewPlanner(studyRepo, tracker, subjectSvc, revision.DefaultWindowDays),
		Clock:        clock,
	})
	reportSvc := report.NewService(report.Deps{
		Users:      usrSvc,
		Activities: studyRepo,
		Streaks:    streakRepo,
		Progress:   progressRepo,
		Subjects:   subjectSvc,
		Validate:   validate,
	})

	// set up server
	return NewServer(&Options{
		DisableReqLogs: true,
		Validate:       validate,
		Translator:     translator,
		Clock:          clock,
		UserSvc:        usrSvc,
		TrackingSvc:    trackingSvc,
		SubjectSvc:     subjectSvc,
		NoteSvc:        note.NewService(sqlxrepos.NewNoteRepository(db), validate),
		ReportSvc:      reportSvc,
	})
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

// do serves one request and returns the recorder.
func do(app Server, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, do(app, method, tt.path, tt.token, tt.body))
		})
	}
}
