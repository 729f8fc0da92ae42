package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	"github.com/shanmukhasaireddy13/study-tracker/tests"
)

func Test_subjectApi(t *testing.T) {
	app := setup(t)
	student := testutil.CreateUser(t, usrRepo, "u1", "Asha", "asha@test.in", "", user.StudentRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "u2", "Admin", "admin@test.in", "", user.AdminRoles, true)
	studentToken, adminToken := getToken(t, student), getToken(t, admin)

	mathsBody := marchallObj(t, subject.NewSubject{Name: " Maths ", TotalMarks: 100})
	runTests(t, app, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/subjects", body: mathsBody, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", method: http.MethodPost, path: "/v1/subjects", body: mathsBody, token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "bad color", method: http.MethodPost, path: "/v1/subjects", token: adminToken,
			body:     marchallObj(t, subject.NewSubject{Name: "Art", TotalMarks: 50, Color: "red"}),
			wantCode: http.StatusBadRequest,
		},
	})

	var maths subject.Subject
	t.Run("create", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/subjects", adminToken, mathsBody)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, &maths)
		assert.Equal(t, "Maths", maths.Name)
		assert.Equal(t, subject.DefaultColor, maths.Color)
		assert.Equal(t, subject.DefaultIcon, maths.Icon)
	})

	runTests(t, app, []httpTest{
		{
			name: "duplicate name", method: http.MethodPost, path: "/v1/subjects", body: mathsBody, token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": subject.ErrNameExists.Error()}),
		},
		{name: "public read", path: "/v1/subjects/" + maths.ID, wantCode: http.StatusOK},
		{name: "missing subject", path: "/v1/subjects/ghost", wantCode: http.StatusNotFound},
	})

	t.Run("init defaults keeps existing subjects", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/subjects/init", adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subjects []subject.Subject
		unmarshal(t, rec, &subjects)
		assert.Len(t, subjects, len(subject.Defaults))

		rec = do(app, http.MethodGet, "/v1/subjects", "")
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &subjects)
		assert.Len(t, subjects, len(subject.Defaults))
	})

	t.Run("update", func(t *testing.T) {
		rec := do(app, http.MethodPut, "/v1/subjects/"+maths.ID, adminToken, []byte(`{"total_marks": 80, "color": "#000000"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subj subject.Subject
		unmarshal(t, rec, &subj)
		assert.Equal(t, "Maths", subj.Name)
		assert.Equal(t, 80, subj.TotalMarks)
		assert.Equal(t, "#000000", subj.Color)
	})

	var lsn subject.Lesson
	t.Run("lessons", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/lessons", adminToken, marchallObj(t, subject.NewLesson{SubjectID: "nope", Name: "Algebra"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"subject_id": "subject not found"}`, rec.Body.String())

		rec = do(app, http.MethodPost, "/v1/lessons", studentToken, marchallObj(t, subject.NewLesson{SubjectID: maths.ID, Name: "Algebra"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(app, http.MethodPost, "/v1/lessons", adminToken, marchallObj(t, subject.NewLesson{SubjectID: maths.ID, Name: "Algebra", ChapterNumber: 2}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, &lsn)
		assert.Equal(t, admin.ID, lsn.CreatedBy)
		assert.True(t, lsn.IsActive)

		var lessons []subject.Lesson
		rec = do(app, http.MethodGet, "/v1/lessons?subject="+maths.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lessons)
		require.Len(t, lessons, 1)
		assert.Equal(t, lsn.ID, lessons[0].ID)

		var grouped []subject.SubjectLessons
		rec = do(app, http.MethodGet, "/v1/lessons/by-subject", "")
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &grouped)
		assert.Len(t, grouped, len(subject.Defaults))
		for _, g := range grouped {
			if g.ID == maths.ID {
				assert.Len(t, g.Lessons, 1)
			} else {
				assert.Empty(t, g.Lessons)
			}
		}
	})

	t.Run("inactive lessons are hidden from listings", func(t *testing.T) {
		rec := do(app, http.MethodPut, "/v1/lessons/"+lsn.ID, adminToken, []byte(`{"is_active": false}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(app, http.MethodGet, "/v1/lessons?subject="+maths.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())

		assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/v1/lessons/"+lsn.ID, "").Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(app, http.MethodDelete, "/v1/lessons/"+lsn.ID, adminToken).Code)
		assert.Equal(t, http.StatusNotFound, do(app, http.MethodGet, "/v1/lessons/"+lsn.ID, "").Code)

		assert.Equal(t, http.StatusForbidden, do(app, http.MethodDelete, "/v1/subjects/"+maths.ID, studentToken).Code)
		assert.Equal(t, http.StatusNoContent, do(app, http.MethodDelete, "/v1/subjects/"+maths.ID, adminToken).Code)
		assert.Equal(t, http.StatusNotFound, do(app, http.MethodGet, "/v1/subjects/"+maths.ID, "").Code)
	})
}
