package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	"github.com/shanmukhasaireddy13/study-tracker/tests"
)

func Test_noteApi(t *testing.T) {
	app := setup(t)
	asha := testutil.CreateUser(t, usrRepo, "u1", "Asha", "asha@test.in", "", user.StudentRoles, true)
	ravi := testutil.CreateUser(t, usrRepo, "u2", "Ravi", "ravi@test.in", "", user.StudentRoles, true)
	ashaToken, raviToken := getToken(t, asha), getToken(t, ravi)

	runTests(t, app, []httpTest{
		{name: "Auth required", path: "/v1/notes", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "content required", method: http.MethodPost, path: "/v1/notes", token: ashaToken, body: []byte(`{"content": "   "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"content": "this field is required"}),
		},
		{name: "empty list", path: "/v1/notes", token: ashaToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	var n note.Note
	rec := do(app, http.MethodPost, "/v1/notes", ashaToken, []byte(`{"content": " revise chapter 3 "}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshal(t, rec, &n)
	assert.Equal(t, "revise chapter 3", n.Content)
	assert.Equal(t, asha.ID, n.OwnerID)

	runTests(t, app, []httpTest{
		{name: "own note", path: "/v1/notes/" + n.ID, token: ashaToken, wantCode: http.StatusOK},
		{name: "other's note", path: "/v1/notes/" + n.ID, token: raviToken, wantCode: http.StatusForbidden},
		{name: "other's update", method: http.MethodPut, path: "/v1/notes/" + n.ID, token: raviToken, body: []byte(`{"content": "x"}`), wantCode: http.StatusForbidden},
		{name: "other's delete", method: http.MethodDelete, path: "/v1/notes/" + n.ID, token: raviToken, wantCode: http.StatusForbidden},
		{name: "missing note", path: "/v1/notes/ghost", token: ashaToken, wantCode: http.StatusNotFound},
		{name: "others see nothing", path: "/v1/notes", token: raviToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	rec = do(app, http.MethodPut, "/v1/notes/"+n.ID, ashaToken, []byte(`{"content": "revise chapter 4"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &n)
	assert.Equal(t, "revise chapter 4", n.Content)

	var notes []note.Note
	rec = do(app, http.MethodGet, "/v1/notes", ashaToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshal(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "revise chapter 4", notes[0].Content)

	assert.Equal(t, http.StatusNoContent, do(app, http.MethodDelete, "/v1/notes/"+n.ID, ashaToken).Code)
	assert.Equal(t, http.StatusNotFound, do(app, http.MethodGet, "/v1/notes/"+n.ID, ashaToken).Code)
}
