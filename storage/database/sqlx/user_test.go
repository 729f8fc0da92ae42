package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	sqlxrepos "github.com/shanmukhasaireddy13/study-tracker/storage/database/sqlx"
	testutil "github.com/shanmukhasaireddy13/study-tracker/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewUserRepository(testutil.PrepareDB(t))
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	admin := testutil.CreateUser(t, repo, "u1", "Admin Rao", "admin@test.in", "", user.AdminRoles, true, start)
	testutil.CreateUser(t, repo, "u2", "Meena", "meena@test.in", "", user.StudentRoles, true, start.Add(time.Hour))
	testutil.CreateUser(t, repo, "u3", "Kiran", "kiran@test.in", "", user.StudentRoles, false, start.Add(2*time.Hour))

	got, err := repo.GetUserByEmail(ctx, "admin@test.in")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.True(t, got.IsAdmin())
	assert.True(t, got.CreatedAt.Equal(start))
	assert.Nil(t, got.LastLogin)

	_, err = repo.GetUserByID(ctx, "nope")
	assert.True(t, core.IsNotFound(err))

	active := true
	tests := []struct {
		name     string
		filter   user.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all, newest first", want: []string{"u3", "u2", "u1"}},
		{name: "by name", ordering: []core.DBOrdering{{Field: "name", Ascending: true}}, want: []string{"u1", "u3", "u2"}},
		{name: "unknown ordering", ordering: []core.DBOrdering{{Field: "password_hash"}}, want: []string{"u3", "u2", "u1"}},
		{name: "search", filter: user.QueryFilter{Search: "MEE"}, want: []string{"u2"}},
		{name: "role", filter: user.QueryFilter{Roles: []string{user.RoleStudent}}, want: []string{"u3", "u2"}},
		{name: "active students", filter: user.QueryFilter{Roles: []string{user.RoleStudent}, IsActive: &active}, want: []string{"u2"}},
		{name: "created from", filter: user.QueryFilter{CreatedFrom: start.Add(30 * time.Minute)}, want: []string{"u3", "u2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.QueryUsers(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			ids := make([]string, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	login := start.Add(48 * time.Hour)
	got.LastLogin = &login
	got.Name = "Admin R."
	_, err = repo.UpdateUser(ctx, got)
	require.NoError(t, err)
	got, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Admin R.", got.Name)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(login))

	_, err = repo.UpdateUser(ctx, user.User{ID: "nope"})
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, repo.DeleteUsersByID(ctx, "u2", "u3"))
	users, err := repo.QueryUsers(ctx, user.QueryFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
