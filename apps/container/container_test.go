package container

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	logsvc "github.com/shanmukhasaireddy13/study-tracker/services/logger"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database"
)

func TestNew_memory(t *testing.T) {
	conf := *core.Conf
	conf.TestMode = true
	conf.SendgridApiKey = ""
	conf.Database = core.DatabaseConfig{Engine: database.EngineMemory}

	var out bytes.Buffer
	c, err := New(&conf, logsvc.NewRollbarLogger(log.New(&out, "", 0), &conf))
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()
	assert.Nil(t, c.DB)

	ctx := context.Background()
	maths, err := c.SubjectSvc.Create(ctx, subject.NewSubject{Name: "Maths", TotalMarks: 100})
	require.NoError(t, err)

	usr, err := c.UserSvc.Create(ctx, user.NewUser{Name: "Asha", Email: "asha@test.in", Password: "Mango#Tree42"})
	require.NoError(t, err)

	res, err := c.TrackingSvc.RecordActivity(ctx, usr.ID, study.NewActivity{SubjectID: maths.ID})
	require.NoError(t, err)
	assert.Empty(t, res.DerivedErrors)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 1, res.Streak.CurrentStreak)

	rep, err := c.ReportSvc.Performance(ctx, c.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Summary.TotalStudents)
}

func TestNew_sqlite(t *testing.T) {
	conf := *core.Conf
	conf.TestMode = true
	conf.Database = core.DatabaseConfig{Engine: database.EngineSQLite, URL: "file::memory:?_foreign_keys=on"}

	c, err := New(&conf, logsvc.NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &conf))
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()
	require.NotNil(t, c.DB)

	require.NoError(t, database.Migrate(context.Background(), c.DB, "up"))
	subjects, err := c.SubjectSvc.InitDefaults(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, len(subject.Defaults))
}
