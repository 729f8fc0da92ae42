package study_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
)

func intPtr(i int) *int { return &i }

func newService(t *testing.T) (*study.Service, study.Repository) {
	t.Helper()
	repo := inmemdb.NewStudyRepository(inmemdb.Open())
	return study.NewService(repo, nil, core.NewValidator(core.NewTranslator())), repo
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	// 23:45 UTC and 00:15 UTC are the same IST day
	t0 := time.Date(2024, 1, 10, 23, 45, 0, 0, time.UTC)
	t1 := time.Date(2024, 1, 11, 0, 15, 0, 0, time.UTC)

	a1, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: "maths", TotalTime: intPtr(30)}, t0)
	require.NoError(t, err)
	a2, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: "maths", Confidence: intPtr(5)}, t1)
	require.NoError(t, err)

	assert.Equal(t, a1.ID, a2.ID)
	assert.Equal(t, "2024-01-11", a2.DayKey)
	assert.Equal(t, 30, a2.TotalTime)
	assert.Equal(t, 5, a2.Confidence)

	// another subject, another student: separate activities
	a3, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: "english"}, t1)
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, a3.ID)
	a4, err := svc.Record(ctx, "s2", study.NewActivity{SubjectID: "maths"}, t1)
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, a4.ID)

	all, err := svc.List("s1", study.Filter{}).All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_Record_validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	now := time.Date(2024, 1, 11, 6, 0, 0, 0, time.UTC)
	essay, bogus := "essays", "poems"

	tests := []struct {
		name    string
		student string
		na      study.NewActivity
		wantErr bool
	}{
		{name: "no student", na: study.NewActivity{SubjectID: "maths"}, wantErr: true},
		{name: "no subject", student: "s1", na: study.NewActivity{}, wantErr: true},
		{name: "confidence too low", student: "s1", na: study.NewActivity{SubjectID: "maths", Confidence: intPtr(0)}, wantErr: true},
		{name: "confidence too high", student: "s1", na: study.NewActivity{SubjectID: "maths", Confidence: intPtr(6)}, wantErr: true},
		{name: "negative time", student: "s1", na: study.NewActivity{SubjectID: "maths", TotalTime: intPtr(-1)}, wantErr: true},
		{
			name: "unknown writing type", student: "s1", wantErr: true,
			na: study.NewActivity{SubjectID: "english", SubActivitiesPatch: study.SubActivitiesPatch{Writing: &study.BlockPatch{Type: &bogus}}},
		},
		{
			name: "ok", student: "s1",
			na: study.NewActivity{SubjectID: "english", Confidence: intPtr(1), SubActivitiesPatch: study.SubActivitiesPatch{Writing: &study.BlockPatch{Type: &essay}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.student, tt.na, now)
			if tt.wantErr {
				assert.True(t, core.IsValidation(err), "want a validation error, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	// 120 days, one activity each, alternating subjects
	for i := 0; i < 120; i++ {
		subj := "maths"
		if i%2 == 1 {
			subj = "english"
		}
		_, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: subj}, start.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	cur := svc.List("s1", study.Filter{})
	var n int
	prev := time.Time{}
	for cur.Next(ctx) {
		act := cur.Activity()
		if !prev.IsZero() {
			assert.True(t, act.CreatedAt.Before(prev), "not newest first")
		}
		prev = act.CreatedAt
		n++
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, 120, n)

	// restartable
	cur.Reset()
	require.True(t, cur.Next(ctx))
	assert.Equal(t, "2024-04-29", cur.Activity().DayKey)

	maths, err := svc.List("s1", study.Filter{SubjectID: "maths"}).All(ctx)
	require.NoError(t, err)
	assert.Len(t, maths, 60)

	limited, err := svc.List("s1", study.Filter{Limit: 55}).All(ctx)
	require.NoError(t, err)
	assert.Len(t, limited, 55)

	day, err := svc.List("s1", study.Filter{DayKey: "2024-01-02"}).All(ctx)
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "english", day[0].SubjectID)

	none, err := svc.List("nobody", study.Filter{}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_GetDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	now := time.Date(2024, 1, 11, 6, 0, 0, 0, time.UTC)

	act, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: "maths"}, now)
	require.NoError(t, err)

	_, err = svc.Get(ctx, act.ID, "s2")
	assert.True(t, core.IsForbidden(err))
	_, err = svc.Get(ctx, "missing", "s1")
	assert.True(t, core.IsNotFound(err))

	_, err = svc.Delete(ctx, act.ID, "s2", true)
	assert.True(t, core.IsForbidden(err))
	_, err = svc.Delete(ctx, "missing", "s1", true)
	assert.True(t, core.IsNotFound(err))

	deleted, err := svc.Delete(ctx, act.ID, "s1", true)
	require.NoError(t, err)
	assert.Equal(t, act.ID, deleted.ID)
	_, err = svc.Get(ctx, act.ID, "s1")
	assert.True(t, core.IsNotFound(err))

	// admins skip the owner check
	act, err = svc.Record(ctx, "s1", study.NewActivity{SubjectID: "maths"}, now)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, act.ID, "admin", false)
	assert.NoError(t, err)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	now := time.Date(2024, 1, 11, 6, 0, 0, 0, time.UTC)

	maths, err := svc.Record(ctx, "s1", study.NewActivity{SubjectID: "maths"}, now)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "s1", study.NewActivity{SubjectID: "english"}, now)
	require.NoError(t, err)

	got, err := svc.Update(ctx, maths.ID, "s1", study.UpdateActivity{TotalTime: intPtr(25)}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 25, got.TotalTime)

	_, err = svc.Update(ctx, maths.ID, "s1", study.UpdateActivity{Confidence: intPtr(9)}, now)
	assert.True(t, core.IsValidation(err))

	_, err = svc.Update(ctx, maths.ID, "s2", study.UpdateActivity{TotalTime: intPtr(1)}, now)
	assert.True(t, core.IsForbidden(err))

	// english already has an activity that day
	_, err = svc.Update(ctx, maths.ID, "s1", study.UpdateActivity{SubjectID: "english"}, now)
	assert.True(t, core.IsValidation(err))
}
