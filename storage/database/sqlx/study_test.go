package sqlxrepos_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	sqlxrepos "github.com/shanmukhasaireddy13/study-tracker/storage/database/sqlx"
	testutil "github.com/shanmukhasaireddy13/study-tracker/tests"
)

func intPtr(i int) *int { return &i }

func TestStudyRepository_UpsertActivity(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewStudyRepository(testutil.PrepareDB(t))
	now := time.Date(2024, 4, 2, 5, 30, 0, 123456789, time.UTC)
	key := study.Key{StudentID: "s1", SubjectID: "english", DayKey: "2024-04-02"}
	done := true

	first, err := repo.UpsertActivity(ctx, key, func(cur *study.Activity) study.Activity {
		assert.Nil(t, cur)
		na := study.NewActivity{SubjectID: "english", SubActivitiesPatch: study.SubActivitiesPatch{
			Reading: &study.BlockPatch{Completed: &done},
		}}
		return na.Apply(cur, key, now)
	})
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(now.Truncate(time.Microsecond)))

	second, err := repo.UpsertActivity(ctx, key, func(cur *study.Activity) study.Activity {
		require.NotNil(t, cur)
		return study.NewActivity{TotalTime: intPtr(40)}.Apply(cur, key, now.Add(time.Hour))
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetActivity(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.SubActivities.Reading.Completed)
	assert.Equal(t, 40, got.TotalTime)
	assert.Equal(t, study.WritingQuestions, got.SubActivities.Writing.Type)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))

	_, err = repo.GetActivity(ctx, "nope")
	assert.True(t, core.IsNotFound(err))
}

func TestStudyRepository_UpsertActivity_concurrent(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewStudyRepository(testutil.PrepareDB(t))
	now := time.Date(2024, 4, 2, 5, 30, 0, 0, time.UTC)
	key := study.Key{StudentID: "s1", SubjectID: "maths", DayKey: "2024-04-02"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.UpsertActivity(ctx, key, func(cur *study.Activity) study.Activity {
				return study.NewActivity{Confidence: intPtr(i%5 + 1)}.Apply(cur, key, now.Add(time.Duration(i)*time.Second))
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	acts, err := repo.AllActivities(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func TestStudyRepository_queries(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewStudyRepository(testutil.PrepareDB(t))
	start := time.Date(2024, 4, 1, 5, 0, 0, 0, time.UTC)

	record := func(studentID, subjectID string, at time.Time) study.Activity {
		key := study.Key{StudentID: studentID, SubjectID: subjectID, DayKey: at.Format("2006-01-02")}
		act, err := repo.UpsertActivity(ctx, key, func(cur *study.Activity) study.Activity {
			return study.NewActivity{SubjectID: subjectID}.Apply(cur, key, at)
		})
		require.NoError(t, err)
		return act
	}
	for i := 0; i < 5; i++ {
		record("s1", "maths", start.AddDate(0, 0, i))
		record("s1", "english", start.AddDate(0, 0, i).Add(time.Minute))
	}
	other := record("s2", "maths", start)

	page, err := repo.QueryActivities(ctx, "s1", study.Filter{}, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "english", page[0].SubjectID)
	assert.Equal(t, "2024-04-05", page[0].DayKey)
	assert.Equal(t, "maths", page[1].SubjectID)

	page, err = repo.QueryActivities(ctx, "s1", study.Filter{}, 9, 3)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	maths, err := repo.QueryActivities(ctx, "s1", study.Filter{SubjectID: "maths", DayKey: "2024-04-03"}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, maths, 1)

	since, err := repo.ActivitiesSince(ctx, "s1", start.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, since, 4)

	ids, err := repo.StudentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)

	other.SubjectID = "english"
	other.UpdatedAt = start.Add(time.Hour)
	_, err = repo.UpdateActivity(ctx, other)
	require.NoError(t, err)
	got, err := repo.GetActivity(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "english", got.SubjectID)

	require.NoError(t, repo.DeleteActivity(ctx, other.ID))
	assert.True(t, core.IsNotFound(repo.DeleteActivity(ctx, other.ID)))
	_, err = repo.UpdateActivity(ctx, other)
	assert.True(t, core.IsNotFound(err))
}
