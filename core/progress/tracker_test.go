package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
)

func activity(id, subjectID, lessonID string, confidence int, updatedAt time.Time) study.Activity {
	return study.Activity{
		ID:         id,
		StudentID:  "s1",
		SubjectID:  subjectID,
		LessonID:   lessonID,
		Confidence: confidence,
		TotalTime:  10,
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
	}
}

func TestTracker_Track(t *testing.T) {
	ctx := context.Background()
	tracker := progress.NewTracker(inmemdb.NewProgressRepository(inmemdb.Open()))
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	rec, err := tracker.Track(ctx, activity("a1", "maths", "", 4, now), now)
	require.NoError(t, err)
	assert.Nil(t, rec, "activities without a lesson are ignored")

	act := activity("a1", "maths", "l1", 4, now)
	rec, err = tracker.Track(ctx, act, now)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.StudyCount)
	assert.Equal(t, progress.LevelNew, rec.MasteryLevel)

	// replaying the same activity state changes nothing
	rec, err = tracker.Track(ctx, act, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.StudyCount)

	for i := 1; i <= 4; i++ {
		at := now.Add(time.Duration(i) * 24 * time.Hour)
		rec, err = tracker.Track(ctx, activity("a1", "maths", "l1", 5, at), at)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, rec.StudyCount)
	assert.Equal(t, progress.LevelMastered, rec.MasteryLevel)
	assert.Equal(t, 16, rec.Interval)

	recs, err := tracker.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
}

func TestTracker_queries(t *testing.T) {
	ctx := context.Background()
	tracker := progress.NewTracker(inmemdb.NewProgressRepository(inmemdb.Open()))
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	// l1 studied three times with good confidence, l2 and l3 once
	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(i) * time.Hour)
		_, err := tracker.Track(ctx, activity("a1", "maths", "l1", 4, at), at)
		require.NoError(t, err)
	}
	_, err := tracker.Track(ctx, activity("a2", "maths", "l2", 2, now), now)
	require.NoError(t, err)
	_, err = tracker.Track(ctx, activity("a3", "english", "l3", 2, now.Add(-time.Hour)), now.Add(-time.Hour))
	require.NoError(t, err)

	mastered, err := tracker.MasteredBySubject(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"maths": 1}, mastered)

	weak, err := tracker.WeakAreas(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	assert.Equal(t, "l3", weak[0].LessonID)
	assert.Equal(t, "l2", weak[1].LessonID)

	due, err := tracker.DueForReview(ctx, "s1", now.Add(26*time.Hour), 0)
	require.NoError(t, err)
	// l1 was pushed 4 days out
	assert.Len(t, due, 2)
	assert.Equal(t, "l3", due[0].LessonID)

	due, err = tracker.DueForReview(ctx, "s1", now.Add(26*time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
