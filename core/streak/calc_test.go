package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

// at builds an activity created daysAgo days before now, at the same IST wall clock.
func at(now time.Time, daysAgo int, subjectID string) study.Activity {
	created := now.AddDate(0, 0, -daysAgo).UTC()
	return study.Activity{
		ID:         subjectID + "-" + timezone.DayKey(created),
		StudentID:  "s1",
		SubjectID:  subjectID,
		DayKey:     timezone.DayKey(created),
		Confidence: 3,
		TotalTime:  10,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestCurrentStreak(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, timezone.IST)

	tests := []struct {
		name    string
		daysAgo []int
		want    int
	}{
		{name: "no activity", want: 0},
		{name: "today only", daysAgo: []int{0}, want: 1},
		{name: "ending today", daysAgo: []int{0, 1, 2}, want: 3},
		{name: "ending yesterday", daysAgo: []int{1, 2}, want: 2},
		{name: "gap of two days", daysAgo: []int{2, 3, 4}, want: 0},
		{name: "broken run", daysAgo: []int{0, 1, 3, 4, 5}, want: 2},
		{name: "several a day", daysAgo: []int{0, 0, 1, 1}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acts := make([]study.Activity, 0, len(tt.daysAgo))
			for i, d := range tt.daysAgo {
				act := at(now, d, "maths")
				act.ID += string(rune('a' + i))
				acts = append(acts, act)
			}
			assert.Equal(t, tt.want, CurrentStreak(GroupByDay(acts), now))
		})
	}
}

func TestCurrentStreak_dayBoundary(t *testing.T) {
	// 18:40 UTC is already the next IST day
	studied := time.Date(2024, 3, 9, 18, 40, 0, 0, time.UTC)
	act := study.Activity{ID: "a", SubjectID: "maths", CreatedAt: studied}
	days := GroupByDay([]study.Activity{act})

	_, ok := days["2024-03-10"]
	require.True(t, ok)
	assert.Equal(t, 1, CurrentStreak(days, time.Date(2024, 3, 11, 10, 0, 0, 0, timezone.IST)))
	assert.Equal(t, 0, CurrentStreak(days, time.Date(2024, 3, 12, 10, 0, 0, 0, timezone.IST)))
}

func TestBuildCalendar(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, timezone.IST)
	maths, english, older := at(now, 0, "maths"), at(now, 0, "english"), at(now, 3, "maths")
	maths.LessonID, maths.Confidence, maths.TotalTime = "l1", 5, 25
	english.CreatedAt = english.CreatedAt.Add(time.Minute)

	cal := BuildCalendar([]study.Activity{english, maths, older})
	require.Len(t, cal, 2)
	assert.Equal(t, "2024-03-10", cal[0].Key)
	assert.Equal(t, "2024-03-07", cal[1].Key)

	today := cal[0]
	assert.ElementsMatch(t, []string{"maths", "english"}, today.SubjectsStudied)
	assert.Equal(t, []string{"l1"}, today.LessonsStudied)
	assert.Equal(t, 35, today.TotalTime)
	assert.Equal(t, 5, today.Confidence)
	assert.True(t, today.Date.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, timezone.IST)))
}

func TestCompute(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, timezone.IST)
	history := []study.Activity{at(now, 0, "maths"), at(now, 1, "maths"), at(now, 45, "maths"), at(now, 46, "maths")}

	rec := Compute(Record{StudentID: "s1", LongestStreak: 9}, history, now, DefaultWindowDays)
	assert.Equal(t, "s1", rec.StudentID)
	assert.Equal(t, 2, rec.CurrentStreak)
	assert.Equal(t, 9, rec.LongestStreak)
	// the calendar covers the whole history, not the window
	assert.Equal(t, 4, rec.TotalStudyDays)
	assert.Len(t, rec.Calendar, 4)
	require.NotNil(t, rec.LastStudyDate)
	assert.True(t, rec.LastStudyDate.Equal(history[0].CreatedAt))

	rec = Compute(Record{StudentID: "s1", LongestStreak: 1}, history, now, DefaultWindowDays)
	assert.Equal(t, 2, rec.LongestStreak)

	empty := Compute(Record{StudentID: "s1", LongestStreak: 4}, nil, now, DefaultWindowDays)
	assert.Zero(t, empty.CurrentStreak)
	assert.Equal(t, 4, empty.LongestStreak)
	assert.Empty(t, empty.Calendar)
	assert.Nil(t, empty.LastStudyDate)
}

func TestCalendar_ScanValue(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, timezone.IST)
	cal := BuildCalendar([]study.Activity{at(now, 0, "maths")})

	v, err := cal.Value()
	require.NoError(t, err)
	var got Calendar
	require.NoError(t, got.Scan(v))
	require.Len(t, got, 1)
	assert.Equal(t, cal[0].Key, got[0].Key)
	assert.True(t, cal[0].Date.Equal(got[0].Date))

	v, err = Calendar(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
