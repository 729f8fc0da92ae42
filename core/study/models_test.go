package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestNewActivity_Apply(t *testing.T) {
	key := Key{StudentID: "s1", SubjectID: "maths", DayKey: "2024-01-11"}
	t0 := time.Date(2024, 1, 11, 4, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)

	first := NewActivity{
		SubjectID: "maths",
		SubActivitiesPatch: SubActivitiesPatch{
			Reading: &BlockPatch{Completed: boolPtr(true), Notes: strPtr("ch1")},
		},
	}
	act := first.Apply(nil, key, t0)

	assert.NotEmpty(t, act.ID)
	assert.Equal(t, DefaultConfidence, act.Confidence)
	assert.Equal(t, 0, act.TotalTime)
	assert.Equal(t, WritingQuestions, act.SubActivities.Writing.Type)
	assert.True(t, act.SubActivities.Reading.Completed)
	assert.Equal(t, "2024-01-11", act.DayKey)
	assert.Equal(t, t0, act.CreatedAt)

	second := NewActivity{
		SubjectID:  "maths",
		LessonID:   "algebra",
		Confidence: intPtr(5),
		TotalTime:  intPtr(40),
		SubActivitiesPatch: SubActivitiesPatch{
			Reading:      &BlockPatch{Notes: strPtr("ch2")},
			MathPractice: &BlockPatch{Completed: boolPtr(true), ProblemsSolved: intPtr(12)},
		},
	}
	merged := second.Apply(&act, key, t1)

	assert.Equal(t, act.ID, merged.ID)
	assert.Equal(t, t0, merged.CreatedAt)
	assert.Equal(t, t1, merged.UpdatedAt)
	assert.Equal(t, 5, merged.Confidence)
	assert.Equal(t, 40, merged.TotalTime)
	assert.Equal(t, "algebra", merged.LessonID)
	// omitted keys of a provided block are preserved
	assert.True(t, merged.SubActivities.Reading.Completed)
	assert.Equal(t, "ch2", merged.SubActivities.Reading.Notes)
	assert.Equal(t, 12, merged.SubActivities.MathPractice.ProblemsSolved)

	// nothing provided: values kept
	third := NewActivity{SubjectID: "maths"}.Apply(&merged, key, t1.Add(time.Minute))
	assert.Equal(t, 5, third.Confidence)
	assert.Equal(t, 40, third.TotalTime)
	assert.Equal(t, "algebra", third.LessonID)
}

func TestSubActivities_CompletedWork(t *testing.T) {
	s := SubActivities{
		Reading:        Block{Completed: true},
		Writing:        Block{Completed: false, Type: WritingEssays},
		SocialPractice: Block{Completed: true},
	}
	assert.Equal(t, []string{WorkReading, WorkSocialPractice}, s.CompletedWork())
}

func TestSubActivities_ScanValue(t *testing.T) {
	s := SubActivities{Grammar: Block{Completed: true, Topic: "tenses"}}
	v, err := s.Value()
	assert.NoError(t, err)

	var got SubActivities
	assert.NoError(t, got.Scan(v))
	assert.Equal(t, s, got)

	assert.NoError(t, got.Scan([]byte(`{"reading":{"completed":true}}`)))
	assert.True(t, got.Reading.Completed)
	assert.Error(t, got.Scan(42))
}

func TestUpdateActivity_Apply(t *testing.T) {
	now := time.Date(2024, 1, 11, 4, 0, 0, 0, time.UTC)
	act := Activity{ID: "a1", SubjectID: "maths", LessonID: "algebra", Confidence: 2, TotalTime: 10}

	got := UpdateActivity{LessonID: strPtr(""), Confidence: intPtr(4)}.Apply(act, now)
	assert.Equal(t, "maths", got.SubjectID)
	assert.Equal(t, "", got.LessonID)
	assert.Equal(t, 4, got.Confidence)
	assert.Equal(t, 10, got.TotalTime)
	assert.Equal(t, now, got.UpdatedAt)
}
