package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasteryLevel(t *testing.T) {
	tests := []struct {
		studyCount, confidence int
		want                   int
	}{
		{1, 5, LevelLearning},
		{2, 1, LevelGood},
		{3, 2, LevelGood},
		{3, 3, LevelGreat},
		{4, 5, LevelGreat},
		{5, 3, LevelGreat},
		{5, 4, LevelMastered},
		{9, 5, LevelMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MasteryLevel(tt.studyCount, tt.confidence), "count=%d confidence=%d", tt.studyCount, tt.confidence)
	}
}

func TestNextInterval(t *testing.T) {
	tests := []struct {
		interval, confidence int
		want                 int
	}{
		{1, 5, 2},
		{8, 4, 16},
		{16, 4, 30},
		{30, 5, 30},
		{6, 3, 6},
		{0, 3, 1},
		{12, 2, 1},
		{12, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextInterval(tt.interval, tt.confidence), "interval=%d confidence=%d", tt.interval, tt.confidence)
	}
}

func TestRecord_Apply(t *testing.T) {
	first := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	rec := New("s1", "maths", "l1", Study{Confidence: 4, TimeSpent: 20}, first)
	assert.Equal(t, LevelNew, rec.MasteryLevel)
	assert.Equal(t, 1, rec.StudyCount)
	assert.Equal(t, DefaultInterval, rec.Interval)
	assert.Equal(t, DefaultEaseFactor, rec.EaseFactor)
	require.NotNil(t, rec.NextReviewDate)
	assert.Equal(t, first.Add(24*time.Hour), *rec.NextReviewDate)

	second := first.Add(48 * time.Hour)
	rec.Apply(Study{Confidence: 5, TimeSpent: 15, Notes: "ch 2"}, second)
	assert.Equal(t, 2, rec.StudyCount)
	assert.Equal(t, LevelGood, rec.MasteryLevel)
	assert.Equal(t, 2, rec.Interval)
	assert.Equal(t, 35, rec.TotalTimeSpent)
	assert.Equal(t, second, rec.LastStudied)
	assert.Equal(t, first, rec.FirstStudied)
	assert.Equal(t, second.Add(48*time.Hour), *rec.NextReviewDate)
	require.Len(t, rec.RevisionHistory, 2)
	assert.Equal(t, "ch 2", rec.RevisionHistory[1].Notes)

	rec.Apply(Study{Confidence: 2}, second.Add(time.Hour))
	assert.Equal(t, 1, rec.Interval)
	assert.Equal(t, LevelGood, rec.MasteryLevel)
}
