// Package revision derives what a student should revise next from their recent activities.
// Nothing here is persisted; plans are recomputed on every request.
package revision

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

// Statuses
const (
	StatusOverdue   = "overdue"
	StatusToday     = "today"
	StatusSoon      = "soon"
	StatusScheduled = "scheduled"
)

// Item is the revision plan of one lesson.
type Item struct {
	SubjectID         string           `json:"subject_id"`
	LessonID          string           `json:"lesson_id"`
	Entries           []study.Activity `json:"entries"`
	AverageConfidence float64          `json:"average_confidence"`
	TotalTime         int              `json:"total_time"`
	LastStudied       time.Time        `json:"last_studied"`
	DaysSinceStudy    int              `json:"days_since_study"`
	RevisionDate      time.Time        `json:"revision_date"` // IST midnight
	Priority          int              `json:"priority"`      // 1 is the most urgent
	Status            string           `json:"status"`
}

type groupKey struct{ subjectID, lessonID string }

// Plan groups the activities by lesson and schedules each lesson's revision,
// most urgent first. Activities without a subject or lesson are ignored.
func Plan(acts []study.Activity, now time.Time) []Item {
	groups := lo.GroupBy(
		lo.Filter(acts, func(a study.Activity, _ int) bool { return a.SubjectID != "" && a.LessonID != "" }),
		func(a study.Activity) groupKey { return groupKey{a.SubjectID, a.LessonID} },
	)

	items := make([]Item, 0, len(groups))
	for key, entries := range groups {
		items = append(items, newItem(key, entries, now))
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Priority != b.Priority:
			return a.Priority < b.Priority
		case !a.RevisionDate.Equal(b.RevisionDate):
			return a.RevisionDate.Before(b.RevisionDate)
		case a.SubjectID != b.SubjectID:
			return a.SubjectID < b.SubjectID
		}
		return a.LessonID < b.LessonID
	})
	return items
}

func newItem(key groupKey, entries []study.Activity, now time.Time) Item {
	sumConf := lo.SumBy(entries, func(a study.Activity) int { return a.Confidence })
	last := lo.MaxBy(entries, func(a, b study.Activity) bool { return a.CreatedAt.After(b.CreatedAt) }).CreatedAt

	it := Item{
		SubjectID:         key.subjectID,
		LessonID:          key.lessonID,
		Entries:           entries,
		AverageConfidence: round1(float64(sumConf) / float64(len(entries))),
		TotalTime:         lo.SumBy(entries, func(a study.Activity) int { return a.TotalTime }),
		LastStudied:       last.UTC(),
		DaysSinceStudy:    int(math.Floor(now.Sub(last).Hours() / 24)),
	}
	it.RevisionDate = timezone.AddDays(now, RevisionOffset(it.AverageConfidence, it.DaysSinceStudy))
	it.Priority = Priority(it.AverageConfidence, it.DaysSinceStudy)
	it.Status = Status(it.RevisionDate, now)
	return it
}

// RevisionOffset returns in how many days from today a lesson should be revised.
func RevisionOffset(confidence float64, daysSince int) int {
	switch {
	case confidence >= 4:
		switch {
		case daysSince >= 14:
			return 0
		case daysSince >= 7:
			return 3
		}
		return 7
	case confidence >= 3:
		switch {
		case daysSince >= 7:
			return 0
		case daysSince >= 3:
			return 2
		}
		return 5
	default:
		switch {
		case daysSince >= 3:
			return 0
		case daysSince >= 1:
			return 1
		}
		return 2
	}
}

// Priority ranks lessons from 1 (revise first) to 3.
func Priority(confidence float64, daysSince int) int {
	switch {
	case confidence <= 2 && daysSince >= 7,
		confidence <= 3 && daysSince >= 14:
		return 1
	case confidence <= 2 && daysSince >= 3,
		confidence <= 3 && daysSince >= 7,
		confidence <= 4 && daysSince >= 21:
		return 2
	}
	return 3
}

// Status compares the revision date to today in whole IST days.
func Status(revisionDate, now time.Time) string {
	switch d := timezone.DaysBetween(now, revisionDate); {
	case d < 0:
		return StatusOverdue
	case d == 0:
		return StatusToday
	case d <= 2:
		return StatusSoon
	}
	return StatusScheduled
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
