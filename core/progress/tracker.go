package progress

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
)

type (
	Repository interface {
		GetProgress(ctx context.Context, studentID, lessonID string) (Record, error)
		// SaveProgress inserts or replaces the record of (student, lesson).
		SaveProgress(ctx context.Context, rec Record) (Record, error)
		ListProgress(ctx context.Context, studentID string) ([]Record, error)
	}

	Tracker struct {
		repo Repository
	}
)

func NewTracker(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

func eventOf(act study.Activity) string {
	return act.ID + "@" + strconv.FormatInt(act.UpdatedAt.UnixNano(), 10)
}

// Track updates the progress of the lesson the activity touched.
// Activities without a lesson are ignored, and so is an activity state that was already applied.
func (t *Tracker) Track(ctx context.Context, act study.Activity, now time.Time) (*Record, error) {
	if act.LessonID == "" {
		return nil, nil
	}
	s := Study{Confidence: act.Confidence, TimeSpent: act.TotalTime, Notes: act.SubActivities.Reading.Notes}
	event := eventOf(act)

	rec, err := t.repo.GetProgress(ctx, act.StudentID, act.LessonID)
	switch {
	case core.IsNotFound(err):
		rec = New(act.StudentID, act.SubjectID, act.LessonID, s, now)
	case err != nil:
		return nil, errors.Wrap(err, "loading progress")
	case rec.LastEvent == event:
		return &rec, nil
	default:
		rec.Apply(s, now)
	}
	rec.LastEvent = event

	rec, err = t.repo.SaveProgress(ctx, rec)
	if err != nil {
		return nil, errors.Wrap(err, "saving progress")
	}
	return &rec, nil
}

func (t *Tracker) List(ctx context.Context, studentID string) ([]Record, error) {
	recs, err := t.repo.ListProgress(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing progress")
	}
	return recs, nil
}

// DueForReview returns the records whose review date has passed, most overdue first.
// limit <= 0 means no limit.
func (t *Tracker) DueForReview(ctx context.Context, studentID string, now time.Time, limit int) ([]Record, error) {
	recs, err := t.List(ctx, studentID)
	if err != nil {
		return nil, err
	}
	due := lo.Filter(recs, func(r Record, _ int) bool {
		return r.NextReviewDate != nil && !r.NextReviewDate.After(now)
	})
	sort.SliceStable(due, func(i, j int) bool { return due[i].NextReviewDate.Before(*due[j].NextReviewDate) })
	return head(due, limit), nil
}

// WeakAreas returns the records below LevelGood, weakest and least recently studied first.
func (t *Tracker) WeakAreas(ctx context.Context, studentID string, limit int) ([]Record, error) {
	recs, err := t.List(ctx, studentID)
	if err != nil {
		return nil, err
	}
	weak := lo.Filter(recs, func(r Record, _ int) bool { return r.MasteryLevel < LevelGood })
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].MasteryLevel != weak[j].MasteryLevel {
			return weak[i].MasteryLevel < weak[j].MasteryLevel
		}
		return weak[i].LastStudied.Before(weak[j].LastStudied)
	})
	return head(weak, limit), nil
}

// MasteredBySubject counts, per subject, the lessons at LevelGreat or above.
func (t *Tracker) MasteredBySubject(ctx context.Context, studentID string) (map[string]int, error) {
	recs, err := t.List(ctx, studentID)
	if err != nil {
		return nil, err
	}
	mastered := make(map[string]int)
	for _, r := range recs {
		if r.MasteryLevel >= LevelGreat {
			mastered[r.SubjectID]++
		}
	}
	return mastered, nil
}

func head(recs []Record, limit int) []Record {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
