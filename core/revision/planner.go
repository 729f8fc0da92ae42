package revision

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const (
	DefaultWindowDays = 60

	staleAfter     = 3 * 24 * time.Hour
	maxDue         = 10
	maxWeak        = 10
	maxStale       = 5
	maxRecommended = 3
)

type (
	ActivitySource interface {
		ActivitiesSince(ctx context.Context, studentID string, from time.Time) ([]study.Activity, error)
	}

	SubjectLister interface {
		List(ctx context.Context) ([]subject.Subject, error)
	}

	Planner struct {
		activities ActivitySource
		tracker    *progress.Tracker
		subjects   SubjectLister
		windowDays int
	}

	SubjectProgress struct {
		SubjectID          string     `json:"subject_id"`
		SubjectName        string     `json:"subject_name,omitempty"`
		LastStudied        *time.Time `json:"last_studied"`
		DaysSinceLastStudy *int       `json:"days_since_last_study"`
		TotalLessons       int        `json:"total_lessons"`
		MasteredLessons    int        `json:"mastered_lessons"`
		AverageConfidence  float64    `json:"average_confidence"`
	}

	Recommendation struct {
		Type        string      `json:"type"` // urgent | stale | weak
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Priority    string      `json:"priority"`
		Items       interface{} `json:"items"`
	}

	Overview struct {
		Plan            []Item            `json:"plan"`
		DueForReview    []progress.Record `json:"due_for_review"`
		WeakAreas       []progress.Record `json:"weak_areas"`
		StaleSubjects   []string          `json:"stale_subjects"`
		SubjectProgress []SubjectProgress `json:"subject_progress"`
		Recommendations []Recommendation  `json:"recommendations"`
	}
)

// NewPlanner returns a revision planner. subjects may be nil; subject progress then only covers
// the subjects the student has progress in.
func NewPlanner(activities ActivitySource, tracker *progress.Tracker, subjects SubjectLister, windowDays int) *Planner {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Planner{activities: activities, tracker: tracker, subjects: subjects, windowDays: windowDays}
}

// Plan schedules the lessons studied within the planner's window.
func (p *Planner) Plan(ctx context.Context, studentID string, now time.Time) ([]Item, error) {
	acts, err := p.activities.ActivitiesSince(ctx, studentID, timezone.AddDays(now, -p.windowDays))
	if err != nil {
		return nil, errors.Wrap(err, "loading activities")
	}
	return Plan(acts, now), nil
}

// Overview combines the plan with the student's progress records.
func (p *Planner) Overview(ctx context.Context, studentID string, now time.Time) (Overview, error) {
	plan, err := p.Plan(ctx, studentID, now)
	if err != nil {
		return Overview{}, err
	}
	recs, err := p.tracker.List(ctx, studentID)
	if err != nil {
		return Overview{}, err
	}
	due, err := p.tracker.DueForReview(ctx, studentID, now, 0)
	if err != nil {
		return Overview{}, err
	}
	weak, err := p.tracker.WeakAreas(ctx, studentID, maxWeak)
	if err != nil {
		return Overview{}, err
	}

	var subjects []subject.Subject
	if p.subjects != nil {
		if subjects, err = p.subjects.List(ctx); err != nil {
			return Overview{}, errors.Wrap(err, "listing subjects")
		}
	}
	subjProgress := subjectProgress(subjects, recs, now)

	stale := lo.FilterMap(subjProgress, func(sp SubjectProgress, _ int) (string, bool) {
		return sp.SubjectID, sp.LastStudied != nil && now.Sub(*sp.LastStudied) > staleAfter
	})
	if len(stale) > maxStale {
		stale = stale[:maxStale]
	}

	return Overview{
		Plan:            plan,
		DueForReview:    headRecords(due, maxDue),
		WeakAreas:       weak,
		StaleSubjects:   stale,
		SubjectProgress: subjProgress,
		Recommendations: recommendations(due, stale, weak),
	}, nil
}

func subjectProgress(subjects []subject.Subject, recs []progress.Record, now time.Time) []SubjectProgress {
	bySubject := lo.GroupBy(recs, func(r progress.Record) string { return r.SubjectID })
	if subjects == nil {
		for _, id := range lo.Uniq(lo.Map(recs, func(r progress.Record, _ int) string { return r.SubjectID })) {
			subjects = append(subjects, subject.Subject{ID: id})
		}
	}

	out := make([]SubjectProgress, 0, len(subjects))
	for _, subj := range subjects {
		sp := SubjectProgress{SubjectID: subj.ID, SubjectName: subj.Name}
		if prs := bySubject[subj.ID]; len(prs) > 0 {
			last := lo.MaxBy(prs, func(a, b progress.Record) bool { return a.LastStudied.After(b.LastStudied) }).LastStudied
			days := int(math.Floor(now.Sub(last).Hours() / 24))
			sp.LastStudied, sp.DaysSinceLastStudy = &last, &days
			sp.TotalLessons = len(prs)
			sp.MasteredLessons = lo.CountBy(prs, func(r progress.Record) bool { return r.MasteryLevel >= progress.LevelGreat })
			sp.AverageConfidence = float64(lo.SumBy(prs, func(r progress.Record) int { return r.Confidence })) / float64(len(prs))
		}
		out = append(out, sp)
	}
	return out
}

func recommendations(due []progress.Record, stale []string, weak []progress.Record) []Recommendation {
	recs := make([]Recommendation, 0, 3)
	if len(due) > 0 {
		recs = append(recs, Recommendation{
			Type:        "urgent",
			Title:       "Due for Review",
			Description: strconv.Itoa(len(due)) + " topics need your attention",
			Priority:    "high",
			Items:       headRecords(due, maxRecommended),
		})
	}
	if len(stale) > 0 {
		items := stale
		if len(items) > maxRecommended {
			items = items[:maxRecommended]
		}
		recs = append(recs, Recommendation{
			Type:        "stale",
			Title:       "Stale Subjects",
			Description: "Haven't studied these subjects recently",
			Priority:    "medium",
			Items:       items,
		})
	}
	if len(weak) > 0 {
		recs = append(recs, Recommendation{
			Type:        "weak",
			Title:       "Weak Areas",
			Description: "Focus on improving these topics",
			Priority:    "medium",
			Items:       headRecords(weak, maxRecommended),
		})
	}
	return recs
}

func headRecords(recs []progress.Record, n int) []progress.Record {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}
