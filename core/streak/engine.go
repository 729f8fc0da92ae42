package streak

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const DefaultWindowDays = 30

type (
	Repository interface {
		GetStreak(ctx context.Context, studentID string) (Record, error)
		// SaveStreak replaces the student's record wholesale, creating it if needed.
		SaveStreak(ctx context.Context, rec Record) (Record, error)
	}

	// ActivitySource is the part of the activity log the engine reads.
	ActivitySource interface {
		AllActivities(ctx context.Context, studentID string) ([]study.Activity, error)
		ActivitiesSince(ctx context.Context, studentID string, from time.Time) ([]study.Activity, error)
	}

	Engine struct {
		repo         Repository
		activities   ActivitySource
		achievements achievement.Repository
		windowDays   int
	}
)

// NewEngine returns a streak engine. achievements may be nil; records are then returned without them.
func NewEngine(repo Repository, activities ActivitySource, achievements achievement.Repository, windowDays int) *Engine {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Engine{repo: repo, activities: activities, achievements: achievements, windowDays: windowDays}
}

func (eng *Engine) load(ctx context.Context, studentID string) (Record, bool, error) {
	rec, err := eng.repo.GetStreak(ctx, studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Record{StudentID: studentID, Calendar: Calendar{}}, false, nil
		}
		return Record{}, false, errors.Wrap(err, "loading streak")
	}
	return rec, true, nil
}

func (eng *Engine) attachAchievements(ctx context.Context, rec Record) (Record, error) {
	rec.Achievements = []achievement.Achievement{}
	if eng.achievements == nil {
		return rec, nil
	}
	achs, err := eng.achievements.ListAchievements(ctx, rec.StudentID)
	if err != nil {
		return Record{}, errors.Wrap(err, "listing achievements")
	}
	if achs != nil {
		rec.Achievements = achs
	}
	return rec, nil
}

// Get returns the student's record, creating an empty one on first access.
func (eng *Engine) Get(ctx context.Context, studentID string) (Record, error) {
	rec, exists, err := eng.load(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	if !exists {
		if rec, err = eng.repo.SaveStreak(ctx, rec); err != nil {
			return Record{}, errors.Wrap(err, "creating streak")
		}
	}
	return eng.attachAchievements(ctx, rec)
}

// Recompute rebuilds the student's record from the activity log.
// Running it again without new activities gives the same record.
func (eng *Engine) Recompute(ctx context.Context, studentID string, now time.Time) (Record, error) {
	prev, _, err := eng.load(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	history, err := eng.activities.AllActivities(ctx, studentID)
	if err != nil {
		return Record{}, errors.Wrap(err, "loading activities")
	}

	rec, err := eng.repo.SaveStreak(ctx, Compute(prev, history, now, eng.windowDays))
	if err != nil {
		return Record{}, errors.Wrap(err, "saving streak")
	}
	return eng.attachAchievements(ctx, rec)
}

// IncrementalUpdate folds a freshly recorded activity into the record. The first activity of
// the day runs a full Recompute; later ones only rebuild today's calendar entry.
func (eng *Engine) IncrementalUpdate(ctx context.Context, studentID string, act study.Activity, now time.Time) (Record, error) {
	rec, exists, err := eng.load(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	if _, ok := rec.Calendar.Day(timezone.DayKey(now)); !exists || !ok || dayOf(act) != timezone.DayKey(now) {
		return eng.Recompute(ctx, studentID, now)
	}

	today, err := eng.activities.ActivitiesSince(ctx, studentID, timezone.StartOfDay(now))
	if err != nil {
		return Record{}, errors.Wrap(err, "loading today's activities")
	}
	if rec, err = eng.repo.SaveStreak(ctx, mergeToday(rec, today, now)); err != nil {
		return Record{}, errors.Wrap(err, "saving streak")
	}
	return eng.attachAchievements(ctx, rec)
}
