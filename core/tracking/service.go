// Package tracking records study activities and keeps the state derived from them up to date.
//
// The activity log is the source of truth: a write to it either fails the call or is durable.
// Streaks, lesson progress and achievements are refreshed afterwards on a best-effort basis;
// their failures are logged and reported next to the result, never returned as the call's error.
// Any later full recompute repairs them.
package tracking

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/revision"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
)

// Derived state stages
const (
	StageStreak       = "streak"
	StageProgress     = "progress"
	StageAchievements = "achievements"
)

type (
	Deps struct {
		Study        *study.Service
		Streaks      *streak.Engine
		Progress     *progress.Tracker
		Achievements *achievement.Notifier
		Planner      *revision.Planner
		Clock        core.Clock
		Logger       core.Logger
	}

	Service struct {
		study    *study.Service
		streaks  *streak.Engine
		progress *progress.Tracker
		notifier *achievement.Notifier
		planner  *revision.Planner
		clock    core.Clock
		log      core.Logger
	}

	// Result is the outcome of a write to the activity log.
	// DerivedErrors lists the derived state updates that failed; the write itself succeeded.
	Result struct {
		Activity      study.Activity `json:"data"`
		Streak        *streak.Record `json:"streak"`
		DerivedErrors []string       `json:"derived_errors,omitempty"`
	}
)

func NewService(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = core.SystemClock
	}
	return &Service{
		study:    deps.Study,
		streaks:  deps.Streaks,
		progress: deps.Progress,
		notifier: deps.Achievements,
		planner:  deps.Planner,
		clock:    clock,
		log:      deps.Logger,
	}
}

func (svc *Service) now() time.Time {
	return svc.clock.Now().UTC()
}

func (svc *Service) Activities() *study.Service { return svc.study }

// RecordActivity writes the activity, then refreshes the student's streak, lesson progress and
// achievements in that order.
func (svc *Service) RecordActivity(ctx context.Context, studentID string, na study.NewActivity) (Result, error) {
	now := svc.now()
	act, err := svc.study.Record(ctx, studentID, na, now)
	if err != nil {
		return Result{}, err
	}
	rec, failures := svc.reconcile(ctx, studentID, &act, now)
	return Result{Activity: act, Streak: rec, DerivedErrors: failures}, nil
}

// UpdateActivity changes an activity of the student and recomputes the streak.
// Lesson progress is not replayed: it counts study sessions, not edits.
func (svc *Service) UpdateActivity(ctx context.Context, id, studentID string, ua study.UpdateActivity) (Result, error) {
	now := svc.now()
	act, err := svc.study.Update(ctx, id, studentID, ua, now)
	if err != nil {
		return Result{}, err
	}
	rec, failures := svc.reconcile(ctx, act.StudentID, nil, now)
	return Result{Activity: act, Streak: rec, DerivedErrors: failures}, nil
}

// DeleteActivity removes an activity. Admins may delete any student's activity.
func (svc *Service) DeleteActivity(ctx context.Context, id, studentID string, isAdmin bool) (Result, error) {
	now := svc.now()
	act, err := svc.study.Delete(ctx, id, studentID, !isAdmin)
	if err != nil {
		return Result{}, err
	}
	rec, failures := svc.reconcile(ctx, act.StudentID, nil, now)
	return Result{Activity: act, Streak: rec, DerivedErrors: failures}, nil
}

// reconcile refreshes the derived state of a student. With a fresh activity the cheap
// incremental streak path is used and the touched lesson is tracked; otherwise the streak is
// fully recomputed.
func (svc *Service) reconcile(ctx context.Context, studentID string, act *study.Activity, now time.Time) (*streak.Record, []string) {
	var failures []string
	fail := func(stage string, err error) {
		err = core.NewDerivedStateFailure(stage, err)
		svc.logError("updating derived state", studentID, err)
		failures = append(failures, err.Error())
	}

	var rec *streak.Record
	var r streak.Record
	var err error
	if act != nil {
		r, err = svc.streaks.IncrementalUpdate(ctx, studentID, *act, now)
	} else {
		r, err = svc.streaks.Recompute(ctx, studentID, now)
	}
	if err != nil {
		fail(StageStreak, err)
	} else {
		rec = &r
	}

	if act != nil {
		if _, err := svc.progress.Track(ctx, *act, now); err != nil {
			fail(StageProgress, err)
		}
	}

	if rec != nil {
		added, err := svc.notifier.Check(ctx, studentID, rec.AchievementStats(), now)
		if err != nil {
			fail(StageAchievements, err)
		}
		rec.Achievements = append(rec.Achievements, added...)
	}
	return rec, failures
}

// Streak refreshes the student's streak, then reads it. A failed refresh still returns the
// stored record.
func (svc *Service) Streak(ctx context.Context, studentID string) (streak.Record, error) {
	svc.reconcile(ctx, studentID, nil, svc.now())
	return svc.streaks.Get(ctx, studentID)
}

// RefreshStreak fully recomputes the student's streak. Unlike Streak, a failure is returned.
func (svc *Service) RefreshStreak(ctx context.Context, studentID string) (streak.Record, error) {
	now := svc.now()
	rec, err := svc.streaks.Recompute(ctx, studentID, now)
	if err != nil {
		return streak.Record{}, errors.Wrap(err, "refreshing streak")
	}
	added, err := svc.notifier.Check(ctx, studentID, rec.AchievementStats(), now)
	if err != nil {
		svc.logError("checking achievements", studentID, core.NewDerivedStateFailure(StageAchievements, err))
	}
	rec.Achievements = append(rec.Achievements, added...)
	return rec, nil
}

func (svc *Service) RevisionPlan(ctx context.Context, studentID string) ([]revision.Item, error) {
	return svc.planner.Plan(ctx, studentID, svc.now())
}

func (svc *Service) Overview(ctx context.Context, studentID string) (revision.Overview, error) {
	return svc.planner.Overview(ctx, studentID, svc.now())
}

// ReconcileAll recomputes the derived state of every student who studied.
// It keeps going when a student fails and returns how many were reconciled.
func (svc *Service) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := svc.study.StudentIDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing students")
	}

	var done int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, failures := svc.reconcile(ctx, id, nil, svc.now()); len(failures) > 0 {
			continue
		}
		done++
	}
	if done < len(ids) {
		return done, errors.Errorf("reconciled %d of %d students", done, len(ids))
	}
	return done, nil
}

func (svc *Service) logError(msg, studentID string, err error) {
	if svc.log == nil {
		return
	}
	svc.log.Error(msg, err, map[string]interface{}{"student_id": studentID})
}
