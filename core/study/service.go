package study

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

var (
	ErrNotFound  = errors.Wrap(core.ErrNotFound, "study activity")
	ErrForbidden = errors.Wrap(core.ErrForbidden, "study activity belongs to another student")
)

type (
	Repository interface {
		// UpsertActivity merges into the activity stored under key atomically.
		// merge receives nil when no activity exists yet for the key.
		UpsertActivity(ctx context.Context, key Key, merge func(cur *Activity) Activity) (Activity, error)
		GetActivity(ctx context.Context, id string) (Activity, error)
		// QueryActivities returns a page of the student's activities, newest first.
		QueryActivities(ctx context.Context, studentID string, filter Filter, offset, limit int) ([]Activity, error)
		// ActivitiesSince returns the student's activities created at or after from, newest first.
		ActivitiesSince(ctx context.Context, studentID string, from time.Time) ([]Activity, error)
		AllActivities(ctx context.Context, studentID string) ([]Activity, error)
		// StudentIDs lists every student with at least one activity.
		StudentIDs(ctx context.Context) ([]string, error)
		UpdateActivity(ctx context.Context, act Activity) (Activity, error)
		DeleteActivity(ctx context.Context, id string) error
	}

	// Catalog checks that an activity points at known subjects and lessons.
	Catalog interface {
		CheckLesson(ctx context.Context, subjectID, lessonID string) error
	}

	Service struct {
		repo     Repository
		catalog  Catalog
		validate *validator.Validate
	}
)

// NewService returns the activity log service. catalog may be nil, in which case subject and lesson
// references are not checked.
func NewService(repo Repository, catalog Catalog, validate *validator.Validate) *Service {
	return &Service{repo: repo, catalog: catalog, validate: validate}
}

// StudentIDs lists the students who recorded at least one activity.
func (svc *Service) StudentIDs(ctx context.Context) ([]string, error) {
	return svc.repo.StudentIDs(ctx)
}

// Since returns the student's activities created at or after from, newest first.
func (svc *Service) Since(ctx context.Context, studentID string, from time.Time) ([]Activity, error) {
	return svc.repo.ActivitiesSince(ctx, studentID, from)
}

func (svc *Service) check(ctx context.Context, subjectID, lessonID string) error {
	if svc.catalog == nil {
		return nil
	}
	return svc.catalog.CheckLesson(ctx, subjectID, lessonID)
}

// Record stores a study session. A session for the same student and subject on the same IST day
// is merged into the existing activity.
func (svc *Service) Record(ctx context.Context, studentID string, na NewActivity, now time.Time) (Activity, error) {
	if studentID == "" {
		return Activity{}, core.NewFieldError("student_id", "this field is required")
	}
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Activity{}, err
	}
	if err := svc.check(ctx, na.SubjectID, na.LessonID); err != nil {
		return Activity{}, err
	}

	key := Key{StudentID: studentID, SubjectID: na.SubjectID, DayKey: timezone.DayKey(now)}
	act, err := svc.repo.UpsertActivity(ctx, key, func(cur *Activity) Activity {
		return na.Apply(cur, key, now)
	})
	if err != nil {
		return Activity{}, errors.Wrap(err, "recording study activity")
	}
	return act, nil
}

// List returns a lazy cursor over the student's activities, newest first.
func (svc *Service) List(studentID string, filter Filter) *Cursor {
	filter.Clean()
	return newCursor(svc.repo, studentID, filter)
}

// Get returns the activity if it belongs to studentID. An empty studentID skips the owner check.
func (svc *Service) Get(ctx context.Context, id, studentID string) (Activity, error) {
	act, err := svc.repo.GetActivity(ctx, cleanID(id))
	if err != nil {
		return Activity{}, err
	}
	if studentID != "" && act.StudentID != studentID {
		return Activity{}, ErrForbidden
	}
	return act, nil
}

func (svc *Service) Update(ctx context.Context, id, studentID string, ua UpdateActivity, now time.Time) (Activity, error) {
	if err := svc.validate.Struct(ua); err != nil {
		return Activity{}, err
	}
	act, err := svc.Get(ctx, id, studentID)
	if err != nil {
		return Activity{}, err
	}

	updated := ua.Apply(act, now)
	if err := svc.check(ctx, updated.SubjectID, updated.LessonID); err != nil {
		return Activity{}, err
	}
	if updated.SubjectID != act.SubjectID {
		// a student keeps a single activity per subject and day
		others, err := svc.repo.QueryActivities(ctx, act.StudentID, Filter{SubjectID: updated.SubjectID, DayKey: act.DayKey}, 0, 1)
		if err != nil {
			return Activity{}, errors.Wrap(err, "checking activity uniqueness")
		}
		if len(others) > 0 {
			return Activity{}, core.NewFieldError("subject_id", "an activity for this subject already exists on "+act.DayKey)
		}
	}

	act, err = svc.repo.UpdateActivity(ctx, updated)
	if err != nil {
		return Activity{}, errors.Wrap(err, "updating study activity")
	}
	return act, nil
}

// Delete removes an activity. With requireOwner set, only studentID may delete it.
// The deleted activity is returned so that callers can reconcile the owner's derived state.
func (svc *Service) Delete(ctx context.Context, id, studentID string, requireOwner bool) (Activity, error) {
	act, err := svc.repo.GetActivity(ctx, cleanID(id))
	if err != nil {
		return Activity{}, err
	}
	if requireOwner && act.StudentID != studentID {
		return Activity{}, ErrForbidden
	}
	if err := svc.repo.DeleteActivity(ctx, act.ID); err != nil {
		return Activity{}, err
	}
	return act, nil
}

func cleanID(id string) string {
	return core.CleanString(id)
}
