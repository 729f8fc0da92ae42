package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
)

const (
	activityColumns = "id, student_id, subject_id, lesson_id, day_key, sub_activities, confidence, total_time, created_at, updated_at"

	maxUpsertAttempts = 5
)

var errUpsertConflict = errors.New("concurrent write on study activity")

type studyRepository struct {
	db core.DB
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db core.DB) *studyRepository {
	return &studyRepository{db: db}
}

// UpsertActivity reads the activity stored under key and writes merge's result in a transaction.
// Two writers racing on the same key are serialized through the unique key on insert and an
// updated_at check on update; the loser retries with fresh data.
func (repo studyRepository) UpsertActivity(ctx context.Context, key study.Key, merge func(cur *study.Activity) study.Activity) (study.Activity, error) {
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		var act study.Activity
		err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
			var cur study.Activity
			err := getRow(ctx, tx, &cur,
				"SELECT "+activityColumns+" FROM study_activities WHERE student_id = ? AND subject_id = ? AND day_key = ?",
				key.StudentID, key.SubjectID, key.DayKey,
			)
			switch {
			case err == nil:
				act = normalizeActivity(merge(&cur))
				return repo.update(ctx, tx, act, &cur.UpdatedAt)
			case errors.Cause(err) == sql.ErrNoRows:
				act = normalizeActivity(merge(nil))
				return repo.insert(ctx, tx, act)
			default:
				return errors.Wrap(err, "selecting study activity by key")
			}
		})
		if errors.Cause(err) == errUpsertConflict {
			continue
		}
		if err != nil {
			return study.Activity{}, err
		}
		return act, nil
	}
	return study.Activity{}, errors.Wrapf(errUpsertConflict, "after %d attempts", maxUpsertAttempts)
}

func normalizeActivity(act study.Activity) study.Activity {
	act.CreatedAt, act.UpdatedAt = dbTime(act.CreatedAt), dbTime(act.UpdatedAt)
	return act
}

func (repo studyRepository) insert(ctx context.Context, ex core.DBExecutor, act study.Activity) error {
	res, err := execQuery(ctx, ex,
		`INSERT INTO study_activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, subject_id, day_key) DO NOTHING`,
		act.ID, act.StudentID, act.SubjectID, act.LessonID, act.DayKey, act.SubActivities,
		act.Confidence, act.TotalTime, act.CreatedAt, act.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting study activity")
	}
	if mustAffect(res, errUpsertConflict) != nil {
		return errUpsertConflict
	}
	return nil
}

// update writes act. With prevUpdatedAt set, the row must not have changed since it was read.
func (repo studyRepository) update(ctx context.Context, ex core.DBExecutor, act study.Activity, prevUpdatedAt *time.Time) error {
	q := `UPDATE study_activities
		SET subject_id = ?, lesson_id = ?, sub_activities = ?, confidence = ?, total_time = ?, updated_at = ?
		WHERE id = ?`
	args := []interface{}{act.SubjectID, act.LessonID, act.SubActivities, act.Confidence, act.TotalTime, act.UpdatedAt, act.ID}
	notFound := study.ErrNotFound
	if prevUpdatedAt != nil {
		q += " AND updated_at = ?"
		args = append(args, dbTime(*prevUpdatedAt))
		notFound = errUpsertConflict
	}

	res, err := execQuery(ctx, ex, q, args...)
	if err != nil {
		return errors.Wrap(err, "updating study activity")
	}
	return mustAffect(res, notFound)
}

func (repo studyRepository) GetActivity(ctx context.Context, id string) (study.Activity, error) {
	var act study.Activity
	if err := getRow(ctx, repo.db, &act, "SELECT "+activityColumns+" FROM study_activities WHERE id = ?", id); err != nil {
		return study.Activity{}, trapNoRowsErr(err, study.ErrNotFound, "selecting study activity by id")
	}
	return act, nil
}

func (repo studyRepository) QueryActivities(ctx context.Context, studentID string, filter study.Filter, offset, limit int) ([]study.Activity, error) {
	where := []string{"student_id = ?"}
	args := []interface{}{studentID}
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.LessonID != "" {
		where = append(where, "lesson_id = ?")
		args = append(args, filter.LessonID)
	}
	if filter.DayKey != "" {
		where = append(where, "day_key = ?")
		args = append(args, filter.DayKey)
	}

	q := "SELECT " + activityColumns + " FROM study_activities WHERE " + strings.Join(where, " AND ") +
		" ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	acts := make([]study.Activity, 0)
	if err := selectRows(ctx, repo.db, &acts, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying study activities")
	}
	return acts, nil
}

func (repo studyRepository) ActivitiesSince(ctx context.Context, studentID string, from time.Time) ([]study.Activity, error) {
	acts := make([]study.Activity, 0)
	err := selectRows(ctx, repo.db, &acts,
		"SELECT "+activityColumns+" FROM study_activities WHERE student_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC",
		studentID, dbTime(from),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent study activities")
	}
	return acts, nil
}

func (repo studyRepository) AllActivities(ctx context.Context, studentID string) ([]study.Activity, error) {
	return repo.QueryActivities(ctx, studentID, study.Filter{}, 0, 0)
}

func (repo studyRepository) StudentIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := selectRows(ctx, repo.db, &ids, "SELECT DISTINCT student_id FROM study_activities ORDER BY student_id"); err != nil {
		return nil, errors.Wrap(err, "listing students with activities")
	}
	return ids, nil
}

func (repo studyRepository) UpdateActivity(ctx context.Context, act study.Activity) (study.Activity, error) {
	act = normalizeActivity(act)
	if err := repo.update(ctx, repo.db, act, nil); err != nil {
		return study.Activity{}, err
	}
	return act, nil
}

func (repo studyRepository) DeleteActivity(ctx context.Context, id string) error {
	res, err := execQuery(ctx, repo.db, "DELETE FROM study_activities WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting study activity")
	}
	return mustAffect(res, study.ErrNotFound)
}
