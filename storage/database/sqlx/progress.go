package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
)

const progressColumns = "id, student_id, subject_id, lesson_id, first_studied, last_studied, study_count, mastery_level, " +
	"confidence, total_time_spent, revision_history, next_review_date, interval_days, ease_factor, repetitions, last_event"

type progressRepository struct {
	db core.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db core.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) GetProgress(ctx context.Context, studentID, lessonID string) (progress.Record, error) {
	var rec progress.Record
	err := getRow(ctx, repo.db, &rec,
		"SELECT "+progressColumns+" FROM progress WHERE student_id = ? AND lesson_id = ?", studentID, lessonID,
	)
	if err != nil {
		return progress.Record{}, trapNoRowsErr(err, progress.ErrNotFound, "selecting progress")
	}
	return rec, nil
}

// SaveProgress upserts on (student_id, lesson_id); the id of an existing row is kept.
func (repo progressRepository) SaveProgress(ctx context.Context, rec progress.Record) (progress.Record, error) {
	rec.FirstStudied, rec.LastStudied = dbTime(rec.FirstStudied), dbTime(rec.LastStudied)
	rec.NextReviewDate = dbTimePtr(rec.NextReviewDate)
	for i := range rec.RevisionHistory {
		rec.RevisionHistory[i].Date = rec.RevisionHistory[i].Date.UTC()
	}
	if rec.RevisionHistory == nil {
		rec.RevisionHistory = progress.History{}
	}

	_, err := execQuery(ctx, repo.db,
		`INSERT INTO progress (`+progressColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, lesson_id) DO UPDATE SET
			subject_id = excluded.subject_id,
			first_studied = excluded.first_studied,
			last_studied = excluded.last_studied,
			study_count = excluded.study_count,
			mastery_level = excluded.mastery_level,
			confidence = excluded.confidence,
			total_time_spent = excluded.total_time_spent,
			revision_history = excluded.revision_history,
			next_review_date = excluded.next_review_date,
			interval_days = excluded.interval_days,
			ease_factor = excluded.ease_factor,
			repetitions = excluded.repetitions,
			last_event = excluded.last_event`,
		rec.ID, rec.StudentID, rec.SubjectID, rec.LessonID, rec.FirstStudied, rec.LastStudied, rec.StudyCount,
		rec.MasteryLevel, rec.Confidence, rec.TotalTimeSpent, rec.RevisionHistory, rec.NextReviewDate,
		rec.Interval, rec.EaseFactor, rec.Repetitions, rec.LastEvent,
	)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "upserting progress")
	}
	return repo.GetProgress(ctx, rec.StudentID, rec.LessonID)
}

func (repo progressRepository) ListProgress(ctx context.Context, studentID string) ([]progress.Record, error) {
	recs := make([]progress.Record, 0)
	err := selectRows(ctx, repo.db, &recs,
		"SELECT "+progressColumns+" FROM progress WHERE student_id = ? ORDER BY last_studied DESC, id ASC", studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return recs, nil
}
