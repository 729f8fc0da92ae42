package sqlxrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
)

const (
	subjectColumns = "id, name, total_marks, color, icon, description, created_at, updated_at"
	lessonColumns  = "id, subject_id, name, chapter_number, description, is_active, created_by, created_at, updated_at"
)

type subjectRepository struct {
	db core.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db core.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	subj.CreatedAt, subj.UpdatedAt = dbTime(subj.CreatedAt), dbTime(subj.UpdatedAt)
	_, err := execQuery(ctx, repo.db,
		`INSERT INTO subjects (`+subjectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		subj.ID, subj.Name, subj.TotalMarks, subj.Color, subj.Icon, subj.Description, subj.CreatedAt, subj.UpdatedAt,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0)
	if err := selectRows(ctx, repo.db, &subjects, "SELECT "+subjectColumns+" FROM subjects ORDER BY name ASC"); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, id string) (subject.Subject, error) {
	var subj subject.Subject
	if err := getRow(ctx, repo.db, &subj, "SELECT "+subjectColumns+" FROM subjects WHERE id = ?", id); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrSubjectNotFound, "selecting subject by id")
	}
	return subj, nil
}

func (repo subjectRepository) GetSubjectByName(ctx context.Context, name string) (subject.Subject, error) {
	var subj subject.Subject
	err := getRow(ctx, repo.db, &subj, "SELECT "+subjectColumns+" FROM subjects WHERE LOWER(name) = ?", strings.ToLower(name))
	if err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrSubjectNotFound, "selecting subject by name")
	}
	return subj, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	subj.UpdatedAt = dbTime(subj.UpdatedAt)
	res, err := execQuery(ctx, repo.db,
		`UPDATE subjects SET name = ?, total_marks = ?, color = ?, icon = ?, description = ?, updated_at = ? WHERE id = ?`,
		subj.Name, subj.TotalMarks, subj.Color, subj.Icon, subj.Description, subj.UpdatedAt, subj.ID,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	if err := mustAffect(res, subject.ErrSubjectNotFound); err != nil {
		return subject.Subject{}, err
	}
	return subj, nil
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	// lessons go with their subject, whether or not the driver enforces the foreign key
	_, err := execQuery(ctx, repo.db, "DELETE FROM lessons WHERE subject_id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting subject lessons")
	}
	res, err := execQuery(ctx, repo.db, "DELETE FROM subjects WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return mustAffect(res, subject.ErrSubjectNotFound)
}

// Lessons

func (repo subjectRepository) CreateLesson(ctx context.Context, lsn subject.Lesson) (subject.Lesson, error) {
	lsn.CreatedAt, lsn.UpdatedAt = dbTime(lsn.CreatedAt), dbTime(lsn.UpdatedAt)
	_, err := execQuery(ctx, repo.db,
		`INSERT INTO lessons (`+lessonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lsn.ID, lsn.SubjectID, lsn.Name, lsn.ChapterNumber, lsn.Description, lsn.IsActive, lsn.CreatedBy, lsn.CreatedAt, lsn.UpdatedAt,
	)
	if err != nil {
		return subject.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lsn, nil
}

func (repo subjectRepository) QueryLessons(ctx context.Context, filter subject.LessonFilter) ([]subject.Lesson, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = ?")
		args = append(args, true)
	}

	q := "SELECT " + lessonColumns + " FROM lessons"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY subject_id ASC, chapter_number ASC, name ASC"

	lessons := make([]subject.Lesson, 0)
	if err := selectRows(ctx, repo.db, &lessons, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return lessons, nil
}

func (repo subjectRepository) GetLesson(ctx context.Context, id string) (subject.Lesson, error) {
	var lsn subject.Lesson
	if err := getRow(ctx, repo.db, &lsn, "SELECT "+lessonColumns+" FROM lessons WHERE id = ?", id); err != nil {
		return subject.Lesson{}, trapNoRowsErr(err, subject.ErrLessonNotFound, "selecting lesson by id")
	}
	return lsn, nil
}

func (repo subjectRepository) UpdateLesson(ctx context.Context, lsn subject.Lesson) (subject.Lesson, error) {
	lsn.UpdatedAt = dbTime(lsn.UpdatedAt)
	res, err := execQuery(ctx, repo.db,
		`UPDATE lessons SET subject_id = ?, name = ?, chapter_number = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		lsn.SubjectID, lsn.Name, lsn.ChapterNumber, lsn.Description, lsn.IsActive, lsn.UpdatedAt, lsn.ID,
	)
	if err != nil {
		return subject.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if err := mustAffect(res, subject.ErrLessonNotFound); err != nil {
		return subject.Lesson{}, err
	}
	return lsn, nil
}

func (repo subjectRepository) DeleteLesson(ctx context.Context, id string) error {
	res, err := execQuery(ctx, repo.db, "DELETE FROM lessons WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return mustAffect(res, subject.ErrLessonNotFound)
}
