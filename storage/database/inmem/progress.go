package inmemdb

import (
	"context"
	"sort"

	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress}
}

func progressKey(studentID, lessonID string) string {
	return studentID + "/" + lessonID
}

func (repo *progressRepository) GetProgress(_ context.Context, studentID, lessonID string) (progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[progressKey(studentID, lessonID)]; ok {
		return copyProgress(*rec), nil
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) SaveProgress(_ context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := progressKey(rec.StudentID, rec.LessonID)
	if existing, ok := repo.db.table[key]; ok {
		rec.ID = existing.ID
	}
	stored := copyProgress(rec)
	repo.db.table[key] = &stored
	return rec, nil
}

func (repo *progressRepository) ListProgress(_ context.Context, studentID string) ([]progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]progress.Record, 0)
	for _, rec := range repo.db.table {
		if rec.StudentID == studentID {
			recs = append(recs, copyProgress(*rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].LastStudied.Equal(recs[j].LastStudied) {
			return recs[i].LastStudied.After(recs[j].LastStudied)
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

func copyProgress(rec progress.Record) progress.Record {
	hist := make(progress.History, len(rec.RevisionHistory))
	copy(hist, rec.RevisionHistory)
	rec.RevisionHistory = hist
	return rec
}
