package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/shanmukhasaireddy13/study-tracker/core/study"
)

type studyRepository struct {
	db *studyTable
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *DB) *studyRepository {
	return &studyRepository{db: db.study}
}

func keyOf(act study.Activity) study.Key {
	return study.Key{StudentID: act.StudentID, SubjectID: act.SubjectID, DayKey: act.DayKey}
}

// UpsertActivity holds the table lock while merging, so merges on a key never interleave.
func (repo *studyRepository) UpsertActivity(_ context.Context, key study.Key, merge func(cur *study.Activity) study.Activity) (study.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cur *study.Activity
	if id, ok := repo.db.keys[key]; ok {
		c := *repo.db.table[id]
		cur = &c
	}
	act := merge(cur)
	repo.db.table[act.ID] = &act
	repo.db.keys[keyOf(act)] = act.ID
	return act, nil
}

func (repo *studyRepository) GetActivity(_ context.Context, id string) (study.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if act, ok := repo.db.table[id]; ok {
		return *act, nil
	}
	return study.Activity{}, study.ErrNotFound
}

// newestFirst returns the student's activities matching keep, ordered by created_at DESC, id DESC.
func (repo *studyRepository) newestFirst(studentID string, keep func(study.Activity) bool) []study.Activity {
	acts := make([]study.Activity, 0)
	for _, act := range repo.db.table {
		if act.StudentID == studentID && keep(*act) {
			acts = append(acts, *act)
		}
	}
	sort.Slice(acts, func(i, j int) bool {
		if !acts[i].CreatedAt.Equal(acts[j].CreatedAt) {
			return acts[i].CreatedAt.After(acts[j].CreatedAt)
		}
		return acts[i].ID > acts[j].ID
	})
	return acts
}

func (repo *studyRepository) QueryActivities(_ context.Context, studentID string, filter study.Filter, offset, limit int) ([]study.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	acts := repo.newestFirst(studentID, func(act study.Activity) bool {
		return (filter.SubjectID == "" || act.SubjectID == filter.SubjectID) &&
			(filter.LessonID == "" || act.LessonID == filter.LessonID) &&
			(filter.DayKey == "" || act.DayKey == filter.DayKey)
	})
	if limit <= 0 {
		return acts, nil
	}
	if offset >= len(acts) {
		return []study.Activity{}, nil
	}
	return acts[offset:lo.Min([]int{offset + limit, len(acts)})], nil
}

func (repo *studyRepository) ActivitiesSince(_ context.Context, studentID string, from time.Time) ([]study.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.newestFirst(studentID, func(act study.Activity) bool { return !act.CreatedAt.Before(from) }), nil
}

func (repo *studyRepository) AllActivities(ctx context.Context, studentID string) ([]study.Activity, error) {
	return repo.QueryActivities(ctx, studentID, study.Filter{}, 0, 0)
}

func (repo *studyRepository) StudentIDs(_ context.Context) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := lo.Uniq(lo.MapToSlice(repo.db.table, func(_ string, act *study.Activity) string { return act.StudentID }))
	sort.Strings(ids)
	return ids, nil
}

func (repo *studyRepository) UpdateActivity(_ context.Context, act study.Activity) (study.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[act.ID]
	if !ok {
		return study.Activity{}, study.ErrNotFound
	}
	delete(repo.db.keys, keyOf(*orig))
	repo.db.table[act.ID] = &act
	repo.db.keys[keyOf(act)] = act.ID
	return act, nil
}

func (repo *studyRepository) DeleteActivity(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	act, ok := repo.db.table[id]
	if !ok {
		return study.ErrNotFound
	}
	delete(repo.db.keys, keyOf(*act))
	delete(repo.db.table, id)
	return nil
}
