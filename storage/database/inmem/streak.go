package inmemdb

import (
	"context"

	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
)

type streakRepository struct {
	db *streakTable
}

var _ streak.Repository = (*streakRepository)(nil) // interface compliance check

func NewStreakRepository(db *DB) *streakRepository {
	return &streakRepository{db: db.streak}
}

func (repo *streakRepository) GetStreak(_ context.Context, studentID string) (streak.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[studentID]; ok {
		return copyRecord(*rec), nil
	}
	return streak.Record{}, streak.ErrNotFound
}

func (repo *streakRepository) SaveStreak(_ context.Context, rec streak.Record) (streak.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec.Achievements = nil
	stored := copyRecord(rec)
	repo.db.table[rec.StudentID] = &stored
	return rec, nil
}

// copyRecord detaches the calendar from the stored record.
func copyRecord(rec streak.Record) streak.Record {
	cal := make(streak.Calendar, len(rec.Calendar))
	copy(cal, rec.Calendar)
	rec.Calendar = cal
	return rec
}

type achievementRepository struct {
	db *achievementTable
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *DB) *achievementRepository {
	return &achievementRepository{db: db.achievement}
}

func (repo *achievementRepository) ListAchievements(_ context.Context, studentID string) ([]achievement.Achievement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	achs := make([]achievement.Achievement, len(repo.db.table[studentID]))
	copy(achs, repo.db.table[studentID])
	return achs, nil
}

func (repo *achievementRepository) AddAchievements(_ context.Context, studentID string, achs []achievement.Achievement) ([]achievement.Achievement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	earned := make(map[string]bool, len(repo.db.table[studentID]))
	for _, a := range repo.db.table[studentID] {
		earned[a.Type] = true
	}
	added := make([]achievement.Achievement, 0, len(achs))
	for _, a := range achs {
		if earned[a.Type] {
			continue
		}
		a.StudentID = studentID
		earned[a.Type] = true
		repo.db.table[studentID] = append(repo.db.table[studentID], a)
		added = append(added, a)
	}
	return added, nil
}
