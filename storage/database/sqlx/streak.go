package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
)

const streakColumns = "student_id, current_streak, longest_streak, last_study_date, total_study_days, calendar"

type streakRepository struct {
	db core.DB
}

var _ streak.Repository = (*streakRepository)(nil) // interface compliance check

func NewStreakRepository(db core.DB) *streakRepository {
	return &streakRepository{db: db}
}

func (repo streakRepository) GetStreak(ctx context.Context, studentID string) (streak.Record, error) {
	var rec streak.Record
	if err := getRow(ctx, repo.db, &rec, "SELECT "+streakColumns+" FROM streaks WHERE student_id = ?", studentID); err != nil {
		return streak.Record{}, trapNoRowsErr(err, streak.ErrNotFound, "selecting streak")
	}
	return rec, nil
}

func (repo streakRepository) SaveStreak(ctx context.Context, rec streak.Record) (streak.Record, error) {
	rec.LastStudyDate = dbTimePtr(rec.LastStudyDate)
	if rec.Calendar == nil {
		rec.Calendar = streak.Calendar{}
	}
	_, err := execQuery(ctx, repo.db,
		`INSERT INTO streaks (`+streakColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_study_date = excluded.last_study_date,
			total_study_days = excluded.total_study_days,
			calendar = excluded.calendar`,
		rec.StudentID, rec.CurrentStreak, rec.LongestStreak, rec.LastStudyDate, rec.TotalStudyDays, rec.Calendar,
	)
	if err != nil {
		return streak.Record{}, errors.Wrap(err, "upserting streak")
	}
	return rec, nil
}

type achievementRepository struct {
	db core.DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db core.DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo achievementRepository) ListAchievements(ctx context.Context, studentID string) ([]achievement.Achievement, error) {
	achs := make([]achievement.Achievement, 0)
	err := selectRows(ctx, repo.db, &achs,
		"SELECT student_id, type, description, earned_at FROM achievements WHERE student_id = ? ORDER BY earned_at ASC, type ASC",
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	return achs, nil
}

// AddAchievements relies on the (student_id, type) primary key: a type already earned is skipped.
func (repo achievementRepository) AddAchievements(ctx context.Context, studentID string, achs []achievement.Achievement) ([]achievement.Achievement, error) {
	added := make([]achievement.Achievement, 0, len(achs))
	for _, ach := range achs {
		ach.StudentID = studentID
		ach.EarnedAt = dbTime(ach.EarnedAt)
		res, err := execQuery(ctx, repo.db,
			`INSERT INTO achievements (student_id, type, description, earned_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (student_id, type) DO NOTHING`,
			ach.StudentID, ach.Type, ach.Description, ach.EarnedAt,
		)
		if err != nil {
			return added, errors.Wrapf(err, "inserting achievement %s", ach.Type)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added = append(added, ach)
		}
	}
	return added, nil
}
