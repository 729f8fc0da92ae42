package streak

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
)

var ErrNotFound = errors.Wrap(core.ErrNotFound, "streak record")

// CalendarDay aggregates the activities of one IST day.
type CalendarDay struct {
	Date            time.Time `json:"date"` // IST midnight
	Key             string    `json:"key"`
	SubjectsStudied []string  `json:"subjects_studied"`
	LessonsStudied  []string  `json:"lessons_studied"`
	TotalTime       int       `json:"total_time"`
	Confidence      int       `json:"confidence"` // max of the day
}

// Calendar holds at most one CalendarDay per key, newest first.
type Calendar []CalendarDay

func (cal Calendar) Value() (driver.Value, error) {
	if cal == nil {
		cal = Calendar{}
	}
	b, err := json.Marshal(cal)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (cal *Calendar) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*cal = Calendar{}
		return nil
	case []byte:
		return json.Unmarshal(v, cal)
	case string:
		return json.Unmarshal([]byte(v), cal)
	}
	return errors.Errorf("streak.Calendar: cannot scan %T", src)
}

// Day returns the calendar entry for key.
func (cal Calendar) Day(key string) (CalendarDay, bool) {
	for _, d := range cal {
		if d.Key == key {
			return d, true
		}
	}
	return CalendarDay{}, false
}

// Record is the derived streak state of a student.
type Record struct {
	StudentID      string                    `json:"student_id" db:"student_id"`
	CurrentStreak  int                       `json:"current_streak" db:"current_streak"`
	LongestStreak  int                       `json:"longest_streak" db:"longest_streak"`
	LastStudyDate  *time.Time                `json:"last_study_date" db:"last_study_date"`
	TotalStudyDays int                       `json:"total_study_days" db:"total_study_days"`
	Calendar       Calendar                  `json:"study_calendar" db:"calendar"`
	Achievements   []achievement.Achievement `json:"achievements" db:"-"`
}

func (rec Record) AchievementStats() achievement.Stats {
	return achievement.Stats{CurrentStreak: rec.CurrentStreak, TotalStudyDays: rec.TotalStudyDays}
}
