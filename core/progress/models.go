package progress

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

// Mastery levels
const (
	LevelNew = iota + 1
	LevelLearning
	LevelGood
	LevelGreat
	LevelMastered
)

const (
	DefaultInterval   = 1
	MaxInterval       = 30
	DefaultEaseFactor = 2.5
)

var (
	ErrNotFound = errors.Wrap(core.ErrNotFound, "progress record")

	levelNames = map[int]string{
		LevelNew:      "New",
		LevelLearning: "Learning",
		LevelGood:     "Good",
		LevelGreat:    "Great",
		LevelMastered: "Mastered",
	}
)

func LevelName(level int) string { return levelNames[level] }

type RevisionEntry struct {
	Date       time.Time `json:"date"`
	Confidence int       `json:"confidence"`
	TimeSpent  int       `json:"time_spent"`
	Notes      string    `json:"notes"`
}

type History []RevisionEntry

func (h History) Value() (driver.Value, error) {
	if h == nil {
		h = History{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *History) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = History{}
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return errors.Errorf("progress.History: cannot scan %T", src)
}

// Record tracks how well a student knows a lesson.
type Record struct {
	ID              string     `json:"id" db:"id"`
	StudentID       string     `json:"student_id" db:"student_id"`
	SubjectID       string     `json:"subject_id" db:"subject_id"`
	LessonID        string     `json:"lesson_id" db:"lesson_id"`
	FirstStudied    time.Time  `json:"first_studied" db:"first_studied"`
	LastStudied     time.Time  `json:"last_studied" db:"last_studied"`
	StudyCount      int        `json:"study_count" db:"study_count"`
	MasteryLevel    int        `json:"mastery_level" db:"mastery_level"`
	Confidence      int        `json:"confidence" db:"confidence"`
	TotalTimeSpent  int        `json:"total_time_spent" db:"total_time_spent"` // minutes
	RevisionHistory History    `json:"revision_history" db:"revision_history"`
	NextReviewDate  *time.Time `json:"next_review_date" db:"next_review_date"`
	Interval        int        `json:"interval" db:"interval_days"` // days
	EaseFactor      float64    `json:"ease_factor" db:"ease_factor"`
	Repetitions     int        `json:"repetitions" db:"repetitions"`
	// LastEvent identifies the last activity state applied, so that replays are ignored.
	LastEvent string `json:"-" db:"last_event"`
}

// Study is one study event of a lesson.
type Study struct {
	Confidence int
	TimeSpent  int
	Notes      string
}

// New starts tracking a lesson. The record is "New" until studied again.
func New(studentID, subjectID, lessonID string, s Study, now time.Time) Record {
	now = now.UTC()
	next := now.Add(DefaultInterval * 24 * time.Hour)
	return Record{
		ID:              uuid.NewString(),
		StudentID:       studentID,
		SubjectID:       subjectID,
		LessonID:        lessonID,
		FirstStudied:    now,
		LastStudied:     now,
		StudyCount:      1,
		MasteryLevel:    LevelNew,
		Confidence:      s.Confidence,
		TotalTimeSpent:  s.TimeSpent,
		RevisionHistory: History{{Date: now, Confidence: s.Confidence, TimeSpent: s.TimeSpent, Notes: s.Notes}},
		NextReviewDate:  &next,
		Interval:        DefaultInterval,
		EaseFactor:      DefaultEaseFactor,
	}
}

// Apply records another study of the lesson and reschedules its review.
func (r *Record) Apply(s Study, now time.Time) {
	now = now.UTC()
	r.LastStudied = now
	r.StudyCount++
	r.TotalTimeSpent += s.TimeSpent
	r.Confidence = s.Confidence
	r.RevisionHistory = append(r.RevisionHistory, RevisionEntry{Date: now, Confidence: s.Confidence, TimeSpent: s.TimeSpent, Notes: s.Notes})

	r.MasteryLevel = MasteryLevel(r.StudyCount, r.Confidence)
	r.Interval = NextInterval(r.Interval, r.Confidence)
	next := now.Add(time.Duration(r.Interval) * 24 * time.Hour)
	r.NextReviewDate = &next
}

// MasteryLevel applies the first matching rule to the updated counters.
func MasteryLevel(studyCount, confidence int) int {
	switch {
	case studyCount >= 5 && confidence >= 4:
		return LevelMastered
	case studyCount >= 3 && confidence >= 3:
		return LevelGreat
	case studyCount >= 2:
		return LevelGood
	default:
		return LevelLearning
	}
}

// NextInterval doubles the interval on high confidence (capped at MaxInterval),
// keeps it on medium confidence and resets it on low confidence.
func NextInterval(interval, confidence int) int {
	switch {
	case confidence >= 4:
		if interval*2 > MaxInterval {
			return MaxInterval
		}
		return interval * 2
	case confidence >= 3:
		if interval < 1 {
			return 1
		}
		return interval
	default:
		return 1
	}
}
