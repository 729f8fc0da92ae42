package study

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultConfidence = 3
	MinConfidence     = 1
	MaxConfidence     = 5

	WritingQuestions = "questions"
	WritingLetters   = "letters"
	WritingEssays    = "essays"
	WritingOther     = "other"
)

// Work types, as reported by study stats.
const (
	WorkReading         = "Reading"
	WorkGrammar         = "Grammar"
	WorkWriting         = "Writing"
	WorkMathPractice    = "Math Practice"
	WorkSciencePractice = "Science Practice"
	WorkSocialPractice  = "Social Practice"
)

type DocumentRef struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
}

// Block is one sub-activity of a study session (reading, grammar, writing ...).
// Fields that do not apply to a block stay empty.
type Block struct {
	Completed         bool          `json:"completed"`
	Notes             string        `json:"notes,omitempty"`
	Topic             string        `json:"topic,omitempty"`
	Type              string        `json:"type,omitempty"` // writing
	Formulas          []string      `json:"formulas,omitempty"`
	ProblemsSolved    int           `json:"problems_solved,omitempty"`
	Diagrams          bool          `json:"diagrams,omitempty"`
	QuestionsAnswered int           `json:"questions_answered,omitempty"`
	Photos            []string      `json:"photos,omitempty"`
	Documents         []DocumentRef `json:"documents,omitempty"`
}

// BlockPatch holds the provided keys of a Block. nil means "not provided".
type BlockPatch struct {
	Completed         *bool         `json:"completed"`
	Notes             *string       `json:"notes"`
	Topic             *string       `json:"topic"`
	Type              *string       `json:"type" validate:"omitempty,oneof=questions letters essays other"`
	Formulas          []string      `json:"formulas"`
	ProblemsSolved    *int          `json:"problems_solved" validate:"omitempty,min=0"`
	Diagrams          *bool         `json:"diagrams"`
	QuestionsAnswered *int          `json:"questions_answered" validate:"omitempty,min=0"`
	Photos            []string      `json:"photos" validate:"omitempty,dive,required"`
	Documents         []DocumentRef `json:"documents"`
}

// Merge overlays the provided keys of p on b.
func (b Block) Merge(p *BlockPatch) Block {
	if p == nil {
		return b
	}
	if p.Completed != nil {
		b.Completed = *p.Completed
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Topic != nil {
		b.Topic = *p.Topic
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Formulas != nil {
		b.Formulas = p.Formulas
	}
	if p.ProblemsSolved != nil {
		b.ProblemsSolved = *p.ProblemsSolved
	}
	if p.Diagrams != nil {
		b.Diagrams = *p.Diagrams
	}
	if p.QuestionsAnswered != nil {
		b.QuestionsAnswered = *p.QuestionsAnswered
	}
	if p.Photos != nil {
		b.Photos = p.Photos
	}
	if p.Documents != nil {
		b.Documents = p.Documents
	}
	return b
}

type SubActivities struct {
	Reading         Block `json:"reading"`
	Grammar         Block `json:"grammar"`
	Writing         Block `json:"writing"`
	MathPractice    Block `json:"math_practice"`
	SciencePractice Block `json:"science_practice"`
	SocialPractice  Block `json:"social_practice"`
}

type SubActivitiesPatch struct {
	Reading         *BlockPatch `json:"reading"`
	Grammar         *BlockPatch `json:"grammar"`
	Writing         *BlockPatch `json:"writing"`
	MathPractice    *BlockPatch `json:"math_practice"`
	SciencePractice *BlockPatch `json:"science_practice"`
	SocialPractice  *BlockPatch `json:"social_practice"`
}

// Merge is a shallow merge per block: provided keys overwrite, omitted keys are preserved.
func (s SubActivities) Merge(p SubActivitiesPatch) SubActivities {
	s.Reading = s.Reading.Merge(p.Reading)
	s.Grammar = s.Grammar.Merge(p.Grammar)
	s.Writing = s.Writing.Merge(p.Writing)
	s.MathPractice = s.MathPractice.Merge(p.MathPractice)
	s.SciencePractice = s.SciencePractice.Merge(p.SciencePractice)
	s.SocialPractice = s.SocialPractice.Merge(p.SocialPractice)
	return s
}

// CompletedWork returns the work types of the completed blocks.
func (s SubActivities) CompletedWork() []string {
	work := make([]string, 0, 6)
	for _, b := range []struct {
		name string
		blk  Block
	}{
		{WorkReading, s.Reading},
		{WorkGrammar, s.Grammar},
		{WorkWriting, s.Writing},
		{WorkMathPractice, s.MathPractice},
		{WorkSciencePractice, s.SciencePractice},
		{WorkSocialPractice, s.SocialPractice},
	} {
		if b.blk.Completed {
			work = append(work, b.name)
		}
	}
	return work
}

// Value stores the blocks as a JSON document.
func (s SubActivities) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SubActivities) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = SubActivities{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.Errorf("study.SubActivities: cannot scan %T", src)
}

// Activity is what a student did for one subject on one (IST) day.
type Activity struct {
	ID            string        `json:"id" db:"id"`
	StudentID     string        `json:"student_id" db:"student_id"`
	SubjectID     string        `json:"subject_id" db:"subject_id"`
	LessonID      string        `json:"lesson_id,omitempty" db:"lesson_id"`
	DayKey        string        `json:"day_key" db:"day_key"`
	SubActivities SubActivities `json:"sub_activities" db:"sub_activities"`
	Confidence    int           `json:"confidence" db:"confidence"`
	TotalTime     int           `json:"total_time" db:"total_time"` // minutes
	CreatedAt     time.Time     `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"` // UTC
}

// Key identifies the merge target of an activity submission.
type Key struct {
	StudentID string
	SubjectID string
	DayKey    string
}

// NewActivity is a submission of a study session.
type NewActivity struct {
	SubjectID  string `json:"subject_id" validate:"required"`
	LessonID   string `json:"lesson_id"`
	SubActivitiesPatch
	Confidence *int `json:"confidence" validate:"omitempty,min=1,max=5"`
	TotalTime  *int `json:"total_time" validate:"omitempty,min=0"`
}

func (na *NewActivity) Clean() {
	na.SubjectID = cleanID(na.SubjectID)
	na.LessonID = cleanID(na.LessonID)
}

// Apply merges the submission into cur (the activity already recorded for the same key),
// or builds a new activity when cur is nil.
func (na NewActivity) Apply(cur *Activity, key Key, now time.Time) Activity {
	now = now.UTC()
	if cur == nil {
		act := Activity{
			ID:            uuid.NewString(),
			StudentID:     key.StudentID,
			SubjectID:     key.SubjectID,
			LessonID:      na.LessonID,
			DayKey:        key.DayKey,
			SubActivities: SubActivities{Writing: Block{Type: WritingQuestions}}.Merge(na.SubActivitiesPatch),
			Confidence:    DefaultConfidence,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if na.Confidence != nil {
			act.Confidence = *na.Confidence
		}
		if na.TotalTime != nil {
			act.TotalTime = *na.TotalTime
		}
		return act
	}

	act := *cur
	act.SubActivities = act.SubActivities.Merge(na.SubActivitiesPatch)
	if na.Confidence != nil {
		act.Confidence = *na.Confidence
	}
	if na.TotalTime != nil {
		act.TotalTime = *na.TotalTime
	}
	if na.LessonID != "" {
		act.LessonID = na.LessonID
	}
	act.UpdatedAt = now
	return act
}

// UpdateActivity defines what may be changed on an existing Activity.
type UpdateActivity struct {
	SubjectID string  `json:"subject_id"`
	LessonID  *string `json:"lesson_id"`
	SubActivitiesPatch
	Confidence *int `json:"confidence" validate:"omitempty,min=1,max=5"`
	TotalTime  *int `json:"total_time" validate:"omitempty,min=0"`
}

func (ua UpdateActivity) Apply(act Activity, now time.Time) Activity {
	if id := cleanID(ua.SubjectID); id != "" {
		act.SubjectID = id
	}
	if ua.LessonID != nil {
		act.LessonID = cleanID(*ua.LessonID)
	}
	act.SubActivities = act.SubActivities.Merge(ua.SubActivitiesPatch)
	if ua.Confidence != nil {
		act.Confidence = *ua.Confidence
	}
	if ua.TotalTime != nil {
		act.TotalTime = *ua.TotalTime
	}
	act.UpdatedAt = now.UTC()
	return act
}

// Filter narrows a listing of a student's activities. Empty fields are ignored.
type Filter struct {
	SubjectID string `query:"subject"`
	LessonID  string `query:"lesson"`
	DayKey    string `query:"date" validate:"omitempty,daykey"`
	Limit     int    `query:"limit" validate:"omitempty,min=0"`
}

func (f *Filter) Clean() {
	f.SubjectID = cleanID(f.SubjectID)
	f.LessonID = cleanID(f.LessonID)
	f.DayKey = cleanID(f.DayKey)
}
