package subject

import (
	"time"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

const (
	DefaultColor = "#3B82F6"
	DefaultIcon  = "📚"
)

var (
	ErrSubjectNotFound = errors.Wrap(core.ErrNotFound, "subject")
	ErrLessonNotFound  = errors.Wrap(core.ErrNotFound, "lesson")
	ErrNameExists      = errors.New("a subject with this name already exists")
)

type Subject struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	TotalMarks  int       `json:"total_marks" db:"total_marks"`
	Color       string    `json:"color" db:"color"`
	Icon        string    `json:"icon" db:"icon"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	TotalMarks  int    `json:"total_marks" validate:"required,min=1"`
	Color       string `json:"color" validate:"omitempty,hexcolor_"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Color = core.CleanString(ns.Color)
	ns.Icon = core.CleanString(ns.Icon)
	ns.Description = core.CleanString(ns.Description)
}

// UpdateSubject defines what may be changed on a Subject. Empty fields are left untouched.
type UpdateSubject struct {
	Name        string  `json:"name"`
	TotalMarks  int     `json:"total_marks" validate:"omitempty,min=1"`
	Color       string  `json:"color" validate:"omitempty,hexcolor_"`
	Icon        string  `json:"icon"`
	Description *string `json:"description"`
}

type Lesson struct {
	ID            string    `json:"id" db:"id"`
	SubjectID     string    `json:"subject_id" db:"subject_id"`
	Name          string    `json:"name" db:"name"`
	ChapterNumber int       `json:"chapter_number" db:"chapter_number"`
	Description   string    `json:"description" db:"description"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type NewLesson struct {
	SubjectID     string `json:"subject_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	ChapterNumber int    `json:"chapter_number" validate:"omitempty,min=0"`
	Description   string `json:"description"`
}

func (nl *NewLesson) Clean() {
	nl.SubjectID = core.CleanString(nl.SubjectID)
	nl.Name = core.CleanString(nl.Name)
	nl.Description = core.CleanString(nl.Description)
}

type UpdateLesson struct {
	SubjectID     string  `json:"subject_id"`
	Name          string  `json:"name"`
	ChapterNumber *int    `json:"chapter_number" validate:"omitempty,min=0"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// LessonFilter narrows lesson listings. Empty fields are ignored.
type LessonFilter struct {
	SubjectID  string `query:"subject"`
	ActiveOnly bool   `query:"active"`
}

// SubjectLessons is a subject with its lessons ordered by chapter.
type SubjectLessons struct {
	Subject
	Lessons []Lesson `json:"lessons"`
}

// Defaults are the 10th class subjects.
var Defaults = []NewSubject{
	{Name: "Telugu", TotalMarks: 100, Color: "#EF4444", Icon: "📖", Description: "Telugu Language and Literature"},
	{Name: "Hindi", TotalMarks: 100, Color: "#F97316", Icon: "📚", Description: "Hindi Language and Literature"},
	{Name: "English", TotalMarks: 100, Color: "#3B82F6", Icon: "📝", Description: "English Language and Literature"},
	{Name: "Maths", TotalMarks: 100, Color: "#8B5CF6", Icon: "🔢", Description: "Mathematics"},
	{Name: "Social Studies", TotalMarks: 100, Color: "#10B981", Icon: "🌍", Description: "History, Geography, Civics, Economics"},
	{Name: "Biology", TotalMarks: 50, Color: "#8B5CF6", Icon: "🧬", Description: "Life Sciences and Biology"},
	{Name: "Physical Science", TotalMarks: 50, Color: "#06B6D4", Icon: "⚗️", Description: "Physics and Chemistry"},
}
