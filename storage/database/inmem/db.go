// Package inmemdb implements the repositories in memory. Data is lost when the process exits.
package inmemdb

import (
	"sync"

	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
)

type (
	DB struct {
		user        *userTable
		subject     *subjectTable
		study       *studyTable
		streak      *streakTable
		progress    *progressTable
		achievement *achievementTable
		note        *noteTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	subjectTable struct {
		subjects map[string]*subject.Subject
		lessons  map[string]*subject.Lesson
		mutex    sync.RWMutex
	}

	studyTable struct {
		table map[string]*study.Activity
		keys  map[study.Key]string // -> activity ID
		mutex sync.RWMutex
	}

	streakTable struct {
		table map[string]*streak.Record
		mutex sync.RWMutex
	}

	progressTable struct {
		table map[string]*progress.Record // student ID + "/" + lesson ID
		mutex sync.RWMutex
	}

	achievementTable struct {
		table map[string][]achievement.Achievement
		mutex sync.RWMutex
	}

	noteTable struct {
		table map[string]*note.Note
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		subject:     &subjectTable{subjects: make(map[string]*subject.Subject), lessons: make(map[string]*subject.Lesson)},
		study:       &studyTable{table: make(map[string]*study.Activity), keys: make(map[study.Key]string)},
		streak:      &streakTable{table: make(map[string]*streak.Record)},
		progress:    &progressTable{table: make(map[string]*progress.Record)},
		achievement: &achievementTable{table: make(map[string][]achievement.Achievement)},
		note:        &noteTable{table: make(map[string]*note.Note)},
	}
}
