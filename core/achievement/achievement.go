// Package achievement awards one-time badges for streaks, study days and subject mastery.
package achievement

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	TypeStreak7   = "streak_7"
	TypeStreak30  = "streak_30"
	TypeCentury   = "century"
	subjectMaster = "subject_master_"

	// MasteredLessonsPerSubject is the number of lessons at mastery level 4 or more
	// that earns the subject master badge.
	MasteredLessonsPerSubject = 10
)

var descriptions = map[string]string{
	TypeStreak7:   "7 Day Streak! 🔥",
	TypeStreak30:  "30 Day Streak! 🏆",
	TypeCentury:   "100 Study Days! 💯",
	subjectMaster: "Subject Master! 🎓",
}

type Achievement struct {
	StudentID   string    `json:"-" db:"student_id"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	EarnedAt    time.Time `json:"earned_at" db:"earned_at"` // UTC
}

// Stats is what the rules are evaluated against.
type Stats struct {
	CurrentStreak     int
	TotalStudyDays    int
	MasteredBySubject map[string]int // subject ID -> lessons with mastery >= 4
}

func SubjectMasterType(subjectID string) string {
	return subjectMaster + subjectID
}

// IsSubjectMaster reports whether typ is a subject master badge, and for which subject.
func IsSubjectMaster(typ string) (string, bool) {
	if !strings.HasPrefix(typ, subjectMaster) {
		return "", false
	}
	return strings.TrimPrefix(typ, subjectMaster), true
}

func newAchievement(typ string, now time.Time) Achievement {
	desc := descriptions[typ]
	if _, ok := IsSubjectMaster(typ); ok {
		desc = descriptions[subjectMaster]
	}
	return Achievement{Type: typ, Description: desc, EarnedAt: now.UTC()}
}

// Evaluate returns the achievements stats qualify for that are not in earned (keyed by type).
// The order is stable: streak badges, century, then subject badges by subject ID.
func Evaluate(stats Stats, earned map[string]bool, now time.Time) []Achievement {
	var achs []Achievement
	award := func(typ string) {
		if !earned[typ] {
			achs = append(achs, newAchievement(typ, now))
		}
	}

	if stats.CurrentStreak >= 7 {
		award(TypeStreak7)
	}
	if stats.CurrentStreak >= 30 {
		award(TypeStreak30)
	}
	if stats.TotalStudyDays >= 100 {
		award(TypeCentury)
	}

	subjects := make([]string, 0, len(stats.MasteredBySubject))
	for id, cnt := range stats.MasteredBySubject {
		if cnt >= MasteredLessonsPerSubject {
			subjects = append(subjects, id)
		}
	}
	sort.Strings(subjects)
	for _, id := range subjects {
		award(SubjectMasterType(id))
	}
	return achs
}

type (
	Repository interface {
		// ListAchievements returns the student's achievements, oldest first.
		ListAchievements(ctx context.Context, studentID string) ([]Achievement, error)
		// AddAchievements appends achievements, ignoring types the student already earned,
		// and returns the ones actually stored.
		AddAchievements(ctx context.Context, studentID string, achs []Achievement) ([]Achievement, error)
	}

	MasteryCounter interface {
		MasteredBySubject(ctx context.Context, studentID string) (map[string]int, error)
	}

	Notifier struct {
		repo    Repository
		mastery MasteryCounter
	}
)

func NewNotifier(repo Repository, mastery MasteryCounter) *Notifier {
	return &Notifier{repo: repo, mastery: mastery}
}

func (n *Notifier) List(ctx context.Context, studentID string) ([]Achievement, error) {
	return n.repo.ListAchievements(ctx, studentID)
}

// Check awards the achievements the student newly qualifies for and returns them.
// MasteredBySubject is loaded when stats does not carry it.
func (n *Notifier) Check(ctx context.Context, studentID string, stats Stats, now time.Time) ([]Achievement, error) {
	if stats.MasteredBySubject == nil && n.mastery != nil {
		mastered, err := n.mastery.MasteredBySubject(ctx, studentID)
		if err != nil {
			return nil, errors.Wrap(err, "counting mastered lessons")
		}
		stats.MasteredBySubject = mastered
	}

	existing, err := n.repo.ListAchievements(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing achievements")
	}
	earned := make(map[string]bool, len(existing))
	for _, a := range existing {
		earned[a.Type] = true
	}

	achs := Evaluate(stats, earned, now)
	if len(achs) == 0 {
		return nil, nil
	}
	for i := range achs {
		achs[i].StudentID = studentID
	}
	added, err := n.repo.AddAchievements(ctx, studentID, achs)
	if err != nil {
		return nil, errors.Wrap(err, "adding achievements")
	}
	return added, nil
}
