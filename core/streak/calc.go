package streak

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

// dayOf returns the IST day key an activity belongs to.
func dayOf(act study.Activity) string {
	if act.DayKey != "" {
		return act.DayKey
	}
	return timezone.DayKey(act.CreatedAt)
}

// GroupByDay buckets activities by IST day key.
func GroupByDay(acts []study.Activity) map[string][]study.Activity {
	return lo.GroupBy(acts, dayOf)
}

// CurrentStreak counts consecutive study days ending at the anchor day:
// today if studied, else yesterday if studied, else the most recent study day when it is
// at most one day old. Any longer gap means no current streak.
func CurrentStreak(days map[string][]study.Activity, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	has := func(d time.Time) bool {
		_, ok := days[timezone.DayKey(d)]
		return ok
	}

	today := timezone.StartOfDay(now)
	yesterday := timezone.AddDays(today, -1)
	var anchor time.Time
	switch {
	case has(today):
		anchor = today
	case has(yesterday):
		anchor = yesterday
	default:
		keys := lo.Keys(days)
		sort.Strings(keys)
		latest, err := timezone.ParseDayKey(keys[len(keys)-1])
		if err != nil || timezone.DaysBetween(latest, today) > 1 {
			return 0
		}
		anchor = latest
	}

	streak := 0
	for d := anchor; has(d); d = timezone.AddDays(d, -1) {
		streak++
	}
	return streak
}

// BuildCalendar produces one CalendarDay per IST day, newest first.
func BuildCalendar(acts []study.Activity) Calendar {
	byDay := GroupByDay(acts)
	cal := make(Calendar, 0, len(byDay))
	for key, dayActs := range byDay {
		cal = append(cal, buildDay(key, dayActs))
	}
	sort.Slice(cal, func(i, j int) bool { return cal[i].Key > cal[j].Key })
	return cal
}

func buildDay(key string, acts []study.Activity) CalendarDay {
	date, err := timezone.ParseDayKey(key)
	if err != nil && len(acts) > 0 {
		date = timezone.StartOfDay(acts[0].CreatedAt)
	}

	// keep the subjects in the order the activities come in (newest first)
	subjects := lo.Uniq(lo.Map(acts, func(a study.Activity, _ int) string { return a.SubjectID }))
	lessons := lo.Uniq(lo.FilterMap(acts, func(a study.Activity, _ int) (string, bool) {
		return a.LessonID, a.LessonID != ""
	}))
	return CalendarDay{
		Date:            date,
		Key:             key,
		SubjectsStudied: subjects,
		LessonsStudied:  lessons,
		TotalTime:       lo.SumBy(acts, func(a study.Activity) int { return a.TotalTime }),
		Confidence:      lo.Max(lo.Map(acts, func(a study.Activity, _ int) int { return a.Confidence })),
	}
}

// Compute derives a student's streak record from the activity history.
// The current streak only looks at the last windowDays calendar days; the calendar and the
// study day count cover the whole history. prev provides the longest streak so far.
func Compute(prev Record, history []study.Activity, now time.Time, windowDays int) Record {
	from := timezone.AddDays(now, -windowDays)
	recent := lo.Filter(history, func(a study.Activity, _ int) bool { return !a.CreatedAt.Before(from) })

	rec := Record{
		StudentID:    prev.StudentID,
		Calendar:     BuildCalendar(history),
		Achievements: prev.Achievements,
	}
	rec.CurrentStreak = CurrentStreak(GroupByDay(recent), now)
	rec.LongestStreak = lo.Max([]int{prev.LongestStreak, rec.CurrentStreak})
	rec.TotalStudyDays = len(rec.Calendar)

	if len(recent) > 0 {
		last := lo.MaxBy(recent, func(a, b study.Activity) bool { return a.CreatedAt.After(b.CreatedAt) }).CreatedAt.UTC()
		rec.LastStudyDate = &last
	}
	return rec
}

// mergeToday replaces today's calendar entry with one built from today's activities.
func mergeToday(rec Record, today []study.Activity, now time.Time) Record {
	key := timezone.DayKey(now)
	todays := lo.Filter(today, func(a study.Activity, _ int) bool { return dayOf(a) == key })
	byKey := lo.SliceToMap(rec.Calendar, func(d CalendarDay) (string, CalendarDay) { return d.Key, d })
	if len(todays) == 0 {
		return rec
	}
	byKey[key] = buildDay(key, todays)

	cal := lo.Values(byKey)
	sort.Slice(cal, func(i, j int) bool { return cal[i].Key > cal[j].Key })
	rec.Calendar = cal
	rec.TotalStudyDays = len(cal)

	last := lo.MaxBy(todays, func(a, b study.Activity) bool { return a.CreatedAt.After(b.CreatedAt) }).CreatedAt.UTC()
	if rec.LastStudyDate == nil || last.After(*rec.LastStudyDate) {
		rec.LastStudyDate = &last
	}
	return rec
}
