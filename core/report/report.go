// Package report aggregates the activity log into study statistics and admin performance views.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
)

// Periods
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

const (
	recentDays        = 7
	dailyWindowDays   = 30
	maxRecentEntries  = 20
	maxSubjectEntries = 10
	maxConcurrency    = 8
)

type (
	ActivitySource interface {
		AllActivities(ctx context.Context, studentID string) ([]study.Activity, error)
	}

	StreakSource interface {
		GetStreak(ctx context.Context, studentID string) (streak.Record, error)
	}

	ProgressSource interface {
		ListProgress(ctx context.Context, studentID string) ([]progress.Record, error)
	}

	SubjectSource interface {
		List(ctx context.Context) ([]subject.Subject, error)
	}

	Deps struct {
		Users      user.Service
		Activities ActivitySource
		Streaks    StreakSource
		Progress   ProgressSource
		Subjects   SubjectSource
		Validate   *validator.Validate
	}

	Service struct {
		Deps
	}
)

func NewService(deps Deps) *Service {
	return &Service{Deps: deps}
}

type (
	StatsQuery struct {
		Period string `query:"period" validate:"omitempty,oneof=week month year"`
	}

	SubjectStats struct {
		SubjectID         string     `json:"subject_id"`
		SubjectName       string     `json:"subject_name"`
		TotalTime         int        `json:"total_time"`
		Entries           int        `json:"entries"`
		AverageConfidence float64    `json:"average_confidence"`
		LastStudied       *time.Time `json:"last_studied"`
	}

	WorkTypeStats struct {
		WorkType  string `json:"work_type"`
		TotalTime int    `json:"total_time"`
		Entries   int    `json:"entries"`
	}

	Stats struct {
		Period            string          `json:"period"`
		From              time.Time       `json:"from"`
		TotalStudyTime    int             `json:"total_study_time"`
		TotalEntries      int             `json:"total_entries"`
		AverageConfidence float64         `json:"average_confidence"`
		BySubject         []SubjectStats  `json:"study_by_subject"`
		ByWorkType        []WorkTypeStats `json:"study_by_work_type"`
	}
)

// PeriodStart returns the first instant counted in period, an IST midnight.
func PeriodStart(period string, now time.Time) time.Time {
	start := timezone.StartOfDay(now)
	switch period {
	case PeriodMonth:
		return start.AddDate(0, -1, 0)
	case PeriodYear:
		return start.AddDate(-1, 0, 0)
	default:
		return timezone.AddDays(start, -recentDays)
	}
}

// Stats aggregates the student's activities created within period.
func (svc *Service) Stats(ctx context.Context, studentID string, q StatsQuery, now time.Time) (Stats, error) {
	if svc.Validate != nil {
		if err := svc.Validate.Struct(q); err != nil {
			return Stats{}, err
		}
	}
	if q.Period == "" {
		q.Period = PeriodWeek
	}
	acts, err := svc.Activities.AllActivities(ctx, studentID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "loading activities")
	}
	names, err := svc.subjectNames(ctx)
	if err != nil {
		return Stats{}, err
	}

	from := PeriodStart(q.Period, now)
	acts = lo.Filter(acts, func(a study.Activity, _ int) bool { return !a.CreatedAt.Before(from) })
	return Stats{
		Period:            q.Period,
		From:              from,
		TotalStudyTime:    totalTime(acts),
		TotalEntries:      len(acts),
		AverageConfidence: averageConfidence(acts),
		BySubject:         bySubject(acts, names),
		ByWorkType:        byWorkType(acts),
	}, nil
}

func (svc *Service) subjectNames(ctx context.Context) (map[string]string, error) {
	if svc.Subjects == nil {
		return map[string]string{}, nil
	}
	subjects, err := svc.Subjects.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing subjects")
	}
	return lo.SliceToMap(subjects, func(s subject.Subject) (string, string) { return s.ID, s.Name }), nil
}

func totalTime(acts []study.Activity) int {
	return lo.SumBy(acts, func(a study.Activity) int { return a.TotalTime })
}

func averageConfidence(acts []study.Activity) float64 {
	if len(acts) == 0 {
		return 0
	}
	return round1(float64(lo.SumBy(acts, func(a study.Activity) int { return a.Confidence })) / float64(len(acts)))
}

// bySubject expects acts newest first; subjects are returned by total time, most studied first.
func bySubject(acts []study.Activity, names map[string]string) []SubjectStats {
	groups := lo.GroupBy(acts, func(a study.Activity) string { return a.SubjectID })
	stats := make([]SubjectStats, 0, len(groups))
	for id, group := range groups {
		last := lo.MaxBy(group, func(a, b study.Activity) bool { return a.CreatedAt.After(b.CreatedAt) }).CreatedAt
		stats = append(stats, SubjectStats{
			SubjectID:         id,
			SubjectName:       names[id],
			TotalTime:         totalTime(group),
			Entries:           len(group),
			AverageConfidence: averageConfidence(group),
			LastStudied:       &last,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalTime != stats[j].TotalTime {
			return stats[i].TotalTime > stats[j].TotalTime
		}
		return stats[i].SubjectID < stats[j].SubjectID
	})
	return stats
}

// byWorkType counts every completed block; an activity's time is credited to each of its work types.
func byWorkType(acts []study.Activity) []WorkTypeStats {
	index := map[string]int{}
	stats := make([]WorkTypeStats, 0)
	for _, act := range acts {
		for _, wt := range act.SubActivities.CompletedWork() {
			i, ok := index[wt]
			if !ok {
				i = len(stats)
				index[wt] = i
				stats = append(stats, WorkTypeStats{WorkType: wt})
			}
			stats[i].TotalTime += act.TotalTime
			stats[i].Entries++
		}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalTime > stats[j].TotalTime })
	return stats
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Admin performance

type (
	StudentInfo struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Email      string     `json:"email"`
		JoinedDate time.Time  `json:"joined_date"`
		LastLogin  *time.Time `json:"last_login"`
	}

	Performance struct {
		TotalStudyTime    int        `json:"total_study_time"`
		TotalEntries      int        `json:"total_entries"`
		AverageConfidence float64    `json:"average_confidence"`
		CurrentStreak     int        `json:"current_streak"`
		LongestStreak     int        `json:"longest_streak"`
		TotalStudyDays    int        `json:"total_study_days"`
		RecentActivity    int        `json:"recent_activity"`
		LastStudyDate     *time.Time `json:"last_study_date"`
	}

	StudentPerformance struct {
		Student            StudentInfo      `json:"student"`
		Performance        Performance      `json:"performance"`
		SubjectPerformance []SubjectStats   `json:"subject_performance"`
		RecentEntries      []study.Activity `json:"recent_entries"`
		ProgressData       int              `json:"progress_data"`
	}

	Summary struct {
		TotalStudents     int     `json:"total_students"`
		TotalStudyTime    int     `json:"total_study_time"`
		TotalEntries      int     `json:"total_entries"`
		AverageConfidence float64 `json:"average_confidence"`
	}

	PerformanceReport struct {
		Students []StudentPerformance `json:"students"`
		Summary  Summary              `json:"summary"`
	}

	DayActivity struct {
		Date      string   `json:"date"` // IST day key
		TotalTime int      `json:"total_time"`
		Entries   int      `json:"entries"`
		Subjects  []string `json:"subjects"`
	}

	SubjectDetail struct {
		SubjectStats
		Subject subject.Subject  `json:"subject"`
		Recent  []study.Activity `json:"entries"`
	}

	StudentDetail struct {
		Student        StudentInfo      `json:"student"`
		Performance    Performance      `json:"performance"`
		DailyActivity  []DayActivity    `json:"daily_activity"`
		SubjectDetails []SubjectDetail  `json:"subject_details"`
		RecentEntries  []study.Activity `json:"recent_entries"`
		ProgressData   int              `json:"progress_data"`
	}
)

func studentInfo(usr user.User) StudentInfo {
	return StudentInfo{ID: usr.ID, Name: usr.Name, Email: usr.Email, JoinedDate: usr.CreatedAt, LastLogin: usr.LastLogin}
}

type studentData struct {
	acts     []study.Activity
	streak   streak.Record
	progress int
}

func (svc *Service) load(ctx context.Context, studentID string) (studentData, error) {
	var data studentData
	acts, err := svc.Activities.AllActivities(ctx, studentID)
	if err != nil {
		return data, errors.Wrap(err, "loading activities")
	}
	data.acts = acts

	rec, err := svc.Streaks.GetStreak(ctx, studentID)
	switch {
	case core.IsNotFound(err):
	case err != nil:
		return data, errors.Wrap(err, "loading streak")
	default:
		data.streak = rec
	}

	if svc.Progress != nil {
		recs, err := svc.Progress.ListProgress(ctx, studentID)
		if err != nil {
			return data, errors.Wrap(err, "loading progress")
		}
		data.progress = len(recs)
	}
	return data, nil
}

func performance(data studentData, now time.Time) Performance {
	since := now.AddDate(0, 0, -recentDays)
	perf := Performance{
		TotalStudyTime:    totalTime(data.acts),
		TotalEntries:      len(data.acts),
		AverageConfidence: averageConfidence(data.acts),
		CurrentStreak:     data.streak.CurrentStreak,
		LongestStreak:     data.streak.LongestStreak,
		TotalStudyDays:    data.streak.TotalStudyDays,
		RecentActivity:    lo.CountBy(data.acts, func(a study.Activity) bool { return !a.CreatedAt.Before(since) }),
	}
	if len(data.acts) > 0 {
		last := data.acts[0].CreatedAt
		perf.LastStudyDate = &last
	}
	return perf
}

// Performance reports every student, most studied first.
func (svc *Service) Performance(ctx context.Context, now time.Time) (PerformanceReport, error) {
	students, err := svc.Users.Query(ctx, user.QueryFilter{Roles: user.StudentRoles}, nil)
	if err != nil {
		return PerformanceReport{}, errors.Wrap(err, "listing students")
	}
	names, err := svc.subjectNames(ctx)
	if err != nil {
		return PerformanceReport{}, err
	}

	rows := make([]StudentPerformance, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, usr := range students {
		i, usr := i, usr
		g.Go(func() error {
			data, err := svc.load(gctx, usr.ID)
			if err != nil {
				return errors.Wrapf(err, "student %s", usr.ID)
			}
			row := StudentPerformance{
				Student:            studentInfo(usr),
				Performance:        performance(data, now),
				SubjectPerformance: bySubject(data.acts, names),
				RecentEntries:      head(recent(data.acts, now), 5),
				ProgressData:       data.progress,
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PerformanceReport{}, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Performance.TotalStudyTime > rows[j].Performance.TotalStudyTime
	})
	return PerformanceReport{Students: rows, Summary: summarize(rows)}, nil
}

func summarize(rows []StudentPerformance) Summary {
	sum := Summary{
		TotalStudents:  len(rows),
		TotalStudyTime: lo.SumBy(rows, func(r StudentPerformance) int { return r.Performance.TotalStudyTime }),
		TotalEntries:   lo.SumBy(rows, func(r StudentPerformance) int { return r.Performance.TotalEntries }),
	}
	if len(rows) > 0 {
		confSum := lo.SumBy(rows, func(r StudentPerformance) float64 { return r.Performance.AverageConfidence })
		sum.AverageConfidence = round1(confSum / float64(len(rows)))
	}
	return sum
}

// StudentDetail is the detailed performance of one student.
func (svc *Service) StudentDetail(ctx context.Context, studentID string, now time.Time) (StudentDetail, error) {
	usr, err := svc.Users.GetByID(ctx, studentID)
	if err != nil {
		return StudentDetail{}, err
	}
	data, err := svc.load(ctx, usr.ID)
	if err != nil {
		return StudentDetail{}, err
	}

	var subjects []subject.Subject
	if svc.Subjects != nil {
		if subjects, err = svc.Subjects.List(ctx); err != nil {
			return StudentDetail{}, errors.Wrap(err, "listing subjects")
		}
	}
	names := lo.SliceToMap(subjects, func(s subject.Subject) (string, string) { return s.ID, s.Name })

	return StudentDetail{
		Student:        studentInfo(usr),
		Performance:    performance(data, now),
		DailyActivity:  dailyActivity(data.acts, names, now),
		SubjectDetails: subjectDetails(data.acts, subjects),
		RecentEntries:  head(data.acts, maxRecentEntries),
		ProgressData:   data.progress,
	}, nil
}

// dailyActivity buckets the last 30 days of activities per IST day, newest first.
func dailyActivity(acts []study.Activity, names map[string]string, now time.Time) []DayActivity {
	from := timezone.AddDays(now, -dailyWindowDays)
	acts = lo.Filter(acts, func(a study.Activity, _ int) bool { return !a.CreatedAt.Before(from) })

	days := make([]DayActivity, 0)
	for key, group := range streak.GroupByDay(acts) {
		subjects := lo.Uniq(lo.Map(group, func(a study.Activity, _ int) string {
			if name, ok := names[a.SubjectID]; ok {
				return name
			}
			return a.SubjectID
		}))
		days = append(days, DayActivity{Date: key, TotalTime: totalTime(group), Entries: len(group), Subjects: subjects})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}

func subjectDetails(acts []study.Activity, subjects []subject.Subject) []SubjectDetail {
	groups := lo.GroupBy(acts, func(a study.Activity) string { return a.SubjectID })
	details := make([]SubjectDetail, 0, len(subjects))
	for _, subj := range subjects {
		group := groups[subj.ID]
		d := SubjectDetail{
			SubjectStats: SubjectStats{
				SubjectID:         subj.ID,
				SubjectName:       subj.Name,
				TotalTime:         totalTime(group),
				Entries:           len(group),
				AverageConfidence: averageConfidence(group),
			},
			Subject: subj,
			Recent:  head(group, maxSubjectEntries),
		}
		if len(group) > 0 {
			last := group[0].CreatedAt
			d.LastStudied = &last
		}
		details = append(details, d)
	}
	return details
}

func recent(acts []study.Activity, now time.Time) []study.Activity {
	since := now.AddDate(0, 0, -recentDays)
	return lo.Filter(acts, func(a study.Activity, _ int) bool { return !a.CreatedAt.Before(since) })
}

func head(acts []study.Activity, n int) []study.Activity {
	if acts == nil {
		return []study.Activity{}
	}
	if len(acts) > n {
		return acts[:n]
	}
	return acts
}
