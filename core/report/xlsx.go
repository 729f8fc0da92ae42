package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const performanceSheet = "Sheet1"

var performanceHeader = []interface{}{
	"Name", "Email", "Joined", "Last Login",
	"Total Study Time (min)", "Entries", "Avg Confidence",
	"Current Streak", "Longest Streak", "Study Days", "Last 7 Days", "Last Study Date", "Lessons Tracked",
}

// WriteXLSX writes one row per student of rep, followed by a totals row.
func WriteXLSX(w io.Writer, rep PerformanceReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(performanceSheet, "A1", &performanceHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, row := range rep.Students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Student.Name,
			row.Student.Email,
			timezone.DayKey(row.Student.JoinedDate),
			"",
			row.Performance.TotalStudyTime,
			row.Performance.TotalEntries,
			row.Performance.AverageConfidence,
			row.Performance.CurrentStreak,
			row.Performance.LongestStreak,
			row.Performance.TotalStudyDays,
			row.Performance.RecentActivity,
			"",
			row.ProgressData,
		}
		if row.Student.LastLogin != nil {
			values[3] = timezone.DayKey(*row.Student.LastLogin)
		}
		if row.Performance.LastStudyDate != nil {
			values[11] = timezone.DayKey(*row.Performance.LastStudyDate)
		}
		if err := f.SetSheetRow(performanceSheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rep.Students)+2)
	if err != nil {
		return err
	}
	totals := []interface{}{
		"Total", rep.Summary.TotalStudents, "", "",
		rep.Summary.TotalStudyTime, rep.Summary.TotalEntries, rep.Summary.AverageConfidence,
	}
	if err := f.SetSheetRow(performanceSheet, cell, &totals); err != nil {
		return errors.Wrap(err, "writing totals")
	}
	return f.Write(w)
}
