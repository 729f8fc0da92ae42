package subject

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

// ImportResult summarizes a lesson import.
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// ImportLessons creates lessons from the rows of an xlsx workbook.
// Columns are: subject name, lesson name, chapter number, description. The first row is a header.
// Lessons that already exist under their subject are skipped. Uses the first sheet when sheet is empty.
func (svc *Service) ImportLessons(ctx context.Context, r io.Reader, sheet, createdBy string) (ImportResult, error) {
	result := ImportResult{Errors: make([]string, 0)}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return result, errors.Wrapf(err, "reading sheet %q", sheet)
	}

	subjects := map[string]Subject{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		result.TotalProcessed++

		created, err := svc.importRow(ctx, row, subjects, createdBy)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

func (svc *Service) importRow(ctx context.Context, row []string, subjects map[string]Subject, createdBy string) (bool, error) {
	col := func(i int) string {
		if i < len(row) {
			return core.CleanString(row[i])
		}
		return ""
	}

	subjName := col(0)
	if subjName == "" {
		return false, errors.New("missing subject")
	}
	subj, ok := subjects[strings.ToLower(subjName)]
	if !ok {
		var err error
		if subj, err = svc.GetByName(ctx, subjName); err != nil {
			if core.IsNotFound(err) {
				return false, errors.Errorf("unknown subject %q", subjName)
			}
			return false, err
		}
		subjects[strings.ToLower(subjName)] = subj
	}

	nl := NewLesson{SubjectID: subj.ID, Name: col(1), Description: col(3)}
	if chapter := col(2); chapter != "" {
		n, err := strconv.Atoi(chapter)
		if err != nil {
			return false, errors.Errorf("invalid chapter number %q", chapter)
		}
		nl.ChapterNumber = n
	}

	_, err := svc.FindLesson(ctx, subj.ID, nl.Name)
	switch {
	case err == nil:
		return false, nil
	case !core.IsNotFound(err):
		return false, err
	}
	if _, err := svc.CreateLesson(ctx, nl, createdBy); err != nil {
		return false, err
	}
	return true, nil
}
