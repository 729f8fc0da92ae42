package subject_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestService_ImportLessons(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	maths, err := svc.Create(ctx, subject.NewSubject{Name: "Maths", TotalMarks: 100})
	require.NoError(t, err)
	_, err = svc.CreateLesson(ctx, subject.NewLesson{SubjectID: maths.ID, Name: "Algebra", ChapterNumber: 1}, "admin")
	require.NoError(t, err)

	buf := workbook(t, [][]interface{}{
		{"Subject", "Lesson", "Chapter", "Description"},
		{"maths", "Geometry", 2, "Shapes"},
		{"Maths", "algebra", 1, ""},
		{"History", "Rome", 1, ""},
		{"Maths", "Trigonometry", "three", ""},
		{},
		{"Maths", "Statistics", "", ""},
	})

	res, err := svc.ImportLessons(ctx, buf, "", "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 2)

	lessons, err := svc.ListLessons(ctx, subject.LessonFilter{SubjectID: maths.ID})
	require.NoError(t, err)
	names := make([]string, 0, len(lessons))
	for _, l := range lessons {
		names = append(names, l.Name)
	}
	assert.ElementsMatch(t, []string{"Algebra", "Geometry", "Statistics"}, names)
}

func TestService_ImportLessons_badWorkbook(t *testing.T) {
	_, err := newService().ImportLessons(context.Background(), bytes.NewBufferString("not a workbook"), "", "admin")
	assert.Error(t, err)
}
