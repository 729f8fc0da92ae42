package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	sqlxrepos "github.com/shanmukhasaireddy13/study-tracker/storage/database/sqlx"
	testutil "github.com/shanmukhasaireddy13/study-tracker/tests"
)

func TestSubjectRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewSubjectRepository(testutil.PrepareDB(t))
	now := time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC)

	maths, err := repo.CreateSubject(ctx, subject.Subject{ID: "maths", Name: "Maths", TotalMarks: 100, Color: "#8B5CF6", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = repo.CreateSubject(ctx, subject.Subject{ID: "bio", Name: "Biology", TotalMarks: 50, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	got, err := repo.GetSubjectByName(ctx, "MATHS")
	require.NoError(t, err)
	assert.Equal(t, maths.ID, got.ID)
	_, err = repo.GetSubject(ctx, "nope")
	assert.True(t, core.IsNotFound(err))

	subjects, err := repo.QuerySubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Biology", subjects[0].Name)

	got.TotalMarks = 80
	_, err = repo.UpdateSubject(ctx, got)
	require.NoError(t, err)
	got, err = repo.GetSubject(ctx, "maths")
	require.NoError(t, err)
	assert.Equal(t, 80, got.TotalMarks)

	for i, name := range []string{"Sets", "Real Numbers"} {
		_, err = repo.CreateLesson(ctx, subject.Lesson{
			ID: name, SubjectID: "maths", Name: name, ChapterNumber: 2 - i, IsActive: i == 0, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}
	lessons, err := repo.QueryLessons(ctx, subject.LessonFilter{SubjectID: "maths"})
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Real Numbers", lessons[0].Name)

	active, err := repo.QueryLessons(ctx, subject.LessonFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sets", active[0].Name)

	lsn := active[0]
	lsn.Description = "Venn diagrams"
	_, err = repo.UpdateLesson(ctx, lsn)
	require.NoError(t, err)
	lsn, err = repo.GetLesson(ctx, "Sets")
	require.NoError(t, err)
	assert.Equal(t, "Venn diagrams", lsn.Description)

	require.NoError(t, repo.DeleteLesson(ctx, "Sets"))
	assert.True(t, core.IsNotFound(repo.DeleteLesson(ctx, "Sets")))

	require.NoError(t, repo.DeleteSubject(ctx, "maths"))
	_, err = repo.GetLesson(ctx, "Real Numbers")
	assert.True(t, core.IsNotFound(err))
}

func TestNoteRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewNoteRepository(testutil.PrepareDB(t))
	now := time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC)

	for i, content := range []string{"first", "second"} {
		at := now.Add(time.Duration(i) * time.Minute)
		_, err := repo.CreateNote(ctx, note.Note{ID: content, OwnerID: "s1", Content: content, CreatedAt: at, UpdatedAt: at})
		require.NoError(t, err)
	}
	notes, err := repo.QueryNotes(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].ID)

	n := notes[0]
	n.Content = "edited"
	_, err = repo.UpdateNote(ctx, n)
	require.NoError(t, err)
	n, err = repo.GetNote(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "edited", n.Content)

	require.NoError(t, repo.DeleteNote(ctx, "second"))
	_, err = repo.GetNote(ctx, "second")
	assert.True(t, core.IsNotFound(err))
}
