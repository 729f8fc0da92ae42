package note_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := note.NewService(inmemdb.NewNoteRepository(inmemdb.Open()), core.NewValidator(core.NewTranslator()))

	_, err := svc.Create(ctx, "s1", note.Input{Content: "   "})
	assert.True(t, core.IsValidation(err))

	n, err := svc.Create(ctx, "s1", note.Input{Content: " revise trigonometry "})
	require.NoError(t, err)
	assert.Equal(t, "revise trigonometry", n.Content)

	_, err = svc.Get(ctx, n.ID, "s2")
	assert.True(t, core.IsForbidden(err))
	_, err = svc.Get(ctx, "missing", "s1")
	assert.True(t, core.IsNotFound(err))

	n, err = svc.Update(ctx, n.ID, "s1", note.Input{Content: "revise sets"})
	require.NoError(t, err)
	assert.Equal(t, "revise sets", n.Content)
	_, err = svc.Update(ctx, n.ID, "s2", note.Input{Content: "mine now"})
	assert.True(t, core.IsForbidden(err))

	notes, err := svc.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	notes, err = svc.List(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.True(t, core.IsForbidden(svc.Delete(ctx, n.ID, "s2")))
	require.NoError(t, svc.Delete(ctx, n.ID, "s1"))
	assert.True(t, core.IsNotFound(svc.Delete(ctx, n.ID, "s1")))
}
