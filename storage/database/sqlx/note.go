package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
)

const noteColumns = "id, owner_id, content, created_at, updated_at"

type noteRepository struct {
	db core.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db core.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.CreatedAt, n.UpdatedAt = dbTime(n.CreatedAt), dbTime(n.UpdatedAt)
	_, err := execQuery(ctx, repo.db,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?)",
		n.ID, n.OwnerID, n.Content, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, ownerID string) ([]note.Note, error) {
	notes := make([]note.Note, 0)
	err := selectRows(ctx, repo.db, &notes,
		"SELECT "+noteColumns+" FROM notes WHERE owner_id = ? ORDER BY created_at DESC, id DESC", ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	return notes, nil
}

func (repo noteRepository) GetNote(ctx context.Context, id string) (note.Note, error) {
	var n note.Note
	if err := getRow(ctx, repo.db, &n, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id); err != nil {
		return note.Note{}, trapNoRowsErr(err, note.ErrNotFound, "selecting note")
	}
	return n, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.UpdatedAt = dbTime(n.UpdatedAt)
	res, err := execQuery(ctx, repo.db, "UPDATE notes SET content = ?, updated_at = ? WHERE id = ?", n.Content, n.UpdatedAt, n.ID)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "updating note")
	}
	if err := mustAffect(res, note.ErrNotFound); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := execQuery(ctx, repo.db, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return mustAffect(res, note.ErrNotFound)
}
