package note

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

var (
	ErrNotFound  = errors.Wrap(core.ErrNotFound, "note")
	ErrForbidden = errors.Wrap(core.ErrForbidden, "note belongs to another user")
)

type Note struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Input is the content of a new or updated note.
type Input struct {
	Content string `json:"content" validate:"required"`
}

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		// QueryNotes returns the owner's notes, newest first.
		QueryNotes(ctx context.Context, ownerID string) ([]Note, error)
		GetNote(ctx context.Context, id string) (Note, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
		DeleteNote(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ownerID string, in Input) (Note, error) {
	in.Content = core.CleanString(in.Content)
	if err := svc.validate.Struct(in); err != nil {
		return Note{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateNote(ctx, Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) List(ctx context.Context, ownerID string) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, ownerID)
}

func (svc *Service) Get(ctx context.Context, id, ownerID string) (Note, error) {
	n, err := svc.repo.GetNote(ctx, core.CleanString(id))
	if err != nil {
		return Note{}, err
	}
	if n.OwnerID != ownerID {
		return Note{}, ErrForbidden
	}
	return n, nil
}

func (svc *Service) Update(ctx context.Context, id, ownerID string, in Input) (Note, error) {
	in.Content = core.CleanString(in.Content)
	if err := svc.validate.Struct(in); err != nil {
		return Note{}, err
	}
	n, err := svc.Get(ctx, id, ownerID)
	if err != nil {
		return Note{}, err
	}
	n.Content = in.Content
	n.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNote(ctx, n)
}

func (svc *Service) Delete(ctx context.Context, id, ownerID string) error {
	n, err := svc.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	return svc.repo.DeleteNote(ctx, n.ID)
}
