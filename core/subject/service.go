package subject

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		// QuerySubjects returns all subjects ordered by name.
		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		GetSubjectByName(ctx context.Context, name string) (Subject, error)
		UpdateSubject(ctx context.Context, subj Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error

		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// QueryLessons returns lessons ordered by subject and chapter number.
		QueryLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkName(ctx context.Context, name, exclID string) error {
	subj, err := svc.repo.GetSubjectByName(ctx, name)
	switch {
	case core.IsNotFound(err):
		return nil
	case err != nil:
		return errors.Wrap(err, "checking subject name")
	case subj.ID != exclID:
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Subject{}, err
	}
	if err := svc.checkName(ctx, ns.Name, ""); err != nil {
		return Subject{}, err
	}

	now := time.Now().UTC()
	subj := Subject{
		ID:          uuid.NewString(),
		Name:        ns.Name,
		TotalMarks:  ns.TotalMarks,
		Color:       ns.Color,
		Icon:        ns.Icon,
		Description: ns.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if subj.Color == "" {
		subj.Color = DefaultColor
	}
	if subj.Icon == "" {
		subj.Icon = DefaultIcon
	}
	return svc.repo.CreateSubject(ctx, subj)
}

// InitDefaults creates the missing default subjects and returns all of them.
func (svc *Service) InitDefaults(ctx context.Context) ([]Subject, error) {
	subjects := make([]Subject, 0, len(Defaults))
	for _, ns := range Defaults {
		subj, err := svc.repo.GetSubjectByName(ctx, ns.Name)
		if core.IsNotFound(err) {
			subj, err = svc.Create(ctx, ns)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "initializing subject %q", ns.Name)
		}
		subjects = append(subjects, subj)
	}
	return subjects, nil
}

func (svc *Service) List(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, core.CleanString(id))
}

func (svc *Service) GetByName(ctx context.Context, name string) (Subject, error) {
	return svc.repo.GetSubjectByName(ctx, core.CleanString(name))
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	if err := svc.validate.Struct(us); err != nil {
		return Subject{}, err
	}
	subj, err := svc.Get(ctx, id)
	if err != nil {
		return Subject{}, err
	}

	if name := core.CleanString(us.Name); name != "" && name != subj.Name {
		if err := svc.checkName(ctx, name, subj.ID); err != nil {
			return Subject{}, err
		}
		subj.Name = name
	}
	if us.TotalMarks > 0 {
		subj.TotalMarks = us.TotalMarks
	}
	if us.Color != "" {
		subj.Color = us.Color
	}
	if us.Icon != "" {
		subj.Icon = us.Icon
	}
	if us.Description != nil {
		subj.Description = core.CleanString(*us.Description)
	}
	subj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, subj)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	subj, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return svc.repo.DeleteSubject(ctx, subj.ID)
}

// Lessons

func (svc *Service) CreateLesson(ctx context.Context, nl NewLesson, createdBy string) (Lesson, error) {
	nl.Clean()
	if err := svc.validate.Struct(nl); err != nil {
		return Lesson{}, err
	}
	if _, err := svc.repo.GetSubject(ctx, nl.SubjectID); err != nil {
		if core.IsNotFound(err) {
			return Lesson{}, core.NewFieldError("subject_id", "subject not found")
		}
		return Lesson{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateLesson(ctx, Lesson{
		ID:            uuid.NewString(),
		SubjectID:     nl.SubjectID,
		Name:          nl.Name,
		ChapterNumber: nl.ChapterNumber,
		Description:   nl.Description,
		IsActive:      true,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error) {
	filter.SubjectID = core.CleanString(filter.SubjectID)
	return svc.repo.QueryLessons(ctx, filter)
}

// LessonsBySubject groups the active lessons under their subjects.
func (svc *Service) LessonsBySubject(ctx context.Context) ([]SubjectLessons, error) {
	subjects, err := svc.repo.QuerySubjects(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := svc.repo.QueryLessons(ctx, LessonFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	bySubject := make(map[string][]Lesson, len(subjects))
	for _, lsn := range lessons {
		bySubject[lsn.SubjectID] = append(bySubject[lsn.SubjectID], lsn)
	}
	grouped := make([]SubjectLessons, 0, len(subjects))
	for _, subj := range subjects {
		lsns := bySubject[subj.ID]
		if lsns == nil {
			lsns = []Lesson{}
		}
		sort.SliceStable(lsns, func(i, j int) bool { return lsns[i].ChapterNumber < lsns[j].ChapterNumber })
		grouped = append(grouped, SubjectLessons{Subject: subj, Lessons: lsns})
	}
	return grouped, nil
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLesson(ctx, core.CleanString(id))
}

// FindLesson looks a lesson up by subject and (case-insensitive) name.
func (svc *Service) FindLesson(ctx context.Context, subjectID, name string) (Lesson, error) {
	lessons, err := svc.repo.QueryLessons(ctx, LessonFilter{SubjectID: subjectID})
	if err != nil {
		return Lesson{}, err
	}
	for _, lsn := range lessons {
		if strings.EqualFold(lsn.Name, core.CleanString(name)) {
			return lsn, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}

func (svc *Service) UpdateLesson(ctx context.Context, id string, ul UpdateLesson) (Lesson, error) {
	if err := svc.validate.Struct(ul); err != nil {
		return Lesson{}, err
	}
	lsn, err := svc.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}

	if sid := core.CleanString(ul.SubjectID); sid != "" && sid != lsn.SubjectID {
		if _, err := svc.repo.GetSubject(ctx, sid); err != nil {
			if core.IsNotFound(err) {
				return Lesson{}, core.NewFieldError("subject_id", "subject not found")
			}
			return Lesson{}, err
		}
		lsn.SubjectID = sid
	}
	if name := core.CleanString(ul.Name); name != "" {
		lsn.Name = name
	}
	if ul.ChapterNumber != nil {
		lsn.ChapterNumber = *ul.ChapterNumber
	}
	if ul.Description != nil {
		lsn.Description = core.CleanString(*ul.Description)
	}
	if ul.IsActive != nil {
		lsn.IsActive = *ul.IsActive
	}
	lsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, lsn)
}

func (svc *Service) DeleteLesson(ctx context.Context, id string) error {
	lsn, err := svc.GetLesson(ctx, id)
	if err != nil {
		return err
	}
	return svc.repo.DeleteLesson(ctx, lsn.ID)
}

// CheckLesson verifies that subjectID exists and, when given, that lessonID belongs to it.
func (svc *Service) CheckLesson(ctx context.Context, subjectID, lessonID string) error {
	if _, err := svc.repo.GetSubject(ctx, subjectID); err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldError("subject_id", "subject not found")
		}
		return err
	}
	if lessonID == "" {
		return nil
	}
	lsn, err := svc.repo.GetLesson(ctx, lessonID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldError("lesson_id", "lesson not found")
		}
		return err
	}
	if lsn.SubjectID != subjectID {
		return core.NewFieldError("lesson_id", "lesson does not belong to the subject")
	}
	return nil
}
