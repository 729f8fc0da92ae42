package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.subjects {
		if strings.EqualFold(s.Name, subj.Name) {
			return subject.Subject{}, subject.ErrNameExists
		}
	}
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id string) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

func (repo *subjectRepository) GetSubjectByName(_ context.Context, name string) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.subjects {
		if strings.EqualFold(s.Name, name) {
			return *s, nil
		}
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[subj.ID]; !ok {
		return subject.Subject{}, subject.ErrSubjectNotFound
	}
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	for lid, l := range repo.db.lessons {
		if l.SubjectID == id {
			delete(repo.db.lessons, lid)
		}
	}
	return nil
}

// Lessons

func (repo *subjectRepository) CreateLesson(_ context.Context, lsn subject.Lesson) (subject.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *subjectRepository) QueryLessons(_ context.Context, filter subject.LessonFilter) ([]subject.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lessons := make([]subject.Lesson, 0, len(repo.db.lessons))
	for _, l := range repo.db.lessons {
		if filter.SubjectID != "" && l.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ActiveOnly && !l.IsActive {
			continue
		}
		lessons = append(lessons, *l)
	}
	sort.Slice(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		switch {
		case a.SubjectID != b.SubjectID:
			return a.SubjectID < b.SubjectID
		case a.ChapterNumber != b.ChapterNumber:
			return a.ChapterNumber < b.ChapterNumber
		}
		return a.Name < b.Name
	})
	return lessons, nil
}

func (repo *subjectRepository) GetLesson(_ context.Context, id string) (subject.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return *l, nil
	}
	return subject.Lesson{}, subject.ErrLessonNotFound
}

func (repo *subjectRepository) UpdateLesson(_ context.Context, lsn subject.Lesson) (subject.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[lsn.ID]; !ok {
		return subject.Lesson{}, subject.ErrLessonNotFound
	}
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *subjectRepository) DeleteLesson(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[id]; !ok {
		return subject.ErrLessonNotFound
	}
	delete(repo.db.lessons, id)
	return nil
}
