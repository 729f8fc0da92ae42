// Package container wires the repositories and services shared by the api and admin apps.
package container

import (
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/core/note"
	"github.com/shanmukhasaireddy13/study-tracker/core/progress"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/revision"
	"github.com/shanmukhasaireddy13/study-tracker/core/streak"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/tracking"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	emailsvc "github.com/shanmukhasaireddy13/study-tracker/services/email"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database"
	inmemdb "github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
	sqlxrepos "github.com/shanmukhasaireddy13/study-tracker/storage/database/sqlx"
)

type (
	Repositories struct {
		Users        user.Repository
		Subjects     subject.Repository
		Study        study.Repository
		Streaks      streak.Repository
		Achievements achievement.Repository
		Progress     progress.Repository
		Notes        note.Repository
	}

	Container struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Clock      core.Clock
		// DB is nil with the memory engine.
		DB    *sqlx.DB
		Repos Repositories

		MailSvc     core.EmailService
		UserSvc     user.Service
		SubjectSvc  *subject.Service
		TrackingSvc *tracking.Service
		ReportSvc   *report.Service
		NoteSvc     *note.Service
	}
)

// New opens the configured storage and builds every service on top of it.
// The caller owns the returned Container and must Close it.
func New(conf *core.Config, logger core.Logger) (*Container, error) {
	c := &Container{
		Conf:   conf,
		Logger: logger,
		Clock:  core.SystemClock,
	}

	c.Translator = core.NewTranslator()
	c.Validate = core.NewValidator(c.Translator)
	user.RegisterValidators(c.Validate, c.Translator)

	if err := c.openStorage(); err != nil {
		return nil, err
	}

	if conf.SendgridApiKey != "" {
		c.MailSvc = emailsvc.NewSendgridService(conf.SendgridApiKey, logger)
	} else {
		c.MailSvc = emailsvc.NewConsoleService(os.Stdout, logger)
	}

	c.UserSvc = user.NewService(c.Repos.Users, c.MailSvc)
	c.SubjectSvc = subject.NewService(c.Repos.Subjects, c.Validate)
	c.NoteSvc = note.NewService(c.Repos.Notes, c.Validate)

	tracker := progress.NewTracker(c.Repos.Progress)
	c.TrackingSvc = tracking.NewService(tracking.Deps{
		Study:        study.NewService(c.Repos.Study, c.SubjectSvc, c.Validate),
		Streaks:      streak.NewEngine(c.Repos.Streaks, c.Repos.Study, c.Repos.Achievements, conf.Study.StreakWindowDays),
		Progress:     tracker,
		Achievements: achievement.NewNotifier(c.Repos.Achievements, tracker),
		Planner:      revision.NewPlanner(c.Repos.Study, tracker, c.SubjectSvc, conf.Study.RevisionWindowDays),
		Clock:        c.Clock,
		Logger:       logger,
	})
	c.ReportSvc = report.NewService(report.Deps{
		Users:      c.UserSvc,
		Activities: c.Repos.Study,
		Streaks:    c.Repos.Streaks,
		Progress:   c.Repos.Progress,
		Subjects:   c.SubjectSvc,
		Validate:   c.Validate,
	})
	return c, nil
}

func (c *Container) openStorage() error {
	if c.Conf.Database.Engine == database.EngineMemory {
		db := inmemdb.Open()
		c.Repos = Repositories{
			Users:        inmemdb.NewUserRepository(db),
			Subjects:     inmemdb.NewSubjectRepository(db),
			Study:        inmemdb.NewStudyRepository(db),
			Streaks:      inmemdb.NewStreakRepository(db),
			Achievements: inmemdb.NewAchievementRepository(db),
			Progress:     inmemdb.NewProgressRepository(db),
			Notes:        inmemdb.NewNoteRepository(db),
		}
		return nil
	}

	db, err := database.Open(c.Conf)
	if err != nil {
		return errors.Wrap(err, "setting up database")
	}
	c.DB = db
	c.Repos = Repositories{
		Users:        sqlxrepos.NewUserRepository(db),
		Subjects:     sqlxrepos.NewSubjectRepository(db),
		Study:        sqlxrepos.NewStudyRepository(db),
		Streaks:      sqlxrepos.NewStreakRepository(db),
		Achievements: sqlxrepos.NewAchievementRepository(db),
		Progress:     sqlxrepos.NewProgressRepository(db),
		Notes:        sqlxrepos.NewNoteRepository(db),
	}
	return nil
}

// Close releases the database connection, if any.
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
