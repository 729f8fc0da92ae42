package main

import (
	"log"
	"os"

	"github.com/shanmukhasaireddy13/study-tracker/apps/container"
	"github.com/shanmukhasaireddy13/study-tracker/core"
	logsvc "github.com/shanmukhasaireddy13/study-tracker/services/logger"
)

func main() {
	conf := core.Conf
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB & services
	c, err := container.New(conf, logger)
	if err != nil {
		logger.Fatal("setting up", err)
	}

	// start CLI
	cli := commandLine{
		db:         c.DB,
		usrSvc:     c.UserSvc,
		subjectSvc: c.SubjectSvc,
		reconciler: c.TrackingSvc,
		reports:    c.ReportSvc,
		mailSvc:    c.MailSvc,
		validate:   c.Validate,
		clock:      c.Clock,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = c.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
