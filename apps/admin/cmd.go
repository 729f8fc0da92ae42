package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp      = errors.New("help provided")
	errNoStorage = errors.New("this command needs a SQL database engine")
)

type reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

type commandLine struct {
	db         *sqlx.DB // nil with the memory engine
	usrSvc     user.Service
	subjectSvc *subject.Service
	reconciler reconciler
	reports    *report.Service
	mailSvc    core.EmailService
	validate   *validator.Validate
	clock      core.Clock
	out        io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo...)\n")
	cli.printf("  adduser -name NAME -email EMAIL [-admin] - create or update a user\n")
	cli.printf("  resetpassword -email EMAIL - reset user's password\n")
	cli.printf("  reconcile - recompute streaks, progress and achievements of every student\n")
	cli.printf("  importlessons -file PATH [-sheet NAME] [-by USER_ID] - import lessons from an xlsx workbook\n")
	cli.printf("  report [-out PATH] [-email EMAIL] - export the students performance report\n")
}

func (cli *commandLine) promptPassword() (string, error) {
	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	return string(pwd), err
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Give the user the admin role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importCmd := flag.NewFlagSet("importlessons", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path of the xlsx workbook.")
	importSheet := importCmd.String("sheet", "", "Sheet to read. Defaults to the first one.")
	importBy := importCmd.String("by", "", "ID of the user recorded as the lessons creator.")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportOut := reportCmd.String("out", "", "Path of the xlsx file to write. Defaults to performance-DATE.xlsx.")
	reportEmail := reportCmd.String("email", "", "Also mail the report to this address.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if cli.db == nil {
			return errNoStorage
		}
		return cli.migrate(ctx, args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	case "reconcile":
		return cli.reconcile(ctx)

	case "importlessons":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importLessons(ctx, *importFile, *importSheet, *importBy)

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.report(ctx, *reportOut, *reportEmail)

	default:
		cli.printUsage()
		return errHelp
	}
}
