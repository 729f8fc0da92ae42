package main

import (
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (cli *commandLine) reconcile(ctx context.Context) error {
	n, err := cli.reconciler.ReconcileAll(ctx)
	cli.printf("reconciled %d students\n", n)
	return err
}

func (cli *commandLine) importLessons(ctx context.Context, path, sheet, createdBy string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := cli.subjectSvc.ImportLessons(ctx, f, sheet, createdBy)
	if err != nil {
		return err
	}
	cli.printf("processed %d rows: %d created, %d skipped, %d errors\n", res.TotalProcessed, res.Created, res.Skipped, len(res.Errors))
	for _, e := range res.Errors {
		cli.printf("  %s\n", e)
	}
	return nil
}

func (cli *commandLine) report(ctx context.Context, out, email string) error {
	var to *mail.Address
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return errors.Wrapf(err, "parsing email %q", email)
		}
		to = addr
	}

	now := cli.clock.Now()
	if out == "" {
		out = "performance-" + timezone.DayKey(now) + ".xlsx"
	}
	rep, err := cli.reports.Performance(ctx, now)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	cli.printf("wrote %s (%d students)\n", out, rep.Summary.TotalStudents)

	if to == nil {
		return nil
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{*to},
		Subject: core.Conf.AppName + ": students performance " + timezone.DayKey(now),
		TextContent: fmt.Sprintf("%d students studied %d minutes over %d entries. The full report is attached.",
			rep.Summary.TotalStudents, rep.Summary.TotalStudyTime, rep.Summary.TotalEntries),
	}
	if err := msg.AttachFile(out, xlsxContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	cli.mailSvc.SendMessages(msg)
	if w, ok := cli.mailSvc.(interface{ Wait() }); ok {
		w.Wait()
	}
	cli.printf("mailed %s\n", to.Address)
	return nil
}
