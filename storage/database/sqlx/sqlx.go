// Package sqlxrepos implements the repositories on top of sqlx.
// Queries are written with ? placeholders and rebound for the driver in use (postgres | sqlite3).
package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
)

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// dbTime drops what postgres cannot store, so that written values read back unchanged.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := dbTime(*t)
	return &tt
}

func getRow(ctx context.Context, ex core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return ex.GetContext(ctx, dest, ex.Rebind(q), args...)
}

func selectRows(ctx context.Context, ex core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return ex.SelectContext(ctx, dest, ex.Rebind(q), args...)
}

func execQuery(ctx context.Context, ex core.DBExecutor, q string, args ...interface{}) (sql.Result, error) {
	return ex.ExecContext(ctx, ex.Rebind(q), args...)
}

// mustAffect turns "zero rows affected" into notFound.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when it fails.
func inTx(ctx context.Context, db core.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
