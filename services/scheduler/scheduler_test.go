package schedsvc

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

type reconciler struct {
	calls int
	err   error
}

func (r *reconciler) ReconcileAll(ctx context.Context) (int, error) {
	r.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("no deadline")
	}
	return 3, r.err
}

type recorder struct {
	infos, errs []string
}

func (l *recorder) Debug(string, ...interface{}) {}
func (l *recorder) Info(msg string, _ ...interface{}) { l.infos = append(l.infos, msg) }
func (l *recorder) Warn(string, ...interface{}) {}
func (l *recorder) Error(msg string, _ ...interface{}) { l.errs = append(l.errs, msg) }
func (l *recorder) Fatal(string, ...interface{}) {}

func TestNew(t *testing.T) {
	_, err := New(&reconciler{}, nil, core.SchedulerConfig{ReconcileAt: "25:99"})
	assert.Error(t, err)

	s, err := New(&reconciler{}, nil, core.SchedulerConfig{ReconcileAt: "00:05"})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()
	next := s.NextRun().In(timezone.IST)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 5, next.Minute())
}

func TestScheduler_run(t *testing.T) {
	rec := &reconciler{}
	logger := &recorder{}
	s, err := New(rec, logger, core.SchedulerConfig{ReconcileAt: "00:05"})
	require.NoError(t, err)

	s.run()
	assert.Equal(t, 1, rec.calls)
	require.Len(t, logger.infos, 1)
	assert.Contains(t, logger.infos[0], "3 students")

	rec.err = errors.New("reconciled 3 of 4 students")
	s.run()
	require.Len(t, logger.errs, 1)
	assert.Contains(t, logger.errs[0], "3 of 4")
}
