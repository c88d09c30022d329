package calibration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Table:     session.NewClubTable(golf.DefaultClubs(), ""),
		Env:       golf.DefaultEnvironment(),
		Options:   golf.DefaultCalibrateOptions(),
		Budget:    golf.DefaultIterations,
		ReportDir: t.TempDir(),
	}
}

func TestRunUpdatesTableAndWritesReport(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Run(context.Background(), Request{CreatedBy: "test"})
	require.NoError(t, err)
	require.Len(t, res.Clubs, 14)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, svc.Table.RunID())
	assert.False(t, svc.Running())

	targets := golf.DefaultTargets()
	for i, c := range svc.Table.Clubs() {
		assert.InEpsilon(t, targets[i].Distance, c.Distance, 0.01, "slot %d", i)
		assert.LessOrEqual(t, res.Results[i].Evaluations, golf.DefaultIterations)
	}

	_, err = os.Stat(filepath.Join(svc.ReportDir, res.RunID, "clubs.csv"))
	assert.NoError(t, err)
}

func TestRunWithTrace(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Run(context.Background(), Request{Budget: 5, Trace: true})
	require.NoError(t, err)
	for _, r := range res.Results {
		assert.NotEmpty(t, r.Trace)
	}
	_, err = os.Stat(filepath.Join(svc.ReportDir, res.RunID, "trace_0.csv"))
	assert.NoError(t, err)
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	svc := newTestService(t)
	svc.running.Store(true)

	_, err := svc.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrRunInProgress)
	_, err = svc.Start(Request{})
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunCancelled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, svc.Table.RunID())
}

func TestRestoreWithoutBackends(t *testing.T) {
	svc := newTestService(t)
	runID, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runID)
	assert.Len(t, svc.Table.Clubs(), 14)
}

func TestSchedule(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Schedule("0 3 * * *")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = svc.Schedule("every tuesday")
	assert.Error(t, err)
}
