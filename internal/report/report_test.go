package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSinkWritesClubsAndTraces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	sink := NewCSVSink(dir)
	ctx := context.Background()

	require.NoError(t, sink.WriteRow(ctx, golf.ReportRow{Slot: 0, Type: golf.OneWood, Name: "Driver", Power: 728, Loft: 0.125, Distance: 251.5, Height: 29.3, Evaluations: 40, Converged: true}))
	require.NoError(t, sink.WriteRow(ctx, golf.ReportRow{
		Slot: 1, Type: golf.ThreeWood, Name: "3 Wood", Evaluations: 2,
		Trace: []golf.Probe{{Evaluation: 1, Accepted: true}, {Evaluation: 2}},
	}))
	require.NoError(t, sink.Flush(ctx))

	clubs := readCSV(t, filepath.Join(dir, "clubs.csv"))
	require.Len(t, clubs, 3)
	assert.Equal(t, clubHeader, clubs[0])
	assert.Equal(t, "1W", clubs[1][1])
	assert.Equal(t, "Driver", clubs[1][2])
	assert.Equal(t, "true", clubs[1][9])

	_, err := os.Stat(filepath.Join(dir, "trace_0.csv"))
	assert.True(t, os.IsNotExist(err))

	trace := readCSV(t, filepath.Join(dir, "trace_1.csv"))
	require.Len(t, trace, 3)
	assert.Equal(t, "true", trace[1][6])
	assert.Equal(t, "false", trace[2][6])
}

type failingClose struct {
	bytes.Buffer
}

func (f *failingClose) Close() error {
	return errors.New("disk full")
}

func TestCSVSinkReportsCloseError(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	out := &failingClose{}
	createFile = func(string) (io.WriteCloser, error) { return out, nil }

	sink := NewCSVSink(t.TempDir())
	ctx := context.Background()
	require.NoError(t, sink.WriteRow(ctx, golf.ReportRow{Slot: 0, Type: golf.OneWood, Name: "Driver"}))

	err := sink.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close")
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, out.String(), "Driver")
}

type countingSink struct {
	rows, flushes int
}

func (c *countingSink) WriteRow(context.Context, golf.ReportRow) error {
	c.rows++
	return nil
}

func (c *countingSink) Flush(context.Context) error {
	c.flushes++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := MultiSink{a, b}
	ctx := context.Background()
	require.NoError(t, m.WriteRow(ctx, golf.ReportRow{}))
	require.NoError(t, m.WriteRow(ctx, golf.ReportRow{}))
	require.NoError(t, m.Flush(ctx))

	assert.Equal(t, 2, a.rows)
	assert.Equal(t, 2, b.rows)
	assert.Equal(t, 1, a.flushes)
	assert.Equal(t, 1, b.flushes)
}

func TestLogSinkWarnsOnBudgetExhaustion(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	sink := NewLogSink(logrus.NewEntry(log))

	require.NoError(t, sink.WriteRow(context.Background(), golf.ReportRow{Slot: 3, Type: golf.ThreeIron}))
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"club":"3I"`)
}
