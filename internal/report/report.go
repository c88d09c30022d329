package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/sirupsen/logrus"
)

var clubHeader = []string{"slot", "type", "name", "power", "loft", "distance_m", "distance_yd", "apex_m", "evaluations", "converged"}

var traceHeader = []string{"evaluation", "power", "loft", "distance_m", "apex_m", "error", "accepted"}

// CSVSink writes clubs.csv into Dir, plus trace_<slot>.csv for every row that
// carries a probe trace.
type CSVSink struct {
	Dir  string
	rows []golf.ReportRow
}

func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

func (s *CSVSink) WriteRow(_ context.Context, row golf.ReportRow) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *CSVSink) Flush(_ context.Context) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	records := [][]string{clubHeader}
	for _, r := range s.rows {
		records = append(records, []string{
			strconv.Itoa(r.Slot),
			string(r.Type),
			r.Name,
			formatFloat(r.Power),
			formatFloat(r.Loft),
			formatFloat(r.Distance),
			formatFloat(golf.ToYards(r.Distance)),
			formatFloat(r.Height),
			strconv.Itoa(r.Evaluations),
			strconv.FormatBool(r.Converged),
		})
	}
	if err := writeCSV(filepath.Join(s.Dir, "clubs.csv"), records); err != nil {
		return err
	}

	for _, r := range s.rows {
		if len(r.Trace) == 0 {
			continue
		}
		trace := [][]string{traceHeader}
		for _, p := range r.Trace {
			trace = append(trace, []string{
				strconv.Itoa(p.Evaluation),
				formatFloat(p.Power),
				formatFloat(p.Loft),
				formatFloat(p.Distance),
				formatFloat(p.Height),
				strconv.FormatFloat(p.Error, 'g', 6, 64),
				strconv.FormatBool(p.Accepted),
			})
		}
		name := fmt.Sprintf("trace_%d.csv", r.Slot)
		if err := writeCSV(filepath.Join(s.Dir, name), trace); err != nil {
			return err
		}
	}

	s.rows = nil
	return nil
}

// createFile opens report files for writing.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeCSV(path string, records [][]string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// LogSink logs one line per calibrated slot.
type LogSink struct {
	Log *logrus.Entry
}

func NewLogSink(log *logrus.Entry) *LogSink {
	return &LogSink{Log: log}
}

func (s *LogSink) WriteRow(_ context.Context, row golf.ReportRow) error {
	entry := s.Log.WithFields(logrus.Fields{
		"slot":        row.Slot,
		"club":        row.Type,
		"power":       row.Power,
		"loft":        row.Loft,
		"distance_yd": golf.ToYards(row.Distance),
		"apex_yd":     golf.ToYards(row.Height),
		"evaluations": row.Evaluations,
	})
	if row.Converged {
		entry.Info("club calibrated")
	} else {
		entry.Warn("club calibration hit its budget before converging")
	}
	return nil
}

func (s *LogSink) Flush(context.Context) error { return nil }

// MultiSink fans rows out to several sinks in order.
type MultiSink []golf.ReportSink

func (m MultiSink) WriteRow(ctx context.Context, row golf.ReportRow) error {
	for _, s := range m {
		if err := s.WriteRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush(ctx context.Context) error {
	for _, s := range m {
		if err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
