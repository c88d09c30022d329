package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/models"
)

// ErrNotFound is returned when a calibration run does not exist.
var ErrNotFound = errors.New("calibration run not found")

// Store persists calibration runs in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SaveRun writes a run and its per-slot rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run models.CalibrationRun, clubs []models.CalibrationClub) error {
	if len(run.Environment) == 0 {
		run.Environment = json.RawMessage("{}")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calibration_runs (id, budget, height_weight, environment, created_by, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, NOW())
	`, run.ID, run.Budget, run.HeightWeight, string(run.Environment), run.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, c := range clubs {
		c.RunID = run.ID
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO calibration_clubs (run_id, slot, club_type, name, power, loft, distance, apex, evaluations, converged)
			VALUES (:run_id, :slot, :club_type, :name, :power, :loft, :distance, :apex, :evaluations, :converged)
		`, c)
		if err != nil {
			return fmt.Errorf("insert slot %d of run %s: %w", c.Slot, run.ID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]models.CalibrationRun, error) {
	runs := []models.CalibrationRun{}
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, budget, height_weight, environment, created_by, created_at
		FROM calibration_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return runs, err
}

// GetRun returns a run with its rows in slot order.
func (s *Store) GetRun(ctx context.Context, id string) (*models.CalibrationRun, []models.CalibrationClub, error) {
	var run models.CalibrationRun
	err := s.db.GetContext(ctx, &run, `
		SELECT id, budget, height_weight, environment, created_by, created_at
		FROM calibration_runs WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	clubs, err := s.GetRunClubs(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &run, clubs, nil
}

// LatestClubs returns the calibrated table of the newest run.
func (s *Store) LatestClubs(ctx context.Context) ([]golf.Club, string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `SELECT id FROM calibration_runs ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	rows, err := s.GetRunClubs(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return ToClubs(rows), id, nil
}

// GetRunClubs returns the rows of one run in slot order.
func (s *Store) GetRunClubs(ctx context.Context, id string) ([]models.CalibrationClub, error) {
	clubs := []models.CalibrationClub{}
	err := s.db.SelectContext(ctx, &clubs, `
		SELECT run_id, slot, club_type, name, power, loft, distance, apex, evaluations, converged
		FROM calibration_clubs WHERE run_id = $1
		ORDER BY slot
	`, id)
	return clubs, err
}

// FromReportRow maps a calibration report row onto its table row.
func FromReportRow(runID string, row golf.ReportRow) models.CalibrationClub {
	return models.CalibrationClub{
		RunID:       runID,
		Slot:        row.Slot,
		ClubType:    string(row.Type),
		Name:        row.Name,
		Power:       row.Power,
		Loft:        row.Loft,
		Distance:    row.Distance,
		Apex:        row.Height,
		Evaluations: row.Evaluations,
		Converged:   row.Converged,
	}
}

// ToClubs turns stored rows back into a bag table.
func ToClubs(rows []models.CalibrationClub) []golf.Club {
	clubs := make([]golf.Club, len(rows))
	for i, r := range rows {
		clubs[i] = golf.Club{
			Type:     golf.ClubType(r.ClubType),
			Name:     r.Name,
			Power:    r.Power,
			Loft:     r.Loft,
			Distance: r.Distance,
		}
	}
	return clubs
}

// Sink buffers the rows of one run and saves them on Flush.
type Sink struct {
	store *Store
	run   models.CalibrationRun
	rows  []models.CalibrationClub
}

func (s *Store) NewSink(run models.CalibrationRun) *Sink {
	return &Sink{store: s, run: run}
}

func (k *Sink) WriteRow(_ context.Context, row golf.ReportRow) error {
	k.rows = append(k.rows, FromReportRow(k.run.ID, row))
	return nil
}

func (k *Sink) Flush(ctx context.Context) error {
	if len(k.rows) == 0 {
		return nil
	}
	if err := k.store.SaveRun(ctx, k.run, k.rows); err != nil {
		return err
	}
	k.rows = nil
	return nil
}

// Rows returns the buffered rows not yet flushed.
func (k *Sink) Rows() []models.CalibrationClub {
	return k.rows
}
