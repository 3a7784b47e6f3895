package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/lightcurve/internal/transit"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("db: run not found")

// Run is one persisted light curve and the inputs that produced it.
type Run struct {
	RunID       string
	Label       string
	Params      transit.Params
	LDSource    string // coefficient table the u values were averaged from, if any
	Workers     int
	ExpTime     float64
	Supersample int
	Duration    time.Duration
	CreatedAt   int64 // unix nanoseconds

	// Summary columns, filled on insert.
	NSamples int
	MinFlux  float64
	MinTime  float64

	// Samples; empty on runs returned by List.
	Times []float64
	Flux  []float64
}

// paramsRecord is the JSON form of transit.Params stored in params_json.
type paramsRecord struct {
	T0  float64     `json:"t0"`
	Per float64     `json:"per"`
	Rp  float64     `json:"rp"`
	A   float64     `json:"a"`
	Inc float64     `json:"inc"`
	Ecc float64     `json:"ecc"`
	W   float64     `json:"w"`
	U   []float64   `json:"u"`
	Law transit.Law `json:"limb_dark"`
}

func encodeParams(p transit.Params) (string, error) {
	rec := paramsRecord{T0: p.T0, Per: p.Per, Rp: p.Rp, A: p.A, Inc: p.Inc, Ecc: p.Ecc, W: p.W, U: p.U, Law: p.Law}
	if rec.U == nil {
		rec.U = []float64{}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return string(b), nil
}

func decodeParams(s string) (transit.Params, error) {
	var rec paramsRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return transit.Params{}, fmt.Errorf("decode params: %w", err)
	}
	return transit.NewParams(rec.T0, rec.Per, rec.Rp, rec.A, rec.Inc, rec.Ecc, rec.W, rec.Law, rec.U...), nil
}

// RunStore persists light-curve runs.
type RunStore struct {
	db *DB
}

// NewRunStore creates a RunStore backed by db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists run and its samples in one transaction. If RunID is
// empty a UUID is generated; if CreatedAt is zero it is set to now.
func (s *RunStore) Insert(ctx context.Context, run *Run) error {
	if len(run.Times) != len(run.Flux) {
		return fmt.Errorf("run has %d times but %d flux values", len(run.Times), len(run.Flux))
	}
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	run.NSamples = len(run.Flux)

	var minFlux, minTime any
	if len(run.Flux) > 0 {
		i := floats.MinIdx(run.Flux)
		run.MinFlux, run.MinTime = run.Flux[i], run.Times[i]
		minFlux, minTime = run.MinFlux, run.MinTime
	}

	paramsJSON, err := encodeParams(run.Params)
	if err != nil {
		return err
	}

	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO lightcurve_runs (
				run_id, label, params_json, law, ld_source, workers, exp_time,
				supersample, n_samples, min_flux, min_time, duration_ns, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Label, paramsJSON, string(run.Params.Law), run.LDSource, run.Workers, run.ExpTime,
			run.Supersample, run.NSamples, minFlux, minTime, int64(run.Duration), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO lightcurve_samples (run_id, idx, time, flux) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare samples: %w", err)
		}
		defer stmt.Close()

		for i := range run.Times {
			if _, err := stmt.ExecContext(ctx, run.RunID, i, run.Times[i], run.Flux[i]); err != nil {
				return fmt.Errorf("insert sample %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = `run_id, label, params_json, ld_source, workers, exp_time, supersample,
	n_samples, min_flux, min_time, duration_ns, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r          Run
		paramsJSON string
		minFlux    sql.NullFloat64
		minTime    sql.NullFloat64
		durationNs int64
	)
	err := row.Scan(&r.RunID, &r.Label, &paramsJSON, &r.LDSource, &r.Workers, &r.ExpTime, &r.Supersample,
		&r.NSamples, &minFlux, &minTime, &durationNs, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if r.Params, err = decodeParams(paramsJSON); err != nil {
		return nil, fmt.Errorf("run %s: %w", r.RunID, err)
	}
	r.MinFlux, r.MinTime = minFlux.Float64, minTime.Float64
	r.Duration = time.Duration(durationNs)
	return &r, nil
}

// Get returns a run with its samples in index order.
func (s *RunStore) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM lightcurve_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT time, flux FROM lightcurve_samples WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	run.Times = make([]float64, 0, run.NSamples)
	run.Flux = make([]float64, 0, run.NSamples)
	for rows.Next() {
		var t, f float64
		if err := rows.Scan(&t, &f); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		run.Times = append(run.Times, t)
		run.Flux = append(run.Flux, f)
	}
	return run, rows.Err()
}

// List returns up to limit runs, newest first, without their samples.
// A limit of zero or less returns every run.
func (s *RunStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM lightcurve_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and its samples.
func (s *RunStore) Delete(ctx context.Context, runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM lightcurve_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}
