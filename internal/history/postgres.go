package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"crudecast/internal/domain/attention"
)

// PostgresStore mirrors the prediction history into Postgres for
// operators who query it with SQL. It implements the same Store
// interface as the blob log; the blob remains the source of truth.
type PostgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresStore opens a connection from dsn.
func NewPostgresStore(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresStore{db: db, timeout: timeout}, nil
}

// Migrate creates the history table when absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prediction_history (
			feature_date           TEXT PRIMARY KEY,
			prediction_for_date    TEXT NOT NULL,
			reference_close        DOUBLE PRECISION NOT NULL,
			predicted_delta        DOUBLE PRECISION NOT NULL,
			predicted_close        DOUBLE PRECISION NOT NULL,
			total_abs_contribution DOUBLE PRECISION NOT NULL,
			num_countries          INTEGER NOT NULL,
			top_contributors       JSONB NOT NULL,
			generated_at           TEXT NOT NULL,
			actual_close           DOUBLE PRECISION,
			actual_delta           DOUBLE PRECISION,
			error_delta            DOUBLE PRECISION,
			error_price            DOUBLE PRECISION,
			actual_recorded_at     TEXT
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate prediction_history: %w", err)
	}
	return nil
}

type historyRow struct {
	PredictionRecord
	ContributorsJSON []byte `db:"top_contributors"`
}

// Load reads all records ordered by feature date.
func (s *PostgresStore) Load() ([]PredictionRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT feature_date, prediction_for_date, reference_close, predicted_delta,
		       predicted_close, total_abs_contribution, num_countries, top_contributors,
		       generated_at, actual_close, actual_delta, error_delta, error_price,
		       COALESCE(actual_recorded_at, '') AS actual_recorded_at
		FROM prediction_history
		ORDER BY feature_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction history: %w", err)
	}

	records := make([]PredictionRecord, len(rows))
	for i, row := range rows {
		rec := row.PredictionRecord
		if len(row.ContributorsJSON) > 0 {
			var contributors []attention.Contributor
			if err := json.Unmarshal(row.ContributorsJSON, &contributors); err != nil {
				return nil, fmt.Errorf("failed to decode contributors for %s: %w", rec.FeatureDate, err)
			}
			rec.TopContributors = contributors
		}
		records[i] = rec
	}
	return records, nil
}

// Save replaces the stored history with records in one transaction.
func (s *PostgresStore) Save(records []PredictionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prediction_history`); err != nil {
		return fmt.Errorf("failed to clear prediction history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prediction_history (
			feature_date, prediction_for_date, reference_close, predicted_delta,
			predicted_close, total_abs_contribution, num_countries, top_contributors,
			generated_at, actual_close, actual_delta, error_delta, error_price,
			actual_recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		contributorsJSON, err := json.Marshal(rec.TopContributors)
		if err != nil {
			return fmt.Errorf("failed to encode contributors for %s: %w", rec.FeatureDate, err)
		}
		_, err = stmt.ExecContext(ctx,
			rec.FeatureDate, rec.PredictionForDate, rec.ReferenceClose, rec.PredictedDelta,
			rec.PredictedClose, rec.TotalAbsContribution, rec.NumEntities, contributorsJSON,
			rec.GeneratedAt, rec.ActualClose, rec.ActualDelta, rec.ErrorDelta, rec.ErrorPrice,
			nullIfEmpty(rec.ActualRecordedAt))
		if err != nil {
			return fmt.Errorf("failed to insert history record %s: %w", rec.FeatureDate, err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
