package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/models"
)

const detectionColumns = `id, user_id, media_type, file_name, file_path, file_size,
	status, result, confidence_score, processing_time_seconds, error_message,
	created_at, updated_at`

// PostgresDetectionRepository implements detection record persistence
// against PostgreSQL.
type PostgresDetectionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDetectionRepository creates a new PostgresDetectionRepository
// with the given database connection.
func NewPostgresDetectionRepository(db *sql.DB) *PostgresDetectionRepository {
	return &PostgresDetectionRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetection(row rowScanner) (*models.Detection, error) {
	var (
		d      models.Detection
		userID sql.NullString
		result sql.NullString
		score  sql.NullFloat64
		secs   sql.NullFloat64
		msg    sql.NullString
	)
	err := row.Scan(&d.ID, &userID, &d.MediaType, &d.FileName, &d.FilePath,
		&d.FileSize, &d.Status, &result, &score, &secs, &msg,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan detection: %w", err)
	}
	if userID.Valid {
		d.UserID = &userID.String
	}
	if result.Valid {
		res := models.DetectionResult(result.String)
		d.Result = &res
	}
	if score.Valid {
		d.ConfidenceScore = &score.Float64
	}
	if secs.Valid {
		d.ProcessingTimeSeconds = &secs.Float64
	}
	if msg.Valid {
		d.ErrorMessage = &msg.String
	}
	return &d, nil
}

// Create inserts a new detection record in the pending state and returns the
// persisted record with its generated ID and timestamps.
func (r *PostgresDetectionRepository) Create(ctx context.Context, draft models.DetectionCreate) (*models.Detection, error) {
	id := uuid.NewString()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO detections (id, user_id, media_type, file_name, file_path, file_size, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+detectionColumns+`
	`, id, draft.UserID, draft.MediaType, draft.FileName, draft.FilePath,
		draft.FileSize, models.StatusPending)
	return scanDetection(row)
}

// Get fetches a detection record by ID. Returns apperr.ErrNotFound if absent.
func (r *PostgresDetectionRepository) Get(ctx context.Context, id string) (*models.Detection, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+detectionColumns+` FROM detections WHERE id = $1`, id)
	return scanDetection(row)
}

// ListByUser fetches the user's detection records ordered newest-created
// first, applying limit and offset.
func (r *PostgresDetectionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Detection, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+detectionColumns+` FROM detections
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var out []models.Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	return out, nil
}

// CountByUser returns the total number of detection records owned by userID.
func (r *PostgresDetectionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM detections WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count detections: %w", err)
	}
	return total, nil
}

// Update applies the non-nil fields of patch to the record with the given
// ID. The owner is immutable and not part of the patch. Returns
// apperr.ErrNotFound if the record does not exist.
func (r *PostgresDetectionRepository) Update(ctx context.Context, id string, patch models.DetectionUpdate) (*models.Detection, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		d.Status = *patch.Status
	}
	if patch.Result != nil {
		d.Result = patch.Result
	}
	if patch.ConfidenceScore != nil {
		d.ConfidenceScore = patch.ConfidenceScore
	}
	if patch.ProcessingTimeSeconds != nil {
		d.ProcessingTimeSeconds = patch.ProcessingTimeSeconds
	}
	if patch.ErrorMessage != nil {
		d.ErrorMessage = patch.ErrorMessage
	}
	d.UpdatedAt = time.Now()

	_, err = r.DB.ExecContext(ctx, `
		UPDATE detections
		SET status = $2, result = $3, confidence_score = $4,
		    processing_time_seconds = $5, error_message = $6, updated_at = $7
		WHERE id = $1
	`, d.ID, d.Status, nullableResult(d.Result), nullableFloat(d.ConfidenceScore),
		nullableFloat(d.ProcessingTimeSeconds), nullableString(d.ErrorMessage), d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update detection: %w", err)
	}
	return d, nil
}

// Delete hard-deletes the record with the given ID. Returns
// apperr.ErrNotFound if no row was removed.
func (r *PostgresDetectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM detections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete detection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete detection: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func nullableResult(r *models.DetectionResult) any {
	if r == nil {
		return nil
	}
	return string(*r)
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
