package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	query := `
		INSERT INTO applications (
			id, student_id, internship_id, employer_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = app.CreatedAt
	}

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		app.ID,
		app.StudentID,
		app.InternshipID,
		app.EmployerID,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.String("application_id", app.ID), zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetByID retrieves an application, returning port.ErrNotFound when absent
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	query := `
		SELECT id, student_id, internship_id, employer_id, status, created_at, updated_at
		FROM applications
		WHERE id = ?
	`

	var app entity.Application
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.StudentID,
		&app.InternshipID,
		&app.EmployerID,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.String("application_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

// GetStatus returns only the current status of an application
func (r *ApplicationRepository) GetStatus(ctx context.Context, id string) (workflow.Status, error) {
	var status workflow.Status
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		"SELECT status FROM applications WHERE id = ?", id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.StatusNone, port.ErrNotFound
	}
	if err != nil {
		return workflow.StatusNone, fmt.Errorf("failed to get application status: %w", err)
	}
	return status, nil
}

// CompareAndSetStatus implements port.ApplicationRepository
func (r *ApplicationRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next workflow.Status) error {
	query := `
		UPDATE applications
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	exec := getExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, query, next, time.Now(), id, expected)
	if err != nil {
		r.logger.Error("Failed to update application status",
			zap.String("application_id", id),
			zap.String("expected", expected.String()),
			zap.String("next", next.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if err := expectOneRow(res); err != nil {
		if !errors.Is(err, port.ErrNotFound) {
			return err
		}
		// distinguish a missing row from a concurrent change
		if _, getErr := r.GetStatus(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("application %s is no longer %s: %w", id, expected, port.ErrStatusConflict)
	}
	return nil
}

// Delete removes an application
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx, "DELETE FROM applications WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete application", zap.String("application_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return expectOneRow(res)
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
