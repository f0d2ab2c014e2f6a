package repository

import (
	"context"
	"database/sql"
	"time"

	"review-scheduler/core/database"
	"review-scheduler/core/logger"
	"review-scheduler/core/params"
	"review-scheduler/modules/scheduling/entity"

	"github.com/google/uuid"
)

// ReviewRepository owns the reviews table. Status columns are only
// written through guarded updates so a stale in-memory state can never
// clobber a concurrent transition.
type ReviewRepository struct {
	DB database.IDatabase
}

func NewReviewRepository(db database.IDatabase) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

type ReviewRepositoryInterface interface {
	Create(ctx context.Context, review *entity.Review) (*entity.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ListOccupyingByReviewerBetween(ctx context.Context, reviewerID uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]entity.Review, error)
	ExistsOccupyingDuplicate(ctx context.Context, studentID, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReviewStatus, rejectionReason, cancellationReason *string) (bool, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, from, to entity.ReviewStatus, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedReviewEntity, error)
}

const reviewColumns = `id, ref, student_id, reviewer_id, advisor_id, scheduled_at, duration_minutes,
	       mode, week, status, cancellation_reason, rejection_reason, created_at, updated_at`

func (r *ReviewRepository) Create(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	query := `
		INSERT INTO reviews (ref, student_id, reviewer_id, advisor_id, scheduled_at, duration_minutes, mode, week, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + reviewColumns

	var created entity.Review
	err := r.DB.GetContext(ctx, &created, query,
		review.Ref, review.StudentID, review.ReviewerID, review.AdvisorID,
		review.ScheduledAt, review.DurationMinutes, review.Mode, review.Week, review.Status)
	if err != nil {
		logger.Error("ReviewRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	var review entity.Review
	err := r.DB.GetContext(ctx, &review, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ReviewRepository:GetByID", err)
		return nil, err
	}
	return &review, nil
}

// ListOccupyingByReviewerBetween returns every booking occupying a
// window for the reviewer inside [from, to). exclude drops one booking
// from the result, used when re-validating that booking's own move.
func (r *ReviewRepository) ListOccupyingByReviewerBetween(ctx context.Context, reviewerID uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewer_id = $1
		  AND scheduled_at >= $2 AND scheduled_at < $3
		  AND status IN ('pending', 'accepted', 'scheduled')
		  AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY scheduled_at
	`

	var reviews []entity.Review
	err := r.DB.SelectContext(ctx, &reviews, query, reviewerID, from, to, exclude)
	if err != nil {
		logger.Error("ReviewRepository:ListOccupyingByReviewerBetween", err)
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) ExistsOccupyingDuplicate(ctx context.Context, studentID, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE student_id = $1 AND reviewer_id = $2 AND scheduled_at = $3
			  AND status IN ('pending', 'accepted', 'scheduled')
		)
	`

	var exists bool
	err := r.DB.GetContext(ctx, &exists, query, studentID, reviewerID, scheduledAt)
	if err != nil {
		logger.Error("ReviewRepository:ExistsOccupyingDuplicate", err)
		return false, err
	}
	return exists, nil
}

// UpdateStatus performs a guarded transition. It returns false when
// the row was not in the expected `from` status, which callers surface
// as InvalidTransition.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReviewStatus, rejectionReason, cancellationReason *string) (bool, error) {
	query := `
		UPDATE reviews
		SET status = :to,
		    rejection_reason = COALESCE(:rejection_reason, rejection_reason),
		    cancellation_reason = COALESCE(:cancellation_reason, cancellation_reason),
		    updated_at = NOW()
		WHERE id = :id AND status = :from
	`

	res, err := r.DB.NamedExecContext(ctx, query, map[string]any{
		"id":                  id,
		"from":                from,
		"to":                  to,
		"rejection_reason":    rejectionReason,
		"cancellation_reason": cancellationReason,
	})
	if err != nil {
		logger.Error("ReviewRepository:UpdateStatus", err)
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// UpdateSchedule moves a booking to a new reviewer/time under the same
// status guard as UpdateStatus. The old window is released implicitly:
// the row is mutated, never duplicated.
func (r *ReviewRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, from, to entity.ReviewStatus, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error) {
	query := `
		UPDATE reviews
		SET status = :to, reviewer_id = :reviewer_id, scheduled_at = :scheduled_at, updated_at = NOW()
		WHERE id = :id AND status = :from
	`

	res, err := r.DB.NamedExecContext(ctx, query, map[string]any{
		"id":           id,
		"from":         from,
		"to":           to,
		"reviewer_id":  reviewerID,
		"scheduled_at": scheduledAt,
	})
	if err != nil {
		logger.Error("ReviewRepository:UpdateSchedule", err)
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *ReviewRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedReviewEntity, error) {
	qp = qp.Normalized()
	offset := (qp.PageNumber - 1) * qp.PageSize

	baseQuery := `FROM reviews WHERE student_id = $1 OR reviewer_id = $1 OR advisor_id = $1`

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, userID); err != nil {
		logger.Error("ReviewRepository:ListByParticipant:Count", err)
		return nil, err
	}

	query := `SELECT ` + reviewColumns + ` ` + baseQuery + `
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3`

	var reviews []entity.Review
	if err := r.DB.SelectContext(ctx, &reviews, query, userID, qp.PageSize, offset); err != nil {
		logger.Error("ReviewRepository:ListByParticipant:Select", err)
		return nil, err
	}

	return &entity.PaginatedReviewEntity{
		Items:      reviews,
		TotalItems: totalItems,
		PageNumber: qp.PageNumber,
		PageSize:   qp.PageSize,
	}, nil
}
