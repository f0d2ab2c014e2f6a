package repository

import (
	"context"
	"database/sql"

	"review-scheduler/core/database"
	"review-scheduler/core/logger"
	"review-scheduler/modules/availability/entity"

	"github.com/google/uuid"
)

// AvailabilityRepository owns the availability_slots, break_blocks and
// reviewer_status tables.
type AvailabilityRepository struct {
	DB database.IDatabase
}

func NewAvailabilityRepository(db database.IDatabase) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

type AvailabilityRepositoryInterface interface {
	CreateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id, reviewerID uuid.UUID) (bool, error)
	ListSlotsByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]entity.AvailabilitySlot, error)

	CreateBreak(ctx context.Context, brk *entity.BreakBlock) (*entity.BreakBlock, error)
	DeleteBreak(ctx context.Context, id, reviewerID uuid.UUID) (bool, error)
	ListBreaksByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]entity.BreakBlock, error)

	GetStatus(ctx context.Context, reviewerID uuid.UUID) (entity.ReviewerStatus, error)
	SetStatus(ctx context.Context, reviewerID uuid.UUID, status entity.ReviewerStatus) error
}

// ===================== Slots =====================

func (r *AvailabilityRepository) CreateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error) {
	query := `
		INSERT INTO availability_slots (reviewer_id, kind, day_of_week, specific_date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, reviewer_id, kind, day_of_week, specific_date, start_time, end_time, created_at, updated_at
	`

	var created entity.AvailabilitySlot
	err := r.DB.GetContext(ctx, &created, query,
		slot.ReviewerID, slot.Kind, slot.DayOfWeek, slot.SpecificDate, slot.StartTime, slot.EndTime)
	if err != nil {
		logger.Error("AvailabilityRepository:CreateSlot", err)
		return nil, err
	}
	return &created, nil
}

func (r *AvailabilityRepository) DeleteSlot(ctx context.Context, id, reviewerID uuid.UUID) (bool, error) {
	res, err := r.DB.NamedExecContext(ctx, `DELETE FROM availability_slots WHERE id = :id AND reviewer_id = :reviewer_id`,
		map[string]any{"id": id, "reviewer_id": reviewerID})
	if err != nil {
		logger.Error("AvailabilityRepository:DeleteSlot", err)
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *AvailabilityRepository) ListSlotsByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]entity.AvailabilitySlot, error) {
	query := `
		SELECT id, reviewer_id, kind, day_of_week, specific_date, start_time, end_time, created_at, updated_at
		FROM availability_slots
		WHERE reviewer_id = $1
		ORDER BY start_time
	`

	var slots []entity.AvailabilitySlot
	err := r.DB.SelectContext(ctx, &slots, query, reviewerID)
	if err != nil {
		logger.Error("AvailabilityRepository:ListSlotsByReviewer", err)
		return nil, err
	}
	return slots, nil
}

// ===================== Breaks =====================

func (r *AvailabilityRepository) CreateBreak(ctx context.Context, brk *entity.BreakBlock) (*entity.BreakBlock, error) {
	query := `
		INSERT INTO break_blocks (reviewer_id, day_of_week, start_time, end_time, label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, reviewer_id, day_of_week, start_time, end_time, label, created_at, updated_at
	`

	var created entity.BreakBlock
	err := r.DB.GetContext(ctx, &created, query,
		brk.ReviewerID, brk.DayOfWeek, brk.StartTime, brk.EndTime, brk.Label)
	if err != nil {
		logger.Error("AvailabilityRepository:CreateBreak", err)
		return nil, err
	}
	return &created, nil
}

func (r *AvailabilityRepository) DeleteBreak(ctx context.Context, id, reviewerID uuid.UUID) (bool, error) {
	res, err := r.DB.NamedExecContext(ctx, `DELETE FROM break_blocks WHERE id = :id AND reviewer_id = :reviewer_id`,
		map[string]any{"id": id, "reviewer_id": reviewerID})
	if err != nil {
		logger.Error("AvailabilityRepository:DeleteBreak", err)
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *AvailabilityRepository) ListBreaksByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]entity.BreakBlock, error) {
	query := `
		SELECT id, reviewer_id, day_of_week, start_time, end_time, label, created_at, updated_at
		FROM break_blocks
		WHERE reviewer_id = $1
		ORDER BY day_of_week, start_time
	`

	var breaks []entity.BreakBlock
	err := r.DB.SelectContext(ctx, &breaks, query, reviewerID)
	if err != nil {
		logger.Error("AvailabilityRepository:ListBreaksByReviewer", err)
		return nil, err
	}
	return breaks, nil
}

// ===================== Status =====================

func (r *AvailabilityRepository) GetStatus(ctx context.Context, reviewerID uuid.UUID) (entity.ReviewerStatus, error) {
	query := `SELECT status FROM reviewer_status WHERE reviewer_id = $1`

	var status entity.ReviewerStatus
	err := r.DB.GetContext(ctx, &status, query, reviewerID)
	if err != nil {
		if err == sql.ErrNoRows {
			// No explicit record means the reviewer never toggled away
			// from the default.
			return entity.ReviewerStatusAvailable, nil
		}
		logger.Error("AvailabilityRepository:GetStatus", err)
		return "", err
	}
	return status, nil
}

func (r *AvailabilityRepository) SetStatus(ctx context.Context, reviewerID uuid.UUID, status entity.ReviewerStatus) error {
	query := `
		INSERT INTO reviewer_status (reviewer_id, status, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (reviewer_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	`

	err := r.DB.ExecContext(ctx, query, reviewerID, status)
	if err != nil {
		logger.Error("AvailabilityRepository:SetStatus", err)
		return err
	}
	return nil
}
