package repository

import (
	"context"

	"review-scheduler/core/database"
	"review-scheduler/core/logger"
	"review-scheduler/core/params"
	"review-scheduler/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepository struct {
	DB database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (title, message, type, data, user_id, is_read)
		VALUES (:title, :message, :type, :data, :user_id, :is_read)
		RETURNING id
	`
	rows, err := r.DB.NamedQueryContext(ctx, query, notification)
	if err != nil {
		logger.Error("NotificationRepository:Create", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&notification.ID)
	}
	return nil
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	qp = qp.Normalized()
	offset := (qp.PageNumber - 1) * qp.PageSize

	baseQuery := `FROM notifications WHERE user_id = $1`

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, userID); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Count", err)
		return nil, err
	}

	query := `
		SELECT * ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var notifications []entity.Notification
	if err := r.DB.SelectContext(ctx, &notifications, query, userID, qp.PageSize, offset); err != nil {
		logger.Error("NotificationRepository:GetByUserID:Select", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: qp.PageNumber,
		PageSize:   qp.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = true WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return err
	}

	query = r.DB.SQLx().Rebind(query)
	if err := r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1`
	if err := r.DB.ExecContext(ctx, query, userID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	if err := r.DB.GetContext(ctx, &count, query, userID); err != nil {
		logger.Error("NotificationRepository:CountUnread", err)
		return 0, err
	}
	return count, nil
}
