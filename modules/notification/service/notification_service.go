package service

import (
	"context"

	"review-scheduler/core/errors"
	"review-scheduler/core/params"
	"review-scheduler/modules/notification/dto"
	"review-scheduler/modules/notification/entity"
	"review-scheduler/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationServiceInterface interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) error
	GetMyNotifications(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) NotificationServiceInterface {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
	}
	return s.repo.Create(ctx, notif)
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError) {
	page, err := s.repo.GetByUserID(ctx, userID, qp)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load notifications", err)
	}
	return page, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark notifications read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark notifications read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to count unread notifications", err)
	}
	return count, nil
}
