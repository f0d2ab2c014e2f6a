package controller

import (
	"strconv"

	"review-scheduler/core/constants"
	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/params"
	"review-scheduler/core/utils"
	"review-scheduler/modules/notification/dto"
	"review-scheduler/modules/notification/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	controller.BaseController
	NotificationService service.NotificationServiceInterface
}

func NewNotificationController(svc service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController:      controller.NewBaseController(),
		NotificationService: svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *NotificationController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.UserID, nil
}

// GetMyNotifications handles GET /notifications
// @Summary List own notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} entity.PaginatedNotificationEntity
// @Router /notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	qp := params.QueryParams{}
	if v, err := strconv.Atoi(ctx.QueryParam("page")); err == nil {
		qp.PageNumber = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("pageSize")); err == nil {
		qp.PageSize = v
	}

	result, appErr := c.NotificationService.GetMyNotifications(ctx.Request().Context(), userID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// MarkAsRead handles PUT /notifications/mark-read
// @Summary Mark specific notifications as read
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body dto.MarkAsReadRequest true "Notification IDs"
// @Success 200 {object} controller.SuccessResponse
// @Router /notifications/mark-read [put]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.MarkAsReadRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	if appErr := c.NotificationService.MarkAsRead(ctx.Request().Context(), userID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read")
}

// MarkAllAsRead handles PUT /notifications/mark-all-read
// @Summary Mark every notification as read
// @Tags Notification
// @Security BearerAuth
// @Success 200 {object} controller.SuccessResponse
// @Router /notifications/mark-all-read [put]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if appErr := c.NotificationService.MarkAllAsRead(ctx.Request().Context(), userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read")
}

// CountUnread handles GET /notifications/unread-count
// @Summary Count unread notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	count, appErr := c.NotificationService.CountUnread(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Success")
}
