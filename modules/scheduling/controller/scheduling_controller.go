package controller

import (
	"strconv"
	"time"

	"review-scheduler/core/constants"
	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/params"
	"review-scheduler/core/utils"
	"review-scheduler/modules/scheduling/dto"
	"review-scheduler/modules/scheduling/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SchedulingController handles review booking and slot discovery routes
type SchedulingController struct {
	controller.BaseController
	SchedulingService service.SchedulingServiceInterface
}

func NewSchedulingController(svc service.SchedulingServiceInterface) *SchedulingController {
	return &SchedulingController{
		BaseController:    controller.NewBaseController(),
		SchedulingService: svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *SchedulingController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// GetBookableSlots handles GET /reviewer/availability/by-date
// @Summary Resolve a reviewer's free windows for one date
// @Description Returns the reviewer's bookable windows for the date after subtracting breaks and active bookings
// @Tags Scheduling
// @Security BearerAuth
// @Produce json
// @Param reviewerId query string true "Reviewer ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} dto.BookableSlotResponse
// @Failure 404 {object} errors.AppError
// @Router /reviewer/availability/by-date [get]
func (c *SchedulingController) GetBookableSlots(ctx echo.Context) error {
	reviewerID, err := uuid.Parse(ctx.QueryParam("reviewerId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid reviewer ID")
	}
	date, err := time.Parse(time.DateOnly, ctx.QueryParam("date"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD")
	}

	result, appErr := c.SchedulingService.GetBookableSlots(ctx.Request().Context(), reviewerID, date)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// CreateReview handles POST /reviews
// @Summary Book a review session
// @Description Creates a pending review booking inside one of the reviewer's free windows
// @Tags Scheduling
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateReviewRequest true "Booking request"
// @Success 200 {object} dto.ReviewResponse
// @Failure 409 {object} errors.AppError
// @Router /reviews [post]
func (c *SchedulingController) CreateReview(ctx echo.Context) error {
	advisorID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateReviewRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.SchedulingService.CreateBooking(ctx.Request().Context(), advisorID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review booked")
}

// Accept handles POST /reviews/:id/accept
// @Summary Accept a pending review
// @Tags Scheduling
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 409 {object} errors.AppError
// @Router /reviews/{id}/accept [post]
func (c *SchedulingController) Accept(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	result, appErr := c.SchedulingService.Accept(ctx.Request().Context(), reviewerID, reviewID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review accepted")
}

// Reject handles POST /reviews/:id/reject
// @Summary Reject a pending review
// @Tags Scheduling
// @Security BearerAuth
// @Accept json
// @Param id path string true "Review ID"
// @Param request body dto.RejectRequest true "Rejection reason"
// @Success 200 {object} dto.ReviewResponse
// @Router /reviews/{id}/reject [post]
func (c *SchedulingController) Reject(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	var req dto.RejectRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.SchedulingService.Reject(ctx.Request().Context(), reviewerID, reviewID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review rejected")
}

// Reschedule handles POST /reviews/:id/reschedule
// @Summary Move a review to a new time or reviewer
// @Tags Scheduling
// @Security BearerAuth
// @Accept json
// @Param id path string true "Review ID"
// @Param request body dto.RescheduleRequest true "New placement"
// @Success 200 {object} dto.ReviewResponse
// @Failure 409 {object} errors.AppError
// @Router /reviews/{id}/reschedule [post]
func (c *SchedulingController) Reschedule(ctx echo.Context) error {
	advisorID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	var req dto.RescheduleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.SchedulingService.Reschedule(ctx.Request().Context(), advisorID, reviewID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review rescheduled")
}

// Cancel handles POST /reviews/:id/cancel
// @Summary Cancel a review
// @Tags Scheduling
// @Security BearerAuth
// @Accept json
// @Param id path string true "Review ID"
// @Param request body dto.CancelRequest true "Cancellation reason"
// @Success 200 {object} dto.ReviewResponse
// @Router /reviews/{id}/cancel [post]
func (c *SchedulingController) Cancel(ctx echo.Context) error {
	advisorID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	var req dto.CancelRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.SchedulingService.Cancel(ctx.Request().Context(), advisorID, reviewID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review cancelled")
}

// Complete handles POST /reviews/:id/complete
// @Summary Mark a held session as completed
// @Tags Scheduling
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} dto.ReviewResponse
// @Router /reviews/{id}/complete [post]
func (c *SchedulingController) Complete(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	result, appErr := c.SchedulingService.Complete(ctx.Request().Context(), userID, reviewID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Review completed")
}

// GetReview handles GET /reviews/:id
// @Summary Fetch one review booking
// @Tags Scheduling
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 404 {object} errors.AppError
// @Router /reviews/{id} [get]
func (c *SchedulingController) GetReview(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	reviewID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid review ID")
	}

	result, appErr := c.SchedulingService.GetReview(ctx.Request().Context(), userID, reviewID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// ListMyReviews handles GET /reviews
// @Summary List the caller's review bookings
// @Tags Scheduling
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.PaginatedReviewResponse
// @Router /reviews [get]
func (c *SchedulingController) ListMyReviews(ctx echo.Context) error {
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

	result, appErr := c.SchedulingService.ListMyReviews(ctx.Request().Context(), userID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
