package controller

import (
	"review-scheduler/core/constants"
	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/utils"
	"review-scheduler/modules/availability/dto"
	"review-scheduler/modules/availability/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AvailabilityController handles the reviewer-owned availability surface
type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityServiceInterface
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *AvailabilityController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// GetPattern handles GET /reviewer/availability
// @Summary Get own availability pattern
// @Description Returns the authenticated reviewer's slots, breaks and status
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PatternResponse
// @Router /reviewer/availability [get]
func (c *AvailabilityController) GetPattern(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.AvailabilityService.GetPattern(ctx.Request().Context(), reviewerID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// CreateSlot handles POST /reviewer/availability/slots
// @Summary Declare an availability slot
// @Description Creates a recurring or specific availability slot for the authenticated reviewer
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSlotRequest true "Slot definition"
// @Success 200 {object} dto.SlotResponse
// @Failure 400 {object} errors.AppError
// @Router /reviewer/availability/slots [post]
func (c *AvailabilityController) CreateSlot(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateSlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.AvailabilityService.CreateSlot(ctx.Request().Context(), reviewerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Availability slot created")
}

// DeleteSlot handles DELETE /reviewer/availability/slots/:id
// @Summary Remove an availability slot
// @Tags Availability
// @Security BearerAuth
// @Param id path string true "Slot ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 404 {object} errors.AppError
// @Router /reviewer/availability/slots/{id} [delete]
func (c *AvailabilityController) DeleteSlot(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot ID")
	}

	if appErr := c.AvailabilityService.DeleteSlot(ctx.Request().Context(), reviewerID, slotID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Availability slot deleted")
}

// CreateBreak handles POST /reviewer/availability/breaks
// @Summary Declare a weekly break block
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBreakRequest true "Break definition"
// @Success 200 {object} dto.BreakResponse
// @Router /reviewer/availability/breaks [post]
func (c *AvailabilityController) CreateBreak(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateBreakRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.AvailabilityService.CreateBreak(ctx.Request().Context(), reviewerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Break block created")
}

// DeleteBreak handles DELETE /reviewer/availability/breaks/:id
// @Summary Remove a break block
// @Tags Availability
// @Security BearerAuth
// @Param id path string true "Break ID"
// @Success 200 {object} controller.SuccessResponse
// @Router /reviewer/availability/breaks/{id} [delete]
func (c *AvailabilityController) DeleteBreak(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	breakID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid break ID")
	}

	if appErr := c.AvailabilityService.DeleteBreak(ctx.Request().Context(), reviewerID, breakID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Break block deleted")
}

// UpdateStatus handles PUT /reviewer/availability/status
// @Summary Set reviewer status
// @Description Sets the global availability override: available, busy or dnd
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} controller.SuccessResponse
// @Router /reviewer/availability/status [put]
func (c *AvailabilityController) UpdateStatus(ctx echo.Context) error {
	reviewerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.UpdateStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	if appErr := c.AvailabilityService.SetStatus(ctx.Request().Context(), reviewerID, req.Status); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Reviewer status updated")
}
