package router

import (
	"review-scheduler/core/middleware"
	"review-scheduler/modules/availability/controller"
	userentity "review-scheduler/modules/user/entity"

	"github.com/labstack/echo/v4"
)

// AvailabilityRouter handles reviewer availability routes
type AvailabilityRouter struct {
	AvailabilityController *controller.AvailabilityController
}

func NewAvailabilityRouter(availabilityController *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{
		AvailabilityController: availabilityController,
	}
}

// Setup registers availability routes. All writes are reviewer-only:
// availability is single-writer, owned by the reviewer it describes.
func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	routes := v1.Group("/reviewer/availability",
		mw.AuthMiddleware(), mw.RequireRole(userentity.RoleReviewer))

	routes.GET("", r.AvailabilityController.GetPattern)
	routes.POST("/slots", r.AvailabilityController.CreateSlot)
	routes.DELETE("/slots/:id", r.AvailabilityController.DeleteSlot)
	routes.POST("/breaks", r.AvailabilityController.CreateBreak)
	routes.DELETE("/breaks/:id", r.AvailabilityController.DeleteBreak)
	routes.PUT("/status", r.AvailabilityController.UpdateStatus)
}
