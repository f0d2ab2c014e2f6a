package router

import (
	"review-scheduler/core/middleware"
	"review-scheduler/modules/scheduling/controller"
	userentity "review-scheduler/modules/user/entity"

	"github.com/labstack/echo/v4"
)

// SchedulingRouter handles slot discovery and review lifecycle routes
type SchedulingRouter struct {
	SchedulingController *controller.SchedulingController
}

func NewSchedulingRouter(schedulingController *controller.SchedulingController) *SchedulingRouter {
	return &SchedulingRouter{
		SchedulingController: schedulingController,
	}
}

// Setup registers scheduling routes. Bookings are created and moved by
// advisors; accept and reject belong to the assigned reviewer.
func (r *SchedulingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1", mw.AuthMiddleware())

	v1.GET("/reviewer/availability/by-date", r.SchedulingController.GetBookableSlots,
		mw.RequireRole(userentity.RoleAdvisor, userentity.RoleAdmin))

	reviews := v1.Group("/reviews")
	reviews.GET("", r.SchedulingController.ListMyReviews)
	reviews.GET("/:id", r.SchedulingController.GetReview)
	reviews.POST("", r.SchedulingController.CreateReview,
		mw.RequireRole(userentity.RoleAdvisor, userentity.RoleAdmin))
	reviews.POST("/:id/accept", r.SchedulingController.Accept,
		mw.RequireRole(userentity.RoleReviewer))
	reviews.POST("/:id/reject", r.SchedulingController.Reject,
		mw.RequireRole(userentity.RoleReviewer))
	reviews.POST("/:id/reschedule", r.SchedulingController.Reschedule,
		mw.RequireRole(userentity.RoleAdvisor, userentity.RoleAdmin))
	reviews.POST("/:id/cancel", r.SchedulingController.Cancel,
		mw.RequireRole(userentity.RoleAdvisor, userentity.RoleAdmin))
	reviews.POST("/:id/complete", r.SchedulingController.Complete,
		mw.RequireRole(userentity.RoleReviewer, userentity.RoleAdvisor, userentity.RoleAdmin))
}
