package router

import (
	"review-scheduler/core/middleware"
	"review-scheduler/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	NotificationController *controller.NotificationController
}

func NewNotificationRouter(notificationController *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{NotificationController: notificationController}
}

func (r *NotificationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	routes := v1.Group("/notifications", mw.AuthMiddleware())
	routes.GET("", r.NotificationController.GetMyNotifications)
	routes.GET("/unread-count", r.NotificationController.CountUnread)
	routes.PUT("/mark-read", r.NotificationController.MarkAsRead)
	routes.PUT("/mark-all-read", r.NotificationController.MarkAllAsRead)
}
