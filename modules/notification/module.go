package notification

import (
	"review-scheduler/core/database"
	"review-scheduler/core/middleware"
	"review-scheduler/modules/notification/controller"
	"review-scheduler/modules/notification/repository"
	"review-scheduler/modules/notification/router"
	"review-scheduler/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init wires the notification module and registers routes. The service
// is returned so the background worker can write notifications through
// the same path.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) service.NotificationServiceInterface {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)
	rtr := router.NewNotificationRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
