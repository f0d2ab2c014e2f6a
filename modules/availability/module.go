package availability

import (
	"review-scheduler/core/database"
	"review-scheduler/core/middleware"
	"review-scheduler/modules/availability/controller"
	"review-scheduler/modules/availability/repository"
	"review-scheduler/modules/availability/router"
	"review-scheduler/modules/availability/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the availability module and registers routes.
// The service is returned so the scheduling module can resolve against
// the same store.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) service.AvailabilityServiceInterface {
	repo := repository.NewAvailabilityRepository(db)
	svc := service.NewAvailabilityService(repo)
	ctrl := controller.NewAvailabilityController(svc)
	rtr := router.NewAvailabilityRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
