package scheduling

import (
	"review-scheduler/core/database"
	"review-scheduler/core/middleware"
	"review-scheduler/modules/scheduling/controller"
	"review-scheduler/modules/scheduling/repository"
	"review-scheduler/modules/scheduling/router"
	"review-scheduler/modules/scheduling/service"
	userRepository "review-scheduler/modules/user/repository"

	"github.com/labstack/echo/v4"
)

// Init wires the scheduling module and registers routes. Availability,
// locking, notification and the session default come from the caller so
// deployments can swap the lock backend.
func Init(
	e *echo.Echo,
	db database.IDatabase,
	mw *middleware.Middleware,
	availability service.AvailabilityProvider,
	locker service.Locker,
	notifier service.Notifier,
	defaultSessionMinutes int,
) service.SchedulingServiceInterface {
	reviews := repository.NewReviewRepository(db)
	users := userRepository.NewUserRepository(db)
	svc := service.NewSchedulingService(reviews, users, availability, locker, notifier, defaultSessionMinutes)
	ctrl := controller.NewSchedulingController(svc)
	rtr := router.NewSchedulingRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
