package service

import (
	"context"
	"sort"
	"time"

	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/logger"
	"review-scheduler/core/params"
	"review-scheduler/core/timegrid"
	"review-scheduler/core/utils"
	availEntity "review-scheduler/modules/availability/entity"
	availService "review-scheduler/modules/availability/service"
	"review-scheduler/modules/scheduling/dto"
	"review-scheduler/modules/scheduling/entity"
	"review-scheduler/modules/scheduling/repository"
	userEntity "review-scheduler/modules/user/entity"
	userRepository "review-scheduler/modules/user/repository"

	"github.com/google/uuid"
)

// Booking lifecycle events handed to the Notifier.
const (
	EventBookingCreated     = "booking_created"
	EventBookingAccepted    = "booking_accepted"
	EventBookingRejected    = "booking_rejected"
	EventBookingRescheduled = "booking_rescheduled"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingCompleted   = "booking_completed"
)

// AvailabilityProvider is the slice of the availability module the
// scheduler depends on.
type AvailabilityProvider interface {
	DayPattern(ctx context.Context, reviewerID uuid.UUID, date time.Time) (*availService.DayPatternResult, *errors.AppError)
}

// Notifier fans a lifecycle event out to the booking's participants.
// Delivery failures never fail the booking mutation.
type Notifier interface {
	BookingEvent(ctx context.Context, event string, review *entity.Review) error
}

type SchedulingServiceInterface interface {
	GetBookableSlots(ctx context.Context, reviewerID uuid.UUID, date time.Time) ([]dto.BookableSlotResponse, *errors.AppError)
	CreateBooking(ctx context.Context, advisorID uuid.UUID, req *dto.CreateReviewRequest) (*dto.ReviewResponse, *errors.AppError)
	Accept(ctx context.Context, reviewerID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError)
	Reject(ctx context.Context, reviewerID, reviewID uuid.UUID, req *dto.RejectRequest) (*dto.ReviewResponse, *errors.AppError)
	Reschedule(ctx context.Context, advisorID, reviewID uuid.UUID, req *dto.RescheduleRequest) (*dto.ReviewResponse, *errors.AppError)
	Cancel(ctx context.Context, advisorID, reviewID uuid.UUID, req *dto.CancelRequest) (*dto.ReviewResponse, *errors.AppError)
	Complete(ctx context.Context, userID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError)
	GetReview(ctx context.Context, userID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError)
	ListMyReviews(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*dto.PaginatedReviewResponse, *errors.AppError)
}

type SchedulingService struct {
	reviews         repository.ReviewRepositoryInterface
	users           userRepository.UserRepositoryInterface
	availability    AvailabilityProvider
	locker          Locker
	notifier        Notifier
	defaultDuration int
	now             func() time.Time // injectable for tests
}

func NewSchedulingService(
	reviews repository.ReviewRepositoryInterface,
	users userRepository.UserRepositoryInterface,
	availability AvailabilityProvider,
	locker Locker,
	notifier Notifier,
	defaultDuration int,
) SchedulingServiceInterface {
	return &SchedulingService{
		reviews:         reviews,
		users:           users,
		availability:    availability,
		locker:          locker,
		notifier:        notifier,
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

func (s *SchedulingService) GetBookableSlots(ctx context.Context, reviewerID uuid.UUID, date time.Time) ([]dto.BookableSlotResponse, *errors.AppError) {
	if appErr := s.requireReviewer(ctx, reviewerID); appErr != nil {
		return nil, appErr
	}

	free, appErr := s.freeWindowsForDay(ctx, reviewerID, date, nil)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToBookableSlotResponses(free), nil
}

func (s *SchedulingService) CreateBooking(ctx context.Context, advisorID uuid.UUID, req *dto.CreateReviewRequest) (*dto.ReviewResponse, *errors.AppError) {
	studentID, appErr := parseUUIDField("studentId", req.StudentID)
	if appErr != nil {
		return nil, appErr
	}
	reviewerID, appErr := parseUUIDField("reviewerId", req.ReviewerID)
	if appErr != nil {
		return nil, appErr
	}
	scheduledAt, appErr := parseScheduledAt(req.ScheduledAt)
	if appErr != nil {
		return nil, appErr
	}
	mode := entity.ReviewMode(req.Mode)
	if !mode.Valid() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "mode must be \"online\" or \"offline\"",
			controller.NewValidationError("mode", "online | offline"))
	}
	if req.Week < 1 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "week must be a positive term week",
			controller.NewValidationError("week", "must be >= 1"))
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	if duration < 1 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "durationMinutes must be positive",
			controller.NewValidationError("durationMinutes", "must be >= 1"))
	}

	if !scheduledAt.After(s.now()) {
		return nil, errors.NewAppError(errors.ErrPastDateTime, "scheduledAt must be in the future", nil)
	}
	window, appErr := sessionWindow(scheduledAt, duration)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := s.requireReviewer(ctx, reviewerID); appErr != nil {
		return nil, appErr
	}
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load student", err)
	}
	if student == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Student not found", nil)
	}

	release, appErr := s.locker.Acquire(ctx, LockKey(reviewerID, scheduledAt))
	if appErr != nil {
		return nil, appErr
	}
	defer release()

	dup, err := s.reviews.ExistsOccupyingDuplicate(ctx, studentID, reviewerID, scheduledAt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check for duplicate bookings", err)
	}
	if dup {
		return nil, errors.NewAppError(errors.ErrDuplicateRequest,
			"an active booking for this student, reviewer and time already exists", nil)
	}

	if appErr := s.requireWindowFree(ctx, reviewerID, scheduledAt, window, nil); appErr != nil {
		return nil, appErr
	}

	review := &entity.Review{
		Ref:             utils.GenerateReviewRef(),
		StudentID:       studentID,
		ReviewerID:      reviewerID,
		AdvisorID:       advisorID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Mode:            mode,
		Week:            req.Week,
		Status:          entity.ReviewStatusPending,
	}

	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create review booking", err)
	}

	logger.Info("SchedulingService:CreateBooking:Created",
		"ref", created.Ref, "reviewer_id", reviewerID, "scheduled_at", scheduledAt)
	s.notify(ctx, EventBookingCreated, created)
	return dto.ToReviewResponse(created), nil
}

func (s *SchedulingService) Accept(ctx context.Context, reviewerID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError) {
	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.ReviewerID != reviewerID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the assigned reviewer may accept", nil)
	}
	if review.Status != entity.ReviewStatusPending {
		return nil, transitionError(review.Status, entity.ReviewStatusAccepted)
	}

	release, appErr := s.locker.Acquire(ctx, LockKey(review.ReviewerID, review.ScheduledAt))
	if appErr != nil {
		return nil, appErr
	}
	defer release()

	// The pending booking holds its own window; recheck against
	// everything else in case a slot was deleted underneath it.
	if appErr := s.requireWindowFree(ctx, review.ReviewerID, review.ScheduledAt, review.Window(), &review.ID); appErr != nil {
		return nil, appErr
	}

	ok, err := s.reviews.UpdateStatus(ctx, review.ID, entity.ReviewStatusPending, entity.ReviewStatusAccepted, nil, nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to accept review booking", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			"booking changed state concurrently, reload and retry", nil)
	}

	review.Status = entity.ReviewStatusAccepted
	s.notify(ctx, EventBookingAccepted, review)
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) Reject(ctx context.Context, reviewerID, reviewID uuid.UUID, req *dto.RejectRequest) (*dto.ReviewResponse, *errors.AppError) {
	if req.Reason == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "a rejection reason is required",
			controller.NewValidationError("reason", "required"))
	}

	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.ReviewerID != reviewerID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the assigned reviewer may reject", nil)
	}
	if review.Status != entity.ReviewStatusPending {
		return nil, transitionError(review.Status, entity.ReviewStatusRejected)
	}

	ok, err := s.reviews.UpdateStatus(ctx, review.ID, entity.ReviewStatusPending, entity.ReviewStatusRejected, &req.Reason, nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to reject review booking", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			"booking changed state concurrently, reload and retry", nil)
	}

	review.Status = entity.ReviewStatusRejected
	review.RejectionReason = &req.Reason
	s.notify(ctx, EventBookingRejected, review)
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) Reschedule(ctx context.Context, advisorID, reviewID uuid.UUID, req *dto.RescheduleRequest) (*dto.ReviewResponse, *errors.AppError) {
	scheduledAt, appErr := parseScheduledAt(req.ScheduledAt)
	if appErr != nil {
		return nil, appErr
	}
	if !scheduledAt.After(s.now()) {
		return nil, errors.NewAppError(errors.ErrPastDateTime, "scheduledAt must be in the future", nil)
	}

	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.AdvisorID != advisorID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the owning advisor may reschedule", nil)
	}

	// A pending booking stays pending across a reschedule; a confirmed
	// one lands back in scheduled.
	target := entity.ReviewStatusScheduled
	if review.Status == entity.ReviewStatusPending {
		target = entity.ReviewStatusPending
	}
	if !review.Status.CanTransition(target) {
		return nil, transitionError(review.Status, target)
	}

	reviewerID := review.ReviewerID
	if req.ReviewerID != "" {
		reviewerID, appErr = parseUUIDField("reviewerId", req.ReviewerID)
		if appErr != nil {
			return nil, appErr
		}
		if appErr := s.requireReviewer(ctx, reviewerID); appErr != nil {
			return nil, appErr
		}
	}

	window, appErr := sessionWindow(scheduledAt, review.DurationMinutes)
	if appErr != nil {
		return nil, appErr
	}

	release, appErr := s.acquireBoth(ctx,
		LockKey(review.ReviewerID, review.ScheduledAt),
		LockKey(reviewerID, scheduledAt))
	if appErr != nil {
		return nil, appErr
	}
	defer release()

	if appErr := s.requireWindowFree(ctx, reviewerID, scheduledAt, window, &review.ID); appErr != nil {
		return nil, appErr
	}

	ok, err := s.reviews.UpdateSchedule(ctx, review.ID, review.Status, target, reviewerID, scheduledAt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to reschedule review booking", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			"booking changed state concurrently, reload and retry", nil)
	}

	logger.Info("SchedulingService:Reschedule:Moved",
		"ref", review.Ref, "reviewer_id", reviewerID, "scheduled_at", scheduledAt)

	review.Status = target
	review.ReviewerID = reviewerID
	review.ScheduledAt = scheduledAt
	if req.NotifyParticipants {
		s.notify(ctx, EventBookingRescheduled, review)
	}
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) Cancel(ctx context.Context, advisorID, reviewID uuid.UUID, req *dto.CancelRequest) (*dto.ReviewResponse, *errors.AppError) {
	if req.Reason == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "a cancellation reason is required",
			controller.NewValidationError("reason", "required"))
	}

	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.AdvisorID != advisorID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the owning advisor may cancel", nil)
	}
	if !review.Status.CanTransition(entity.ReviewStatusCancelled) {
		return nil, transitionError(review.Status, entity.ReviewStatusCancelled)
	}

	ok, err := s.reviews.UpdateStatus(ctx, review.ID, review.Status, entity.ReviewStatusCancelled, nil, &req.Reason)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to cancel review booking", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			"booking changed state concurrently, reload and retry", nil)
	}

	review.Status = entity.ReviewStatusCancelled
	review.CancellationReason = &req.Reason
	if req.NotifyParticipants {
		s.notify(ctx, EventBookingCancelled, review)
	}
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) Complete(ctx context.Context, userID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError) {
	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.ReviewerID != userID && review.AdvisorID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the reviewer or advisor may mark completion", nil)
	}
	if !review.Status.CanTransition(entity.ReviewStatusCompleted) {
		return nil, transitionError(review.Status, entity.ReviewStatusCompleted)
	}
	if s.now().Before(review.EndsAt()) {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			"a session cannot be completed before it ends", nil)
	}

	ok, err := s.reviews.UpdateStatus(ctx, review.ID, review.Status, entity.ReviewStatusCompleted, nil, nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to complete review booking", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			"booking changed state concurrently, reload and retry", nil)
	}

	review.Status = entity.ReviewStatusCompleted
	s.notify(ctx, EventBookingCompleted, review)
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) GetReview(ctx context.Context, userID, reviewID uuid.UUID) (*dto.ReviewResponse, *errors.AppError) {
	review, appErr := s.loadReview(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if !review.InvolvesUser(userID) {
		return nil, errors.NewAppError(errors.ErrForbidden, "you are not a participant of this booking", nil)
	}
	return dto.ToReviewResponse(review), nil
}

func (s *SchedulingService) ListMyReviews(ctx context.Context, userID uuid.UUID, qp params.QueryParams) (*dto.PaginatedReviewResponse, *errors.AppError) {
	page, err := s.reviews.ListByParticipant(ctx, userID, qp)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list review bookings", err)
	}

	items := make([]dto.ReviewResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *dto.ToReviewResponse(&page.Items[i]))
	}
	return &dto.PaginatedReviewResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}, nil
}

// freeWindowsForDay resolves the reviewer's bookable windows for the
// date, subtracting every occupying booking except the excluded one.
func (s *SchedulingService) freeWindowsForDay(ctx context.Context, reviewerID uuid.UUID, date time.Time, exclude *uuid.UUID) ([]availEntity.BookableWindow, *errors.AppError) {
	pattern, appErr := s.availability.DayPattern(ctx, reviewerID, date)
	if appErr != nil {
		return nil, appErr
	}

	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.Add(24 * time.Hour)
	occupying, err := s.reviews.ListOccupyingByReviewerBetween(ctx, reviewerID, from, to, exclude)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load existing bookings", err)
	}

	busy := make([]timegrid.Window, 0, len(occupying))
	for i := range occupying {
		busy = append(busy, occupying[i].Window())
	}

	return availService.ResolveDay(pattern.Status, pattern.Slots, pattern.Breaks, busy, date)
}

// requireWindowFree re-resolves the day under the lock and demands the
// requested window to fit wholly inside one free fragment.
func (s *SchedulingService) requireWindowFree(ctx context.Context, reviewerID uuid.UUID, date time.Time, window timegrid.Window, exclude *uuid.UUID) *errors.AppError {
	free, appErr := s.freeWindowsForDay(ctx, reviewerID, date, exclude)
	if appErr != nil {
		return appErr
	}
	for _, bw := range free {
		if bw.Window.ContainsWindow(window) {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrSlotUnavailable,
		"the requested time is no longer available for this reviewer", window.String())
}

func (s *SchedulingService) requireReviewer(ctx context.Context, reviewerID uuid.UUID) *errors.AppError {
	ok, err := s.users.ExistsWithRole(ctx, reviewerID, userEntity.RoleReviewer)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to look up reviewer", err)
	}
	if !ok {
		return errors.NewAppError(errors.ErrNotFound, "Reviewer not found", nil)
	}
	return nil
}

func (s *SchedulingService) loadReview(ctx context.Context, id uuid.UUID) (*entity.Review, *errors.AppError) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load review booking", err)
	}
	if review == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Review booking not found", nil)
	}
	return review, nil
}

// acquireBoth takes two reviewer-day locks in a deterministic order so
// two concurrent reschedules can never deadlock on each other.
func (s *SchedulingService) acquireBoth(ctx context.Context, a, b string) (func(), *errors.AppError) {
	if a == b {
		return s.locker.Acquire(ctx, a)
	}
	keys := []string{a, b}
	sort.Strings(keys)

	first, appErr := s.locker.Acquire(ctx, keys[0])
	if appErr != nil {
		return nil, appErr
	}
	second, appErr := s.locker.Acquire(ctx, keys[1])
	if appErr != nil {
		first()
		return nil, appErr
	}
	return func() {
		second()
		first()
	}, nil
}

func (s *SchedulingService) notify(ctx context.Context, event string, review *entity.Review) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingEvent(ctx, event, review); err != nil {
		logger.Warn("SchedulingService:Notify:Failed", "event", event, "ref", review.Ref, "error", err.Error())
	}
}

func parseUUIDField(field, value string) (uuid.UUID, *errors.AppError) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.ErrInvalidInput, field+" must be a valid UUID",
			controller.NewValidationError(field, err.Error()))
	}
	return id, nil
}

func parseScheduledAt(value string) (time.Time, *errors.AppError) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "scheduledAt must be an ISO-8601 timestamp",
			controller.NewValidationError("scheduledAt", err.Error()))
	}
	return t, nil
}

// sessionWindow maps an absolute start plus duration onto the day-local
// grid. Sessions are day-local and may not cross midnight.
func sessionWindow(scheduledAt time.Time, durationMinutes int) (timegrid.Window, *errors.AppError) {
	start := timegrid.FromClock(scheduledAt)
	if start.Minutes()+durationMinutes > 24*60 {
		return timegrid.Window{}, errors.NewAppError(errors.ErrInvalidInput,
			"a session may not cross midnight",
			controller.NewValidationError("durationMinutes", "session would extend past 23:59"))
	}
	return timegrid.Window{Start: start, End: start.AddMinutes(durationMinutes)}, nil
}

func transitionError(from, to entity.ReviewStatus) *errors.AppError {
	return errors.NewAppError(errors.ErrInvalidTransition,
		"cannot move a "+string(from)+" booking to "+string(to),
		map[string]string{"from": string(from), "to": string(to)})
}
