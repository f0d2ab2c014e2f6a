package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"review-scheduler/core/errors"
	"review-scheduler/core/params"
	availEntity "review-scheduler/modules/availability/entity"
	availService "review-scheduler/modules/availability/service"
	"review-scheduler/modules/scheduling/dto"
	"review-scheduler/modules/scheduling/entity"
	userEntity "review-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

// fakeReviewRepo is an in-memory ReviewRepositoryInterface with the
// same guarded-update semantics as the SQL implementation.
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*entity.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*entity.Review)}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *entity.Review) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *review
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	f.reviews[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) ListOccupyingByReviewerBetween(_ context.Context, reviewerID uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Review
	for _, r := range f.reviews {
		if r.ReviewerID != reviewerID || !r.Status.Occupies() {
			continue
		}
		if exclude != nil && r.ID == *exclude {
			continue
		}
		if r.ScheduledAt.Before(from) || !r.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReviewRepo) ExistsOccupyingDuplicate(_ context.Context, studentID, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.StudentID == studentID && r.ReviewerID == reviewerID &&
			r.ScheduledAt.Equal(scheduledAt) && r.Status.Occupies() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.ReviewStatus, rejectionReason, cancellationReason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if rejectionReason != nil {
		r.RejectionReason = rejectionReason
	}
	if cancellationReason != nil {
		r.CancellationReason = cancellationReason
	}
	return true, nil
}

func (f *fakeReviewRepo) UpdateSchedule(_ context.Context, id uuid.UUID, from, to entity.ReviewStatus, reviewerID uuid.UUID, scheduledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.ReviewerID = reviewerID
	r.ScheduledAt = scheduledAt
	return true, nil
}

func (f *fakeReviewRepo) ListByParticipant(_ context.Context, userID uuid.UUID, qp params.QueryParams) (*entity.PaginatedReviewEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qp = qp.Normalized()
	var items []entity.Review
	for _, r := range f.reviews {
		if r.InvolvesUser(userID) {
			items = append(items, *r)
		}
	}
	return &entity.PaginatedReviewEntity{
		Items:      items,
		TotalItems: len(items),
		PageNumber: qp.PageNumber,
		PageSize:   qp.PageSize,
	}, nil
}

type fakeUserRepo struct {
	roles map[uuid.UUID]string
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*userEntity.User, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, nil
	}
	u := &userEntity.User{Role: role}
	u.ID = id
	return u, nil
}

func (f *fakeUserRepo) ExistsWithRole(_ context.Context, id uuid.UUID, role string) (bool, error) {
	return f.roles[id] == role, nil
}

// fakeAvailability serves one fixed weekly pattern for every reviewer.
type fakeAvailability struct {
	status availEntity.ReviewerStatus
	slots  []availEntity.AvailabilitySlot
	breaks []availEntity.BreakBlock
}

func (f *fakeAvailability) DayPattern(_ context.Context, _ uuid.UUID, _ time.Time) (*availService.DayPatternResult, *errors.AppError) {
	status := f.status
	if status == "" {
		status = availEntity.ReviewerStatusAvailable
	}
	return &availService.DayPatternResult{Status: status, Slots: f.slots, Breaks: f.breaks}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) BookingEvent(_ context.Context, event string, _ *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	svc        *SchedulingService
	reviews    *fakeReviewRepo
	notifier   *fakeNotifier
	reviewerID uuid.UUID
	studentID  uuid.UUID
	advisorID  uuid.UUID
}

// testNow is a Monday morning; the standing pattern below covers every
// day of the week 09:00-17:00.
var testNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reviewerID := uuid.New()
	studentID := uuid.New()
	advisorID := uuid.New()

	var slots []availEntity.AvailabilitySlot
	for day := 0; day < 7; day++ {
		d := day
		s := availEntity.AvailabilitySlot{
			ReviewerID: reviewerID,
			Kind:       availEntity.SlotKindRecurring,
			DayOfWeek:  &d,
			StartTime:  "09:00",
			EndTime:    "17:00",
		}
		s.ID = uuid.New()
		slots = append(slots, s)
	}

	reviews := newFakeReviewRepo()
	notifier := &fakeNotifier{}
	svc := &SchedulingService{
		reviews: reviews,
		users: &fakeUserRepo{roles: map[uuid.UUID]string{
			reviewerID: userEntity.RoleReviewer,
			studentID:  userEntity.RoleStudent,
			advisorID:  userEntity.RoleAdvisor,
		}},
		availability:    &fakeAvailability{slots: slots},
		locker:          NewMemoryLocker(),
		notifier:        notifier,
		defaultDuration: 30,
		now:             func() time.Time { return testNow },
	}

	return &fixture{
		svc:        svc,
		reviews:    reviews,
		notifier:   notifier,
		reviewerID: reviewerID,
		studentID:  studentID,
		advisorID:  advisorID,
	}
}

func (fx *fixture) createRequest(at time.Time) *dto.CreateReviewRequest {
	return &dto.CreateReviewRequest{
		StudentID:   fx.studentID.String(),
		ReviewerID:  fx.reviewerID.String(),
		ScheduledAt: at.Format(time.RFC3339),
		Mode:        "online",
		Week:        7,
	}
}

func (fx *fixture) mustCreate(t *testing.T, at time.Time) *dto.ReviewResponse {
	t.Helper()
	resp, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, fx.createRequest(at))
	if appErr != nil {
		t.Fatalf("create booking: %v", appErr)
	}
	return resp
}

func TestCreateBookingHappyPath(t *testing.T) {
	fx := newFixture(t)
	at := testNow.Add(2 * time.Hour) // 10:00

	resp := fx.mustCreate(t, at)
	if resp.Status != string(entity.ReviewStatusPending) {
		t.Errorf("got status %s, want pending", resp.Status)
	}
	if resp.DurationMinutes != 30 {
		t.Errorf("got duration %d, want the 30 minute default", resp.DurationMinutes)
	}
	if resp.Ref == "" {
		t.Error("expected a booking ref")
	}
}

func TestCreateBookingPastTime(t *testing.T) {
	fx := newFixture(t)
	_, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID,
		fx.createRequest(testNow.Add(-time.Hour)))
	if appErr == nil || appErr.Code != errors.ErrPastDateTime {
		t.Fatalf("got %v, want %s", appErr, errors.ErrPastDateTime)
	}
}

func TestCreateBookingOutsideAvailability(t *testing.T) {
	fx := newFixture(t)
	at := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC) // after 17:00

	_, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, fx.createRequest(at))
	if appErr == nil || appErr.Code != errors.ErrSlotUnavailable {
		t.Fatalf("got %v, want %s", appErr, errors.ErrSlotUnavailable)
	}
}

func TestCreateBookingUnknownReviewer(t *testing.T) {
	fx := newFixture(t)
	req := fx.createRequest(testNow.Add(2 * time.Hour))
	req.ReviewerID = uuid.New().String()

	_, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, req)
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("got %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestCreateBookingDuplicate(t *testing.T) {
	fx := newFixture(t)
	at := testNow.Add(2 * time.Hour)
	fx.mustCreate(t, at)

	_, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, fx.createRequest(at))
	if appErr == nil || appErr.Code != errors.ErrDuplicateRequest {
		t.Fatalf("got %v, want %s", appErr, errors.ErrDuplicateRequest)
	}
}

// Concurrent creates for the same window must admit exactly one.
func TestCreateBookingConcurrentSameWindow(t *testing.T) {
	fx := newFixture(t)
	at := testNow.Add(2 * time.Hour)
	const n = 8

	var wg sync.WaitGroup
	results := make([]*errors.AppError, n)
	for i := 0; i < n; i++ {
		// Distinct students so the duplicate guard does not apply.
		studentID := uuid.New()
		fx.svc.users.(*fakeUserRepo).roles[studentID] = userEntity.RoleStudent

		req := fx.createRequest(at)
		req.StudentID = studentID.String()

		wg.Add(1)
		go func(i int, req *dto.CreateReviewRequest) {
			defer wg.Done()
			_, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, req)
			results[i] = appErr
		}(i, req)
	}
	wg.Wait()

	var won int
	for _, appErr := range results {
		if appErr == nil {
			won++
		} else if appErr.Code != errors.ErrSlotUnavailable {
			t.Errorf("loser got %s, want %s", appErr.Code, errors.ErrSlotUnavailable)
		}
	}
	if won != 1 {
		t.Fatalf("%d bookings won the window, want exactly 1", won)
	}
}

func TestAcceptFlow(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	resp, appErr := fx.svc.Accept(context.Background(), fx.reviewerID, id)
	if appErr != nil {
		t.Fatalf("accept: %v", appErr)
	}
	if resp.Status != string(entity.ReviewStatusAccepted) {
		t.Errorf("got status %s, want accepted", resp.Status)
	}

	// Accepting twice is an invalid transition.
	_, appErr = fx.svc.Accept(context.Background(), fx.reviewerID, id)
	if appErr == nil || appErr.Code != errors.ErrInvalidTransition {
		t.Fatalf("got %v, want %s", appErr, errors.ErrInvalidTransition)
	}
}

func TestAcceptRequiresAssignedReviewer(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))

	_, appErr := fx.svc.Accept(context.Background(), uuid.New(), uuid.MustParse(created.ID))
	if appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("got %v, want %s", appErr, errors.ErrForbidden)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))

	_, appErr := fx.svc.Reject(context.Background(), fx.reviewerID, uuid.MustParse(created.ID), &dto.RejectRequest{})
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("got %v, want %s", appErr, errors.ErrInvalidInput)
	}
}

// Rejecting a booking frees its window for someone else.
func TestRejectFreesWindow(t *testing.T) {
	fx := newFixture(t)
	at := testNow.Add(2 * time.Hour)
	created := fx.mustCreate(t, at)

	_, appErr := fx.svc.Reject(context.Background(), fx.reviewerID, uuid.MustParse(created.ID),
		&dto.RejectRequest{Reason: "workload"})
	if appErr != nil {
		t.Fatalf("reject: %v", appErr)
	}

	otherStudent := uuid.New()
	fx.svc.users.(*fakeUserRepo).roles[otherStudent] = userEntity.RoleStudent
	req := fx.createRequest(at)
	req.StudentID = otherStudent.String()

	if _, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, req); appErr != nil {
		t.Fatalf("rebooking a rejected window: %v", appErr)
	}
}

func TestRescheduleMovesAcceptedToScheduled(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	if _, appErr := fx.svc.Accept(context.Background(), fx.reviewerID, id); appErr != nil {
		t.Fatalf("accept: %v", appErr)
	}

	newAt := testNow.Add(5 * time.Hour)
	resp, appErr := fx.svc.Reschedule(context.Background(), fx.advisorID, id, &dto.RescheduleRequest{
		ScheduledAt: newAt.Format(time.RFC3339),
	})
	if appErr != nil {
		t.Fatalf("reschedule: %v", appErr)
	}
	if resp.Status != string(entity.ReviewStatusScheduled) {
		t.Errorf("got status %s, want scheduled", resp.Status)
	}
	if resp.ScheduledAt != newAt.Format(time.RFC3339) {
		t.Errorf("got time %s, want %s", resp.ScheduledAt, newAt.Format(time.RFC3339))
	}
}

func TestReschedulePendingStaysPending(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))

	resp, appErr := fx.svc.Reschedule(context.Background(), fx.advisorID, uuid.MustParse(created.ID),
		&dto.RescheduleRequest{ScheduledAt: testNow.Add(4 * time.Hour).Format(time.RFC3339)})
	if appErr != nil {
		t.Fatalf("reschedule: %v", appErr)
	}
	if resp.Status != string(entity.ReviewStatusPending) {
		t.Errorf("got status %s, want pending", resp.Status)
	}
}

// A failed reschedule must leave the booking untouched.
func TestRescheduleFailureLeavesBookingUnchanged(t *testing.T) {
	fx := newFixture(t)
	at := testNow.Add(2 * time.Hour)
	created := fx.mustCreate(t, at)
	id := uuid.MustParse(created.ID)

	// Occupy the target window with a second booking.
	otherStudent := uuid.New()
	fx.svc.users.(*fakeUserRepo).roles[otherStudent] = userEntity.RoleStudent
	target := testNow.Add(5 * time.Hour)
	req := fx.createRequest(target)
	req.StudentID = otherStudent.String()
	if _, appErr := fx.svc.CreateBooking(context.Background(), fx.advisorID, req); appErr != nil {
		t.Fatalf("occupy target: %v", appErr)
	}

	_, appErr := fx.svc.Reschedule(context.Background(), fx.advisorID, id, &dto.RescheduleRequest{
		ScheduledAt: target.Format(time.RFC3339),
	})
	if appErr == nil || appErr.Code != errors.ErrSlotUnavailable {
		t.Fatalf("got %v, want %s", appErr, errors.ErrSlotUnavailable)
	}

	after, err := fx.reviews.GetByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ScheduledAt.Equal(at) || after.Status != entity.ReviewStatusPending {
		t.Errorf("booking mutated by failed reschedule: %v at %s", after.Status, after.ScheduledAt)
	}
}

func TestRescheduleToNewReviewer(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	otherReviewer := uuid.New()
	fx.svc.users.(*fakeUserRepo).roles[otherReviewer] = userEntity.RoleReviewer

	resp, appErr := fx.svc.Reschedule(context.Background(), fx.advisorID, id, &dto.RescheduleRequest{
		ReviewerID:  otherReviewer.String(),
		ScheduledAt: testNow.Add(3 * time.Hour).Format(time.RFC3339),
	})
	if appErr != nil {
		t.Fatalf("reschedule: %v", appErr)
	}
	if resp.ReviewerID != otherReviewer.String() {
		t.Errorf("got reviewer %s, want %s", resp.ReviewerID, otherReviewer)
	}
}

func TestCancelTerminalBooking(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	if _, appErr := fx.svc.Cancel(context.Background(), fx.advisorID, id,
		&dto.CancelRequest{Reason: "student dropped"}); appErr != nil {
		t.Fatalf("cancel: %v", appErr)
	}

	_, appErr := fx.svc.Cancel(context.Background(), fx.advisorID, id,
		&dto.CancelRequest{Reason: "again"})
	if appErr == nil || appErr.Code != errors.ErrInvalidTransition {
		t.Fatalf("got %v, want %s", appErr, errors.ErrInvalidTransition)
	}
}

func TestCompleteOnlyAfterSessionEnds(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	if _, appErr := fx.svc.Accept(context.Background(), fx.reviewerID, id); appErr != nil {
		t.Fatalf("accept: %v", appErr)
	}

	_, appErr := fx.svc.Complete(context.Background(), fx.reviewerID, id)
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("completing a future session: got %v, want %s", appErr, errors.ErrInvalidInput)
	}

	fx.svc.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	resp, appErr := fx.svc.Complete(context.Background(), fx.reviewerID, id)
	if appErr != nil {
		t.Fatalf("complete: %v", appErr)
	}
	if resp.Status != string(entity.ReviewStatusCompleted) {
		t.Errorf("got status %s, want completed", resp.Status)
	}
}

func TestGetBookableSlotsSubtractsBookings(t *testing.T) {
	fx := newFixture(t)
	at := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	fx.mustCreate(t, at)

	slots, appErr := fx.svc.GetBookableSlots(context.Background(), fx.reviewerID, at)
	if appErr != nil {
		t.Fatalf("get bookable slots: %v", appErr)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d windows, want 2: %v", len(slots), slots)
	}
	if slots[0].StartTime != "09:00" || slots[0].EndTime != "10:00" {
		t.Errorf("first window %s-%s, want 09:00-10:00", slots[0].StartTime, slots[0].EndTime)
	}
	if slots[1].StartTime != "10:30" || slots[1].EndTime != "17:00" {
		t.Errorf("second window %s-%s, want 10:30-17:00", slots[1].StartTime, slots[1].EndTime)
	}
}

func TestGetReviewRestrictedToParticipants(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	if _, appErr := fx.svc.GetReview(context.Background(), fx.studentID, id); appErr != nil {
		t.Fatalf("participant read: %v", appErr)
	}

	_, appErr := fx.svc.GetReview(context.Background(), uuid.New(), id)
	if appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("got %v, want %s", appErr, errors.ErrForbidden)
	}
}

func TestLifecycleNotifications(t *testing.T) {
	fx := newFixture(t)
	created := fx.mustCreate(t, testNow.Add(2*time.Hour))
	id := uuid.MustParse(created.ID)

	if _, appErr := fx.svc.Accept(context.Background(), fx.reviewerID, id); appErr != nil {
		t.Fatalf("accept: %v", appErr)
	}

	want := []string{EventBookingCreated, EventBookingAccepted}
	fx.notifier.mu.Lock()
	defer fx.notifier.mu.Unlock()
	if len(fx.notifier.events) != len(want) {
		t.Fatalf("got events %v, want %v", fx.notifier.events, want)
	}
	for i := range want {
		if fx.notifier.events[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, fx.notifier.events[i], want[i])
		}
	}
}
