package service

import (
	"context"
	"testing"
	"time"

	bookingserrors "evshare/internal/bookings/errors"
	"evshare/internal/bookings/validator"
	"evshare/pkg/config"
	mongotx "evshare/pkg/db/mongo"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/kafka"
	"evshare/pkg/logger"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	vehicleID = "507f1f77bcf86cd799439011"
	coOwnerX  = "507f1f77bcf86cd799439012"
	coOwnerY  = "507f1f77bcf86cd799439013"
	bookingID = "507f1f77bcf86cd799439014"
)

// --- Mocks ---

type mockBookingRepository struct {
	insertFunc        func(ctx context.Context, booking *model.Booking) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	findByVehicleFunc func(ctx context.Context, vehicleID string) ([]*model.Booking, error)
	updateFunc        func(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	countFunc         func(ctx context.Context) (int64, error)

	// transactionRetries re-runs the transaction callback before the final
	// attempt, the way the driver does on transient errors.
	transactionRetries int

	inserted *model.Booking
	updated  *model.Booking
}

func (m *mockBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	m.inserted = booking
	if m.insertFunc != nil {
		return m.insertFunc(ctx, booking)
	}
	booking.ID = bookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error) {
	if m.findByVehicleFunc != nil {
		return m.findByVehicleFunc(ctx, vehicleID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	m.updated = booking
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	sessCtx := mongo.NewSessionContext(ctx, nil)
	for i := 0; i < m.transactionRetries; i++ {
		// Discarded attempt: the driver aborts its writes and runs fn again.
		_ = fn(sessCtx)
	}
	return fn(sessCtx)
}

type mockVehicleLockRepository struct {
	createFunc func(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error)
	deleted    []string
}

func (m *mockVehicleLockRepository) Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockVehicleLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockVehicleRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Vehicle, error)
	findAllFunc  func(ctx context.Context) ([]*model.Vehicle, error)
}

func (m *mockVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Vehicle{ID: id, Name: "Tesla Model 3", IsActive: true}, nil
}

func (m *mockVehicleRepository) FindAll(ctx context.Context) ([]*model.Vehicle, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.Vehicle{{ID: vehicleID, Name: "Tesla Model 3", IsActive: true}}, nil
}

type mockCoOwnerRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.CoOwner, error)
	findAllFunc  func(ctx context.Context) ([]*model.CoOwner, error)
	saveFunc     func(ctx context.Context, coOwner *model.CoOwner) error

	saved *model.CoOwner
}

func (m *mockCoOwnerRepository) FindByID(ctx context.Context, id string) (*model.CoOwner, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.CoOwner{ID: id, Name: "Owner", OwnershipPercent: 50, UsageCount: 0}, nil
}

func (m *mockCoOwnerRepository) FindAll(ctx context.Context) ([]*model.CoOwner, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.CoOwner{{ID: coOwnerY, Name: "Owner", OwnershipPercent: 50, UsageCount: 0}}, nil
}

func (m *mockCoOwnerRepository) Save(ctx context.Context, coOwner *model.CoOwner) error {
	m.saved = coOwner
	if m.saveFunc != nil {
		return m.saveFunc(ctx, coOwner)
	}
	return nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return m.err
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		BookingLockTTL: 10 * time.Second,
	}
}

func newTestService(
	repo *mockBookingRepository,
	lockRepo *mockVehicleLockRepository,
	vehicleRepo *mockVehicleRepository,
	coOwnerRepo *mockCoOwnerRepository,
	publisher EventPublisher,
) BookingService {
	cfg := testConfig()
	return NewBookingService(repo, lockRepo, vehicleRepo, coOwnerRepo, validator.NewBookingValidator(cfg.Log), publisher, cfg)
}

func newBookingRequest(coOwnerID string, start, end time.Time) *model.Booking {
	return &model.Booking{
		VehicleID: vehicleID,
		CoOwnerID: coOwnerID,
		StartTime: start,
		EndTime:   end,
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 5, 1, hour, minute, 0, 0, time.UTC)
}

// --- Create: overlap semantics ---

func TestCreate_HalfOpenOverlap(t *testing.T) {
	existing := &model.Booking{
		ID:        bookingID,
		VehicleID: vehicleID,
		CoOwnerID: coOwnerY,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Status:    model.StatusBooked,
	}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantError bool
	}{
		{"adjacent after does not overlap", at(11, 0), at(12, 0), false},
		{"contained interval overlaps", at(10, 30), at(10, 45), true},
		{"one minute past start overlaps", at(9, 0), at(10, 1), true},
		{"adjacent before does not overlap", at(9, 0), at(10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				findByVehicleFunc: func(ctx context.Context, vid string) ([]*model.Booking, error) {
					return []*model.Booking{existing}, nil
				},
			}
			svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

			view, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, tt.start, tt.end))

			if tt.wantError {
				assertAppErrorCode(t, err, apperrors.CodeConflict)
				if repo.inserted != nil {
					t.Fatal("booking must not be inserted on overlap rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if view == nil || view.ID != bookingID {
				t.Fatalf("expected created booking view, got %+v", view)
			}
		})
	}
}

func TestCreate_CancelledBookingStillBlocks(t *testing.T) {
	cancelled := &model.Booking{
		ID:        bookingID,
		VehicleID: vehicleID,
		CoOwnerID: coOwnerY,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Status:    model.StatusCancelled,
	}
	repo := &mockBookingRepository{
		findByVehicleFunc: func(ctx context.Context, vid string) ([]*model.Booking, error) {
			return []*model.Booking{cancelled}, nil
		},
	}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	_, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 30), at(11, 30)))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

// --- Create: priority ranking ---

func TestCreate_PriorityOrdering(t *testing.T) {
	// X has more usage than Y, so Y ranks first despite lower ownership.
	coOwners := []*model.CoOwner{
		{ID: coOwnerX, Name: "X", OwnershipPercent: 60, UsageCount: 3},
		{ID: coOwnerY, Name: "Y", OwnershipPercent: 40, UsageCount: 2},
	}
	coOwnerRepo := &mockCoOwnerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CoOwner, error) {
			for _, c := range coOwners {
				if c.ID == id {
					return c, nil
				}
			}
			return nil, nil
		},
		findAllFunc: func(ctx context.Context) ([]*model.CoOwner, error) {
			return coOwners, nil
		},
	}

	svcFor := func(repo *mockBookingRepository) BookingService {
		return newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)
	}

	repo := &mockBookingRepository{}
	_, err := svcFor(repo).Create(context.Background(), newBookingRequest(coOwnerX, at(10, 0), at(11, 0)))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
	if repo.inserted != nil {
		t.Fatal("booking must not be inserted for a lower-priority co-owner")
	}

	repo = &mockBookingRepository{}
	_, err = svcFor(repo).Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0)))
	if err != nil {
		t.Fatalf("expected top-priority co-owner to succeed, got %v", err)
	}
	if repo.inserted == nil {
		t.Fatal("expected booking insert for top-priority co-owner")
	}
}

func TestCreate_PriorityTieBreak(t *testing.T) {
	// Equal usage: higher ownership percentage wins.
	coOwners := []*model.CoOwner{
		{ID: coOwnerX, Name: "X", OwnershipPercent: 30, UsageCount: 1},
		{ID: coOwnerY, Name: "Y", OwnershipPercent: 70, UsageCount: 1},
	}
	coOwnerRepo := &mockCoOwnerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CoOwner, error) {
			for _, c := range coOwners {
				if c.ID == id {
					return c, nil
				}
			}
			return nil, nil
		},
		findAllFunc: func(ctx context.Context) ([]*model.CoOwner, error) {
			return coOwners, nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)
	_, err := svc.Create(context.Background(), newBookingRequest(coOwnerX, at(10, 0), at(11, 0)))
	assertAppErrorCode(t, err, apperrors.CodeConflict)

	svc = newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)
	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("expected higher-ownership co-owner to succeed, got %v", err)
	}
}

func TestCreate_UsageIncrement(t *testing.T) {
	coOwners := []*model.CoOwner{
		{ID: coOwnerX, Name: "X", OwnershipPercent: 60, UsageCount: 3},
		{ID: coOwnerY, Name: "Y", OwnershipPercent: 40, UsageCount: 2},
	}
	coOwnerRepo := &mockCoOwnerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CoOwner, error) {
			for _, c := range coOwners {
				if c.ID == id {
					return c, nil
				}
			}
			return nil, nil
		},
		findAllFunc: func(ctx context.Context) ([]*model.CoOwner, error) {
			return coOwners, nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)
	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if coOwnerRepo.saved == nil {
		t.Fatal("expected co-owner usage to be saved")
	}
	if coOwnerRepo.saved.ID != coOwnerY || coOwnerRepo.saved.UsageCount != 3 {
		t.Fatalf("expected Y usage count 3, got %s=%d", coOwnerRepo.saved.ID, coOwnerRepo.saved.UsageCount)
	}

	// Y and X are now tied on usage; X's higher ownership makes X top priority.
	svc = newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)
	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerX, at(12, 0), at(13, 0))); err != nil {
		t.Fatalf("expected X to succeed after ranking update, got %v", err)
	}
	if coOwnerRepo.saved.ID != coOwnerX || coOwnerRepo.saved.UsageCount != 4 {
		t.Fatalf("expected X usage count 4, got %s=%d", coOwnerRepo.saved.ID, coOwnerRepo.saved.UsageCount)
	}
}

func TestCreate_UsageIncrementSurvivesTransactionRetry(t *testing.T) {
	// The driver rolls back and re-runs the transaction callback on write
	// conflicts. Each attempt reads its own count, so one booking still
	// raises the committed usage count by exactly one.
	coOwnerRepo := &mockCoOwnerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CoOwner, error) {
			return &model.CoOwner{ID: id, Name: "Y", OwnershipPercent: 40, UsageCount: 2}, nil
		},
		findAllFunc: func(ctx context.Context) ([]*model.CoOwner, error) {
			return []*model.CoOwner{{ID: coOwnerY, Name: "Y", OwnershipPercent: 40, UsageCount: 2}}, nil
		},
	}
	repo := &mockBookingRepository{transactionRetries: 1}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)

	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if coOwnerRepo.saved == nil || coOwnerRepo.saved.UsageCount != 3 {
		t.Fatalf("expected usage count 3 after retried transaction, got %+v", coOwnerRepo.saved)
	}
}

func TestCreate_InactiveVehicle(t *testing.T) {
	vehicleRepo := &mockVehicleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return &model.Vehicle{ID: id, Name: "Decommissioned", IsActive: false}, nil
		},
	}
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockVehicleLockRepository{}, vehicleRepo, &mockCoOwnerRepository{}, nil)

	_, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0)))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
	if repo.inserted != nil {
		t.Fatal("booking must not be inserted for an inactive vehicle")
	}
}

func TestCreate_LockConflict(t *testing.T) {
	lockRepo := &mockVehicleLockRepository{
		createFunc: func(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestService(&mockBookingRepository{}, lockRepo, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	_, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0)))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestCreate_ReleasesLock(t *testing.T) {
	lockRepo := &mockVehicleLockRepository{}
	svc := newTestService(&mockBookingRepository{}, lockRepo, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(lockRepo.deleted) != 1 || lockRepo.deleted[0] != "vehicle_lock_"+vehicleID {
		t.Fatalf("expected vehicle lock release, got %v", lockRepo.deleted)
	}
}

func TestCreate_PublishesEvent(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, publisher)

	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.Key != vehicleID {
		t.Fatalf("expected event keyed by vehicle ID, got %s", msg.Key)
	}
	if msg.Headers[kafka.HeaderEventType] != kafka.EventBookingCreated {
		t.Fatalf("expected %s event, got %s", kafka.EventBookingCreated, msg.Headers[kafka.HeaderEventType])
	}

	var event kafka.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event payload: %v", err)
	}
	if event.BookingID != bookingID || event.Status != string(model.StatusBooked) {
		t.Fatalf("unexpected event payload: %+v", event)
	}
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	publisher := &mockPublisher{err: kafka.ErrProducerClosed}
	svc := newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, publisher)

	if _, err := svc.Create(context.Background(), newBookingRequest(coOwnerY, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("broker failure must not fail the booking, got %v", err)
	}
}

// --- Update / status / cancel ---

func TestUpdate_NoRevalidation(t *testing.T) {
	stored := &model.Booking{
		ID:        bookingID,
		VehicleID: vehicleID,
		CoOwnerID: coOwnerY,
		StartTime: at(14, 0),
		EndTime:   at(15, 0),
		Status:    model.StatusBooked,
	}
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
		findByVehicleFunc: func(ctx context.Context, vid string) ([]*model.Booking, error) {
			t.Fatal("update must not run the overlap scan")
			return nil, nil
		},
	}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	view, err := svc.Update(context.Background(), bookingID, &model.BookingUpdate{
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Note:      "moved earlier",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !view.StartTime.Equal(at(10, 0)) || !view.EndTime.Equal(at(11, 0)) || view.Note != "moved earlier" {
		t.Fatalf("expected overwritten fields, got %+v", view)
	}
}

func TestUpdateStatus_VerbatimLabel(t *testing.T) {
	stored := &model.Booking{
		ID:        bookingID,
		VehicleID: vehicleID,
		CoOwnerID: coOwnerY,
		StartTime: at(14, 0),
		EndTime:   at(15, 0),
		Status:    model.StatusBooked,
	}
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	view, err := svc.UpdateStatus(context.Background(), bookingID, "awaiting-charge")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if view.Status != "awaiting-charge" {
		t.Fatalf("expected verbatim status label, got %s", view.Status)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	stored := &model.Booking{
		ID:        bookingID,
		VehicleID: vehicleID,
		CoOwnerID: coOwnerY,
		StartTime: at(14, 0),
		EndTime:   at(15, 0),
		Status:    model.StatusCancelled,
	}
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	if err := svc.Cancel(context.Background(), bookingID); err != nil {
		t.Fatalf("cancelling an already-cancelled booking must succeed, got %v", err)
	}
	if repo.updated == nil || repo.updated.Status != model.StatusCancelled {
		t.Fatalf("expected status to remain cancelled, got %+v", repo.updated)
	}
}

func TestMutations_NotFound(t *testing.T) {
	notFoundRepo := func() *mockBookingRepository {
		return &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return nil, bookingserrors.ErrNotFound
			},
		}
	}

	svc := newTestService(notFoundRepo(), &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)
	_, err := svc.Update(context.Background(), bookingID, &model.BookingUpdate{StartTime: at(10, 0), EndTime: at(11, 0)})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	svc = newTestService(notFoundRepo(), &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)
	_, err = svc.UpdateStatus(context.Background(), bookingID, "approved")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	svc = newTestService(notFoundRepo(), &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)
	err = svc.Cancel(context.Background(), bookingID)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

// --- Schedules ---

func TestListVehicleSchedules_SortedByStart(t *testing.T) {
	repo := &mockBookingRepository{
		findByVehicleFunc: func(ctx context.Context, vid string) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "b3", VehicleID: vid, CoOwnerID: coOwnerY, StartTime: at(15, 0), EndTime: at(16, 0), Status: model.StatusBooked},
				{ID: "b1", VehicleID: vid, CoOwnerID: coOwnerY, StartTime: at(9, 0), EndTime: at(10, 0), Status: model.StatusApproved},
				{ID: "b2", VehicleID: vid, CoOwnerID: coOwnerX, StartTime: at(12, 0), EndTime: at(13, 0), Status: model.StatusCancelled},
			}, nil
		},
	}
	coOwnerRepo := &mockCoOwnerRepository{
		findAllFunc: func(ctx context.Context) ([]*model.CoOwner, error) {
			return []*model.CoOwner{
				{ID: coOwnerX, Name: "X"},
				{ID: coOwnerY, Name: "Y"},
			}, nil
		},
	}
	svc := newTestService(repo, &mockVehicleLockRepository{}, &mockVehicleRepository{}, coOwnerRepo, nil)

	schedules, err := svc.ListVehicleSchedules(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(schedules) != 1 {
		t.Fatalf("expected one vehicle schedule, got %d", len(schedules))
	}

	bookings := schedules[0].Bookings
	if len(bookings) != 3 {
		t.Fatalf("expected three booking periods, got %d", len(bookings))
	}
	for i := 1; i < len(bookings); i++ {
		if bookings[i].StartTime.Before(bookings[i-1].StartTime) {
			t.Fatalf("schedule not sorted ascending by start time: %+v", bookings)
		}
	}
	if bookings[0].CoOwnerName != "Y" || bookings[1].CoOwnerName != "X" {
		t.Fatalf("expected resolved co-owner names, got %+v", bookings)
	}
}

func TestListVehicleSchedules_EmptyVehicle(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockVehicleLockRepository{}, &mockVehicleRepository{}, &mockCoOwnerRepository{}, nil)

	schedules, err := svc.ListVehicleSchedules(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(schedules) != 1 || len(schedules[0].Bookings) != 0 {
		t.Fatalf("expected empty bookings list for vehicle without bookings, got %+v", schedules)
	}
}
