package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "evshare/internal/bookings/errors"
	"evshare/internal/bookings/repository"
	"evshare/internal/bookings/validator"
	directoryrepo "evshare/internal/directory/repository"
	"evshare/pkg/config"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/kafka"
	"evshare/pkg/model"
	"evshare/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const maxNoteLength = 255

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (*model.BookingView, error)
	GetByID(ctx context.Context, id string) (*model.BookingView, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingView, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.BookingView, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.BookingView, error)
	Cancel(ctx context.Context, id string) error
	ListVehicleSchedules(ctx context.Context) ([]*model.VehicleSchedule, error)
}

// EventPublisher is the broker-facing slice of pkg/kafka.Producer the service
// needs; event delivery is best-effort and never rolls back a booking.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.VehicleLockRepository
	vehicleRepo directoryrepo.VehicleRepository
	coOwnerRepo directoryrepo.CoOwnerRepository
	validator   *validator.BookingValidator
	publisher   EventPublisher
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.VehicleLockRepository,
	vehicleRepo directoryrepo.VehicleRepository,
	coOwnerRepo directoryrepo.CoOwnerRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		vehicleRepo: vehicleRepo,
		coOwnerRepo: coOwnerRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (*model.BookingView, error) {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, booking.VehicleID)
	if err != nil {
		return nil, s.mapDirectoryError(err, "Vehicle", booking.VehicleID)
	}
	if !vehicle.IsActive {
		return nil, apperrors.Conflict("Vehicle is not active")
	}

	coOwner, err := s.coOwnerRepo.FindByID(ctx, booking.CoOwnerID)
	if err != nil {
		return nil, s.mapDirectoryError(err, "Co-owner", booking.CoOwnerID)
	}

	// Serialize creation per vehicle: overlap and priority both read
	// whole-vehicle state, so the advisory lock spans the vehicle.
	lockID, err := s.acquireVehicleLock(ctx, booking.VehicleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseVehicleLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release vehicle lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking); err != nil {
			return err
		}
		if err := s.verifyTopPriority(sessCtx, booking.CoOwnerID); err != nil {
			return err
		}
		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		// The driver re-invokes this callback on transient errors and write
		// conflicts, so the increment must start from a fresh read each
		// attempt instead of a count captured outside the transaction.
		current, err := s.coOwnerRepo.FindByID(sessCtx, booking.CoOwnerID)
		if err != nil {
			return s.mapDirectoryError(err, "Co-owner", booking.CoOwnerID)
		}
		current.UsageCount++
		if err := s.coOwnerRepo.Save(sessCtx, current); err != nil {
			return apperrors.Internal("Failed to record co-owner usage", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, err
	}

	s.publishBookingEvent(kafka.EventBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"vehicle_id", booking.VehicleID,
		"co_owner_id", booking.CoOwnerID,
		"start_time", booking.StartTime,
	)
	return s.view(booking, vehicle.Name, coOwner.Name), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	vehicleName, coOwnerName := s.resolveNames(ctx, booking)
	return s.view(booking, vehicleName, coOwnerName), nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingView, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	vehicleNames, coOwnerNames := s.nameIndexes(ctx)
	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, s.view(b, vehicleNames[b.VehicleID], coOwnerNames[b.CoOwnerID]))
	}

	return views, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	// Field overwrite only. Overlap and priority are not re-validated on
	// update; conflicts introduced here are accepted as-is.
	existing.StartTime = updates.StartTime
	existing.EndTime = updates.EndTime
	existing.Note = sanitizer.NormalizeNote(updates.Note, maxNoteLength)

	if _, err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	vehicleName, coOwnerName := s.resolveNames(ctx, existing)
	return s.view(existing, vehicleName, coOwnerName), nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, status string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateStatusUpdate(&model.BookingStatusUpdate{Status: status}); err != nil {
		return nil, apperrors.Validation("Invalid status input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	// The status set is open: the caller-supplied label is stored verbatim.
	existing.Status = model.BookingStatus(status)

	if _, err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", status)
	vehicleName, coOwnerName := s.resolveNames(ctx, existing)
	return s.view(existing, vehicleName, coOwnerName), nil
}

// Cancel is a status transition, never a removal. Cancelling an already
// cancelled booking succeeds and leaves the status unchanged.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapBookingError(err, id)
	}

	existing.Status = model.StatusCancelled

	if _, err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.publishBookingEvent(kafka.EventBookingCancelled, existing)

	s.cfg.Log.Info("Booking cancelled", "id", id)
	return nil
}

func (s *bookingService) ListVehicleSchedules(ctx context.Context) ([]*model.VehicleSchedule, error) {
	vehicles, err := s.vehicleRepo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list vehicles", "error", err)
		return nil, apperrors.Internal("Failed to retrieve vehicles", err)
	}

	coOwners, err := s.coOwnerRepo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list co-owners", "error", err)
		return nil, apperrors.Internal("Failed to retrieve co-owners", err)
	}
	coOwnerNames := make(map[string]string, len(coOwners))
	for _, c := range coOwners {
		coOwnerNames[c.ID] = c.Name
	}

	schedules := make([]*model.VehicleSchedule, 0, len(vehicles))
	for _, vehicle := range vehicles {
		bookings, err := s.repo.FindByVehicle(ctx, vehicle.ID)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings for vehicle", "vehicle_id", vehicle.ID, "error", err)
			return nil, apperrors.Internal("Failed to retrieve bookings", err)
		}

		periods := make([]model.BookingPeriod, 0, len(bookings))
		for _, b := range bookings {
			periods = append(periods, model.BookingPeriod{
				StartTime:   b.StartTime,
				EndTime:     b.EndTime,
				CoOwnerName: coOwnerNames[b.CoOwnerID],
				Status:      b.Status,
			})
		}
		sort.SliceStable(periods, func(i, j int) bool {
			return periods[i].StartTime.Before(periods[j].StartTime)
		})

		schedules = append(schedules, &model.VehicleSchedule{
			VehicleID:   vehicle.ID,
			VehicleName: vehicle.Name,
			IsActive:    vehicle.IsActive,
			Bookings:    periods,
		})
	}

	return schedules, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusBooked
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Note = sanitizer.NormalizeNote(b.Note, maxNoteLength)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyNoOverlap scans every booking for the vehicle regardless of status;
// a cancelled booking still blocks the window. Half-open interval semantics:
// touching boundaries do not conflict.
func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindByVehicle(ctx, booking.VehicleID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if overlaps(booking.StartTime, booking.EndTime, b.StartTime, b.EndTime) {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)",
				b.StartTime.Format(time.RFC3339),
				b.EndTime.Format(time.RFC3339),
			))
		}
	}
	return nil
}

func overlaps(reqStart, reqEnd, start, end time.Time) bool {
	return reqStart.Before(end) && reqEnd.After(start)
}

// verifyTopPriority ranks every co-owner in the directory by ascending usage
// count, ties broken by descending ownership percentage, and requires the
// requester to rank first. The ranking is global, not scoped to the vehicle.
func (s *bookingService) verifyTopPriority(ctx context.Context, coOwnerID string) error {
	coOwners, err := s.coOwnerRepo.FindAll(ctx)
	if err != nil {
		return apperrors.Internal("Failed to rank co-owners", err)
	}
	if len(coOwners) == 0 {
		return apperrors.Internal("No co-owners in directory", bookingserrors.ErrNotTopPriority)
	}

	sort.SliceStable(coOwners, func(i, j int) bool {
		if coOwners[i].UsageCount != coOwners[j].UsageCount {
			return coOwners[i].UsageCount < coOwners[j].UsageCount
		}
		return coOwners[i].OwnershipPercent > coOwners[j].OwnershipPercent
	})

	if coOwners[0].ID != coOwnerID {
		return apperrors.Conflict("A higher-priority co-owner is eligible to book first")
	}
	return nil
}

// acquireVehicleLock creates an advisory lock to prevent concurrent booking
// creation for the same vehicle. Returns the lock ID if successful, or a
// conflict error if the lock already exists.
func (s *bookingService) acquireVehicleLock(ctx context.Context, vehicleID string) (string, error) {
	lockID := fmt.Sprintf("vehicle_lock_%s", vehicleID)

	lock := &model.VehicleLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This vehicle is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire vehicle lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseVehicleLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) mapBookingError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) mapDirectoryError(err error, resource, id string) error {
	if errors.Is(err, directoryrepo.ErrVehicleNotFound) || errors.Is(err, directoryrepo.ErrCoOwnerNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, directoryrepo.ErrInvalidID) {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	}
	return apperrors.Internal(fmt.Sprintf("Failed to retrieve %s", resource), err)
}

// resolveNames is a display-only projection; unresolvable references leave
// the names empty instead of failing the operation.
func (s *bookingService) resolveNames(ctx context.Context, booking *model.Booking) (string, string) {
	var vehicleName, coOwnerName string
	if vehicle, err := s.vehicleRepo.FindByID(ctx, booking.VehicleID); err == nil {
		vehicleName = vehicle.Name
	}
	if coOwner, err := s.coOwnerRepo.FindByID(ctx, booking.CoOwnerID); err == nil {
		coOwnerName = coOwner.Name
	}
	return vehicleName, coOwnerName
}

func (s *bookingService) nameIndexes(ctx context.Context) (map[string]string, map[string]string) {
	vehicleNames := map[string]string{}
	if vehicles, err := s.vehicleRepo.FindAll(ctx); err == nil {
		for _, v := range vehicles {
			vehicleNames[v.ID] = v.Name
		}
	}
	coOwnerNames := map[string]string{}
	if coOwners, err := s.coOwnerRepo.FindAll(ctx); err == nil {
		for _, c := range coOwners {
			coOwnerNames[c.ID] = c.Name
		}
	}
	return vehicleNames, coOwnerNames
}

func (s *bookingService) view(b *model.Booking, vehicleName, coOwnerName string) *model.BookingView {
	return &model.BookingView{
		ID:          b.ID,
		VehicleID:   b.VehicleID,
		VehicleName: vehicleName,
		CoOwnerID:   b.CoOwnerID,
		CoOwnerName: coOwnerName,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		Note:        b.Note,
	}
}

func (s *bookingService) publishBookingEvent(eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.VehicleID).
		WithValue(kafka.BookingEvent{
			EventType: eventType,
			BookingID: booking.ID,
			VehicleID: booking.VehicleID,
			CoOwnerID: booking.CoOwnerID,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			Status:    string(booking.Status),
		}).
		WithEventType(eventType).
		WithSource("bookings-service").
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	// Post-commit, best-effort: a broker failure never rolls back the booking.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
