package service

import (
	"context"
	"errors"
	"sync"
	"time"

	historyerrors "evshare/internal/history/errors"
	"evshare/internal/history/repository"
	"evshare/internal/history/validator"
	"evshare/pkg/config"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/kafka"
	"evshare/pkg/model"
	"evshare/pkg/sanitizer"
)

type HistoryService interface {
	CreateUsageRecord(ctx context.Context, record *model.UsageRecord) error
	GetUsageRecord(ctx context.Context, id string) (*model.UsageRecord, error)
	ListUsageRecords(ctx context.Context, filter repository.RecordFilter, limit int, offset int64) ([]*model.UsageRecord, int64, error)
	DeleteUsageRecord(ctx context.Context, id string) error

	CreateCostRecord(ctx context.Context, record *model.CostRecord) error
	GetCostRecord(ctx context.Context, id string) (*model.CostRecord, error)
	ListCostRecords(ctx context.Context, filter repository.RecordFilter, limit int, offset int64) ([]*model.CostRecord, int64, error)
	DeleteCostRecord(ctx context.Context, id string) error

	UsageStatistics(ctx context.Context, vehicleID string, start, end *time.Time) (*model.UsageStatistics, error)
	CostStatistics(ctx context.Context, vehicleID string, start, end *time.Time) (*model.CostStatistics, error)

	RecordBookingCreated(ctx context.Context, event kafka.BookingEvent) error
}

type historyService struct {
	usage     repository.UsageRecordRepository
	costs     repository.CostRecordRepository
	validator *validator.HistoryValidator
	cfg       *config.Config
}

func NewHistoryService(
	usage repository.UsageRecordRepository,
	costs repository.CostRecordRepository,
	validator *validator.HistoryValidator,
	cfg *config.Config,
) HistoryService {
	return &historyService{
		usage:     usage,
		costs:     costs,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *historyService) CreateUsageRecord(ctx context.Context, record *model.UsageRecord) error {
	record.Purpose = sanitizer.TrimAndNormalize(record.Purpose)
	record.Note = sanitizer.NormalizeNote(record.Note, 255)

	if err := s.validator.ValidateUsageRecord(record); err != nil {
		s.cfg.Log.Warn("Usage record validation failed", "error", err)
		return apperrors.Validation("Usage record validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.usage.Create(ctx, record); err != nil {
		s.cfg.Log.Error("Failed to create usage record", "error", err)
		return apperrors.Internal("Failed to create usage record", err)
	}

	s.cfg.Log.Info("Usage record created", "id", record.ID, "vehicle_id", record.VehicleID)
	return nil
}

func (s *historyService) GetUsageRecord(ctx context.Context, id string) (*model.UsageRecord, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Usage record ID cannot be empty")
	}

	record, err := s.usage.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapHistoryError(err, "Usage record", id)
	}
	return record, nil
}

func (s *historyService) ListUsageRecords(ctx context.Context, filter repository.RecordFilter, limit int, offset int64) ([]*model.UsageRecord, int64, error) {
	var count int64
	var records []*model.UsageRecord
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.usage.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count usage records", "error", errCount)
			errCount = apperrors.Internal("Failed to count usage records", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		records, errFind = s.usage.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list usage records", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve usage records", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return records, count, nil
}

func (s *historyService) DeleteUsageRecord(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Usage record ID cannot be empty")
	}

	if err := s.usage.Delete(ctx, id); err != nil {
		return s.mapHistoryError(err, "Usage record", id)
	}

	s.cfg.Log.Info("Usage record deleted", "id", id)
	return nil
}

func (s *historyService) CreateCostRecord(ctx context.Context, record *model.CostRecord) error {
	record.CostType = sanitizer.NormalizeLabel(record.CostType)
	record.Note = sanitizer.NormalizeNote(record.Note, 255)

	if err := s.validator.ValidateCostRecord(record); err != nil {
		s.cfg.Log.Warn("Cost record validation failed", "error", err)
		return apperrors.Validation("Cost record validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.costs.Create(ctx, record); err != nil {
		s.cfg.Log.Error("Failed to create cost record", "error", err)
		return apperrors.Internal("Failed to create cost record", err)
	}

	s.cfg.Log.Info("Cost record created", "id", record.ID, "vehicle_id", record.VehicleID, "cost_type", record.CostType)
	return nil
}

func (s *historyService) GetCostRecord(ctx context.Context, id string) (*model.CostRecord, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Cost record ID cannot be empty")
	}

	record, err := s.costs.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapHistoryError(err, "Cost record", id)
	}
	return record, nil
}

func (s *historyService) ListCostRecords(ctx context.Context, filter repository.RecordFilter, limit int, offset int64) ([]*model.CostRecord, int64, error) {
	var count int64
	var records []*model.CostRecord
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.costs.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count cost records", "error", errCount)
			errCount = apperrors.Internal("Failed to count cost records", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		records, errFind = s.costs.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list cost records", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve cost records", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return records, count, nil
}

func (s *historyService) DeleteCostRecord(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Cost record ID cannot be empty")
	}

	if err := s.costs.Delete(ctx, id); err != nil {
		return s.mapHistoryError(err, "Cost record", id)
	}

	s.cfg.Log.Info("Cost record deleted", "id", id)
	return nil
}

// UsageStatistics aggregates a vehicle's usage over the window; when no range
// is supplied the window defaults to the configured number of trailing days.
// Empty data yields zero-valued statistics, not an error.
func (s *historyService) UsageStatistics(ctx context.Context, vehicleID string, start, end *time.Time) (*model.UsageStatistics, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	windowStart, windowEnd := s.resolveWindow(start, end)
	filter := repository.RecordFilter{
		VehicleID: vehicleID,
		StartTime: &windowStart,
		EndTime:   &windowEnd,
	}

	records, err := s.usage.Find(ctx, filter, 0, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to load usage records for statistics", "vehicle_id", vehicleID, "error", err)
		return nil, apperrors.Internal("Failed to compute usage statistics", err)
	}

	stats := &model.UsageStatistics{
		VehicleID:   vehicleID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	var totalMinutes float64
	for _, r := range records {
		stats.TripCount++
		stats.TotalDistanceKM += r.DistanceKM
		stats.TotalEnergyKWH += r.EnergyKWH
		stats.TotalCost += r.Cost
		totalMinutes += r.EndTime.Sub(r.StartTime).Minutes()
	}

	if stats.TripCount > 0 {
		stats.AvgTripMinutes = totalMinutes / float64(stats.TripCount)
		stats.AvgDistanceKM = stats.TotalDistanceKM / float64(stats.TripCount)
	}
	if stats.TotalEnergyKWH > 0 {
		stats.EfficiencyKMKWH = stats.TotalDistanceKM / stats.TotalEnergyKWH
	}

	return stats, nil
}

func (s *historyService) CostStatistics(ctx context.Context, vehicleID string, start, end *time.Time) (*model.CostStatistics, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	windowStart, windowEnd := s.resolveWindow(start, end)
	filter := repository.RecordFilter{
		VehicleID: vehicleID,
		StartTime: &windowStart,
		EndTime:   &windowEnd,
	}

	records, err := s.costs.Find(ctx, filter, 0, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to load cost records for statistics", "vehicle_id", vehicleID, "error", err)
		return nil, apperrors.Internal("Failed to compute cost statistics", err)
	}

	stats := &model.CostStatistics{
		VehicleID:   vehicleID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		ByCostType:  map[string]float64{},
		ByCoOwner:   map[string]float64{},
	}

	for _, r := range records {
		stats.RecordCount++
		stats.TotalAmount += r.Amount
		stats.ByCostType[r.CostType] += r.Amount

		coOwner := r.CoOwnerID
		if coOwner == "" {
			coOwner = "unattributed"
		}
		stats.ByCoOwner[coOwner] += r.Amount
	}

	months := windowEnd.Sub(windowStart).Hours() / (24 * 30)
	if months < 1 {
		months = 1
	}
	stats.AvgMonthly = stats.TotalAmount / months

	return stats, nil
}

// RecordBookingCreated appends a provisional usage record from a booking
// event; distance and energy stay zero until the trip is closed out.
func (s *historyService) RecordBookingCreated(ctx context.Context, event kafka.BookingEvent) error {
	record := &model.UsageRecord{
		VehicleID:     event.VehicleID,
		CoOwnerID:     event.CoOwnerID,
		StartTime:     event.StartTime,
		EndTime:       event.EndTime,
		Provisional:   true,
		SourceBooking: event.BookingID,
	}

	if err := s.validator.ValidateUsageRecord(record); err != nil {
		s.cfg.Log.Warn("Booking event produced invalid usage record",
			"booking_id", event.BookingID,
			"error", err,
		)
		return apperrors.Validation("Invalid booking event payload", map[string]any{"error": err.Error()})
	}

	if err := s.usage.Create(ctx, record); err != nil {
		s.cfg.Log.Error("Failed to append provisional usage record", "booking_id", event.BookingID, "error", err)
		return apperrors.Internal("Failed to append provisional usage record", err)
	}

	s.cfg.Log.Info("Provisional usage record appended",
		"id", record.ID,
		"booking_id", event.BookingID,
		"vehicle_id", event.VehicleID,
	)
	return nil
}

func (s *historyService) resolveWindow(start, end *time.Time) (time.Time, time.Time) {
	windowEnd := time.Now().UTC()
	if end != nil {
		windowEnd = *end
	}

	windowStart := windowEnd.AddDate(0, 0, -s.cfg.AnalyticsWindowDays)
	if start != nil {
		windowStart = *start
	}

	return windowStart, windowEnd
}

func (s *historyService) mapHistoryError(err error, resource, id string) error {
	if errors.Is(err, historyerrors.ErrUsageNotFound) || errors.Is(err, historyerrors.ErrCostNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, historyerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid record ID format")
	}
	return apperrors.Internal("Failed to access "+resource, err)
}
