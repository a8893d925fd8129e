package model

import "time"

// UsageRecord captures one driving session for a vehicle by one co-owner.
// Records appended from booking events start out provisional with zero
// distance/energy until closed out.
type UsageRecord struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID     string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	CoOwnerID     string    `json:"co_owner_id" bson:"co_owner_id" validate:"required,mongodb"`
	StartTime     time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	DistanceKM    float64   `json:"distance_km" bson:"distance_km" validate:"gte=0"`
	EnergyKWH     float64   `json:"energy_kwh" bson:"energy_kwh" validate:"gte=0"`
	Cost          float64   `json:"cost" bson:"cost" validate:"gte=0"`
	Purpose       string    `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=100"`
	Note          string    `json:"note,omitempty" bson:"note,omitempty" validate:"omitempty,max=255"`
	Provisional   bool      `json:"provisional,omitempty" bson:"provisional,omitempty"`
	SourceBooking string    `json:"source_booking,omitempty" bson:"source_booking,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CostRecord struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID  string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	CoOwnerID  string    `json:"co_owner_id,omitempty" bson:"co_owner_id,omitempty" validate:"omitempty,mongodb"`
	CostType   string    `json:"cost_type" bson:"cost_type" validate:"required,oneof=charging maintenance insurance parking registration other"`
	Amount     float64   `json:"amount" bson:"amount" validate:"required,gt=0"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty" validate:"omitempty,max=255"`
	IncurredAt time.Time `json:"incurred_at" bson:"incurred_at" validate:"required"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// UsageStatistics aggregates usage records over a reporting window.
// Zero records produce zero-valued statistics, not an error.
type UsageStatistics struct {
	VehicleID       string    `json:"vehicle_id"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	TripCount       int       `json:"trip_count"`
	TotalDistanceKM float64   `json:"total_distance_km"`
	TotalEnergyKWH  float64   `json:"total_energy_kwh"`
	TotalCost       float64   `json:"total_cost"`
	AvgTripMinutes  float64   `json:"avg_trip_minutes"`
	AvgDistanceKM   float64   `json:"avg_distance_km"`
	EfficiencyKMKWH float64   `json:"efficiency_km_per_kwh"`
}

type CostStatistics struct {
	VehicleID      string             `json:"vehicle_id"`
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	RecordCount    int                `json:"record_count"`
	TotalAmount    float64            `json:"total_amount"`
	AvgMonthly     float64            `json:"avg_monthly"`
	ByCostType     map[string]float64 `json:"by_cost_type"`
	ByCoOwner      map[string]float64 `json:"by_co_owner"`
}
