package model

// Vehicle is owned by the directory; the booking allocator only reads it.
type Vehicle struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name     string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	IsActive bool   `json:"is_active" bson:"is_active"`
}

// CoOwner holds a fractional ownership share of one or more vehicles.
// UsageCount increments by exactly one for each booking granted to the
// co-owner and feeds the priority ranking.
type CoOwner struct {
	ID               string  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name             string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	OwnershipPercent float64 `json:"ownership_percent" bson:"ownership_percent" validate:"gte=0,lte=100"`
	UsageCount       int     `json:"usage_count" bson:"usage_count" validate:"gte=0"`
}
