package model

import "time"

type CostShareStatus string

const (
	CostShareStatusPending CostShareStatus = "pending"
	CostShareStatusPartial CostShareStatus = "partial"
	CostShareStatusPaid    CostShareStatus = "paid"
)

type CostShareDetailStatus string

const (
	DetailStatusPending CostShareDetailStatus = "pending"
	DetailStatusPaid    CostShareDetailStatus = "paid"
)

// CostShare splits a shared expense across the members of a group. The detail
// amounts must sum to the total within a small rounding tolerance.
type CostShare struct {
	ID          string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GroupID     string            `json:"group_id" bson:"group_id" validate:"required,mongodb"`
	Title       string            `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Description string            `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	TotalAmount float64           `json:"total_amount" bson:"total_amount" validate:"required,gt=0"`
	Status      CostShareStatus   `json:"status" bson:"status" validate:"omitempty,oneof=pending partial paid"`
	DueDate     *time.Time        `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Details     []CostShareDetail `json:"details" bson:"details" validate:"required,min=1,dive"`
	IsDeleted   bool              `json:"-" bson:"is_deleted"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type CostShareDetail struct {
	ID        string                `json:"id" bson:"id" validate:"omitempty"`
	CoOwnerID string                `json:"co_owner_id" bson:"co_owner_id" validate:"required,mongodb"`
	Amount    float64               `json:"amount" bson:"amount" validate:"required,gt=0"`
	Status    CostShareDetailStatus `json:"status" bson:"status" validate:"omitempty,oneof=pending paid"`
	PaidAt    *time.Time            `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// CostShareUpdate overwrites the provided fields; nil/empty fields are left
// untouched.
type CostShareUpdate struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=500"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction records one payment against a cost-share detail. Reference is
// the externally visible identifier handed to the payment gateway.
type Transaction struct {
	ID          string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Reference   string            `json:"reference" bson:"reference" validate:"omitempty,uuid4"`
	CostShareID string            `json:"cost_share_id" bson:"cost_share_id" validate:"required,mongodb"`
	CoOwnerID   string            `json:"co_owner_id" bson:"co_owner_id" validate:"required,mongodb"`
	Amount      float64           `json:"amount" bson:"amount" validate:"required,gt=0"`
	Status      TransactionStatus `json:"status" bson:"status" validate:"omitempty,oneof=pending completed failed"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// WebhookPayload is the gateway callback body for the payments webhook.
type WebhookPayload struct {
	Reference string `json:"reference" validate:"required,uuid4"`
	Outcome   string `json:"outcome" validate:"required,oneof=success failure"`
}
