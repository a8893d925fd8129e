package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	directoryrepo "evshare/internal/directory/repository"
	groupserrors "evshare/internal/groups/errors"
	groupsrepo "evshare/internal/groups/repository"
	paymentserrors "evshare/internal/payments/errors"
	"evshare/internal/payments/repository"
	"evshare/internal/payments/validator"
	"evshare/pkg/config"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/kafka"
	"evshare/pkg/model"
	"evshare/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// amountTolerance bounds the accepted drift between a cost share's total
	// and the sum of its detail amounts.
	amountTolerance = 0.01

	maxDescriptionLength = 500
)

type PaymentService interface {
	CreateCostShare(ctx context.Context, share *model.CostShare) error
	SplitByOwnership(ctx context.Context, groupID, title, description string, totalAmount float64, dueDate *time.Time) (*model.CostShare, error)
	GetCostShare(ctx context.Context, id string) (*model.CostShare, error)
	ListCostSharesByGroup(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, int64, error)
	UpdateCostShare(ctx context.Context, id string, update *model.CostShareUpdate) (*model.CostShare, error)
	DeleteCostShare(ctx context.Context, id string) error
	MarkDetailPaid(ctx context.Context, shareID, detailID string) (*model.CostShare, error)

	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	ListTransactions(ctx context.Context, limit int, offset int64) ([]*model.Transaction, int64, error)
	HandleWebhook(ctx context.Context, payload *model.WebhookPayload) error
}

type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type paymentService struct {
	shares       repository.CostShareRepository
	transactions repository.TransactionRepository
	groupRepo    groupsrepo.GroupRepository
	coOwnerRepo  directoryrepo.CoOwnerRepository
	validator    *validator.PaymentValidator
	publisher    EventPublisher
	cfg          *config.Config
}

func NewPaymentService(
	shares repository.CostShareRepository,
	transactions repository.TransactionRepository,
	groupRepo groupsrepo.GroupRepository,
	coOwnerRepo directoryrepo.CoOwnerRepository,
	validator *validator.PaymentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		shares:       shares,
		transactions: transactions,
		groupRepo:    groupRepo,
		coOwnerRepo:  coOwnerRepo,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *paymentService) CreateCostShare(ctx context.Context, share *model.CostShare) error {
	share.Title = sanitizer.NormalizeName(share.Title)
	share.Description = sanitizer.NormalizeNote(share.Description, maxDescriptionLength)
	if share.Status == "" {
		share.Status = model.CostShareStatusPending
	}
	for i := range share.Details {
		if share.Details[i].ID == "" {
			share.Details[i].ID = uuid.New().String()
		}
		if share.Details[i].Status == "" {
			share.Details[i].Status = model.DetailStatusPending
		}
	}

	if err := s.validator.ValidateCostShare(share); err != nil {
		s.cfg.Log.Warn("Cost share validation failed", "error", err)
		return apperrors.Validation("Cost share validation failed", map[string]any{"error": err.Error()})
	}

	var detailSum float64
	for _, d := range share.Details {
		detailSum += d.Amount
	}
	if math.Abs(detailSum-share.TotalAmount) > amountTolerance {
		return apperrors.Validation("Detail amounts must sum to the total amount", map[string]any{
			"total_amount": share.TotalAmount,
			"detail_sum":   detailSum,
		})
	}

	if err := s.shares.Create(ctx, share); err != nil {
		s.cfg.Log.Error("Failed to create cost share", "error", err)
		return apperrors.Internal("Failed to create cost share", err)
	}

	s.cfg.Log.Info("Cost share created",
		"id", share.ID,
		"group_id", share.GroupID,
		"total_amount", share.TotalAmount,
		"details", len(share.Details),
	)
	return nil
}

// SplitByOwnership builds a cost share whose details divide the total across
// the group's members in proportion to their ownership percentages. Rounding
// is done in cents with the largest remainders absorbing the leftover, so the
// detail amounts always sum exactly to the total.
func (s *paymentService) SplitByOwnership(ctx context.Context, groupID, title, description string, totalAmount float64, dueDate *time.Time) (*model.CostShare, error) {
	if totalAmount <= 0 {
		return nil, apperrors.InvalidInput("Total amount must be positive")
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, s.mapGroupError(err, groupID)
	}
	if len(group.Members) == 0 {
		return nil, apperrors.Conflict("Group has no members to split the cost across")
	}

	type stake struct {
		coOwnerID string
		percent   float64
	}
	stakes := make([]stake, 0, len(group.Members))
	var totalPercent float64
	for _, member := range group.Members {
		coOwner, err := s.coOwnerRepo.FindByID(ctx, member.CoOwnerID)
		if err != nil {
			return nil, s.mapCoOwnerError(err, member.CoOwnerID)
		}
		stakes = append(stakes, stake{coOwnerID: coOwner.ID, percent: coOwner.OwnershipPercent})
		totalPercent += coOwner.OwnershipPercent
	}
	if totalPercent <= 0 {
		return nil, apperrors.Conflict("Group members hold no ownership to split against")
	}

	totalCents := int64(math.Round(totalAmount * 100))
	type allocation struct {
		index     int
		cents     int64
		remainder float64
	}
	allocations := make([]allocation, len(stakes))
	var assigned int64
	for i, st := range stakes {
		exact := float64(totalCents) * st.percent / totalPercent
		cents := int64(math.Floor(exact))
		allocations[i] = allocation{index: i, cents: cents, remainder: exact - float64(cents)}
		assigned += cents
	}

	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].remainder > allocations[j].remainder
	})
	for i := int64(0); i < totalCents-assigned; i++ {
		allocations[i%int64(len(allocations))].cents++
	}
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].index < allocations[j].index
	})

	details := make([]model.CostShareDetail, 0, len(stakes))
	for i, st := range stakes {
		if allocations[i].cents == 0 {
			continue
		}
		details = append(details, model.CostShareDetail{
			ID:        uuid.New().String(),
			CoOwnerID: st.coOwnerID,
			Amount:    float64(allocations[i].cents) / 100,
			Status:    model.DetailStatusPending,
		})
	}

	share := &model.CostShare{
		GroupID:     groupID,
		Title:       title,
		Description: description,
		TotalAmount: float64(totalCents) / 100,
		Status:      model.CostShareStatusPending,
		DueDate:     dueDate,
		Details:     details,
	}

	if err := s.CreateCostShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (s *paymentService) GetCostShare(ctx context.Context, id string) (*model.CostShare, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Cost share ID cannot be empty")
	}

	share, err := s.shares.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapShareError(err, id)
	}
	return share, nil
}

func (s *paymentService) ListCostSharesByGroup(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, int64, error) {
	if groupID == "" {
		return nil, 0, apperrors.InvalidInput("Group ID cannot be empty")
	}

	var count int64
	var shares []*model.CostShare
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.shares.CountByGroup(ctx, groupID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count cost shares", "group_id", groupID, "error", errCount)
			errCount = apperrors.Internal("Failed to count cost shares", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		shares, errFind = s.shares.FindByGroup(ctx, groupID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list cost shares", "group_id", groupID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve cost shares", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return shares, count, nil
}

func (s *paymentService) UpdateCostShare(ctx context.Context, id string, update *model.CostShareUpdate) (*model.CostShare, error) {
	if err := s.validator.ValidateCostShareUpdate(update); err != nil {
		s.cfg.Log.Warn("Cost share update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Cost share update validation failed", map[string]any{"error": err.Error()})
	}

	share, err := s.shares.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapShareError(err, id)
	}

	if update.Title != "" {
		share.Title = sanitizer.NormalizeName(update.Title)
	}
	if update.Description != "" {
		share.Description = sanitizer.NormalizeNote(update.Description, maxDescriptionLength)
	}
	if update.DueDate != nil {
		share.DueDate = update.DueDate
	}

	if err := s.shares.Update(ctx, id, share); err != nil {
		return nil, s.mapShareError(err, id)
	}

	s.cfg.Log.Info("Cost share updated", "id", id)
	return share, nil
}

func (s *paymentService) DeleteCostShare(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Cost share ID cannot be empty")
	}

	if err := s.shares.SoftDelete(ctx, id); err != nil {
		return s.mapShareError(err, id)
	}

	s.cfg.Log.Info("Cost share deleted", "id", id)
	return nil
}

// MarkDetailPaid settles one member's slice of a cost share. When the last
// pending detail is settled the parent share transitions to paid and a
// payment.completed event goes out.
func (s *paymentService) MarkDetailPaid(ctx context.Context, shareID, detailID string) (*model.CostShare, error) {
	var updated *model.CostShare
	var completed bool

	err := s.shares.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		share, err := s.shares.FindByID(sessCtx, shareID)
		if err != nil {
			return s.mapShareError(err, shareID)
		}

		share, completed, err = s.settleDetail(share, detailID)
		if err != nil {
			return err
		}

		if err := s.shares.Update(sessCtx, shareID, share); err != nil {
			return s.mapShareError(err, shareID)
		}

		updated = share
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Cost share detail paid",
		"cost_share_id", shareID,
		"detail_id", detailID,
		"status", updated.Status,
	)

	if completed {
		s.publishPaymentCompleted(updated)
	}
	return updated, nil
}

// settleDetail marks one detail paid and recomputes the parent status.
// The returned flag reports a transition into the paid state.
func (s *paymentService) settleDetail(share *model.CostShare, detailID string) (*model.CostShare, bool, error) {
	found := false
	for i := range share.Details {
		if share.Details[i].ID != detailID {
			continue
		}
		found = true
		if share.Details[i].Status != model.DetailStatusPaid {
			now := time.Now().UTC().Truncate(time.Millisecond)
			share.Details[i].Status = model.DetailStatusPaid
			share.Details[i].PaidAt = &now
		}
		break
	}
	if !found {
		return nil, false, apperrors.NotFoundWithID("Cost share detail", detailID)
	}

	paidCount := 0
	for _, d := range share.Details {
		if d.Status == model.DetailStatusPaid {
			paidCount++
		}
	}

	previous := share.Status
	switch {
	case paidCount == len(share.Details):
		share.Status = model.CostShareStatusPaid
	case paidCount > 0:
		share.Status = model.CostShareStatusPartial
	default:
		share.Status = model.CostShareStatusPending
	}

	completed := share.Status == model.CostShareStatusPaid && previous != model.CostShareStatusPaid
	return share, completed, nil
}

func (s *paymentService) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	txn.Reference = uuid.New().String()
	if txn.Status == "" {
		txn.Status = model.TransactionStatusPending
	}

	if err := s.validator.ValidateTransaction(txn); err != nil {
		s.cfg.Log.Warn("Transaction validation failed", "error", err)
		return apperrors.Validation("Transaction validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.shares.FindByID(ctx, txn.CostShareID); err != nil {
		return s.mapShareError(err, txn.CostShareID)
	}

	if err := s.transactions.Create(ctx, txn); err != nil {
		s.cfg.Log.Error("Failed to create transaction", "error", err)
		return apperrors.Internal("Failed to create transaction", err)
	}

	s.cfg.Log.Info("Transaction created",
		"id", txn.ID,
		"reference", txn.Reference,
		"cost_share_id", txn.CostShareID,
		"amount", txn.Amount,
	)
	return nil
}

func (s *paymentService) ListTransactions(ctx context.Context, limit int, offset int64) ([]*model.Transaction, int64, error) {
	var count int64
	var txns []*model.Transaction
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.transactions.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count transactions", "error", errCount)
			errCount = apperrors.Internal("Failed to count transactions", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		txns, errFind = s.transactions.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list transactions", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve transactions", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return txns, count, nil
}

// HandleWebhook resolves the gateway callback for a transaction reference.
// A success outcome settles the payer's pending detail on the cost share;
// replays of an already-resolved reference are acknowledged without effect.
func (s *paymentService) HandleWebhook(ctx context.Context, payload *model.WebhookPayload) error {
	if err := s.validator.ValidateWebhookPayload(payload); err != nil {
		s.cfg.Log.Warn("Webhook payload validation failed", "error", err)
		return apperrors.Validation("Webhook payload validation failed", map[string]any{"error": err.Error()})
	}

	txn, err := s.transactions.FindByReference(ctx, payload.Reference)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrTransactionNotFound) {
			return apperrors.NotFoundWithID("Transaction", payload.Reference)
		}
		return apperrors.Internal("Failed to resolve transaction", err)
	}

	if txn.Status != model.TransactionStatusPending {
		s.cfg.Log.Info("Webhook replay ignored", "reference", payload.Reference, "status", txn.Status)
		return nil
	}

	status := model.TransactionStatusFailed
	if payload.Outcome == "success" {
		status = model.TransactionStatusCompleted
	}

	// Settle the payer's detail before resolving the transaction. If the
	// settlement fails, the transaction stays pending and the gateway's
	// retry re-runs the whole handler; settling is idempotent, so a replay
	// after a crash between the two writes repairs the detail.
	if status == model.TransactionStatusCompleted {
		if err := s.settlePayerDetail(ctx, txn, payload.Reference); err != nil {
			return err
		}
	}

	if err := s.transactions.UpdateStatus(ctx, txn.ID, status); err != nil {
		s.cfg.Log.Error("Failed to update transaction status", "reference", payload.Reference, "error", err)
		return apperrors.Internal("Failed to update transaction status", err)
	}

	s.cfg.Log.Info("Transaction resolved", "reference", payload.Reference, "status", status)
	return nil
}

func (s *paymentService) settlePayerDetail(ctx context.Context, txn *model.Transaction, reference string) error {
	share, err := s.shares.FindByID(ctx, txn.CostShareID)
	if err != nil {
		return s.mapShareError(err, txn.CostShareID)
	}

	detailID := ""
	for _, d := range share.Details {
		if d.CoOwnerID == txn.CoOwnerID && d.Status == model.DetailStatusPending {
			detailID = d.ID
			break
		}
	}
	if detailID == "" {
		// Already settled by an earlier attempt, nothing left to repair.
		s.cfg.Log.Warn("No pending detail for completed transaction",
			"reference", reference,
			"cost_share_id", txn.CostShareID,
			"co_owner_id", txn.CoOwnerID,
		)
		return nil
	}

	_, err = s.MarkDetailPaid(ctx, txn.CostShareID, detailID)
	return err
}

func (s *paymentService) publishPaymentCompleted(share *model.CostShare) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(share.GroupID).
		WithValue(kafka.PaymentEvent{
			EventType:   kafka.EventPaymentCompleted,
			CostShareID: share.ID,
			GroupID:     share.GroupID,
			TotalAmount: share.TotalAmount,
			PaidAt:      time.Now().UTC(),
		}).
		WithEventType(kafka.EventPaymentCompleted).
		WithSource("payments-service").
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build payment event", "cost_share_id", share.ID, "error", err)
		return
	}

	// Post-commit, best-effort: a broker failure never unwinds the payment.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish payment event",
			"cost_share_id", share.ID,
			"error", err,
		)
	}
}

func (s *paymentService) mapShareError(err error, id string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, paymentserrors.ErrCostShareNotFound) {
		return apperrors.NotFoundWithID("Cost share", id)
	}
	if errors.Is(err, paymentserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid cost share ID format")
	}
	return apperrors.Internal("Failed to access cost share", err)
}

func (s *paymentService) mapGroupError(err error, id string) error {
	if errors.Is(err, groupserrors.ErrGroupNotFound) {
		return apperrors.NotFoundWithID("Group", id)
	}
	if errors.Is(err, groupserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid group ID format")
	}
	return apperrors.Internal("Failed to access group", err)
}

func (s *paymentService) mapCoOwnerError(err error, id string) error {
	if errors.Is(err, directoryrepo.ErrCoOwnerNotFound) {
		return apperrors.NotFoundWithID("Co-owner", id)
	}
	if errors.Is(err, directoryrepo.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid co-owner ID format")
	}
	return apperrors.Internal("Failed to access co-owner", err)
}
