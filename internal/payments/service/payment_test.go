package service

import (
	"context"
	"math"
	"testing"
	"time"

	directoryrepo "evshare/internal/directory/repository"
	paymentserrors "evshare/internal/payments/errors"
	"evshare/internal/payments/validator"
	"evshare/pkg/config"
	mongotx "evshare/pkg/db/mongo"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/kafka"
	"evshare/pkg/logger"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	groupID     = "807f1f77bcf86cd799439041"
	costShareID = "807f1f77bcf86cd799439042"
	coOwnerA    = "807f1f77bcf86cd799439043"
	coOwnerB    = "807f1f77bcf86cd799439044"
	coOwnerC    = "807f1f77bcf86cd799439045"
	txnID       = "807f1f77bcf86cd799439046"
)

type mockCostShareRepository struct {
	createFunc       func(ctx context.Context, share *model.CostShare) error
	findByIDFunc     func(ctx context.Context, id string) (*model.CostShare, error)
	findByGroupFunc  func(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, error)
	countByGroupFunc func(ctx context.Context, groupID string) (int64, error)
	updateFunc       func(ctx context.Context, id string, share *model.CostShare) error
	softDeleteFunc   func(ctx context.Context, id string) error

	stored  *model.CostShare
	updated *model.CostShare
}

func (m *mockCostShareRepository) Create(ctx context.Context, share *model.CostShare) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, share)
	}
	share.ID = costShareID
	m.stored = share
	return nil
}

func (m *mockCostShareRepository) FindByID(ctx context.Context, id string) (*model.CostShare, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	if m.stored != nil && m.stored.ID == id {
		return m.stored, nil
	}
	return nil, paymentserrors.ErrCostShareNotFound
}

func (m *mockCostShareRepository) FindByGroup(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, error) {
	if m.findByGroupFunc != nil {
		return m.findByGroupFunc(ctx, groupID, limit, offset)
	}
	return []*model.CostShare{}, nil
}

func (m *mockCostShareRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	if m.countByGroupFunc != nil {
		return m.countByGroupFunc(ctx, groupID)
	}
	return 0, nil
}

func (m *mockCostShareRepository) Update(ctx context.Context, id string, share *model.CostShare) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, share)
	}
	m.updated = share
	m.stored = share
	return nil
}

func (m *mockCostShareRepository) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCostShareRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockTransactionRepository struct {
	createFunc          func(ctx context.Context, txn *model.Transaction) error
	findByReferenceFunc func(ctx context.Context, reference string) (*model.Transaction, error)
	findAllFunc         func(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error)
	countFunc           func(ctx context.Context) (int64, error)
	updateStatusFunc    func(ctx context.Context, id string, status model.TransactionStatus) error

	created       *model.Transaction
	updatedStatus model.TransactionStatus
}

func (m *mockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, txn)
	}
	txn.ID = txnID
	m.created = txn
	return nil
}

func (m *mockTransactionRepository) FindByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	if m.findByReferenceFunc != nil {
		return m.findByReferenceFunc(ctx, reference)
	}
	return nil, paymentserrors.ErrTransactionNotFound
}

func (m *mockTransactionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Transaction{}, nil
}

func (m *mockTransactionRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockTransactionRepository) UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	m.updatedStatus = status
	return nil
}

type mockGroupRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Group, error)
}

func (m *mockGroupRepository) Create(ctx context.Context, group *model.Group) error {
	return nil
}

func (m *mockGroupRepository) FindByID(ctx context.Context, id string) (*model.Group, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Group{
		ID:   id,
		Name: "EV Pool",
		Members: []model.Member{
			{CoOwnerID: coOwnerA, Name: "Alice", Role: "admin"},
			{CoOwnerID: coOwnerB, Name: "Bao", Role: "member"},
			{CoOwnerID: coOwnerC, Name: "Chi", Role: "member"},
		},
	}, nil
}

func (m *mockGroupRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Group, error) {
	return []*model.Group{}, nil
}

func (m *mockGroupRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockCoOwnerRepository struct {
	percents map[string]float64
}

func (m *mockCoOwnerRepository) FindByID(ctx context.Context, id string) (*model.CoOwner, error) {
	percent, ok := m.percents[id]
	if !ok {
		return nil, directoryrepo.ErrCoOwnerNotFound
	}
	return &model.CoOwner{ID: id, Name: "Owner", OwnershipPercent: percent}, nil
}

func (m *mockCoOwnerRepository) FindAll(ctx context.Context) ([]*model.CoOwner, error) {
	return []*model.CoOwner{}, nil
}

func (m *mockCoOwnerRepository) Save(ctx context.Context, coOwner *model.CoOwner) error {
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

func newTestPaymentService(
	shares *mockCostShareRepository,
	transactions *mockTransactionRepository,
	groups *mockGroupRepository,
	coOwners *mockCoOwnerRepository,
	publisher EventPublisher,
) PaymentService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	return NewPaymentService(shares, transactions, groups, coOwners, validator.NewPaymentValidator(cfg.Log), publisher, cfg)
}

func pendingShare(detailAmounts map[string]float64) *model.CostShare {
	share := &model.CostShare{
		ID:          costShareID,
		GroupID:     groupID,
		Title:       "Charging Station",
		TotalAmount: 0,
		Status:      model.CostShareStatusPending,
	}
	for coOwnerID, amount := range detailAmounts {
		share.Details = append(share.Details, model.CostShareDetail{
			ID:        "detail-" + coOwnerID,
			CoOwnerID: coOwnerID,
			Amount:    amount,
			Status:    model.DetailStatusPending,
		})
		share.TotalAmount += amount
	}
	return share
}

func TestCreateCostShare_ToleranceEnforced(t *testing.T) {
	shares := &mockCostShareRepository{}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	share := &model.CostShare{
		GroupID:     groupID,
		Title:       "Annual Insurance",
		TotalAmount: 100,
		Details: []model.CostShareDetail{
			{CoOwnerID: coOwnerA, Amount: 60},
			{CoOwnerID: coOwnerB, Amount: 39.5},
		},
	}

	err := svc.CreateCostShare(context.Background(), share)
	assertAppErrorCode(t, err, apperrors.CodeValidation)
	if shares.stored != nil {
		t.Fatal("mismatched share must not be persisted")
	}
}

func TestCreateCostShare_WithinTolerance(t *testing.T) {
	shares := &mockCostShareRepository{}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	share := &model.CostShare{
		GroupID:     groupID,
		Title:       "Annual Insurance",
		TotalAmount: 100,
		Details: []model.CostShareDetail{
			{CoOwnerID: coOwnerA, Amount: 33.33},
			{CoOwnerID: coOwnerB, Amount: 33.33},
			{CoOwnerID: coOwnerC, Amount: 33.34},
		},
	}

	if err := svc.CreateCostShare(context.Background(), share); err != nil {
		t.Fatalf("expected success within tolerance, got %v", err)
	}

	if shares.stored == nil {
		t.Fatal("expected share to be persisted")
	}
	if shares.stored.Status != model.CostShareStatusPending {
		t.Fatalf("expected pending status, got %s", shares.stored.Status)
	}
	for _, d := range shares.stored.Details {
		if d.ID == "" {
			t.Fatal("expected detail IDs to be assigned")
		}
		if d.Status != model.DetailStatusPending {
			t.Fatalf("expected pending detail status, got %s", d.Status)
		}
	}
}

func TestSplitByOwnership_ExactSplit(t *testing.T) {
	shares := &mockCostShareRepository{}
	coOwners := &mockCoOwnerRepository{percents: map[string]float64{
		coOwnerA: 50,
		coOwnerB: 30,
		coOwnerC: 20,
	}}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, coOwners, nil)

	share, err := svc.SplitByOwnership(context.Background(), groupID, "Battery Replacement", "", 250, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(share.Details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(share.Details))
	}
	want := map[string]float64{coOwnerA: 125, coOwnerB: 75, coOwnerC: 50}
	var sum float64
	for _, d := range share.Details {
		if math.Abs(d.Amount-want[d.CoOwnerID]) > 1e-9 {
			t.Fatalf("unexpected amount for %s: got %f, want %f", d.CoOwnerID, d.Amount, want[d.CoOwnerID])
		}
		sum += d.Amount
	}
	if math.Abs(sum-share.TotalAmount) > 1e-9 {
		t.Fatalf("split does not sum to total: %f vs %f", sum, share.TotalAmount)
	}
}

func TestSplitByOwnership_RoundingStaysExact(t *testing.T) {
	shares := &mockCostShareRepository{}
	coOwners := &mockCoOwnerRepository{percents: map[string]float64{
		coOwnerA: 1,
		coOwnerB: 1,
		coOwnerC: 1,
	}}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, coOwners, nil)

	share, err := svc.SplitByOwnership(context.Background(), groupID, "Tire Rotation", "", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	for _, d := range share.Details {
		sum += d.Amount
	}
	// 100 does not divide into three equal cent amounts; the largest
	// remainders absorb the leftover cent.
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("expected details to sum exactly to 100, got %f", sum)
	}
	if math.Abs(share.Details[0].Amount-33.34) > 1e-9 {
		t.Fatalf("expected first detail to absorb the leftover cent, got %f", share.Details[0].Amount)
	}
}

func TestSplitByOwnership_EmptyGroup(t *testing.T) {
	groups := &mockGroupRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Group, error) {
			return &model.Group{ID: id, Name: "Empty"}, nil
		},
	}
	svc := newTestPaymentService(&mockCostShareRepository{}, &mockTransactionRepository{}, groups, &mockCoOwnerRepository{}, nil)

	_, err := svc.SplitByOwnership(context.Background(), groupID, "Anything", "", 100, nil)
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestMarkDetailPaid_PartialThenPaid(t *testing.T) {
	publisher := &mockPublisher{}
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 60, coOwnerB: 40}),
	}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, publisher)

	share, err := svc.MarkDetailPaid(context.Background(), costShareID, "detail-"+coOwnerA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share.Status != model.CostShareStatusPartial {
		t.Fatalf("expected partial status after first payment, got %s", share.Status)
	}
	if len(publisher.published) != 0 {
		t.Fatal("no event until the share is fully paid")
	}

	share, err = svc.MarkDetailPaid(context.Background(), costShareID, "detail-"+coOwnerB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share.Status != model.CostShareStatusPaid {
		t.Fatalf("expected paid status after last payment, got %s", share.Status)
	}
	for _, d := range share.Details {
		if d.PaidAt == nil {
			t.Fatalf("expected paid timestamp on detail %s", d.ID)
		}
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one completion event, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.GetEventType() != kafka.EventPaymentCompleted {
		t.Fatalf("unexpected event type %s", msg.GetEventType())
	}
	var event kafka.PaymentEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.CostShareID != costShareID || event.GroupID != groupID {
		t.Fatalf("unexpected event payload: %+v", event)
	}
}

func TestMarkDetailPaid_ReplayDoesNotRepublish(t *testing.T) {
	publisher := &mockPublisher{}
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, publisher)

	if _, err := svc.MarkDetailPaid(context.Background(), costShareID, "detail-"+coOwnerA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkDetailPaid(context.Background(), costShareID, "detail-"+coOwnerA); err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected a single completion event, got %d", len(publisher.published))
	}
}

func TestMarkDetailPaid_UnknownDetail(t *testing.T) {
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	_, err := svc.MarkDetailPaid(context.Background(), costShareID, "missing")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestCreateTransaction_AssignsReference(t *testing.T) {
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 80}),
	}
	transactions := &mockTransactionRepository{}
	svc := newTestPaymentService(shares, transactions, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	txn := &model.Transaction{
		CostShareID: costShareID,
		CoOwnerID:   coOwnerA,
		Amount:      80,
	}
	if err := svc.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Reference == "" {
		t.Fatal("expected a generated reference")
	}
	if txn.Status != model.TransactionStatusPending {
		t.Fatalf("expected pending status, got %s", txn.Status)
	}
	if transactions.created == nil {
		t.Fatal("expected transaction to be persisted")
	}
}

func TestCreateTransaction_UnknownCostShare(t *testing.T) {
	svc := newTestPaymentService(&mockCostShareRepository{}, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	err := svc.CreateTransaction(context.Background(), &model.Transaction{
		CostShareID: costShareID,
		CoOwnerID:   coOwnerA,
		Amount:      80,
	})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestHandleWebhook_SuccessSettlesDetail(t *testing.T) {
	publisher := &mockPublisher{}
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	reference := "3f1a8c52-9a1e-4a5e-b8a7-2f4f1f77aa01"
	transactions := &mockTransactionRepository{
		findByReferenceFunc: func(_ context.Context, ref string) (*model.Transaction, error) {
			if ref != reference {
				return nil, paymentserrors.ErrTransactionNotFound
			}
			return &model.Transaction{
				ID:          txnID,
				Reference:   reference,
				CostShareID: costShareID,
				CoOwnerID:   coOwnerA,
				Amount:      100,
				Status:      model.TransactionStatusPending,
			}, nil
		},
	}
	svc := newTestPaymentService(shares, transactions, &mockGroupRepository{}, &mockCoOwnerRepository{}, publisher)

	err := svc.HandleWebhook(context.Background(), &model.WebhookPayload{Reference: reference, Outcome: "success"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transactions.updatedStatus != model.TransactionStatusCompleted {
		t.Fatalf("expected completed transaction, got %s", transactions.updatedStatus)
	}
	if shares.stored.Status != model.CostShareStatusPaid {
		t.Fatalf("expected paid share after settlement, got %s", shares.stored.Status)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected a completion event, got %d", len(publisher.published))
	}
}

func TestHandleWebhook_FailureLeavesShareUntouched(t *testing.T) {
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	reference := "3f1a8c52-9a1e-4a5e-b8a7-2f4f1f77aa02"
	transactions := &mockTransactionRepository{
		findByReferenceFunc: func(_ context.Context, _ string) (*model.Transaction, error) {
			return &model.Transaction{
				ID:          txnID,
				Reference:   reference,
				CostShareID: costShareID,
				CoOwnerID:   coOwnerA,
				Status:      model.TransactionStatusPending,
			}, nil
		},
	}
	svc := newTestPaymentService(shares, transactions, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	err := svc.HandleWebhook(context.Background(), &model.WebhookPayload{Reference: reference, Outcome: "failure"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transactions.updatedStatus != model.TransactionStatusFailed {
		t.Fatalf("expected failed transaction, got %s", transactions.updatedStatus)
	}
	if shares.stored.Status != model.CostShareStatusPending {
		t.Fatalf("share must stay pending on failure, got %s", shares.stored.Status)
	}
}

func TestHandleWebhook_ReplayIgnored(t *testing.T) {
	reference := "3f1a8c52-9a1e-4a5e-b8a7-2f4f1f77aa03"
	transactions := &mockTransactionRepository{
		findByReferenceFunc: func(_ context.Context, _ string) (*model.Transaction, error) {
			return &model.Transaction{
				ID:        txnID,
				Reference: reference,
				Status:    model.TransactionStatusCompleted,
			}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, _ model.TransactionStatus) error {
			panic("resolved transactions must not be touched")
		},
	}
	svc := newTestPaymentService(&mockCostShareRepository{}, transactions, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	err := svc.HandleWebhook(context.Background(), &model.WebhookPayload{Reference: reference, Outcome: "success"})
	if err != nil {
		t.Fatalf("expected replay to be acknowledged, got %v", err)
	}
}

func TestHandleWebhook_SettlementFailureKeepsTransactionPending(t *testing.T) {
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	updateAttempts := 0
	shares.updateFunc = func(_ context.Context, _ string, share *model.CostShare) error {
		updateAttempts++
		if updateAttempts == 1 {
			return apperrors.Internal("Failed to update cost share", nil)
		}
		shares.stored = share
		return nil
	}
	reference := "3f1a8c52-9a1e-4a5e-b8a7-2f4f1f77aa04"
	transactions := &mockTransactionRepository{
		findByReferenceFunc: func(_ context.Context, _ string) (*model.Transaction, error) {
			return &model.Transaction{
				ID:          txnID,
				Reference:   reference,
				CostShareID: costShareID,
				CoOwnerID:   coOwnerA,
				Status:      model.TransactionStatusPending,
			}, nil
		},
	}
	svc := newTestPaymentService(shares, transactions, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	payload := &model.WebhookPayload{Reference: reference, Outcome: "success"}
	if err := svc.HandleWebhook(context.Background(), payload); err == nil {
		t.Fatal("expected the first delivery to fail when the detail cannot be settled")
	}
	if transactions.updatedStatus != "" {
		t.Fatalf("transaction must stay pending when settlement fails, got %s", transactions.updatedStatus)
	}

	// The transaction is still pending, so the gateway's redelivery is not
	// treated as a replay and can finish the settlement.
	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("expected the redelivery to succeed, got %v", err)
	}
	if transactions.updatedStatus != model.TransactionStatusCompleted {
		t.Fatalf("expected completed transaction after redelivery, got %s", transactions.updatedStatus)
	}
	if shares.stored.Status != model.CostShareStatusPaid {
		t.Fatalf("expected paid share after redelivery, got %s", shares.stored.Status)
	}
}

func TestUpdateCostShare_PartialOverwrite(t *testing.T) {
	shares := &mockCostShareRepository{
		stored: pendingShare(map[string]float64{coOwnerA: 100}),
	}
	shares.stored.Description = "Original description"
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	due := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	share, err := svc.UpdateCostShare(context.Background(), costShareID, &model.CostShareUpdate{
		Title:   "Renamed",
		DueDate: &due,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if share.Title != "Renamed" {
		t.Fatalf("expected updated title, got %s", share.Title)
	}
	if share.Description != "Original description" {
		t.Fatalf("unset fields must be preserved, got %q", share.Description)
	}
	if share.DueDate == nil || !share.DueDate.Equal(due) {
		t.Fatalf("expected updated due date, got %v", share.DueDate)
	}
}

func TestDeleteCostShare_NotFound(t *testing.T) {
	shares := &mockCostShareRepository{
		softDeleteFunc: func(_ context.Context, _ string) error {
			return paymentserrors.ErrCostShareNotFound
		},
	}
	svc := newTestPaymentService(shares, &mockTransactionRepository{}, &mockGroupRepository{}, &mockCoOwnerRepository{}, nil)

	err := svc.DeleteCostShare(context.Background(), costShareID)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
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
