package service_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event events.Event) {
	p.published = append(p.published, event)
}

func TestAwardDeductAdjust(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()

	txn, err := e.points.Award(ctx, userID, 100, model.PointTypeBetcoins, "signup bonus", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionKindEarn, txn.Kind)

	txn, err = e.points.Deduct(ctx, userID, 30, model.PointTypeBetcoins, "bet", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionKindSpend, txn.Kind)
	assert.Equal(t, int64(70), txn.BalanceAfter)

	// Negative adjustment carries its sign through to the balance.
	txn, err = e.points.Adjust(ctx, userID, -20, model.PointTypeBetcoins, "correction", adminID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionKindAdjust, txn.Kind)
	assert.Equal(t, int64(50), txn.BalanceAfter)
	require.NotNil(t, txn.AdminID)
	assert.Equal(t, adminID, *txn.AdminID)

	txn, err = e.points.Adjust(ctx, userID, 5, model.PointTypeBetcoins, "goodwill", adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(55), txn.BalanceAfter)

	balance, err := e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(55), balance.Balance)
}

func TestAdjustPublishesEvent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pub := &capturingPublisher{}
	points := service.NewPointService(e.ledgerRepo, e.registry, nil, pub, e.log)
	userID := uuid.New()
	adminID := uuid.New()

	_, err := points.Adjust(ctx, userID, 40, model.PointTypeBetcoins, "correction", adminID)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypePointsAdjusted, pub.published[0].Type)
	assert.Equal(t, userID, pub.published[0].UserID)
	assert.Equal(t, adminID.String(), pub.published[0].Payload["admin_id"])
}

func TestAdjustCannotOverdraw(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := e.points.Award(ctx, userID, 10, model.PointTypeBetcoins, "seed", nil)
	require.NoError(t, err)

	_, err = e.points.Adjust(ctx, userID, -50, model.PointTypeBetcoins, "bad correction", uuid.New())
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	balance, err := e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Balance)
}

func TestMutationValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := e.points.Award(ctx, uuid.Nil, 10, model.PointTypeBetcoins, "x", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidUser)

	_, err = e.points.Award(ctx, userID, 0, model.PointTypeBetcoins, "x", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = e.points.Deduct(ctx, userID, -5, model.PointTypeBetcoins, "x", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = e.points.Award(ctx, userID, 10, "gems", "x", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidPointType)

	_, err = e.points.Adjust(ctx, userID, 0, model.PointTypeBetcoins, "x", uuid.New())
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestInactivePointTypeRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.pointTypeRepo.Create(ctx, &model.PointType{Slug: "gems", Name: "Gems", Active: false}))
	e.refresh(t)

	_, err := e.points.Award(ctx, uuid.New(), 10, "gems", "x", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidPointType)

	_, err = e.points.GetBalance(ctx, uuid.New(), "gems")
	assert.ErrorIs(t, err, apperror.ErrInvalidPointType)
}

func TestPurchaseAndRefundKinds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	txn, err := e.points.Purchase(ctx, userID, 500, model.PointTypeBetcoins, "purchase pay-123")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionKindPurchase, txn.Kind)

	ref := &model.Reference{Type: model.ReferenceTypeBet, ID: uuid.NewString()}
	txn, err = e.points.Refund(ctx, userID, 50, model.PointTypeBetcoins, "bet refund", ref)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionKindRefund, txn.Kind)
	require.NotNil(t, txn.ReferenceType)
	assert.Equal(t, model.ReferenceTypeBet, *txn.ReferenceType)

	balance, err := e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(550), balance.Balance)
}

func TestGetHistoryThroughService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := e.points.Award(ctx, userID, 100, model.PointTypeBetcoins, "seed", nil)
	require.NoError(t, err)
	_, err = e.points.Deduct(ctx, userID, 40, model.PointTypeBetcoins, "bet", nil)
	require.NoError(t, err)

	txns, total, err := e.points.GetHistory(ctx, userID, repository.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, txns, 2)
	// Newest first.
	assert.Equal(t, model.TransactionKindSpend, txns[0].Kind)
}
