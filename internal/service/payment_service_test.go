package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"testing"

	"chatx-be/internal/dto"
	"chatx-be/internal/entity"
	"chatx-be/internal/plan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test-key"

func signNotification(req *dto.MidtransNotification, serverKey string) {
	input := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	req.SignatureKey = fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
}

func TestVerifyMidtransSignature(t *testing.T) {
	req := &dto.MidtransNotification{
		OrderId:     "f2a9c7ce-1111-4444-8888-0123456789ab",
		StatusCode:  "200",
		GrossAmount: "49000.00",
	}
	signNotification(req, testServerKey)
	assert.True(t, VerifyMidtransSignature(req, testServerKey))

	// Wrong server key.
	assert.False(t, VerifyMidtransSignature(req, "another-key"))

	// Tampered amount invalidates the signature.
	req.GrossAmount = "1.00"
	assert.False(t, VerifyMidtransSignature(req, testServerKey))

	// Garbage signature.
	req.GrossAmount = "49000.00"
	req.SignatureKey = "deadbeef"
	assert.False(t, VerifyMidtransSignature(req, testServerKey))
}

func newPaymentFixture(record *entity.SubscriptionRecord) (*chatStore, IPaymentService) {
	store := newChatStore()
	store.subRecord = record
	svc := NewPaymentService(&fakeFactory{store: store}, nil)
	return store, svc
}

func TestHandleNotificationRejectsInvalidSignature(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)

	recordId := uuid.New()
	store, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        uuid.New(),
		PlanName:      plan.NameProBasic,
		PaymentStatus: entity.PaymentStatusPending,
	})

	req := &dto.MidtransNotification{
		OrderId:           recordId.String(),
		StatusCode:        "200",
		GrossAmount:       "49000.00",
		TransactionStatus: "settlement",
		SignatureKey:      "forged",
	}

	err := svc.HandleNotification(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature")

	assert.False(t, store.subRecord.Active)
	assert.Equal(t, entity.PaymentStatusPending, store.subRecord.PaymentStatus)
}

func TestHandleNotificationSettlementActivatesOnce(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)

	recordId := uuid.New()
	userId := uuid.New()
	store, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        userId,
		PlanName:      plan.NameProBasic,
		Active:        false,
		PaymentStatus: entity.PaymentStatusPending,
	})

	req := &dto.MidtransNotification{
		OrderId:           recordId.String(),
		StatusCode:        "200",
		GrossAmount:       "49000.00",
		TransactionStatus: "settlement",
		TransactionId:     "midtrans-tx-1",
	}
	signNotification(req, testServerKey)

	require.NoError(t, svc.HandleNotification(context.Background(), req))

	assert.True(t, store.subRecord.Active)
	assert.Equal(t, entity.PaymentStatusPaid, store.subRecord.PaymentStatus)
	require.NotNil(t, store.subRecord.MidtransTransactionId)
	assert.Equal(t, "midtrans-tx-1", *store.subRecord.MidtransTransactionId)
	assert.Equal(t, 1, store.subDeactivations)
	assert.Equal(t, 1, store.subUpdates)

	// Midtrans retries the webhook; a repeat must not rewrite anything.
	require.NoError(t, svc.HandleNotification(context.Background(), req))
	assert.Equal(t, 1, store.subUpdates)
	assert.True(t, store.subRecord.Active)
}

func TestHandleNotificationDenyMarksFailed(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)

	recordId := uuid.New()
	store, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        uuid.New(),
		PlanName:      plan.NameProBasic,
		PaymentStatus: entity.PaymentStatusPending,
	})

	req := &dto.MidtransNotification{
		OrderId:           recordId.String(),
		StatusCode:        "202",
		GrossAmount:       "49000.00",
		TransactionStatus: "deny",
		TransactionId:     "midtrans-tx-2",
	}
	signNotification(req, testServerKey)

	require.NoError(t, svc.HandleNotification(context.Background(), req))
	assert.False(t, store.subRecord.Active)
	assert.Equal(t, entity.PaymentStatusFailed, store.subRecord.PaymentStatus)
}

func TestHandleNotificationPendingIsANoop(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)

	recordId := uuid.New()
	store, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        uuid.New(),
		PlanName:      plan.NameProBasic,
		PaymentStatus: entity.PaymentStatusPending,
	})

	req := &dto.MidtransNotification{
		OrderId:           recordId.String(),
		StatusCode:        "201",
		GrossAmount:       "49000.00",
		TransactionStatus: "pending",
	}
	signNotification(req, testServerKey)

	require.NoError(t, svc.HandleNotification(context.Background(), req))
	assert.Equal(t, 0, store.subUpdates)
	assert.Equal(t, entity.PaymentStatusPending, store.subRecord.PaymentStatus)
}

func TestCheckoutRejectsNonPurchasablePlan(t *testing.T) {
	_, svc := newPaymentFixture(nil)

	for _, name := range []string{plan.NameFree, "NOT_A_PLAN"} {
		_, err := svc.Checkout(context.Background(), uuid.New(), &dto.CheckoutRequest{PlanName: name})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not purchasable")
	}
}

func TestGetSubscriptionStatusDefaultsToFree(t *testing.T) {
	_, svc := newPaymentFixture(nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, plan.NameFree, status.PlanName)
	assert.False(t, status.Active)
}

func TestGetSubscriptionStatusReturnsActiveRecord(t *testing.T) {
	recordId := uuid.New()
	userId := uuid.New()
	_, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        userId,
		PlanName:      plan.NameProPlus,
		Active:        true,
		PaymentStatus: entity.PaymentStatusPaid,
	})

	status, err := svc.GetSubscriptionStatus(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, recordId, status.SubscriptionId)
	assert.Equal(t, plan.NameProPlus, status.PlanName)
	assert.True(t, status.Active)
}

func TestCancelSubscriptionDropsToFree(t *testing.T) {
	userId := uuid.New()
	store, svc := newPaymentFixture(&entity.SubscriptionRecord{
		Id:            uuid.New(),
		UserId:        userId,
		PlanName:      plan.NameProBasic,
		Active:        true,
		PaymentStatus: entity.PaymentStatusPaid,
	})

	require.NoError(t, svc.CancelSubscription(context.Background(), userId))
	assert.Equal(t, plan.NameFree, store.subRecord.PlanName)
	assert.True(t, store.subRecord.Active)

	// Nothing left to cancel afterwards.
	err := svc.CancelSubscription(context.Background(), userId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no paid subscription")
}
