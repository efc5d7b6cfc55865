package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"time"

	"chatx-be/internal/dto"
	"chatx-be/internal/entity"
	"chatx-be/internal/plan"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/pkg/events"
	pktNats "chatx-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type IPaymentService interface {
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransNotification) error
	GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	CancelSubscription(ctx context.Context, userId uuid.UUID) error
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

// VerifyMidtransSignature checks SHA512(order_id + status_code +
// gross_amount + server_key) against the signature the webhook carries.
func VerifyMidtransSignature(req *dto.MidtransNotification, serverKey string) bool {
	input := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return req.SignatureKey == expected
}

// Checkout creates a pending subscription record and a midtrans snap
// transaction whose order id is the record id. Activation happens only
// through the webhook.
func (s *paymentService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	target := plan.ByName(req.PlanName)
	if !plan.IsKnown(req.PlanName) || target.Price <= 0 {
		return nil, errors.New("plan is not purchasable")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	recordId := uuid.New()
	record := &entity.SubscriptionRecord{
		Id:            recordId,
		UserId:        userId,
		PlanName:      target.Name,
		Active:        false,
		PaymentStatus: entity.PaymentStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := uow.SubscriptionRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	// External call stays outside any DB transaction.
	var sClient snap.Client
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(serverKey, env)

	frontendURL := os.Getenv("FRONTEND_URL")
	finishRedirectURL := fmt.Sprintf("%s/app?payment=success", frontendURL)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  recordId.String(),
			GrossAmt: int64(target.Price),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    target.Name,
				Price: int64(target.Price),
				Qty:   1,
				Name:  target.DisplayName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "SUBSCRIPTION_CREATED",
			Data: map[string]interface{}{
				"user_id":   userId,
				"plan_name": target.Name,
				"amount":    target.Price,
				"order_id":  recordId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SUBSCRIPTION_CREATED event: %v\n", err)
		}
	}

	return &dto.CheckoutResponse{
		OrderId:     recordId,
		RedirectURL: snapResp.RedirectURL,
		Token:       snapResp.Token,
	}, nil
}

// HandleNotification applies a midtrans webhook. The signature is
// recomputed server side, the client-reported status alone never
// changes state.
func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransNotification) error {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		return fmt.Errorf("server configuration error")
	}

	if !VerifyMidtransSignature(req, serverKey) {
		return fmt.Errorf("invalid signature")
	}

	recordId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return fmt.Errorf("invalid order id format")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	record, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: recordId})
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("subscription not found")
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		if record.Active && record.PaymentStatus == entity.PaymentStatusPaid {
			// Midtrans retries notifications, this one was already applied.
			return nil
		}
		if err := uow.SubscriptionRepository().DeactivateAllByUserId(ctx, record.UserId); err != nil {
			return err
		}
		record.Active = true
		record.PaymentStatus = entity.PaymentStatusPaid
		record.MidtransTransactionId = &req.TransactionId
	case "deny", "cancel", "expire":
		record.Active = false
		record.PaymentStatus = entity.PaymentStatusFailed
		record.MidtransTransactionId = &req.TransactionId
	case "pending":
		return nil
	default:
		return nil
	}

	record.UpdatedAt = time.Now()
	if err := uow.SubscriptionRepository().Update(ctx, record); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil && record.PaymentStatus == entity.PaymentStatusPaid {
		evt := events.BaseEvent{
			Type: "SUBSCRIPTION_ACTIVATED",
			Data: map[string]interface{}{
				"user_id":   record.UserId,
				"plan_name": record.PlanName,
				"order_id":  record.Id,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SUBSCRIPTION_ACTIVATED event: %v\n", err)
		}
	}

	return nil
}

func (s *paymentService) GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	if record == nil {
		free := plan.ByName(plan.NameFree)
		return &dto.SubscriptionStatusResponse{
			PlanName:      free.Name,
			Active:        false,
			PaymentStatus: string(entity.PaymentStatusPaid),
		}, nil
	}

	return &dto.SubscriptionStatusResponse{
		SubscriptionId: record.Id,
		PlanName:       record.PlanName,
		Active:         record.Active,
		PaymentStatus:  string(record.PaymentStatus),
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

// CancelSubscription drops the user back to the free plan by writing a
// fresh active FREE record after deactivating the rest.
func (s *paymentService) CancelSubscription(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return err
	}
	if record == nil || record.PlanName == plan.NameFree {
		return errors.New("no paid subscription to cancel")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().DeactivateAllByUserId(ctx, userId); err != nil {
		return err
	}

	freeRecord := &entity.SubscriptionRecord{
		Id:            uuid.New(),
		UserId:        userId,
		PlanName:      plan.NameFree,
		Active:        true,
		PaymentStatus: entity.PaymentStatusPaid,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uow.SubscriptionRepository().Create(ctx, freeRecord); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "SUBSCRIPTION_CANCELED",
			Data: map[string]interface{}{
				"user_id":   userId,
				"plan_name": record.PlanName,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SUBSCRIPTION_CANCELED event: %v\n", err)
		}
	}

	return nil
}
