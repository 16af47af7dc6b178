package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 決済ゲートウェイの約束。実装はinfra/payment。
// VerifyEventはWebhook本文の署名を検証して確定イベントに変換する。
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, order model.Order, items []model.OrderItem) (PaymentSession, error)
	VerifyEvent(payload []byte, signature string) (PaymentConfirmation, error)
}

type PaymentSession struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

type PaymentUsecase struct {
	tx      repo.TransactionManager
	gateway PaymentGateway
}

func NewPaymentUsecase(tx repo.TransactionManager, gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, gateway: gateway}
}

// 未払いのPENDING注文に対して決済セッションを作る
func (u *PaymentUsecase) CreateCheckoutSession(ctx context.Context, userID int64, orderID int64) (PaymentSession, error) {
	if userID <= 0 {
		return PaymentSession{}, NewUnauthenticatedError()
	}
	if orderID <= 0 {
		return PaymentSession{}, NewValidationError("invalid order_id")
	}

	var (
		order model.Order
		items []model.OrderItem
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError(err)
		}
		if o.UserID != userID {
			return NewNotFoundError("order not found")
		}
		if o.PaymentStatus != model.PaymentStatusPending || o.Status != model.OrderStatusPending {
			return NewInvalidStateError("order is not awaiting payment")
		}

		its, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewInternalError(err)
		}

		order = o
		items = its
		return nil
	})
	if err != nil {
		return PaymentSession{}, err
	}

	sess, err := u.gateway.CreateCheckoutSession(ctx, order, items)
	if err != nil {
		return PaymentSession{}, NewInternalError(err)
	}
	return sess, nil
}
