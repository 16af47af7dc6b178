package usecase

import (
	"context"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type PlaceOrderInput struct {
	ShippingAddress model.Address
	BillingAddress  model.Address
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	Subtotal        int64             `json:"subtotal"`
	Tax             int64             `json:"tax"`
	Shipping        int64             `json:"shipping"`
	TotalPrice      int64             `json:"total_price"`
	ShippingAddress model.Address     `json:"shipping_address"`
	BillingAddress  model.Address     `json:"billing_address"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// カートを注文スナップショットに変換する。
// カートはここでは消さない。消すのは支払い確定（Settlement）のときだけ。
// 未払いのまま放置された注文でカートを失わないための意図的な仕様。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewUnauthenticatedError()
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewValidationError("invalid idempotency_key")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果を返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewInternalError(err)
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewInternalError(err)
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewValidationError("cart is empty")
		}
		if err != nil {
			return NewInternalError(err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewInternalError(err)
		}
		if len(cartItems) == 0 {
			return NewValidationError("cart is empty")
		}

		// 明細ごとに商品を取り直して検証し、スナップショットを作る。
		// 1行でも通らなければ注文は作らない。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var subtotal int64

		now := time.Now()
		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewNotFoundError("product no longer available")
			}
			if err != nil {
				return NewInternalError(err)
			}
			if !p.IsActive {
				return NewNotFoundError("product " + p.Name + " is no longer available")
			}
			if p.Stock < ci.Quantity {
				return NewInsufficientStockError(p.Name, p.Stock)
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:         ci.ProductID,
				NameSnapshot:      p.Name,
				UnitPriceSnapshot: ci.UnitPriceSnapshot,
				ImageSnapshot:     p.Image,
				Quantity:          ci.Quantity,
				CreatedAt:         now,
			})

			subtotal += ci.UnitPriceSnapshot * ci.Quantity
		}

		// 金額は作成時に一度だけ確定する
		totals := model.TotalsFromSubtotal(subtotal)

		billing := in.BillingAddress
		if billing == (model.Address{}) {
			billing = in.ShippingAddress
		}

		order := model.Order{
			UserID:          userID,
			CartID:          cart.ID,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			Shipping:        totals.Shipping,
			TotalPrice:      totals.Total,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  billing,
			IdempotencyKey:  key,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			// 同時に同じキーが入った場合はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewInternalError(err3)
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewConflictError("idempotency conflict")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewInternalError(err)
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewUnauthenticatedError()
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewInternalError(err)
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewInternalError(err)
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Orders: outs, Total: total, Page: page, Limit: limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewUnauthenticatedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError(err)
		}
		if o.UserID != userID {
			// 他人の注文は「存在しない扱い」にする
			return NewNotFoundError("order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError(err)
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ユーザー自身のキャンセル。
// 支払い済み、またはPENDINGを離れた注文は断る。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewUnauthenticatedError()
	}
	if orderID <= 0 {
		return NewValidationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError(err)
		}
		if o.UserID != userID {
			return NewNotFoundError("order not found")
		}

		if !o.CanCancelByUser() {
			if o.PaymentStatus == model.PaymentStatusPaid {
				return NewInvalidStateError("order cannot be cancelled after payment")
			}
			return NewInvalidStateError("order cannot be cancelled at this stage")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return NewInternalError(err)
		}
		return nil
	})
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Image:     it.ImageSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		TotalPrice:      o.TotalPrice,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
