package usecase

import (
	"context"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（ステータス・ユーザー・期間で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, NewValidationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewValidationError("invalid limit")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
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

		out = OrderListOutput{Orders: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新。前進のみ（PROCESSING→SHIPPED→DELIVERED）。
// CANCELLEDにできるのは未払いのPENDINGだけ。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewUnauthenticatedError()
	}
	if orderID <= 0 {
		return NewValidationError("invalid id")
	}

	newStatus := model.OrderStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	switch newStatus {
	case model.OrderStatusProcessing, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
		// OK
	default:
		return NewValidationError("invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError(err)
		}

		// すでに同じなら何もしない
		if o.Status == newStatus {
			return nil
		}

		if !o.CanAdminTransition(newStatus) {
			return NewInvalidStateError("cannot change order from " + string(o.Status) + " to " + string(newStatus))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewNotFoundError("order not found")
			}
			return NewInternalError(err)
		}
		return nil
	})
}

// 論理削除（一覧から消えるだけで記録は残す）
func (u *AdminOrderUsecase) SoftDelete(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	if actorAdminUserID <= 0 {
		return NewUnauthenticatedError()
	}
	if orderID <= 0 {
		return NewValidationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().SoftDelete(ctx, orderID); err != nil {
			if err == repo.ErrNotFound {
				return NewNotFoundError("order not found")
			}
			return NewInternalError(err)
		}
		return nil
	})
}
