package usecase

import (
	"context"
	"fmt"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

// 決済ゲートウェイからの確定イベント。
// ゲートウェイはat-least-onceで届けるので、処理側はorderIDごとに冪等。
type PaymentConfirmation struct {
	UserID     int64  `json:"user_id"`
	OrderID    int64  `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

// SettlementUsecase は支払い確定の反映を行う。
// 注文のPROCESSING/PAID化・カートのクリア・在庫引当を1つのTxで行い、
// どれか1つでも失敗したら全て戻す。
type SettlementUsecase struct {
	tx     repo.TransactionManager
	logger zerolog.Logger
}

func NewSettlementUsecase(tx repo.TransactionManager, logger zerolog.Logger) *SettlementUsecase {
	return &SettlementUsecase{tx: tx, logger: logger}
}

func (u *SettlementUsecase) Settle(ctx context.Context, ev PaymentConfirmation) error {
	if ev.UserID <= 0 || ev.OrderID <= 0 {
		return NewValidationError("invalid payment event")
	}

	settled := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同一注文への確定を直列化するため行ロックで読む
		o, err := r.Orders().FindByIDForUpdate(ctx, ev.OrderID)
		if err == repo.ErrNotFound {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError(err)
		}
		if o.UserID != ev.UserID {
			// 他人の注文は「存在しない扱い」にする
			return NewNotFoundError("order not found")
		}

		// 既に支払い済みなら何もしない（同じイベントの再配達）
		if o.PaymentStatus == model.PaymentStatusPaid {
			u.logger.Info().
				Int64("order_id", o.ID).
				Str("payment_ref", ev.PaymentRef).
				Msg("settlement replayed for already paid order, skipping")
			return nil
		}
		if !o.CanSettle() {
			return NewInvalidStateError("order cannot be settled")
		}

		// 1. 注文をPROCESSING/PAIDにして支払い情報を記録
		now := time.Now()
		if err := r.Orders().MarkPaid(ctx, o.ID, ev.PaymentRef, now); err != nil {
			return NewInternalError(err)
		}

		// 2. 注文元のカートを空にする（既に空でもよい）
		if err := r.Carts().Clear(ctx, o.CartID); err != nil && err != repo.ErrNotFound {
			return NewInternalError(err)
		}

		// 3. 明細ごとに在庫を引き当てる。1つでも足りなければユニット全体を中断。
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewInternalError(err)
		}

		for _, it := range items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewInternalError(err)
			}
			if !ok {
				return NewInsufficientStockError(fmt.Sprintf("product %d", it.ProductID), 0)
			}
		}

		settled = true
		return nil
	})

	if err != nil {
		u.logger.Error().
			Err(err).
			Int64("order_id", ev.OrderID).
			Str("payment_ref", ev.PaymentRef).
			Msg("settlement failed, unit rolled back")
		return err
	}

	if settled {
		u.logger.Info().
			Int64("order_id", ev.OrderID).
			Str("payment_ref", ev.PaymentRef).
			Msg("order settled: paid, stock reserved, cart cleared")
	}
	return nil
}
