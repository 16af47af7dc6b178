package model

import "time"

// 1ユーザーにつきカートは1つ（user_idでユニーク）
// 削除は物理削除ではなくis_activeを落とす
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カート・注文共通の税/送料ルール
const (
	TaxRatePercent        int64 = 8
	FreeShippingThreshold int64 = 5000 // これを超えたら送料無料
	FlatShippingFee       int64 = 999
)

// 合計はDBに保存しない。毎回ここで導出する。
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// 小計から税・送料・合計を決める唯一の関数
func TotalsFromSubtotal(subtotal int64) Totals {
	if subtotal <= 0 {
		return Totals{}
	}

	tax := subtotal * TaxRatePercent / 100

	var shipping int64 = FlatShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

// 明細から合計を計算
func ComputeTotals(items []CartItem) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.UnitPriceSnapshot * it.Quantity
	}
	return TotalsFromSubtotal(subtotal)
}

// 商品個数の合計（保存しない導出値）
func ItemCount(items []CartItem) int64 {
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
