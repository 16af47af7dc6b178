package model

import "time"

// 注文明細。商品名・価格・画像は注文作成時点のコピー。
// 商品側が後で変わっても明細は変わらない。
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	NameSnapshot      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"price"`
	ImageSnapshot     string    `gorm:"type:varchar(512)" json:"image"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
