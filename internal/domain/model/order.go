package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// 注文に埋め込む住所
type Address struct {
	Street  string `gorm:"type:varchar(255)" json:"street"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
	ZipCode string `gorm:"type:varchar(20)" json:"zip_code"`
	Country string `gorm:"type:varchar(100)" json:"country"`
	Phone   string `gorm:"type:varchar(30)" json:"phone"`
}

// 注文は作成時点のスナップショット。金額・明細は後から変えない。
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	CartID        int64         `gorm:"not null;index" json:"cart_id"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentID     string        `gorm:"type:varchar(255)" json:"payment_id,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`

	Subtotal   int64 `gorm:"not null" json:"subtotal"`
	Tax        int64 `gorm:"not null" json:"tax"`
	Shipping   int64 `gorm:"not null" json:"shipping"`
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ユーザー自身のキャンセル可否。
// 支払い済み、またはPENDINGを離れた注文はキャンセルできない。
func (o Order) CanCancelByUser() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus != PaymentStatusPaid
}

// 管理者の遷移可否。
// PENDING → CANCELLED は未払いのときだけ。
// PROCESSING → SHIPPED → DELIVERED は前進のみ。終端は変更不可。
func (o Order) CanAdminTransition(to OrderStatus) bool {
	switch o.Status {
	case OrderStatusPending:
		return to == OrderStatusCancelled && o.PaymentStatus != PaymentStatusPaid
	case OrderStatusProcessing:
		return to == OrderStatusShipped
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		// DELIVERED / CANCELLED は動かさない
		return false
	}
}

// 決済確定を受けられる状態か
func (o Order) CanSettle() bool {
	return o.Status != OrderStatusCancelled && o.PaymentStatus == PaymentStatusPending
}
