package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderFixture() (*OrderUsecase, *OrderRepoMock, *OrderItemRepoMock, *CartRepoMock, *CartItemRepoMock, *ProductRepoMock) {
	orders := &OrderRepoMock{}
	orderItems := &OrderItemRepoMock{}
	carts := &CartRepoMock{}
	cartItems := &CartItemRepoMock{}
	products := &ProductRepoMock{}

	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:     orders,
		orderItems: orderItems,
		carts:      carts,
		cartItems:  cartItems,
		products:   products,
	}}

	return NewOrderUsecase(tx), orders, orderItems, carts, cartItems, products
}

var testAddress = model.Address{
	Street:  "1-2-3 Chuo",
	City:    "Osaka",
	State:   "Osaka",
	ZipCode: "540-0001",
	Country: "JP",
	Phone:   "06-0000-0000",
}

func TestPlaceOrder_Success(t *testing.T) {
	uc, orders, orderItems, carts, cartItems, products := newOrderFixture()

	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1, IsActive: true}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 1000},
		{CartID: 5, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Price: 1000, Stock: 10, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, Name: "Coaster", Price: 500, Stock: 3, IsActive: true}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(int64(10), nil)
	orderItems.On("CreateBulk", mock.Anything, int64(10), mock.Anything).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, string(model.PaymentStatusPending), out.PaymentStatus)

	// 小計2500 → 税8%で200、送料999、合計3699
	assert.Equal(t, int64(2500), out.Subtotal)
	assert.Equal(t, int64(200), out.Tax)
	assert.Equal(t, int64(999), out.Shipping)
	assert.Equal(t, int64(3699), out.TotalPrice)

	// 請求先未指定なら配送先と同じ
	assert.Equal(t, testAddress, out.BillingAddress)

	// 作成された注文の金額と住所が確定している
	created := orders.Calls[1].Arguments.Get(1).(model.Order)
	assert.Equal(t, int64(3699), created.TotalPrice)
	assert.Equal(t, testAddress, created.ShippingAddress)

	// チェックアウトではカートは消さない
	carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	uc, orders, _, carts, cartItems, _ := newOrderFixture()

	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.True(t, IsKind(err, KindValidation))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_StockDroppedBelowCart(t *testing.T) {
	uc, orders, orderItems, carts, cartItems, products := newOrderFixture()

	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{CartID: 5, ProductID: 100, Quantity: 5, UnitPriceSnapshot: 1000},
	}, nil)
	// カートに入れた後で在庫が5→2に減っていた
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Price: 1000, Stock: 2, IsActive: true}, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.True(t, IsKind(err, KindInsufficientStock))
	ue, _ := AsError(err)
	assert.Equal(t, int64(2), ue.Available)

	// 注文は一切作られず、カートもそのまま
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceOrder_DeactivatedProductFailsWholeCheckout(t *testing.T) {
	uc, orders, _, carts, cartItems, products := newOrderFixture()

	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{CartID: 5, ProductID: 100, Quantity: 1, UnitPriceSnapshot: 1000},
		{CartID: 5, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Stock: 10, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, Name: "Coaster", Stock: 10, IsActive: false}, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.True(t, IsKind(err, KindNotFound))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_SameIdempotencyKeyReturnsSameOrder(t *testing.T) {
	uc, orders, orderItems, carts, _, _ := newOrderFixture()

	existing := model.Order{
		ID:            10,
		UserID:        1,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		TotalPrice:    3699,
	}
	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)

	out, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "FindActiveByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingIdempotencyKey(t *testing.T) {
	uc, _, _, _, _, _ := newOrderFixture()

	_, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
	})

	assert.True(t, IsKind(err, KindValidation))
}

func TestCancelMyOrder_PendingUnpaid(t *testing.T) {
	uc, orders, _, _, _, _ := newOrderFixture()

	orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{
		ID:            10,
		UserID:        1,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCancelled).Return(nil)

	err := uc.CancelMyOrder(context.Background(), 1, 10)

	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestCancelMyOrder_PaidOrderRefused(t *testing.T) {
	uc, orders, _, _, _, _ := newOrderFixture()

	orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{
		ID:            10,
		UserID:        1,
		Status:        model.OrderStatusProcessing,
		PaymentStatus: model.PaymentStatusPaid,
	}, nil)

	err := uc.CancelMyOrder(context.Background(), 1, 10)

	assert.True(t, IsKind(err, KindInvalidState))
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMyOrderDetail_OtherUsersOrderHidden(t *testing.T) {
	uc, orders, _, _, _, _ := newOrderFixture()

	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, UserID: 99}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), 1, 10)

	assert.True(t, IsKind(err, KindNotFound))
}

func TestListMyOrders_Paged(t *testing.T) {
	uc, orders, orderItems, _, _, _ := newOrderFixture()

	orders.On("ListByUserID", mock.Anything, int64(1), 2, 10).Return([]model.Order{
		{ID: 11, UserID: 1, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending},
	}, int64(11), nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	out, err := uc.ListMyOrders(context.Background(), 1, 2, 10)

	assert.NoError(t, err)
	assert.Len(t, out.Orders, 1)
	assert.Equal(t, int64(11), out.Total)
	assert.Equal(t, 2, out.Page)
}

// repo.ErrNotFound をそのまま外に出さないことの確認
func TestPlaceOrder_NoCartRowIsEmptyCart(t *testing.T) {
	uc, orders, _, carts, _, _ := newOrderFixture()

	orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		ShippingAddress: testAddress,
		IdempotencyKey:  "key-1",
	})

	assert.True(t, IsKind(err, KindValidation))
}
