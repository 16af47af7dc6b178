package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジック。
// 合計はDBに持たせず、返すたびに明細から計算する。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int64              `json:"item_count"`
	Subtotal  int64              `json:"subtotal"`
	Tax       int64              `json:"tax"`
	Shipping  int64              `json:"shipping"`
	Total     int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// カート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewUnauthenticatedError()
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// カートに追加（同一商品は数量加算＋価格を現在値に更新）
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewUnauthenticatedError()
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewValidationError("invalid product_id")
	}
	if in.Quantity < model.MinCartQuantity || in.Quantity > model.MaxCartQuantity {
		return CartResponse{}, NewValidationError("quantity must be between 1 and 99")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	// 商品チェック（公開中のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}
	if !p.IsActive {
		return CartResponse{}, NewNotFoundError("product not found")
	}

	// 加算後の数量で在庫と上限をチェック
	var existingQty int64
	existing, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, in.ProductID)
	if err == nil {
		existingQty = existing.Quantity
	} else if err != repo.ErrNotFound {
		return CartResponse{}, NewInternalError(err)
	}

	newQty := existingQty + in.Quantity
	if newQty > model.MaxCartQuantity {
		return CartResponse{}, NewValidationError("quantity cannot exceed 99")
	}
	if newQty > p.Stock {
		return CartResponse{}, NewInsufficientStockError(p.Name, p.Stock)
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity, p.Price); err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更。0以下は削除と同じ。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, productID int64, quantity int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewUnauthenticatedError()
	}
	if productID <= 0 {
		return CartResponse{}, NewValidationError("invalid product_id")
	}

	if quantity <= 0 {
		return u.RemoveItem(ctx, userID, productID)
	}
	if quantity > model.MaxCartQuantity {
		return CartResponse{}, NewValidationError("quantity cannot exceed 99")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewNotFoundError("cart not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	if _, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewNotFoundError("item not found in cart")
		}
		return CartResponse{}, NewInternalError(err)
	}

	// 商品の在庫チェック
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}
	if !p.IsActive {
		return CartResponse{}, NewNotFoundError("product not found")
	}
	if quantity > p.Stock {
		return CartResponse{}, NewInsufficientStockError(p.Name, p.Stock)
	}

	if err := u.cartItemRepo.UpdateQuantityByProduct(ctx, cart.ID, productID, quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewNotFoundError("item not found in cart")
		}
		return CartResponse{}, NewInternalError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewUnauthenticatedError()
	}
	if productID <= 0 {
		return CartResponse{}, NewValidationError("invalid product_id")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewNotFoundError("cart not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	if err := u.cartItemRepo.DeleteByProduct(ctx, cart.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewNotFoundError("item not found in cart")
		}
		return CartResponse{}, NewInternalError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 全明細を削除して空のカートを返す
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewUnauthenticatedError()
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewNotFoundError("cart not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil && err != repo.ErrNotFound {
		return CartResponse{}, NewInternalError(err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細を集めてレスポンスを作る。合計はここで毎回導出する。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewInternalError(err)
	}

	respItems := make([]CartItemResponse, 0, len(items))
	visible := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil || !p.IsActive {
			// 販売停止になった商品は表示にも合計にも入れない
			continue
		}

		visible = append(visible, it)
		respItems = append(respItems, CartItemResponse{
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	totals := model.ComputeTotals(visible)

	return CartResponse{
		Items:     respItems,
		ItemCount: model.ItemCount(visible),
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Shipping:  totals.Shipping,
		Total:     totals.Total,
	}, nil
}
