package usecase

import (
	"context"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 商品詳細のキャッシュの約束。実装はinfra/cache（redis）。
type ProductCache interface {
	Get(ctx context.Context, productID int64) (model.Product, bool)
	Set(ctx context.Context, p model.Product)
	Invalidate(ctx context.Context, productID int64)
}

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	cache         ProductCache // nilなら素通し
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	cache ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		cache:         cache,
	}
}

type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewValidationError("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewValidationError("q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewValidationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewValidationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewValidationError("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewValidationError("invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewInternalError(err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewValidationError("invalid product id")
	}

	if u.cache != nil {
		if p, ok := u.cache.Get(ctx, productID); ok && p.IsActive {
			return p, nil
		}
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return model.Product{}, NewInternalError(err)
	}
	if !p.IsActive {
		return model.Product{}, NewNotFoundError("product not found")
	}

	if u.cache != nil {
		u.cache.Set(ctx, p)
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name        string
	Description string
	Category    string
	Image       string
	Price       int64
	Stock       int64
	IsActive    bool
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewUnauthenticatedError()
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, NewValidationError("name required")
	}
	if in.Price < 0 {
		return 0, NewValidationError("price must be >= 0")
	}
	if in.Stock < 0 {
		return 0, NewValidationError("stock must be >= 0")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Image:       in.Image,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, NewInternalError(err)
	}
	return p.ID, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminCreateProductInput) error {
	if adminUserID <= 0 {
		return NewUnauthenticatedError()
	}
	if productID <= 0 {
		return NewValidationError("invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name required")
	}
	if in.Price < 0 {
		return NewValidationError("price must be >= 0")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Image:       in.Image,
		Price:       in.Price,
		IsActive:    in.IsActive,
		UpdatedAt:   time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewNotFoundError("product not found")
	}
	if err != nil {
		return NewInternalError(err)
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx, productID)
	}
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewUnauthenticatedError()
	}
	if productID <= 0 {
		return NewValidationError("invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewNotFoundError("product not found")
	}
	if err != nil {
		return NewInternalError(err)
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx, productID)
	}
	return nil
}

type AdminRestockInput struct {
	Delta  int64
	Reason string
}

// 入荷・補正。在庫を加算して調整履歴を残す。
func (u *ProductUsecase) AdminRestock(ctx context.Context, adminUserID int64, productID int64, in AdminRestockInput) error {
	if adminUserID <= 0 {
		return NewUnauthenticatedError()
	}
	if productID <= 0 {
		return NewValidationError("invalid product id")
	}
	if in.Delta <= 0 {
		return NewValidationError("delta must be > 0")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return NewValidationError("reason required")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewNotFoundError("product not found")
		}
		return NewInternalError(err)
	}

	if err := u.inventoryRepo.IncreaseStock(ctx, productID, in.Delta); err != nil {
		if err == repo.ErrNotFound {
			return NewNotFoundError("product not found")
		}
		return NewInternalError(err)
	}

	adj := model.InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		Delta:       in.Delta,
		Reason:      strings.TrimSpace(in.Reason),
		CreatedAt:   time.Now(),
	}
	if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
		return NewInternalError(err)
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx, productID)
	}
	return nil
}
