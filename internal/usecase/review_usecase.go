package usecase

import (
	"context"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo}
}

type CreateReviewInput struct {
	Rating  int
	Comment string
}

type ReviewListOutput struct {
	Reviews []model.Review `json:"reviews"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

func (u *ReviewUsecase) Create(ctx context.Context, userID int64, productID int64, in CreateReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewUnauthenticatedError()
	}
	if productID <= 0 {
		return model.Review{}, NewValidationError("invalid product id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, NewValidationError("rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) < 10 || len(comment) > 500 {
		return model.Review{}, NewValidationError("comment must be between 10 and 500 characters")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Review{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return model.Review{}, NewInternalError(err)
	}
	if !p.IsActive {
		return model.Review{}, NewNotFoundError("product not found")
	}

	now := time.Now()
	rv, err := u.reviewRepo.Create(ctx, model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   comment,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Review{}, NewInternalError(err)
	}
	return rv, nil
}

func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64, page int, limit int) (ReviewListOutput, error) {
	if productID <= 0 {
		return ReviewListOutput{}, NewValidationError("invalid product id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	reviews, total, err := u.reviewRepo.ListByProductID(ctx, productID, page, limit)
	if err != nil {
		return ReviewListOutput{}, NewInternalError(err)
	}

	return ReviewListOutput{Reviews: reviews, Total: total, Page: page, Limit: limit}, nil
}

// 本人または管理者だけが消せる
func (u *ReviewUsecase) Delete(ctx context.Context, userID int64, role model.Role, reviewID int64) error {
	if userID <= 0 {
		return NewUnauthenticatedError()
	}
	if reviewID <= 0 {
		return NewValidationError("invalid id")
	}

	rv, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return NewNotFoundError("review not found")
	}
	if err != nil {
		return NewInternalError(err)
	}

	if rv.UserID != userID && role != model.RoleAdmin {
		return NewForbiddenError("cannot delete another user's review")
	}

	if err := u.reviewRepo.SoftDelete(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewNotFoundError("review not found")
		}
		return NewInternalError(err)
	}
	return nil
}
