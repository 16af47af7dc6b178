package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/products のHTTP
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type AdminProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

type AdminRestockRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/restock", h.restock)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, failMessage("unauthorized"))
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid body"))
	}

	id, err := h.uc.AdminCreateProduct(c.Request().Context(), userID, usecase.AdminCreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminProductHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, failMessage("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid id"))
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid body"))
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), userID, id, usecase.AdminCreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
		Price:       req.Price,
		IsActive:    req.IsActive,
	}); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, nil)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, failMessage("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid id"))
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, nil)
}

// 入荷・在庫補正
func (h *AdminProductHandler) restock(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, failMessage("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid id"))
	}

	var req AdminRestockRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid body"))
	}

	if err := h.uc.AdminRestock(c.Request().Context(), userID, id, usecase.AdminRestockInput{
		Delta:  req.Delta,
		Reason: req.Reason,
	}); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, nil)
}
