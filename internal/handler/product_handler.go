package handler

import (
	"net/http"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := usecase.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, validationResponse{
			Message: "Validation failed. Please check your data",
			Errors:  ve.Fields,
		})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, messageResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal error"})
}

// /products の公開API＋admin用の更新系
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 商品ルートを登録。更新系はguard＋admin role必須
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)

	e.POST("/products", h.create, guard, adminOnly)
	e.PUT("/products/:id", h.update, guard, adminOnly)
	e.DELETE("/products/:id", h.archive, guard, adminOnly)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListPublicProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, productBody{
		Message: "Product fetched successfully",
		Product: *p,
	})
}

type productBody struct {
	Message string        `json:"message"`
	Product model.Product `json:"product"`
}

func (h *ProductHandler) create(c echo.Context) error {
	var in usecase.CreateProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, productBody{
		Message: p.Name + " is successfully created",
		Product: *p,
	})
}

func (h *ProductHandler) update(c echo.Context) error {
	var in usecase.UpdateProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body"})
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, productBody{
		Message: "product has been updated successfully",
		Product: *p,
	})
}

func (h *ProductHandler) archive(c echo.Context) error {
	p, err := h.uc.ArchiveProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, productBody{
		Message: "Successfully archived " + p.Name,
		Product: *p,
	})
}
