package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// UUID等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	idGen       IDGenerator
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, idGen IDGenerator) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		idGen:       idGen,
	}
}

// POST /products の入力DTO
type CreateProductInput struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
}

// PUT /products/:id の入力DTO（部分更新）
type UpdateProductInput struct {
	Name        *string `json:"name"`
	ImageURL    *string `json:"image_url"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Price       *int64  `json:"price"`
	Stock       *int64  `json:"stock"`
}

type ProductListOutput struct {
	Message  string          `json:"message"`
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

// 公開中の商品一覧（アーカイブ済みは出さない）
func (u *ProductUsecase) ListPublicProducts(ctx context.Context) (ProductListOutput, error) {
	items, err := u.productRepo.ListActive(ctx)
	if err != nil {
		return ProductListOutput{}, err
	}

	if len(items) == 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusNotFound, "No active products found")
	}

	return ProductListOutput{
		Message:  "Active products fetched successfully",
		Count:    len(items),
		Products: items,
	}, nil
}

// 商品詳細（アーカイブ済みはnot found扱い）
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (*model.Product, error) {
	p, err := u.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found or is unavailable")
		}
		return nil, err
	}
	return p, nil
}

// 商品新規作成（admin専用：guardはmiddleware側）
func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	now := time.Now()

	p := &model.Product{
		ID:          u.idGen.NewID(),
		Name:        strings.TrimSpace(in.Name),
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		IsArchived:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// 商品更新（部分更新。nilのフィールドは触らない）
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID string, in UpdateProductInput) (*model.Product, error) {
	p, err := u.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}

	fields := map[string]string{}

	if in.Name != nil {
		if len(strings.TrimSpace(*in.Name)) < 3 {
			fields["name"] = "Product name must be at least 3 characters"
		} else {
			p.Name = strings.TrimSpace(*in.Name)
		}
	}
	if in.ImageURL != nil {
		if !isHTTPURL(*in.ImageURL) {
			fields["image_url"] = "Invalid image Url format"
		} else {
			p.ImageURL = *in.ImageURL
		}
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			fields["price"] = "Price must be a positive number"
		} else {
			p.Price = *in.Price
		}
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			fields["stock"] = "stock cannot be negative"
		} else {
			p.Stock = *in.Stock
		}
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p.UpdatedAt = time.Now()
	if err := u.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// 商品削除（ソフトデリート：アーカイブ）
func (u *ProductUsecase) ArchiveProduct(ctx context.Context, productID string) (*model.Product, error) {
	p, err := u.productRepo.Archive(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}
	return p, nil
}

func validateProduct(in CreateProductInput) error {
	fields := map[string]string{}

	if len(strings.TrimSpace(in.Name)) < 3 {
		fields["name"] = "Product name must be at least 3 characters"
	}
	if !isHTTPURL(in.ImageURL) {
		fields["image_url"] = "Invalid image Url format"
	}
	if in.Price <= 0 {
		fields["price"] = "Price must be a positive number"
	}
	if in.Stock < 0 {
		fields["stock"] = "stock cannot be negative"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
