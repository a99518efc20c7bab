package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// 商品カタログの保存・取得
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error

	//アーカイブ済みは対象外
	FindActiveByID(ctx context.Context, productID string) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)

	Update(ctx context.Context, product *model.Product) error

	//物理削除はしない（is_archivedを立てる）
	Archive(ctx context.Context, productID string) (*model.Product, error)
}
