package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type productGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewProductGormRepository(db *gorm.DB) repo.ProductRepository {
	return &productGormRepository{db: db}
}

func (r *productGormRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}
	return nil
}

// アーカイブ済みを除いてIDで1件取得
func (r *productGormRepository) FindActiveByID(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ? AND is_archived = ?", productID, false).
		First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

// 公開中の商品を全件取得
func (r *productGormRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	var items []model.Product

	err := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("created_at DESC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *productGormRepository) Update(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return err
	}
	return nil
}

// is_archivedを立てて一覧・詳細から外す
func (r *productGormRepository) Archive(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrProductNotFound
		}
		return nil, err
	}

	p.IsArchived = true
	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}
