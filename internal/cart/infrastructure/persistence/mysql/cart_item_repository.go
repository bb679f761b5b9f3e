// Package mysql 提供购物车仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoplite/shoplite/internal/cart/domain"
	"github.com/shoplite/shoplite/pkg/db"
	"gorm.io/gorm"
)

type cartItemRepository struct {
	db *gorm.DB
}

// NewCartItemRepository 创建购物车仓储实例
func NewCartItemRepository(gdb *gorm.DB) domain.CartItemRepository {
	return &cartItemRepository{db: gdb}
}

func (r *cartItemRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *cartItemRepository) List(ctx context.Context) ([]*domain.CartItem, error) {
	var items []*domain.CartItem
	if err := r.getDB(ctx).WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (r *cartItemRepository) GetByID(ctx context.Context, id uint) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := r.getDB(ctx).WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

func (r *cartItemRepository) FindByProductID(ctx context.Context, productID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.getDB(ctx).WithContext(ctx).Where("product_id = ?", productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *cartItemRepository) ListByIDs(ctx context.Context, ids []uint) ([]*domain.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []*domain.CartItem
	if err := r.getDB(ctx).WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart items by ids: %w", err)
	}
	return items, nil
}

func (r *cartItemRepository) Save(ctx context.Context, item *domain.CartItem) error {
	if err := r.getDB(ctx).WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

func (r *cartItemRepository) Delete(ctx context.Context, id uint) error {
	res := r.getDB(ctx).WithContext(ctx).Delete(&domain.CartItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *cartItemRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.getDB(ctx).WithContext(ctx).Delete(&domain.CartItem{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}
