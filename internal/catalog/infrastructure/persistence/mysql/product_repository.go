// Package mysql 提供商品仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/pkg/cache"
	"github.com/shoplite/shoplite/pkg/db"
	"github.com/shoplite/shoplite/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductListCacheKey 商品列表缓存 key
const ProductListCacheKey = "products:all"

type productRepository struct {
	db       *gorm.DB
	cache    *cache.RedisCache // 可为 nil，此时不做缓存
	cacheTTL time.Duration
}

// NewProductRepository 创建商品仓储实例，cache 可为 nil
func NewProductRepository(gdb *gorm.DB, c *cache.RedisCache, cacheTTL time.Duration) domain.ProductRepository {
	return &productRepository{db: gdb, cache: c, cacheTTL: cacheTTL}
}

// getDB 优先使用 context 中的事务句柄
func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	if r.cache != nil {
		var cached []*domain.Product
		if hit, err := r.cache.GetJSON(ctx, ProductListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	var products []*domain.Product
	if err := r.getDB(ctx).WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, ProductListCacheKey, products, r.cacheTTL); err != nil {
			logger.Warn(ctx, "failed to cache product list", "error", err)
		}
	}
	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.getDB(ctx).WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	tx := r.getDB(ctx).WithContext(ctx)
	// SQLite（测试方言）不支持 FOR UPDATE，依赖事务隔离
	if tx.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product domain.Product
	if err := tx.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := r.getDB(ctx).WithContext(ctx).Save(product).Error; err != nil {
		logger.Error(ctx, "product_repository.save failed", "product_id", product.ID, "error", err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	r.invalidateList(ctx)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.getDB(ctx).WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	r.invalidateList(ctx)
	return nil
}

// invalidateList 商品发生任何变更后使列表缓存失效
func (r *productRepository) invalidateList(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, ProductListCacheKey); err != nil {
		logger.Warn(ctx, "failed to invalidate product list cache", "error", err)
	}
}
