// Package application 实现购物车与库存的对账工作流。
//
// 库存在加入购物车时即被预留：每次行项变更都在同一事务内
// 调整商品库存，保证库存与购物车数量守恒。
package application

import (
	"context"
	"errors"
	"time"

	catalogapp "github.com/shoplite/shoplite/internal/catalog/application"
	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/internal/cart/domain"
	pkgdb "github.com/shoplite/shoplite/pkg/db"
	"github.com/shoplite/shoplite/pkg/logger"
	"github.com/shoplite/shoplite/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItemDTO 购物车行项的 API 视图，total_price 读时计算，从不落库
type CartItemDTO struct {
	ID         uint                   `json:"id"`
	Quantity   int                    `json:"quantity"`
	TotalPrice string                 `json:"total_price"`
	Product    *catalogapp.ProductDTO `json:"product"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
}

func newCartItemDTO(item *domain.CartItem, product *catalogdomain.Product) *CartItemDTO {
	dto := &CartItemDTO{
		ID:        item.ID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
	if product != nil {
		dto.Product = catalogapp.NewProductDTO(product)
		dto.TotalPrice = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2)
	} else {
		dto.TotalPrice = "0.00"
	}
	return dto
}

// CartService 购物车应用服务，所有多行变更都在单个数据库事务内执行
type CartService struct {
	db       *gorm.DB
	items    domain.CartItemRepository
	products catalogdomain.ProductRepository
	metrics  *metrics.Metrics // 可为 nil
}

// NewCartService 创建购物车应用服务
func NewCartService(gdb *gorm.DB, items domain.CartItemRepository, products catalogdomain.ProductRepository, m *metrics.Metrics) *CartService {
	return &CartService{db: gdb, items: items, products: products, metrics: m}
}

// ListItems 返回全部行项
func (s *CartService) ListItems(ctx context.Context) ([]*CartItemDTO, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]*CartItemDTO, len(items))
	for i, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, catalogdomain.ErrProductNotFound) {
			return nil, err
		}
		dtos[i] = newCartItemDTO(item, product)
	}
	return dtos, nil
}

// GetItem 根据 ID 获取行项
func (s *CartService) GetItem(ctx context.Context, id uint) (*CartItemDTO, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil && !errors.Is(err, catalogdomain.ErrProductNotFound) {
		return nil, err
	}
	return newCartItemDTO(item, product), nil
}

// AddItem 加入购物车并预留库存。
// 同一商品的行项已存在时数量累加，否则新建行项；
// 两种情况下商品库存都减少请求数量，购物车变更与库存扣减原子生效。
func (s *CartService) AddItem(ctx context.Context, productID uint, quantity int) (*CartItemDTO, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var item *domain.CartItem
	var product *catalogdomain.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := pkgdb.WithTx(ctx, tx)

		p, err := s.products.GetForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if p.Stock < quantity {
			return domain.ErrInsufficientStock
		}

		existing, err := s.items.FindByProductID(txCtx, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += quantity
			item = existing
		} else {
			item = &domain.CartItem{ProductID: productID, Quantity: quantity}
		}
		if err := s.items.Save(txCtx, item); err != nil {
			return err
		}

		p.Stock -= quantity
		if err := s.products.Save(txCtx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CartItemsAddedTotal.Inc()
	}
	logger.Info(ctx, "cart item added", "cart_item_id", item.ID, "product_id", productID, "quantity", quantity)
	return newCartItemDTO(item, product), nil
}

// UpdateQuantity 修改行项数量。
// diff = 新数量 − 当前数量；diff 为正时需要足够库存，为负时无条件归还库存。
func (s *CartService) UpdateQuantity(ctx context.Context, itemID uint, newQuantity int) (*CartItemDTO, error) {
	if newQuantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var item *domain.CartItem
	var product *catalogdomain.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := pkgdb.WithTx(ctx, tx)

		it, err := s.items.GetByID(txCtx, itemID)
		if err != nil {
			return err
		}

		p, err := s.products.GetForUpdate(txCtx, it.ProductID)
		if err != nil {
			return err
		}

		diff := newQuantity - it.Quantity
		if diff > 0 && p.Stock < diff {
			return domain.ErrInsufficientStock
		}

		p.Stock -= diff
		if err := s.products.Save(txCtx, p); err != nil {
			return err
		}

		it.Quantity = newQuantity
		if err := s.items.Save(txCtx, it); err != nil {
			return err
		}

		item = it
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newCartItemDTO(item, product), nil
}

// RemoveItem 移除行项并归还其预留的库存
func (s *CartService) RemoveItem(ctx context.Context, itemID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := pkgdb.WithTx(ctx, tx)

		item, err := s.items.GetByID(txCtx, itemID)
		if err != nil {
			return err
		}

		product, err := s.products.GetForUpdate(txCtx, item.ProductID)
		if err != nil && !errors.Is(err, catalogdomain.ErrProductNotFound) {
			return err
		}
		// 商品已从目录下架时无库存可归还，仅删除行项
		if product != nil {
			product.Stock += item.Quantity
			if err := s.products.Save(txCtx, product); err != nil {
				return err
			}
		}

		return s.items.Delete(txCtx, itemID)
	})
}
