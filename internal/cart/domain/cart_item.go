// Package domain 包含购物车的领域模型。
//
// 购物车行项与商品库存是同一份资源的两个视图：加入购物车即预留库存，
// 移除购物车即归还库存。对任意商品恒有
// product.stock + Σ(cart_item.quantity) == 会话开始时的可用量（除去已结算部分）。
package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrInvalidQuantity   = errors.New("invalid quantity value")
)

// CartItem 购物车行项，弱引用一个商品
type CartItem struct {
	gorm.Model
	// 商品 ID。不建外键约束：删除行项不影响商品
	ProductID uint `gorm:"column:product_id;index;not null"`
	// 数量，正整数
	Quantity int `gorm:"column:quantity;not null;default:1"`
}

// TableName 指定表名
func (CartItem) TableName() string { return "cart_items" }

// CartItemRepository 购物车仓储接口
type CartItemRepository interface {
	// List 返回全部行项
	List(ctx context.Context) ([]*CartItem, error)
	// GetByID 根据 ID 获取行项，不存在时返回 ErrCartItemNotFound
	GetByID(ctx context.Context, id uint) (*CartItem, error)
	// FindByProductID 按商品查找行项，不存在时返回 nil
	FindByProductID(ctx context.Context, productID uint) (*CartItem, error)
	// ListByIDs 按 ID 集合返回行项，缺失的 ID 被跳过
	ListByIDs(ctx context.Context, ids []uint) ([]*CartItem, error)
	// Save 保存行项（插入或更新）
	Save(ctx context.Context, item *CartItem) error
	// Delete 删除行项
	Delete(ctx context.Context, id uint) error
	// DeleteByIDs 批量删除行项
	DeleteByIDs(ctx context.Context, ids []uint) error
}
