// Package domain 包含商品目录的领域模型
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("invalid price value")
	ErrInvalidStock    = errors.New("invalid stock value")
)

// Product 商品实体
type Product struct {
	gorm.Model
	// 商品名称
	Name string `gorm:"column:name;type:varchar(100);not null;default:'Unnamed Product'"`
	// 商品描述
	Description string `gorm:"column:description;type:text"`
	// 单价，两位小数
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	// 库存，由购物车工作流维护，任何时刻不为负
	Stock int `gorm:"column:stock;not null;default:0"`
	// 商品图片 URL，外部存储，可为空
	Image string `gorm:"column:image;type:varchar(255)"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// List 返回全部商品
	List(ctx context.Context) ([]*Product, error)
	// GetByID 根据 ID 获取商品，不存在时返回 ErrProductNotFound
	GetByID(ctx context.Context, id uint) (*Product, error)
	// GetForUpdate 悲观锁获取商品行，用于库存调整
	GetForUpdate(ctx context.Context, id uint) (*Product, error)
	// Save 保存商品（插入或更新）
	Save(ctx context.Context, product *Product) error
	// Delete 删除商品
	Delete(ctx context.Context, id uint) error
}
