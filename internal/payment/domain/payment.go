// Package domain 包含支付台账的领域模型。
package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNoProducts           = errors.New("no products selected for payment")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodGcash  PaymentMethod = "gcash"
	PaymentMethodMaya   PaymentMethod = "maya"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// IsValid 校验支付方式取值
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodGcash, PaymentMethodMaya, PaymentMethodPayPal:
		return true
	}
	return false
}

// Payment 支付记录，仅追加：写入后不可修改、不可删除。
// Products 是结算时商品数据的不可变快照，与商品表无外键关系，
// 后续的商品修改或删除不影响历史记录。
type Payment struct {
	gorm.Model
	// 买家姓名
	Name string `gorm:"column:name;type:varchar(100);not null;default:'Anonymous'"`
	// 买家邮箱
	Email string `gorm:"column:email;type:varchar(100);not null"`
	// 收货地址
	Address string `gorm:"column:address;type:text;not null"`
	// 支付方式：gcash, maya, paypal
	PaymentMethod PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	// 订单总额，两位小数
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null"`
	// 商品快照，不透明 JSON 负载
	Products json.RawMessage `gorm:"column:products;type:json;not null"`
}

// TableName 指定表名
func (Payment) TableName() string { return "payments" }

// PaymentRepository 支付台账仓储接口，不提供更新与删除
type PaymentRepository interface {
	// List 返回全部支付记录
	List(ctx context.Context) ([]*Payment, error)
	// GetByID 根据 ID 获取支付记录，不存在时返回 ErrPaymentNotFound
	GetByID(ctx context.Context, id uint) (*Payment, error)
	// Create 写入一条支付记录
	Create(ctx context.Context, payment *Payment) error
}

// EventPublisher 结算完成事件发布接口
type EventPublisher interface {
	// PaymentCompleted 发布支付完成事件，在事务提交后调用
	PaymentCompleted(ctx context.Context, payment *Payment) error
}
