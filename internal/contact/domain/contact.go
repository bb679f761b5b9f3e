// Package domain 包含联系人录入的领域模型，与商品/购物车/支付完全独立。
package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrInvalidContact = errors.New("invalid contact data")

// Contact 联系人记录
type Contact struct {
	gorm.Model
	FirstName string `gorm:"column:first_name;type:varchar(50);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(50);not null"`
	Email     string `gorm:"column:email;type:varchar(100);not null"`
	// 可选字段
	PhoneNumber string `gorm:"column:phone_number;type:varchar(15)"`
	Address     string `gorm:"column:address;type:text"`
	// 头像 URL，外部存储
	Avatar string `gorm:"column:avatar;type:varchar(255)"`
}

// TableName 指定表名
func (Contact) TableName() string { return "contacts" }

// ContactRepository 联系人仓储接口
type ContactRepository interface {
	// Create 写入单条记录
	Create(ctx context.Context, contact *Contact) error
	// CreateBatch 批量写入
	CreateBatch(ctx context.Context, contacts []*Contact) error
	// List 返回全部记录
	List(ctx context.Context) ([]*Contact, error)
}
