// Package mysql 提供联系人仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"fmt"

	"github.com/shoplite/shoplite/internal/contact/domain"
	"github.com/shoplite/shoplite/pkg/db"
	"gorm.io/gorm"
)

// batchSize 批量插入的单批大小
const batchSize = 100

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系人仓储实例
func NewContactRepository(gdb *gorm.DB) domain.ContactRepository {
	return &contactRepository{db: gdb}
}

func (r *contactRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if err := r.getDB(ctx).WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) CreateBatch(ctx context.Context, contacts []*domain.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	if err := r.getDB(ctx).WithContext(ctx).CreateInBatches(contacts, batchSize).Error; err != nil {
		return fmt.Errorf("failed to create contacts: %w", err)
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	if err := r.getDB(ctx).WithContext(ctx).Order("id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
