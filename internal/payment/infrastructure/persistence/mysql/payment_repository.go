// Package mysql 提供支付台账仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoplite/shoplite/internal/payment/domain"
	"github.com/shoplite/shoplite/pkg/db"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付台账仓储实例
func NewPaymentRepository(gdb *gorm.DB) domain.PaymentRepository {
	return &paymentRepository{db: gdb}
}

func (r *paymentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *paymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	if err := r.getDB(ctx).WithContext(ctx).Order("id desc").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.getDB(ctx).WithContext(ctx).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if err := r.getDB(ctx).WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}
