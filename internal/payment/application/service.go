// Package application 实现结算工作流与支付台账查询。
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cartdomain "github.com/shoplite/shoplite/internal/cart/domain"
	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/internal/payment/domain"
	pkgdb "github.com/shoplite/shoplite/pkg/db"
	"github.com/shoplite/shoplite/pkg/logger"
	"github.com/shoplite/shoplite/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentDTO 支付记录的 API 视图
type PaymentDTO struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   string          `json:"total_amount"`
	Products      json.RawMessage `json:"products"`
	CreatedAt     string          `json:"created_at"`
}

func newPaymentDTO(p *domain.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Address:       p.Address,
		PaymentMethod: string(p.PaymentMethod),
		TotalAmount:   p.TotalAmount.StringFixed(2),
		Products:      p.Products,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// CheckoutCommand 结算命令
type CheckoutCommand struct {
	Name          string
	Email         string
	Address       string
	PaymentMethod string
	TotalAmount   decimal.Decimal
	// 提交的商品负载，原样快照进台账
	Products []map[string]any
	// 要结算的购物车行项 ID，不存在的 ID 被跳过
	CartItemIDs []uint
}

// PaymentService 支付应用服务
type PaymentService struct {
	db        *gorm.DB
	payments  domain.PaymentRepository
	items     cartdomain.CartItemRepository
	products  catalogdomain.ProductRepository
	publisher domain.EventPublisher // 可为 nil
	metrics   *metrics.Metrics      // 可为 nil
}

// NewPaymentService 创建支付应用服务
func NewPaymentService(
	gdb *gorm.DB,
	payments domain.PaymentRepository,
	items cartdomain.CartItemRepository,
	products catalogdomain.ProductRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{
		db:        gdb,
		payments:  payments,
		items:     items,
		products:  products,
		publisher: publisher,
		metrics:   m,
	}
}

// ListPayments 返回全部支付记录
func (s *PaymentService) ListPayments(ctx context.Context) ([]*PaymentDTO, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = newPaymentDTO(p)
	}
	return dtos, nil
}

// GetPayment 根据 ID 获取支付记录
func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*PaymentDTO, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newPaymentDTO(p), nil
}

// Checkout 将选中的购物车行项结算为一条不可变的支付记录。
//
// 单个事务内：逐行项锁定商品、复核库存、扣减库存；写入含商品
// 快照的支付记录；删除行项。任何一步失败整体回滚，库存、购物
// 车与台账回到结算前的状态。
//
// 注意：库存在加入购物车时已经扣减过一次，这里按公开契约再次
// 扣减（行项数量被记账两份）；只做校验不扣减的变体需要同时调整
// 客户端与验收用例。
func (s *PaymentService) Checkout(ctx context.Context, cmd CheckoutCommand) (*PaymentDTO, error) {
	if len(cmd.Products) == 0 {
		return nil, domain.ErrNoProducts
	}
	method := domain.PaymentMethod(cmd.PaymentMethod)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPaymentMethod, cmd.PaymentMethod)
	}

	snapshot, err := json.Marshal(cmd.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products payload: %w", err)
	}

	name := cmd.Name
	if name == "" {
		name = "Anonymous"
	}
	payment := &domain.Payment{
		Name:          name,
		Email:         cmd.Email,
		Address:       cmd.Address,
		PaymentMethod: method,
		TotalAmount:   cmd.TotalAmount,
		Products:      snapshot,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := pkgdb.WithTx(ctx, tx)

		items, err := s.items.ListByIDs(txCtx, cmd.CartItemIDs)
		if err != nil {
			return err
		}

		itemIDs := make([]uint, 0, len(items))
		for _, item := range items {
			product, err := s.products.GetForUpdate(txCtx, item.ProductID)
			if err != nil {
				return err
			}
			// 并发修改可能已使预留失效，扣减前必须复核
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: not enough stock for %s", cartdomain.ErrInsufficientStock, product.Name)
			}
			product.Stock -= item.Quantity
			if err := s.products.Save(txCtx, product); err != nil {
				return err
			}
			itemIDs = append(itemIDs, item.ID)
		}

		if err := s.payments.Create(txCtx, payment); err != nil {
			return err
		}

		return s.items.DeleteByIDs(txCtx, itemIDs)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.CheckoutsFailedTotal.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CheckoutsTotal.Inc()
		amount, _ := payment.TotalAmount.Float64()
		s.metrics.CheckoutAmount.Observe(amount)
	}
	logger.Info(ctx, "payment processed", "order_id", payment.ID, "payment_method", string(method), "total_amount", payment.TotalAmount.StringFixed(2))

	// 事件发布在事务之外，失败只记日志，不影响已提交的结算
	if s.publisher != nil {
		if err := s.publisher.PaymentCompleted(ctx, payment); err != nil {
			logger.Warn(ctx, "failed to publish payment.completed event", "order_id", payment.ID, "error", err)
		}
	}

	return newPaymentDTO(payment), nil
}
