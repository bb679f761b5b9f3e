package application

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	catalogmysql "github.com/shoplite/shoplite/internal/catalog/infrastructure/persistence/mysql"
	cartdomain "github.com/shoplite/shoplite/internal/cart/domain"
	cartmysql "github.com/shoplite/shoplite/internal/cart/infrastructure/persistence/mysql"
	"github.com/shoplite/shoplite/internal/payment/domain"
	paymentmysql "github.com/shoplite/shoplite/internal/payment/infrastructure/persistence/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakePublisher struct {
	published []*domain.Payment
}

func (f *fakePublisher) PaymentCompleted(_ context.Context, p *domain.Payment) error {
	f.published = append(f.published, p)
	return nil
}

type paymentFixture struct {
	svc       *PaymentService
	products  catalogdomain.ProductRepository
	items     cartdomain.CartItemRepository
	payments  domain.PaymentRepository
	publisher *fakePublisher
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "payment.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&catalogdomain.Product{}, &cartdomain.CartItem{}, &domain.Payment{}))

	products := catalogmysql.NewProductRepository(gdb, nil, 0)
	items := cartmysql.NewCartItemRepository(gdb)
	payments := paymentmysql.NewPaymentRepository(gdb)
	publisher := &fakePublisher{}
	return &paymentFixture{
		svc:       NewPaymentService(gdb, payments, items, products, publisher, nil),
		products:  products,
		items:     items,
		payments:  payments,
		publisher: publisher,
	}
}

// seedReserved 模拟已加购的状态：商品库存为 stock，购物车行项占用 quantity
func (f *paymentFixture) seedReserved(t *testing.T, name string, price string, stock, quantity int) (*catalogdomain.Product, *cartdomain.CartItem) {
	t.Helper()
	ctx := context.Background()
	p := &catalogdomain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, f.products.Save(ctx, p))
	item := &cartdomain.CartItem{ProductID: p.ID, Quantity: quantity}
	require.NoError(t, f.items.Save(ctx, item))
	return p, item
}

func checkoutCmd(items []*cartdomain.CartItem, total string) CheckoutCommand {
	ids := make([]uint, len(items))
	products := make([]map[string]any, len(items))
	for i, item := range items {
		ids[i] = item.ID
		products[i] = map[string]any{"id": item.ProductID, "quantity": item.Quantity}
	}
	return CheckoutCommand{
		Name:          "Juan dela Cruz",
		Email:         "juan@example.com",
		Address:       "123 Rizal St",
		PaymentMethod: "gcash",
		TotalAmount:   decimal.RequireFromString(total),
		Products:      products,
		CartItemIDs:   ids,
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p, item := f.seedReserved(t, "Keyboard", "49.90", 5, 2)

	dto, err := f.svc.Checkout(ctx, checkoutCmd([]*cartdomain.CartItem{item}, "99.80"))
	require.NoError(t, err)
	assert.NotZero(t, dto.ID)
	assert.Equal(t, "gcash", dto.PaymentMethod)
	assert.Equal(t, "99.80", dto.TotalAmount)

	// 库存被扣减
	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	// 行项被清除
	_, err = f.items.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, cartdomain.ErrCartItemNotFound)

	// 台账里有且仅有一条记录，快照与提交的负载一致
	payments, err := f.payments.List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	var snapshot []map[string]any
	require.NoError(t, json.Unmarshal(payments[0].Products, &snapshot))
	assert.Len(t, snapshot, 1)

	// 事务提交后发布事件
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, dto.ID, f.publisher.published[0].ID)
}

func TestCheckout_RollsBackOnInsufficientStock(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p1, item1 := f.seedReserved(t, "Mouse", "20.00", 10, 2)
	p2, item2 := f.seedReserved(t, "Monitor", "150.00", 1, 2)

	_, err := f.svc.Checkout(ctx, checkoutCmd([]*cartdomain.CartItem{item1, item2}, "340.00"))
	assert.ErrorIs(t, err, cartdomain.ErrInsufficientStock)

	// 整体回滚：第一个商品的扣减也被撤销
	got1, err := f.products.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got1.Stock)
	got2, err := f.products.GetByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got2.Stock)

	// 行项保留，台账为空
	_, err = f.items.GetByID(ctx, item1.ID)
	require.NoError(t, err)
	payments, err := f.payments.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Empty(t, f.publisher.published)
}

func TestCheckout_NoProducts(t *testing.T) {
	f := newPaymentFixture(t)

	cmd := CheckoutCommand{
		Email:         "juan@example.com",
		Address:       "123 Rizal St",
		PaymentMethod: "gcash",
		TotalAmount:   decimal.NewFromInt(10),
	}
	_, err := f.svc.Checkout(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrNoProducts)
}

func TestCheckout_InvalidPaymentMethod(t *testing.T) {
	f := newPaymentFixture(t)
	_, item := f.seedReserved(t, "Cable", "3.00", 5, 1)

	cmd := checkoutCmd([]*cartdomain.CartItem{item}, "3.00")
	cmd.PaymentMethod = "bitcoin"
	_, err := f.svc.Checkout(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

func TestCheckout_AnonymousName(t *testing.T) {
	f := newPaymentFixture(t)
	_, item := f.seedReserved(t, "Stand", "15.00", 5, 1)

	cmd := checkoutCmd([]*cartdomain.CartItem{item}, "15.00")
	cmd.Name = ""
	dto, err := f.svc.Checkout(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", dto.Name)
}

func TestCheckout_SkipsMissingCartItems(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	p, item := f.seedReserved(t, "Webcam", "60.00", 5, 1)

	cmd := checkoutCmd([]*cartdomain.CartItem{item}, "60.00")
	cmd.CartItemIDs = append(cmd.CartItemIDs, 9999)
	_, err := f.svc.Checkout(ctx, cmd)
	require.NoError(t, err)

	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestListAndGetPayments(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, item1 := f.seedReserved(t, "A", "1.00", 5, 1)
	_, item2 := f.seedReserved(t, "B", "2.00", 5, 1)

	first, err := f.svc.Checkout(ctx, checkoutCmd([]*cartdomain.CartItem{item1}, "1.00"))
	require.NoError(t, err)
	second, err := f.svc.Checkout(ctx, checkoutCmd([]*cartdomain.CartItem{item2}, "2.00"))
	require.NoError(t, err)

	// 最新的记录排在前面
	dtos, err := f.svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, second.ID, dtos[0].ID)
	assert.Equal(t, first.ID, dtos[1].ID)

	got, err := f.svc.GetPayment(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.00", got.TotalAmount)

	_, err = f.svc.GetPayment(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
