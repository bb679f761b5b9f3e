// Package application 包含商品目录的应用服务与 DTO。
package application

import (
	"context"
	"time"

	"github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/pkg/metrics"
	"github.com/shopspring/decimal"
)

// ProductDTO 商品的 API 视图，price 序列化为两位小数字符串
type ProductDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	Image       *string `json:"image"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// NewProductDTO 从领域实体构建 DTO
func NewProductDTO(p *domain.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Image != "" {
		img := p.Image
		dto.Image = &img
	}
	return dto
}

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
}

// UpdateProductCommand 全量更新商品命令
type UpdateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
}

// CatalogService 商品目录应用服务
type CatalogService struct {
	repo    domain.ProductRepository
	metrics *metrics.Metrics // 可为 nil
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(repo domain.ProductRepository, m *metrics.Metrics) *CatalogService {
	return &CatalogService{repo: repo, metrics: m}
}

// ListProducts 返回全部商品
func (s *CatalogService) ListProducts(ctx context.Context) ([]*ProductDTO, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = NewProductDTO(p)
	}
	return dtos, nil
}

// GetProduct 根据 ID 获取商品
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(p), nil
}

// CreateProduct 创建商品，负库存与负价格在此拒绝
func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	if cmd.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if cmd.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}
	name := cmd.Name
	if name == "" {
		name = "Unnamed Product"
	}

	p := &domain.Product{
		Name:        name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		Image:       cmd.Image,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ProductsCreatedTotal.Inc()
	}
	return NewProductDTO(p), nil
}

// UpdateProduct 全量更新商品
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, cmd UpdateProductCommand) (*ProductDTO, error) {
	if cmd.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if cmd.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = cmd.Name
	p.Description = cmd.Description
	p.Price = cmd.Price
	p.Stock = cmd.Stock
	p.Image = cmd.Image
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return NewProductDTO(p), nil
}

// DeleteProduct 删除商品
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// UpdateStock 管理端库存覆写，直接写入新值，不做增量调整
func (s *CatalogService) UpdateStock(ctx context.Context, id uint, newStock int) (*ProductDTO, error) {
	if newStock < 0 {
		return nil, domain.ErrInvalidStock
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Stock = newStock
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return NewProductDTO(p), nil
}
