// Package application 包含联系人录入的应用服务。
package application

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/shoplite/shoplite/internal/contact/domain"
	"github.com/shoplite/shoplite/pkg/metrics"
)

// ContactCommand 联系人录入命令
type ContactCommand struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Avatar      string `json:"avatar"`
}

// validate 单条记录独立校验
func (c ContactCommand) validate() error {
	if c.FirstName == "" {
		return fmt.Errorf("%w: first_name is required", domain.ErrInvalidContact)
	}
	if c.LastName == "" {
		return fmt.Errorf("%w: last_name is required", domain.ErrInvalidContact)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidContact)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidContact)
	}
	return nil
}

func (c ContactCommand) toEntity() *domain.Contact {
	return &domain.Contact{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		Avatar:      c.Avatar,
	}
}

// ContactService 联系人应用服务
type ContactService struct {
	repo    domain.ContactRepository
	metrics *metrics.Metrics // 可为 nil
}

// NewContactService 创建联系人应用服务
func NewContactService(repo domain.ContactRepository, m *metrics.Metrics) *ContactService {
	return &ContactService{repo: repo, metrics: m}
}

// CreateContact 写入单条联系人记录，返回新记录 ID
func (s *ContactService) CreateContact(ctx context.Context, cmd ContactCommand) (uint, error) {
	if err := cmd.validate(); err != nil {
		return 0, err
	}
	contact := cmd.toEntity()
	if err := s.repo.Create(ctx, contact); err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.ContactsCreatedTotal.Inc()
	}
	return contact.ID, nil
}

// CreateContacts 批量写入联系人记录。每条记录独立校验，
// 任一校验失败则整批拒绝；通过后批量插入。
func (s *ContactService) CreateContacts(ctx context.Context, cmds []ContactCommand) (int, error) {
	contacts := make([]*domain.Contact, len(cmds))
	for i, cmd := range cmds {
		if err := cmd.validate(); err != nil {
			return 0, err
		}
		contacts[i] = cmd.toEntity()
	}
	if err := s.repo.CreateBatch(ctx, contacts); err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.ContactsCreatedTotal.Add(float64(len(contacts)))
	}
	return len(contacts), nil
}
