package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/docgen"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

type CustomerService struct {
	customers repository.CustomersRepository
	logger    *zap.Logger
}

func NewCustomerService(customers repository.CustomersRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger}
}

type ListCustomersRequest struct {
	Search string
	Active *bool
	Page   int
	Size   int
}

func (s *CustomerService) ListCustomers(ctx context.Context, req ListCustomersRequest) (*domain.PageResult[*domain.Customer], error) {
	page := domain.NewPage(req.Page, req.Size)
	items, total, err := s.customers.ListCustomers(ctx, domain.CustomerFilter{Search: req.Search, Active: req.Active}, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	res := domain.NewPageResult(items, total, page)
	return &res, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// CustomerRequest body of create and update.
type CustomerRequest struct {
	ID       string `json:"-"`
	Name     string `json:"name" valid:"required,stringlength(1|300)"`
	AFM      string `json:"afm" valid:"numeric,stringlength(9|9)"`
	Email    string `json:"email" valid:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	ERPCode  string `json:"erp_code"`
	IsActive *bool  `json:"is_active" valid:"-"`
}

func (req *CustomerRequest) apply(c *domain.Customer) {
	c.Name = strings.TrimSpace(req.Name)
	c.AFM = optional(req.AFM)
	c.Email = optional(strings.ToLower(req.Email))
	c.Phone = optional(req.Phone)
	c.Address = optional(req.Address)
	c.City = optional(req.City)
	c.Zip = optional(req.Zip)
	c.ERPCode = optional(req.ERPCode)
	c.IsActive = boolOr(req.IsActive, c.IsActive)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*domain.Customer, error) {
	req.AFM = strings.TrimSpace(req.AFM)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(&req); err != nil {
		return nil, err
	}
	c := &domain.Customer{IsActive: true}
	req.apply(c)
	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.logger.Info("Customer created", zap.String("customer_id", c.ID))
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, req CustomerRequest) (*domain.Customer, error) {
	req.AFM = strings.TrimSpace(req.AFM)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(&req); err != nil {
		return nil, err
	}
	c, err := s.customers.GetCustomer(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	req.apply(c)
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// ExportCustomers writes every customer matching the filter as an xlsx workbook.
func (s *CustomerService) ExportCustomers(ctx context.Context, search string, w io.Writer) error {
	items, err := s.customers.ListAllCustomers(ctx, domain.CustomerFilter{Search: search})
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}
	if err := docgen.WriteCustomers(w, items); err != nil {
		return fmt.Errorf("failed to export customers: %w", err)
	}
	s.logger.Info("Customers exported", zap.Int("count", len(items)))
	return nil
}
