package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

type CustomersRepository interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.Page) ([]*domain.Customer, int, error)
	// ListAllCustomers is used by the xlsx export, unpaginated.
	ListAllCustomers(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error)
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	UpdateCustomer(ctx context.Context, c *domain.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}
