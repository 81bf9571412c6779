package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/validator"
	"gorm.io/gorm"
)

const (
	orderNumberPrefix   = "NV"
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberRandLen  = 6
	orderNumberAttempts = 5

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// OrderService is the order capture and back-office interface
type OrderService interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*model.Order, error)
	ValidateContact(req *ContactRequest) map[string]validator.Reason
	GetOrder(ctx context.Context, ref string) (*model.Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderPage, error)
	UpdateStatus(ctx context.Context, ref string, status model.OrderStatus) (*model.Order, error)
	History(ctx context.Context, ref string) ([]model.OrderEvent, error)
}

// CreateOrderRequest is the checkout form. Binding rules reject structurally bad input
// before the plausibility validators run.
type CreateOrderRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone" binding:"required"`
	CEP           string  `json:"cep" binding:"required"`
	Address       string  `json:"address" binding:"required"`
	Number        string  `json:"number" binding:"required"`
	Complement    string  `json:"complement"`
	Neighborhood  string  `json:"neighborhood" binding:"required"`
	City          string  `json:"city" binding:"required"`
	State         string  `json:"state" binding:"required,len=2"`
	Quantity      int     `json:"quantity" binding:"required,min=1,max=3"`
	ProductPrice  float64 `json:"productPrice" binding:"gte=0"`
	ShippingPrice float64 `json:"shippingPrice" binding:"gte=0"`
	TotalPrice    float64 `json:"totalPrice" binding:"gte=0"`
}

// ContactRequest is the subset checked by the live form validation endpoint
type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ListOrdersRequest selects a page of orders
type ListOrdersRequest struct {
	Status model.OrderStatus `form:"status"`
	Page   int               `form:"page"`
	Limit  int               `form:"limit"`
}

// OrderPage is one page of the order listing
type OrderPage struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// orderServiceImpl is the OrderService implementation
type orderServiceImpl struct {
	store OrderStore
	now   func() time.Time
}

// NewOrderService creates an OrderService over store
func NewOrderService(store OrderStore) OrderService {
	return &orderServiceImpl{store: store, now: time.Now}
}

// CreateOrder validates the customer data and stores a new pending order
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*model.Order, error) {
	if fields := validateOrder(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now().UTC()
	order := &model.Order{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		CEP:           strings.TrimSpace(req.CEP),
		Address:       strings.TrimSpace(req.Address),
		Number:        strings.TrimSpace(req.Number),
		Complement:    strings.TrimSpace(req.Complement),
		Neighborhood:  strings.TrimSpace(req.Neighborhood),
		City:          strings.TrimSpace(req.City),
		State:         strings.ToUpper(strings.TrimSpace(req.State)),
		Quantity:      req.Quantity,
		ProductPrice:  req.ProductPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
		Status:        model.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for attempt := 1; ; attempt++ {
		number, err := generateOrderNumber(now)
		if err != nil {
			return nil, err
		}
		order.ID = ""
		order.OrderNumber = number

		err = s.store.Insert(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if attempt == orderNumberAttempts {
			return nil, fmt.Errorf("failed to allocate a unique order number: %w", err)
		}
		log.Printf("[ORDERS] order number %s already taken, retrying", number)
	}

	log.Printf("[ORDERS] created order %s (%s) total=%.2f", order.OrderNumber, order.ID, order.TotalPrice)
	return order, nil
}

// ValidateContact runs the plausibility checks without persisting anything
func (s *orderServiceImpl) ValidateContact(req *ContactRequest) map[string]validator.Reason {
	return runChecks([]fieldCheck{
		{"name", req.Name, validator.ValidateName},
		{"email", req.Email, validator.ValidateEmail},
		{"phone", req.Phone, validator.ValidateBrazilianPhone},
	})
}

func validateOrder(req *CreateOrderRequest) map[string]validator.Reason {
	return runChecks([]fieldCheck{
		{"name", req.Name, validator.ValidateName},
		{"email", req.Email, validator.ValidateEmail},
		{"phone", req.Phone, validator.ValidateBrazilianPhone},
		{"cep", req.CEP, validator.ValidateCEP},
		{"state", req.State, validator.ValidateState},
	})
}

type fieldCheck struct {
	field string
	value string
	check func(string) (bool, validator.Reason)
}

func runChecks(checks []fieldCheck) map[string]validator.Reason {
	fields := make(map[string]validator.Reason)
	for _, c := range checks {
		if ok, reason := c.check(c.value); !ok {
			fields[c.field] = reason
		}
	}
	return fields
}

// GetOrder resolves an order by id or order number
func (s *orderServiceImpl) GetOrder(ctx context.Context, ref string) (*model.Order, error) {
	return s.store.FindByRef(ctx, strings.TrimSpace(ref))
}

// ListOrders returns a page of orders, newest first
func (s *orderServiceImpl) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderPage, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = DefaultPageSize
	}
	if req.Limit > MaxPageSize {
		req.Limit = MaxPageSize
	}

	orders, total, err := s.store.List(ctx, OrderFilters{
		Status: req.Status,
		Offset: (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &OrderPage{Orders: orders, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

// UpdateStatus sets the order status. Transitions are not restricted to forward moves;
// paidAt is stamped once.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, ref string, status model.OrderStatus) (*model.Order, error) {
	order, err := s.store.UpdateStatus(ctx, strings.TrimSpace(ref), status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	log.Printf("[ORDERS] order %s moved to %s", order.OrderNumber, order.Status)
	return order, nil
}

// History lists the recorded status changes of an order
func (s *orderServiceImpl) History(ctx context.Context, ref string) ([]model.OrderEvent, error) {
	order, err := s.store.FindByRef(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return s.store.History(ctx, order.ID)
}

// generateOrderNumber returns NV-YYYYMMDD-XXXXXX using the UTC date of now
func generateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, orderNumberRandLen)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.UTC().Format("20060102"), suffix), nil
}
