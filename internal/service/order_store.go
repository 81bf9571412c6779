package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sliramanoel/venda/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStore owns order records and their lifecycle status.
type OrderStore interface {
	Insert(ctx context.Context, order *model.Order) error
	FindByRef(ctx context.Context, ref string) (*model.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)
	FindLatestPendingByEmail(ctx context.Context, email string) (*model.Order, error)
	List(ctx context.Context, filters OrderFilters) ([]model.Order, int64, error)
	SavePaymentArtifact(ctx context.Context, id string, artifact model.PaymentArtifact, at time.Time) error
	UpdateStatus(ctx context.Context, ref string, status model.OrderStatus, at time.Time) (*model.Order, error)
	MarkPaid(ctx context.Context, id string, paymentData []byte, at time.Time) (bool, error)
	History(ctx context.Context, orderID string) ([]model.OrderEvent, error)
}

type actorKey struct{}

// WithActor tags ctx with who is changing orders; status changes record it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}

// OrderFilters narrows an order listing
type OrderFilters struct {
	Status model.OrderStatus
	Offset int
	Limit  int
}

// orderStoreImpl is the GORM backed OrderStore
type orderStoreImpl struct {
	db *gorm.DB
}

// NewOrderStore creates an OrderStore over db
func NewOrderStore(db *gorm.DB) OrderStore {
	return &orderStoreImpl{db: db}
}

func column(name string) clause.Column {
	return clause.Column{Name: name}
}

func eq(name string, value interface{}) clause.Eq {
	return clause.Eq{Column: column(name), Value: value}
}

// Insert assigns an id when missing and stores the order
func (s *orderStoreImpl) Insert(ctx context.Context, order *model.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByRef resolves a store id, or an order number when ref is not shaped like an id
func (s *orderStoreImpl) FindByRef(ctx context.Context, ref string) (*model.Order, error) {
	cond := eq("orderNumber", ref)
	if _, err := uuid.Parse(ref); err == nil {
		cond = eq("id", ref)
	}
	return s.first(s.db.WithContext(ctx).Where(cond))
}

// FindByTransactionID returns the order carrying the gateway transaction id
func (s *orderStoreImpl) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	return s.first(s.db.WithContext(ctx).Where(eq("transactionId", transactionID)))
}

// FindLatestPendingByEmail returns the most recently created pending order for email
func (s *orderStoreImpl) FindLatestPendingByEmail(ctx context.Context, email string) (*model.Order, error) {
	query := s.db.WithContext(ctx).
		Where(eq("email", email)).
		Where(eq("status", model.OrderStatusPending)).
		Order(clause.OrderByColumn{Column: column("createdAt"), Desc: true})
	return s.first(query)
}

func (s *orderStoreImpl) first(query *gorm.DB) (*model.Order, error) {
	var order model.Order
	if err := query.Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// List returns a page of orders, newest first, and the total matching count
func (s *orderStoreImpl) List(ctx context.Context, filters OrderFilters) ([]model.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Order{})
	if filters.Status != "" {
		query = query.Where(eq("status", filters.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []model.Order
	err := query.
		Order(clause.OrderByColumn{Column: column("createdAt"), Desc: true}).
		Offset(filters.Offset).
		Limit(filters.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// SavePaymentArtifact writes every payment field in one update
func (s *orderStoreImpl) SavePaymentArtifact(ctx context.Context, id string, artifact model.PaymentArtifact, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Order{}).
		Where(eq("id", id)).
		Updates(map[string]interface{}{
			"pixCode":       artifact.PixCode,
			"qrCode":        artifact.QRCode,
			"transactionId": artifact.TransactionID,
			"pixExpiration": artifact.ExpiresAt,
			"pixTestMode":   artifact.TestMode,
			"updatedAt":     at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save payment artifact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatus moves an order to status; paidAt is stamped only on the first entry into paid
func (s *orderStoreImpl) UpdateStatus(ctx context.Context, ref string, status model.OrderStatus, at time.Time) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := &orderStoreImpl{db: tx}
		order, err := store.FindByRef(ctx, ref)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"status":    status,
			"updatedAt": at,
		}
		if status == model.OrderStatusPaid && order.PaidAt == nil {
			changes["paidAt"] = at
		}

		if err := tx.Model(&model.Order{}).Where(eq("id", order.ID)).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if order.Status != status {
			if err := store.recordEvent(ctx, order.ID, order.Status, status, at); err != nil {
				return err
			}
		}

		updated, err = store.FindByRef(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkPaid moves a pending order to paid with the provider payload. It reports false when
// the order was no longer pending, which makes repeated notifications harmless.
func (s *orderStoreImpl) MarkPaid(ctx context.Context, id string, paymentData []byte, at time.Time) (bool, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where(eq("id", id)).
			Where(eq("status", model.OrderStatusPending)).
			Updates(map[string]interface{}{
				"status":      model.OrderStatusPaid,
				"paidAt":      at,
				"paymentData": datatypes.JSON(paymentData),
				"updatedAt":   at,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark order paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return (&orderStoreImpl{db: tx}).recordEvent(ctx, id, model.OrderStatusPending, model.OrderStatusPaid, at)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (s *orderStoreImpl) recordEvent(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time) error {
	event := &model.OrderEvent{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actorFrom(ctx),
		ChangedAt:  at,
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	return nil
}

// History returns the status changes of an order, oldest first
func (s *orderStoreImpl) History(ctx context.Context, orderID string) ([]model.OrderEvent, error) {
	events := []model.OrderEvent{}
	err := s.db.WithContext(ctx).
		Where(eq("orderId", orderID)).
		Order(clause.OrderByColumn{Column: column("changedAt")}).
		Order(clause.OrderByColumn{Column: column("id")}).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	return events, nil
}
