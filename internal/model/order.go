package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every status in its intended forward order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order represents a customer order. Column names are part of the persisted contract
// and keep the camelCase spelling used by the storefront and existing reports.
type Order struct {
	ID          string `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderNumber string `json:"orderNumber" gorm:"column:orderNumber;type:varchar(32);uniqueIndex;not null"`

	Name         string `json:"name" gorm:"type:varchar(200);not null"`
	Email        string `json:"email" gorm:"type:varchar(255);not null;index:idx_orders_email_status,priority:1"`
	Phone        string `json:"phone" gorm:"type:varchar(32);not null"`
	CEP          string `json:"cep" gorm:"column:cep;type:varchar(16);not null"`
	Address      string `json:"address" gorm:"type:varchar(255);not null"`
	Number       string `json:"number" gorm:"type:varchar(32);not null"`
	Complement   string `json:"complement" gorm:"type:varchar(255)"`
	Neighborhood string `json:"neighborhood" gorm:"type:varchar(120);not null"`
	City         string `json:"city" gorm:"type:varchar(120);not null"`
	State        string `json:"state" gorm:"type:varchar(2);not null"`

	Quantity      int     `json:"quantity" gorm:"not null"`
	ProductPrice  float64 `json:"productPrice" gorm:"column:productPrice;not null"`
	ShippingPrice float64 `json:"shippingPrice" gorm:"column:shippingPrice;not null"`
	TotalPrice    float64 `json:"totalPrice" gorm:"column:totalPrice;not null"`

	Status OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index;index:idx_orders_email_status,priority:2"`

	PixCode       *string        `json:"pixCode" gorm:"column:pixCode;type:text"`
	QRCode        *string        `json:"qrCode" gorm:"column:qrCode;type:text"`
	TransactionID *string        `json:"transactionId" gorm:"column:transactionId;type:varchar(128);index"`
	PixExpiration *time.Time     `json:"pixExpiration" gorm:"column:pixExpiration"`
	PixTestMode   *bool          `json:"pixTestMode" gorm:"column:pixTestMode"`
	PaymentData   datatypes.JSON `json:"paymentData" gorm:"column:paymentData"`

	PaidAt    *time.Time `json:"paidAt" gorm:"column:paidAt"`
	CreatedAt time.Time  `json:"createdAt" gorm:"column:createdAt;index"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"column:updatedAt"`
}

// TableName keeps the collection name used by the storefront.
func (Order) TableName() string {
	return "orders"
}

// HasActivePix reports whether the order carries a PIX artifact that is still valid at now.
func (o *Order) HasActivePix(now time.Time) bool {
	return o.PixCode != nil && *o.PixCode != "" &&
		o.PixExpiration != nil && o.PixExpiration.After(now)
}

// PaymentArtifact is the PIX charge attached to an order.
type PaymentArtifact struct {
	PixCode       string    `json:"pixCode"`
	QRCode        string    `json:"qrCode"`
	TransactionID string    `json:"transactionId"`
	ExpiresAt     time.Time `json:"expiresAt"`
	TestMode      bool      `json:"testMode"`
}

// Artifact returns the stored payment artifact, if any. ExpiresAt is in UTC whatever
// location the driver scanned it in.
func (o *Order) Artifact() (PaymentArtifact, bool) {
	if o.PixCode == nil || o.PixExpiration == nil {
		return PaymentArtifact{}, false
	}
	a := PaymentArtifact{PixCode: *o.PixCode, ExpiresAt: o.PixExpiration.UTC()}
	if o.QRCode != nil {
		a.QRCode = *o.QRCode
	}
	if o.TransactionID != nil {
		a.TransactionID = *o.TransactionID
	}
	if o.PixTestMode != nil {
		a.TestMode = *o.PixTestMode
	}
	return a, true
}

// PaymentStatus is the summary the payment page polls.
type PaymentStatus struct {
	OrderID       string      `json:"orderId"`
	OrderNumber   string      `json:"orderNumber"`
	Status        OrderStatus `json:"status"`
	IsPaid        bool        `json:"isPaid"`
	PixCode       *string     `json:"pixCode"`
	TransactionID *string     `json:"transactionId"`
}
