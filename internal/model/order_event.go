package model

import "time"

// OrderEvent records one status change of an order
type OrderEvent struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"column:orderId;type:varchar(36);not null;index"`
	FromStatus OrderStatus `json:"fromStatus" gorm:"column:fromStatus;type:varchar(16);not null"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"column:toStatus;type:varchar(16);not null"`
	ChangedBy  string      `json:"changedBy" gorm:"column:changedBy;type:varchar(255);not null"`
	ChangedAt  time.Time   `json:"changedAt" gorm:"column:changedAt;not null;index"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}
