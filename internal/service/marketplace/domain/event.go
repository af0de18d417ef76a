// internal/service/marketplace/domain/event.go
package domain

import "time"

// OrderPlaced 是订单创建成功（库存已扣减）后发布的事件
type OrderPlaced struct {
	OrderID     string    `json:"orderId"`
	VendorID    string    `json:"vendorId"`
	SupplierID  string    `json:"supplierId"`
	TotalAmount float64   `json:"totalAmount"`
	PlacedAt    time.Time `json:"placedAt"`
}

// OrderStatusChanged 是订单状态流转成功后发布的事件
type OrderStatusChanged struct {
	OrderID string    `json:"orderId"`
	From    Status    `json:"from"`
	To      Status    `json:"to"`
	At      time.Time `json:"at"`
}

// OrderDeleted 是订单被管理员删除后发布的事件
type OrderDeleted struct {
	OrderID string    `json:"orderId"`
	At      time.Time `json:"at"`
}
