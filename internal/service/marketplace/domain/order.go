// internal/service/marketplace/domain/order.go
package domain

import (
	"time"
)

// LineItem 是订单中的一行。
// Price 是下单时刻的单价快照，之后商品改价或下架都不影响它。
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

// Order 是订单聚合的根实体
type Order struct {
	ID              string
	VendorID        string
	SupplierID      string
	Items           []LineItem
	TotalAmount     float64
	ShippingAddress string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder 用于创建一个新的订单实例。
// 总价在这里固定: TotalAmount == Σ(quantity × 快照单价)，
// 此后永远不再重算。
func NewOrder(id, vendorID, supplierID, shippingAddress string, items []LineItem) (*Order, error) {
	if id == "" || vendorID == "" || supplierID == "" {
		return nil, &ValidationError{Reason: "order requires id, vendor and supplier identities"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "order must contain at least one line item"}
	}
	if shippingAddress == "" {
		return nil, &ValidationError{Reason: "shipping address must not be empty"}
	}

	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Reason: "line item quantity must be positive"}
		}
		total += float64(item.Quantity) * item.Price
	}

	now := time.Now()
	return &Order{
		ID:              id,
		VendorID:        vendorID,
		SupplierID:      supplierID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		Status:          StatusPending, // 初始状态
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TransitionTo 按状态机流转订单状态。
// 不负责库存回补等副作用，那是生命周期管理器的职责。
func (o *Order) TransitionTo(next Status) error {
	if !o.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}
	o.Status = next
	o.UpdatedAt = time.Now()
	return nil
}

// AccessibleBy 判断给定身份是否可以查看这个订单:
// 订单的买方、卖方或管理员。
func (o *Order) AccessibleBy(id Identity) bool {
	return id.IsAdmin() || o.VendorID == id.UserID || o.SupplierID == id.UserID
}
