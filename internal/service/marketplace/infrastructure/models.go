// internal/service/marketplace/infrastructure/models.go
package infrastructure

import "time"

// ProductModel 是 Product 领域对象在数据库中的表示。
type ProductModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Stock       int     `gorm:"not null"`
	Category    string  `gorm:"size:32;index"`
	SupplierID  string  `gorm:"size:36;index"`
	CreatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

// OrderModel 是 Order 领域对象在数据库中的表示。
type OrderModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	VendorID        string `gorm:"size:36;index"`
	SupplierID      string `gorm:"size:36;index"`
	TotalAmount     float64
	ShippingAddress string           `gorm:"size:512"`
	Status          string           `gorm:"size:32;index"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 是订单行项目在数据库中的表示。
// Price 是下单时的单价快照，独立于 products 表的后续变化。
type OrderItemModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:36;index"`
	ProductID   string `gorm:"size:36"`
	ProductName string `gorm:"size:255"`
	Quantity    int
	Price       float64
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
