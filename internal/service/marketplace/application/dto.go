// internal/service/marketplace/application/dto.go
package application

import (
	"time"

	"mandi/internal/service/marketplace/domain"
)

// LineItemRequest 是下单请求中的一行: (商品, 数量)。
type LineItemRequest struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest 是下单用例的输入数据
type PlaceOrderRequest struct {
	Products        []LineItemRequest `json:"products"`
	ShippingAddress string            `json:"shippingAddress"`
}

// CreateProductRequest 是商品上架用例的输入数据
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// UpdateProductRequest 只更新非 nil 的字段。
// 库存走增量回放而不是整数覆盖，见 MarketplaceService.UpdateProduct。
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// LineItemResponse 是订单行在对外接口上的表示
type LineItemResponse struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderResponse 是订单在对外接口上的表示
type OrderResponse struct {
	ID              string             `json:"id"`
	Vendor          string             `json:"vendor"`
	Supplier        string             `json:"supplier"`
	Products        []LineItemResponse `json:"products"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress string             `json:"shippingAddress"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ProductResponse 是商品在对外接口上的表示
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Supplier    string    `json:"supplier"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToOrderResponse 把订单领域对象转换为接口层表示
func ToOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]LineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &OrderResponse{
		ID:              order.ID,
		Vendor:          order.VendorID,
		Supplier:        order.SupplierID,
		Products:        items,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
	}
}

// ToProductResponse 把商品领域对象转换为接口层表示
func ToProductResponse(product *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    string(product.Category),
		Supplier:    product.SupplierID,
		CreatedAt:   product.CreatedAt,
	}
}
