// internal/service/marketplace/infrastructure/mapper.go
package infrastructure

import (
	"mandi/internal/service/marketplace/domain"
)

// ToDomainProduct 将数据库模型转换为领域模型
func ToDomainProduct(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Stock:       model.Stock,
		Category:    domain.Category(model.Category),
		SupplierID:  model.SupplierID,
		CreatedAt:   model.CreatedAt,
	}
}

// ToProductModel 将领域模型转换为数据库模型
func ToProductModel(product *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    string(product.Category),
		SupplierID:  product.SupplierID,
		CreatedAt:   product.CreatedAt,
	}
}

// ToDomainOrder 将数据库模型转换为领域模型
func ToDomainOrder(model *OrderModel) *domain.Order {
	items := make([]domain.LineItem, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &domain.Order{
		ID:              model.ID,
		VendorID:        model.VendorID,
		SupplierID:      model.SupplierID,
		Items:           items,
		TotalAmount:     model.TotalAmount,
		ShippingAddress: model.ShippingAddress,
		Status:          domain.Status(model.Status),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// ToOrderModel 将领域模型转换为数据库模型
func ToOrderModel(order *domain.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemModel{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &OrderModel{
		ID:              order.ID,
		VendorID:        order.VendorID,
		SupplierID:      order.SupplierID,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
