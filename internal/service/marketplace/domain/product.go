// internal/service/marketplace/domain/product.go
package domain

import (
	"time"
)

// Category 是商品的分类枚举。
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategorySpices     Category = "spices"
	CategoryGrains     Category = "grains"
	CategoryDairy      Category = "dairy"
	CategoryOthers     Category = "others"
)

// ParseCategory 校验外部输入的分类值。
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryVegetables, CategorySpices, CategoryGrains, CategoryDairy, CategoryOthers:
		return Category(s), nil
	}
	return "", &ValidationError{Reason: "unrecognized product category: " + s}
}

// Product 是商品聚合的根实体。
// Stock 是全系统唯一的共享热点字段，所有变更必须走仓储的
// DecrementStock/IncrementStock 原子原语，禁止整行覆盖写。
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    Category
	SupplierID  string
	CreatedAt   time.Time
}

// NewProduct 创建一个新的商品实体，校验所有不变量。
func NewProduct(id, name, description string, price float64, stock int, category Category, supplierID string) (*Product, error) {
	if id == "" || supplierID == "" {
		return nil, &ValidationError{Reason: "product requires an id and an owning supplier"}
	}
	if name == "" {
		return nil, &ValidationError{Reason: "product name must not be empty"}
	}
	if price <= 0 {
		return nil, &ValidationError{Reason: "product price must be positive"}
	}
	if stock < 0 {
		return nil, &ValidationError{Reason: "product stock must not be negative"}
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		SupplierID:  supplierID,
		CreatedAt:   time.Now(),
	}, nil
}

// OwnedBy 判断商品是否归属于给定的供应商。
func (p *Product) OwnedBy(supplierID string) bool {
	return p.SupplierID == supplierID
}
