// internal/service/marketplace/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// 错误分类。调用方用 errors.Is 对哨兵判断类别，
// 用 errors.As 拿到结构化细节来渲染精确的用户提示。
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("identity is not allowed to perform this operation")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// ValidationError 表示请求在进入任何存储操作之前就不合法。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError 表示引用的商品或订单不存在。
type NotFoundError struct {
	Resource string // "product" / "order"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id of %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError 携带商品与库存缺口信息，
// 足以渲染 "哪个商品、要多少、还剩多少" 的提示。
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// AuthorizationError 表示操作者不是资源的归属方。
type AuthorizationError struct {
	UserID    string
	Operation string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s is not authorized to %s", e.UserID, e.Operation)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// InvalidTransitionError 携带当前状态与目标状态。
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
