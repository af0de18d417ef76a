// internal/service/marketplace/port/rules.go
package port

import "context"

// OrderFact 是下单请求的事实视图，供规则引擎评估。
// 字段名与 CEL 表达式中的变量名一一对应。
type OrderFact struct {
	VendorID      string  `json:"vendor_id"`
	ItemCount     int     `json:"item_count"`
	TotalQuantity int     `json:"total_quantity"`
	TotalAmount   float64 `json:"total_amount"`
}

// OrderRuleEngine 在任何库存被触碰之前评估运营配置的下单规则。
// 规则不通过时返回 domain.ValidationError。
type OrderRuleEngine interface {
	Evaluate(ctx context.Context, fact OrderFact) error
}
