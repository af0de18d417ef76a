// internal/service/marketplace/domain/status.go
package domain

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending    Status = "pending"    // 订单已创建，库存已扣减，等待供应商处理
	StatusProcessing Status = "processing" // 供应商已接单，备货中
	StatusShipped    Status = "shipped"    // 已发货
	StatusDelivered  Status = "delivered"  // 已送达（终态）
	StatusCancelled  Status = "cancelled"  // 已取消，库存已回补（终态）
)

// transitions 是状态机的权威流转表。
// UI 层也会做同样的限制，但这里才是最终的契约。
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus 校验外部输入的状态值。
// 不认识的值返回 ValidationError，在触碰任何存储之前就应当拒绝。
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", &ValidationError{Reason: "unrecognized order status: " + s}
}

// CanTransitionTo 判断状态机是否允许从当前状态流转到 next。
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 判断当前状态是否为终态。
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
