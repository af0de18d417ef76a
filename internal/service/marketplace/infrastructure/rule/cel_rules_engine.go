// internal/service/marketplace/infrastructure/rule/cel_rules_engine.go
package rule

import (
	"context"
	"fmt"

	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"github.com/google/cel-go/cel"
)

// CELRuleEngineAdapter 是 port.OrderRuleEngine 接口的一个具体实现。
// 它使用 cel-go 来执行运营配置的下单规则表达式。
// 这是一个典型的适配器模式应用，把第三方库的 API 适配到我们自己的领域接口。
type CELRuleEngineAdapter struct {
	rules []compiledRule
}

type compiledRule struct {
	source  string
	program cel.Program
}

// NewCELRuleEngineAdapter 编译所有规则表达式。
// 规则里可用的变量与 port.OrderFact 的字段一一对应。
// 表达式本身有语法错误时在启动阶段直接失败。
func NewCELRuleEngineAdapter(rules []string) (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("vendor_id", cel.StringType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("total_quantity", cel.IntType),
		cel.Variable("total_amount", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	adapter := &CELRuleEngineAdapter{}
	for _, src := range rules {
		ast, issues := env.Compile(src)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile order rule %q: %w", src, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("order rule %q must evaluate to a boolean", src)
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build program for order rule %q: %w", src, err)
		}
		adapter.rules = append(adapter.rules, compiledRule{source: src, program: program})
	}
	return adapter, nil
}

// Evaluate 实现了 port.OrderRuleEngine 接口。
// 所有规则都必须求值为 true，任何一条不通过都会拒绝整个订单。
func (a *CELRuleEngineAdapter) Evaluate(_ context.Context, fact port.OrderFact) error {
	vars := map[string]interface{}{
		"vendor_id":      fact.VendorID,
		"item_count":     fact.ItemCount,
		"total_quantity": fact.TotalQuantity,
		"total_amount":   fact.TotalAmount,
	}

	for _, rule := range a.rules {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			return fmt.Errorf("failed to evaluate order rule %q: %w", rule.source, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return fmt.Errorf("order rule %q returned a non-boolean result", rule.source)
		}
		if !ok {
			return &domain.ValidationError{Reason: "order rejected by rule: " + rule.source}
		}
	}
	return nil
}
