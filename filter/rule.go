package filter

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pkg/dsl"
)

// RuleFilter 按 CEL 规则表达式移除候选，命中任一规则即移除。
//
// 规则在构造时编译一次，逐候选只做求值；
// 单条规则求值出错时跳过该规则（表达式写错不应清空整个结果）。
type RuleFilter struct {
	programs []*dsl.Program
}

// NewRuleFilter 编译规则集合。任一表达式非法时整体报错，
// 让调用方在请求入口就发现规则写错，而不是静默跳过。
func NewRuleFilter(rules []string) (*RuleFilter, error) {
	programs := make([]*dsl.Program, 0, len(rules))
	for _, expr := range rules {
		if expr == "" {
			continue
		}
		p, err := dsl.Compile(expr)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput, err.Error())
		}
		programs = append(programs, p)
	}
	return &RuleFilter{programs: programs}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	for _, p := range f.programs {
		hit, err := p.Match(rctx, c)
		if err != nil {
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
