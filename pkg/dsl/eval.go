// Package dsl 提供基于 CEL 的候选规则表达式求值。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/gatherkit/gatherkit/core"
)

var (
	// celEnv 全局 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("user", cel.DynType),
			cel.Variable("params", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则表达式，编译一次、对每个候选求值多次。
//
// 表达式使用 CEL 标准语法，可访问的变量：
//   - item：候选物品（id/kind/category/tags/member_count/engagement_score/growth_rate/score/meta）
//   - label：候选标签的 key → value 映射（例如 label.dominant == "popularity"）
//   - user：目标用户（id/interests/activity_level）
//   - params：请求级上下文参数
//
// 示例：
//   - `item.category == "nsfw"`
//   - `item.member_count < 3`
//   - `item.kind == "event" && item.score < 0.2`
//   - `"hiking" in item.tags`
type Program struct {
	Expr string
	prg  cel.Program
}

// Compile 编译规则表达式。表达式非法时立即返回错误，
// 不要把编译失败推迟到逐候选求值时才暴露。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{Expr: expr, prg: prg}, nil
}

// Match 对单个候选求值，返回表达式结果。
// 表达式必须返回布尔值；求值错误（例如访问不存在的 key）视为不命中。
func (p *Program) Match(rctx *core.RecommendContext, c *core.Candidate) (bool, error) {
	if p == nil || p.prg == nil {
		return false, nil
	}

	out, _, err := p.prg.Eval(buildInput(rctx, c))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.Expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T", p.Expr, out.Value())
	}
	return result, nil
}

func buildInput(rctx *core.RecommendContext, c *core.Candidate) map[string]any {
	item := map[string]any{}
	labels := map[string]any{}
	if c != nil {
		for k, v := range c.Labels {
			labels[k] = v.Value
		}
		if c.Item != nil {
			item = map[string]any{
				"id":               c.Item.ID,
				"kind":             string(c.Item.Kind),
				"name":             c.Item.Name,
				"category":         c.Item.Category,
				"tags":             c.Item.Tags,
				"member_count":     c.Item.MemberCount,
				"engagement_score": c.Item.EngagementScore,
				"growth_rate":      c.Item.GrowthRate,
				"score":            c.Score,
				"meta":             c.Item.Meta,
			}
		}
	}

	user := map[string]any{}
	params := map[string]any{}
	if rctx != nil {
		if rctx.User != nil {
			user = map[string]any{
				"id":             rctx.User.ID,
				"interests":      rctx.User.Interests,
				"activity_level": string(rctx.User.ActivityLevel),
			}
		}
		if rctx.Params != nil {
			params = rctx.Params
		}
	}

	return map[string]any{
		"item":   item,
		"label":  labels,
		"user":   user,
		"params": params,
	}
}
