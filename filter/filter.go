// Package filter 实现候选排除策略（显式排除 / 自排除 / 曝光历史 / 规则）。
package filter

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// Filter 判断一个候选是否应该被移除。
// 返回 true 表示移除，false 表示保留。
type Filter interface {
	// Name 返回过滤器名称（作为 filtered label 的 source）
	Name() string

	// ShouldFilter 判断候选是否应该被移除
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, c *core.Candidate) (bool, error)
}
