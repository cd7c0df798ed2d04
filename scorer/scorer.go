// Package scorer 实现三路独立打分（协同过滤 / 内容 / 热度）与线性聚合。
package scorer

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// Scorer 表示一路独立的打分策略。
//
// 每路返回自己的不可变分数 map（itemID → score ∈ [0,1]），只在聚合时合并，
// 避免并行打分时的共享写（各路之间没有任何共享可变结构）。
// 没有证据的物品可以不出现在 map 里，聚合按 0 处理。
type Scorer interface {
	Name() string
	Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Candidate) (map[string]float64, error)
}

// clamp01 把分数裁剪到 [0,1]。
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
