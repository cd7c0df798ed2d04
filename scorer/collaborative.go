package scorer

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/history"
)

// Collaborative 是协同过滤打分：用相似用户的行为估计 score(user, item)，
// 与物品内容完全无关。
//
// 算法：score = Σ_v sim(v)·affinity(v,item) / Σ_v sim(v)
// （邻居均值而不是求和，避免候选池越大分越高的偏置）。
// 没有任何相似用户时每个物品得 0 —— 冷启动回退信号，
// 让聚合自然滑向内容/热度两路。
type Collaborative struct {
	Index *history.Index
}

func (s *Collaborative) Name() string { return "score.collaborative" }

func (s *Collaborative) Score(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) (map[string]float64, error) {
	out := make(map[string]float64, len(candidates))
	if s.Index == nil {
		return out, nil
	}
	for _, c := range candidates {
		id := c.ID()
		if id == "" {
			continue
		}
		if v := s.Index.Score(id); v > 0 {
			out[id] = clamp01(v)
		}
	}
	return out, nil
}
