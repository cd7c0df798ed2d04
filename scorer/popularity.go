package scorer

import (
	"context"

	"github.com/gatherkit/gatherkit/config"
	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pkg/geo"
)

// Popularity 是热度打分：只看物品固有信号，与请求用户无关。
//
// 三个子项按 Tuning.Popularity 的固定内部权重平均：
//   - engagementScore / 100（输入约定 0-100）
//   - growthRate / (growthRate + 1)（饱和函数，压制无界增长；负增长记 0）
//   - lastActivity 的线性衰减（stalenessDays 窗口之外记 0）
//
// 热度是物品属性而非个性化信号，因此内部权重不暴露给调用方；
// options.IncludePopular 为 false 时整路不参与（由引擎决定是否挂载）。
type Popularity struct {
	Tuning config.Tuning
}

func (s *Popularity) Name() string { return "score.popularity" }

func (s *Popularity) Score(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) (map[string]float64, error) {
	out := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		id := c.ID()
		if id == "" || c.Item == nil {
			continue
		}
		if v := s.scoreItem(c.Item, rctx); v > 0 {
			out[id] = v
		}
	}
	return out, nil
}

func (s *Popularity) scoreItem(item *core.Item, rctx *core.RecommendContext) float64 {
	w := s.Tuning.Popularity
	den := w.Engagement + w.Growth + w.Recency
	if den == 0 {
		return 0
	}

	engagement := clamp01(item.EngagementScore / 100)

	growth := 0.0
	if item.GrowthRate > 0 {
		growth = item.GrowthRate / (item.GrowthRate + 1)
	}

	recency := 0.0
	if !item.LastActivity.IsZero() && rctx != nil {
		ageDays := rctx.Now.Sub(item.LastActivity).Hours() / 24
		recency = geo.LinearDecay(ageDays, float64(s.Tuning.StalenessDays))
	}

	return clamp01((w.Engagement*engagement + w.Growth*growth + w.Recency*recency) / den)
}
