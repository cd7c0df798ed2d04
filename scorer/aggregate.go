package scorer

import (
	"sort"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pkg/utils"
)

// EffectiveWeights 返回本次调用实际生效的权重：
// IncludePopular 为 false 时热度权重清零，被聚合的归一化吸收。
func EffectiveWeights(opts core.Options) core.Weights {
	w := opts.AlgorithmWeights
	if !opts.IncludePopular {
		w.Popularity = 0
	}
	return w
}

// Aggregate 把三路分数线性合并为 composite score 并回写 Breakdown。
//
// composite = (w_c·collab + w_b·content + w_p·pop) / (w_c+w_b+w_p)
// 按实际权重和归一化，调用方权重不要求总和为 1。
// 有效权重和为 0 时（只配了热度权重但 IncludePopular=false），
// 所有 composite 为 0，排序退化为 ID 决胜。
//
// 聚合后按 composite 降序、ID 升序做确定性排序，
// 并写入 dominant label（贡献最大的一路，供解释文案使用）。
func Aggregate(
	candidates []*core.Candidate,
	collab, content, popularity map[string]float64,
	w core.Weights,
) []*core.Candidate {
	sum := w.Sum()

	for _, c := range candidates {
		if c == nil {
			continue
		}
		id := c.ID()
		c.Breakdown = core.Breakdown{
			Collaborative: collab[id],
			ContentBased:  content[id],
			Popularity:    popularity[id],
		}
		if sum > 0 {
			c.Score = clamp01((w.Collaborative*c.Breakdown.Collaborative +
				w.ContentBased*c.Breakdown.ContentBased +
				w.Popularity*c.Breakdown.Popularity) / sum)
		} else {
			c.Score = 0
		}
		c.PutLabel("dominant", utils.Label{Value: Dominant(c.Breakdown, w), Source: "score"})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i] == nil {
			return false
		}
		if candidates[j] == nil {
			return true
		}
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID() < candidates[j].ID()
	})
	return candidates
}

// Dominant 返回加权贡献最大的一路名称。
// 并列时按 collaborative → content → popularity 的固定次序决胜（确定性输出）。
func Dominant(b core.Breakdown, w core.Weights) string {
	type contrib struct {
		name  string
		value float64
	}
	contribs := []contrib{
		{"collaborative", w.Collaborative * b.Collaborative},
		{"content", w.ContentBased * b.ContentBased},
		{"popularity", w.Popularity * b.Popularity},
	}
	best := contribs[0]
	for _, c := range contribs[1:] {
		if c.value > best.value {
			best = c
		}
	}
	return best.name
}
