// Package rerank 提供排序后的列表重排策略。
package rerank

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/feature"
	"github.com/gatherkit/gatherkit/pipeline"
	"github.com/gatherkit/gatherkit/pkg/conv"
	"github.com/gatherkit/gatherkit/pkg/utils"
)

// Diversity 是贪心 MMR 风格的多样性重排。
//
// 逐位选择 adjusted 最大的候选：
//
//	adjusted = (1-d)·score - d·maxSim(已选集合)
//
// 其中 sim 取标签集合（tags ∪ {category}）的 Jaccard，d 为 DiversityWeight。
// d = 0 时 adjusted 与 score 同序，输出与输入完全一致；
// d = 1 时纯粹追求与已选集合的差异。
//
// 只重排、不增删、不改 Score/Breakdown：排序之外的决策不属于这一层。
// adjusted 并列时按 composite score 降序、ID 升序决胜（确定性输出）。
type Diversity struct {
	// Weight 即 DiversityWeight，入口已校验落在 [0,1]
	Weight float64
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) <= 1 || n.Weight <= 0 {
		return candidates, nil
	}

	// 预抽取标签集合，避免每轮重复抽取
	tagSets := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if c != nil && c.Item != nil {
			tagSets[i] = feature.ExtractItem(c.Item).TagsWithCategory()
		} else {
			tagSets[i] = map[string]struct{}{}
		}
	}

	d := n.Weight
	remaining := make([]int, len(candidates))
	for i := range remaining {
		remaining[i] = i
	}

	out := make([]*core.Candidate, 0, len(candidates))
	selected := make([]int, 0, len(candidates))

	for len(remaining) > 0 {
		bestPos := 0
		bestAdjusted := adjustedScore(candidates, tagSets, selected, remaining[0], d)

		for pos := 1; pos < len(remaining); pos++ {
			idx := remaining[pos]
			adj := adjustedScore(candidates, tagSets, selected, idx, d)
			if betterPick(adj, bestAdjusted, candidates[idx], candidates[remaining[bestPos]]) {
				bestPos = pos
				bestAdjusted = adj
			}
		}

		idx := remaining[bestPos]
		selected = append(selected, idx)
		c := candidates[idx]
		if c != nil && len(selected) > 1 {
			c.PutLabel("rerank", utils.Label{Value: "diversity", Source: "rerank"})
		}
		out = append(out, c)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return out, nil
}

// adjustedScore 计算候选 idx 相对已选集合的 MMR 分。
func adjustedScore(
	candidates []*core.Candidate,
	tagSets []map[string]struct{},
	selected []int,
	idx int,
	d float64,
) float64 {
	score := 0.0
	if candidates[idx] != nil {
		score = candidates[idx].Score
	}

	maxSim := 0.0
	for _, s := range selected {
		if sim := conv.JaccardSet(tagSets[idx], tagSets[s]); sim > maxSim {
			maxSim = sim
		}
	}
	return (1-d)*score - d*maxSim
}

// betterPick 判断候选 a 是否优于当前最优 b：
// adjusted 降序 → composite score 降序 → ID 升序。
func betterPick(adjA, adjB float64, a, b *core.Candidate) bool {
	if adjA != adjB {
		return adjA > adjB
	}
	scoreA, scoreB := 0.0, 0.0
	if a != nil {
		scoreA = a.Score
	}
	if b != nil {
		scoreB = b.Score
	}
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return a.ID() < b.ID()
}
