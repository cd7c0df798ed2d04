// Package assemble 负责截断与结果装配：Candidate 列表到对外 Response 的最后一跳。
package assemble

import (
	"context"
	"fmt"
	"sort"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/feature"
	"github.com/gatherkit/gatherkit/pipeline"
)

// TopN 是截断 Node：保留前 N 个候选，排在过滤之后（被排除的候选不占名额）。
type TopN struct {
	N int
}

func (n *TopN) Name() string        { return "assemble.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.N <= 0 || len(candidates) <= n.N {
		return candidates, nil
	}
	return candidates[:n.N], nil
}

// Results 把截断后的候选装配为对外结果：rank 从 1 开始连续编号，
// 并为每条生成解释文案。列表顺序就是最终顺序，这里不再排序。
func Results(rctx *core.RecommendContext, candidates []*core.Candidate, w core.Weights) []core.Result {
	userVec := feature.ExtractUser(userOf(rctx))

	out := make([]core.Result, 0, len(candidates))
	for i, c := range candidates {
		if c == nil || c.Item == nil {
			continue
		}
		out = append(out, core.Result{
			ItemID:         c.Item.ID,
			Kind:           c.Item.Kind,
			CompositeScore: c.Score,
			Breakdown:      c.Breakdown,
			Reasoning:      Reasoning(c, userVec, w),
			Rank:           i + 1,
		})
	}
	return out
}

// Reasoning 生成单条推荐的解释文案，以贡献最大的一路为主语：
//   - collaborative："People with similar interests joined this"
//   - content："Matches your interest in X"（X 为重叠标签中字典序最小者）
//   - popularity："Trending with high recent activity"
//
// 三路都没有证据时退化为中性文案。文案只依赖 Breakdown 与标签集合，
// 同一输入必然产出同一文案。
func Reasoning(c *core.Candidate, userVec *feature.Vector, w core.Weights) string {
	b := c.Breakdown
	if b.Collaborative == 0 && b.ContentBased == 0 && b.Popularity == 0 {
		return "Suggested for you"
	}

	switch dominant(b, w) {
	case "collaborative":
		return "People with similar interests joined this"
	case "content":
		if tag := topOverlapTag(userVec, c.Item); tag != "" {
			return fmt.Sprintf("Matches your interest in %s", tag)
		}
		return "Matches your stated preferences"
	default:
		return "Trending with high recent activity"
	}
}

func dominant(b core.Breakdown, w core.Weights) string {
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

// topOverlapTag 返回用户标签与物品标签交集中字典序最小的标签。
func topOverlapTag(userVec *feature.Vector, item *core.Item) string {
	if userVec == nil || item == nil {
		return ""
	}
	itemTags := feature.ExtractItem(item).TagsWithCategory()

	overlap := make([]string, 0, len(itemTags))
	for tag := range itemTags {
		if _, ok := userVec.Tags[tag]; ok {
			overlap = append(overlap, tag)
		}
	}
	if len(overlap) == 0 {
		return ""
	}
	sort.Strings(overlap)
	return overlap[0]
}

func userOf(rctx *core.RecommendContext) *core.User {
	if rctx == nil {
		return nil
	}
	return rctx.User
}
