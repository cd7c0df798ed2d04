package filter

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pipeline"
	"github.com/gatherkit/gatherkit/pkg/utils"
)

// FilterNode 是过滤 Node，组合多个过滤器依次检查。
// 任一过滤器命中即移除该候选，并在移除前写入 filtered label（供观测）。
//
// 过滤发生在重排之后、截断之前：被排除的候选不占用返回名额。
// 过滤器自身出错时跳过该过滤器而不中断链路，排除是尽力而为的收敛，
// 不应该让一个失效的外部存储拖垮整次推荐。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Filters) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	out := make([]*core.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}

		removed := false
		for _, f := range n.Filters {
			hit, err := f.ShouldFilter(ctx, rctx, c)
			if err != nil {
				continue
			}
			if hit {
				c.PutLabel("filtered", utils.Label{Value: "true", Source: f.Name()})
				removed = true
				break
			}
		}
		if removed {
			continue
		}
		out = append(out, c)
	}

	return out, nil
}
