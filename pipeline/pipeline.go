package pipeline

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// Pipeline 是核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 引擎把一次调用编排为 source → score → rerank → filter → postprocess，
// 调用方也可以插入自定义 Node。
type Pipeline struct {
	Nodes []Node

	// Observe 在每个 Node 执行完后回调（可选），用于打点/日志
	Observe func(node Node, in, out int)
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		in := len(cur)
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
		if p.Observe != nil {
			p.Observe(node, in, len(cur))
		}
	}
	return cur, nil
}
