package scorer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pipeline"
	"github.com/gatherkit/gatherkit/pkg/utils"
)

// Fanout 是打分 Node：并发执行各路 Scorer，聚合为 composite score。
//
// 各路互不依赖、只写各自的返回 map，因此可以安全并行；
// 并行只是优化，聚合对执行顺序不敏感（同一输入 → 同一输出）。
type Fanout struct {
	Scorers []Scorer

	// Weights 是本次调用的有效权重（引擎用 EffectiveWeights 计算后传入）
	Weights core.Weights

	// Timeout 是单路打分的超时时间，0 表示不限制
	Timeout time.Duration
}

func (n *Fanout) Name() string        { return "score.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	var (
		mu      sync.Mutex
		results = make(map[string]map[string]float64, len(n.Scorers))
	)
	eg, gctx := errgroup.WithContext(ctx)

	for _, sc := range n.Scorers {
		s := sc
		eg.Go(func() error {
			scoreCtx := gctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				scoreCtx, cancel = context.WithTimeout(gctx, n.Timeout)
				defer cancel()
			}

			scores, err := s.Score(scoreCtx, rctx, candidates)
			if err != nil {
				return err
			}

			mu.Lock()
			results[s.Name()] = scores
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		for _, s := range n.Scorers {
			scores, ok := results[s.Name()]
			if !ok {
				continue
			}
			if _, hit := scores[c.ID()]; hit {
				c.PutLabel("score_source", utils.Label{Value: s.Name(), Source: "score"})
			}
		}
	}

	return Aggregate(
		candidates,
		results["score.collaborative"],
		results["score.content"],
		results["score.popularity"],
		n.Weights,
	), nil
}
