package pipeline

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindSource      Kind = "source"      // 候选生成阶段：物品池 → 候选集
	KindScore       Kind = "score"       // 打分阶段：三路算法打分并聚合
	KindReRank      Kind = "rerank"      // 重排阶段：在打分结果上做多样性调优
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已知/排除/命中规则的候选
	KindPostProcess Kind = "postprocess" // 后处理阶段：截断、装配最终结果
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，
// 方便 Source 生成、Filter 截断、ReRank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		candidates []*core.Candidate,
	) ([]*core.Candidate, error)
}
