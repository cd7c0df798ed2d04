// Package engine 是推荐入口：编排候选生成、打分、重排、过滤与装配。
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherkit/gatherkit/assemble"
	"github.com/gatherkit/gatherkit/config"
	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/feature"
	"github.com/gatherkit/gatherkit/filter"
	"github.com/gatherkit/gatherkit/history"
	"github.com/gatherkit/gatherkit/pipeline"
	"github.com/gatherkit/gatherkit/rerank"
	"github.com/gatherkit/gatherkit/scorer"
)

// Engine 是无状态的推荐引擎：所有输入由调用方在每次 Recommend 时传入，
// 调用之间不共享任何可变状态，天然支持并发调用。
//
// 依赖全部可选：不配置 Store 就没有曝光过滤，不配置 Features 就没有特征补充，
// 核心三路打分只依赖传入的快照。
type Engine struct {
	tuning   config.Tuning
	logger   *zap.Logger
	store    core.Store
	features feature.Service
	now      func() time.Time

	exposedKeyPrefix string
	exposedWindow    int64

	extraFilters []filter.Filter
	extraNodes   []pipeline.Node
}

// Option 配置 Engine。
type Option func(*Engine)

// WithTuning 覆盖默认调参。
func WithTuning(t config.Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithLogger 设置结构化日志器，默认丢弃全部日志。
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithExposedStore 启用曝光过滤。windowSeconds 为 0 表示不限窗口。
func WithExposedStore(s core.Store, keyPrefix string, windowSeconds int64) Option {
	return func(e *Engine) {
		e.store = s
		e.exposedKeyPrefix = keyPrefix
		e.exposedWindow = windowSeconds
	}
}

// WithFeatureService 启用外部特征补充（结果进 rctx.Params，供自定义 Node 与规则使用）。
func WithFeatureService(s feature.Service) Option {
	return func(e *Engine) { e.features = s }
}

// WithFilters 追加自定义过滤器。
func WithFilters(filters ...filter.Filter) Option {
	return func(e *Engine) { e.extraFilters = append(e.extraFilters, filters...) }
}

// WithNodes 在过滤之后、截断之前追加自定义 Node。
func WithNodes(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.extraNodes = append(e.extraNodes, nodes...) }
}

// WithNow 注入时钟，测试用。所有时间衰减相对该时刻计算，
// 固定时钟 + 同一输入 = 逐字节一致的输出。
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New 创建引擎。
func New(opts ...Option) *Engine {
	e := &Engine{
		tuning: config.Default(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend 对目标用户执行一次完整推荐。
//
// 输入均为只读快照：user 是目标用户，allUsers 是协同过滤的用户池
// （可以包含 user 本人，构建索引时会跳过），items 是候选物品池。
// opts 在入口处校验，校验失败返回 INVALID_INPUT 错误。
//
// 空物品池返回空结果而不是错误："无可推荐"是合法输出。
func (e *Engine) Recommend(
	ctx context.Context,
	user *core.User,
	allUsers []*core.User,
	items []*core.Item,
	opts core.Options,
) (*core.Response, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		RequestID: uuid.NewString(),
		User:      user,
		Options:   opts,
		Now:       e.now(),
		Params:    map[string]any{},
	}

	log := e.logger.With(
		zap.String("request_id", rctx.RequestID),
		zap.String("user_id", userID(user)),
	)

	candidates := buildCandidates(items)
	total := len(candidates)
	if total == 0 {
		log.Debug("empty item pool, nothing to recommend")
		return e.respond(rctx, nil, total), nil
	}

	e.enrich(ctx, rctx, candidates, log)

	p, err := e.buildPipeline(user, allUsers, rctx, log)
	if err != nil {
		return nil, err
	}

	out, err := p.Run(ctx, rctx, candidates)
	if err != nil {
		log.Error("pipeline failed", zap.Error(err))
		return nil, err
	}

	log.Debug("recommendation complete",
		zap.Int("total_candidates", total),
		zap.Int("returned", len(out)),
	)
	return e.respond(rctx, out, total), nil
}

func (e *Engine) buildPipeline(
	user *core.User,
	allUsers []*core.User,
	rctx *core.RecommendContext,
	log *zap.Logger,
) (*pipeline.Pipeline, error) {
	idx := history.Build(user, allUsers, rctx.Now, e.tuning)
	log.Debug("history index built", zap.Int("neighbors", len(idx.Neighbors)))

	scorers := []scorer.Scorer{
		&scorer.Collaborative{Index: idx},
		scorer.NewContent(e.tuning, user),
	}
	if rctx.Options.IncludePopular {
		scorers = append(scorers, &scorer.Popularity{Tuning: e.tuning})
	}

	filters := []filter.Filter{
		filter.NewExcludeFilter(user, rctx.Options.ExcludeIDs),
	}
	if e.store != nil {
		filters = append(filters, filter.NewExposedFilter(
			filter.NewStoreAdapter(e.store),
			e.exposedKeyPrefix,
			e.exposedWindow,
		))
	}
	if len(rctx.Options.Rules) > 0 {
		rf, err := filter.NewRuleFilter(rctx.Options.Rules)
		if err != nil {
			return nil, err
		}
		filters = append(filters, rf)
	}
	filters = append(filters, e.extraFilters...)

	nodes := []pipeline.Node{
		&scorer.Fanout{
			Scorers: scorers,
			Weights: scorer.EffectiveWeights(rctx.Options),
		},
		&rerank.Diversity{Weight: rctx.Options.DiversityWeight},
		&filter.FilterNode{Filters: filters},
	}
	nodes = append(nodes, e.extraNodes...)
	nodes = append(nodes, &assemble.TopN{N: rctx.Options.MaxRecommendations})

	return &pipeline.Pipeline{
		Nodes: nodes,
		Observe: func(node pipeline.Node, in, out int) {
			log.Debug("stage complete",
				zap.String("node", node.Name()),
				zap.String("kind", string(node.Kind())),
				zap.Int("in", in),
				zap.Int("out", out),
			)
		},
	}, nil
}

// enrich 从特征服务补充数值特征到 rctx.Params。
// 特征服务故障只降级不失败：核心打分不依赖外部特征。
func (e *Engine) enrich(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
	log *zap.Logger,
) {
	if e.features == nil || rctx.User == nil {
		return
	}

	userFeatures, err := e.features.GetUserFeatures(ctx, rctx.User.ID)
	if err != nil {
		log.Warn("user feature lookup failed", zap.Error(err))
	} else if len(userFeatures) > 0 {
		rctx.Params["user_features"] = userFeatures
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if id := c.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	itemFeatures, err := e.features.BatchGetItemFeatures(ctx, ids)
	if err != nil {
		log.Warn("item feature lookup failed", zap.Error(err))
		return
	}
	if len(itemFeatures) > 0 {
		rctx.Params["item_features"] = itemFeatures
	}
}

func (e *Engine) respond(rctx *core.RecommendContext, out []*core.Candidate, total int) *core.Response {
	return &core.Response{
		Recommendations: assemble.Results(rctx, out, scorer.EffectiveWeights(rctx.Options)),
		Metadata: core.Metadata{
			RequestID:        rctx.RequestID,
			AlgorithmWeights: rctx.Options.AlgorithmWeights,
			DiversityWeight:  rctx.Options.DiversityWeight,
			TotalCandidates:  total,
		},
	}
}

// buildCandidates 把物品池转换为候选列表，跳过空 ID 并按首次出现去重。
func buildCandidates(items []*core.Item) []*core.Candidate {
	out := make([]*core.Candidate, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == nil || item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, core.NewCandidate(item))
	}
	return out
}

func userID(u *core.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
