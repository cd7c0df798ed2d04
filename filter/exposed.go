package filter

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// ExposedFilter 移除用户近期已曝光的候选。
//
// 曝光历史存放在外部存储（memory/redis），key 按用户划分，
// 时间窗口之外的曝光不再生效。整份历史在首次检查时一次性加载、
// 调用内缓存，后续候选只查内存集合。
//
// 存储不可用时放行全部候选，曝光去重是体验优化而不是正确性约束。
type ExposedFilter struct {
	// Store 读取用户曝光历史
	Store ExposedStore

	// KeyPrefix 实际 key 为 {KeyPrefix}:{UserID}，默认 "user:exposed"
	KeyPrefix string

	// WindowSeconds 曝光时间窗口（秒），0 表示不限制
	WindowSeconds int64

	loaded  bool
	exposed map[string]struct{}
}

// ExposedStore 是曝光历史的读取接口，由 StoreAdapter 实现。
type ExposedStore interface {
	// GetExposedItems 获取用户在时间窗口内已曝光的物品 ID 列表
	GetExposedItems(ctx context.Context, userID, keyPrefix string, windowSeconds int64, nowUnix int64) ([]string, error)
}

// NewExposedFilter 创建已曝光过滤器。
func NewExposedFilter(store ExposedStore, keyPrefix string, windowSeconds int64) *ExposedFilter {
	return &ExposedFilter{
		Store:         store,
		KeyPrefix:     keyPrefix,
		WindowSeconds: windowSeconds,
	}
}

func (f *ExposedFilter) Name() string { return "filter.exposed" }

func (f *ExposedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if f.Store == nil || rctx == nil || rctx.User == nil || rctx.User.ID == "" {
		return false, nil
	}

	if !f.loaded {
		f.load(ctx, rctx)
	}
	_, hit := f.exposed[c.ID()]
	return hit, nil
}

func (f *ExposedFilter) load(ctx context.Context, rctx *core.RecommendContext) {
	f.loaded = true
	f.exposed = map[string]struct{}{}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "user:exposed"
	}

	ids, err := f.Store.GetExposedItems(ctx, rctx.User.ID, prefix, f.WindowSeconds, rctx.Now.Unix())
	if err != nil {
		return
	}
	for _, id := range ids {
		f.exposed[id] = struct{}{}
	}
}
