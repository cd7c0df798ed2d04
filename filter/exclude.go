package filter

import (
	"context"

	"github.com/gatherkit/gatherkit/core"
)

// ExcludeFilter 移除调用方显式排除的候选与用户已加入/已参加的候选。
//
// 两个来源在构造时合并为一个集合：
//   - options.ExcludeIDs（已看过/已忽略）
//   - 用户的 joinedCommunities ∪ attendedEvents（自排除）
//
// 排除是硬约束：无论分数多高、候选池多小，命中即移除。
type ExcludeFilter struct {
	ids map[string]struct{}
}

// NewExcludeFilter 创建排除过滤器。
func NewExcludeFilter(user *core.User, excludeIDs []string) *ExcludeFilter {
	ids := user.KnownItemIDs()
	if user != nil && user.ID != "" {
		// person 候选不推荐用户本人
		ids[user.ID] = struct{}{}
	}
	for _, id := range excludeIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	return &ExcludeFilter{ids: ids}
}

func (f *ExcludeFilter) Name() string { return "filter.exclude" }

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	id := c.ID()
	if id == "" {
		return true, nil
	}
	_, hit := f.ids[id]
	return hit, nil
}
