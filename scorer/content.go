package scorer

import (
	"context"

	"github.com/gatherkit/gatherkit/config"
	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/feature"
	"github.com/gatherkit/gatherkit/pkg/conv"
	"github.com/gatherkit/gatherkit/pkg/geo"
)

// Content 是内容匹配打分：用户声明偏好 × 物品属性，与其他用户无关。
//
// 三个子项按 Tuning.Content 混合：
//   - 标签 Jaccard：interests ∪ preferredCategories 对 item.tags ∪ {category}
//   - 类目精确命中：item.category ∈ preferredCategories 时记 1
//   - 地理衰减：距离 0 处为 1，线性降到 maxDistance 处为 0，之外裁剪为 0
//
// 用户或物品缺失位置时 geo 项被剔除、剩余权重重新归一化 ——
// "没有位置数据"不等于"距离很远"。
type Content struct {
	Tuning config.Tuning

	// UserVec 是目标用户的特征向量，由引擎抽取一次后复用
	UserVec *feature.Vector

	// preferredCategories 规范化后的偏好类目集合
	preferred map[string]struct{}
}

// NewContent 创建内容打分器。
func NewContent(tuning config.Tuning, user *core.User) *Content {
	s := &Content{
		Tuning:  tuning,
		UserVec: feature.ExtractUser(user),
	}
	if user != nil {
		s.preferred = conv.ToSet(user.Preferences.PreferredCategories)
	} else {
		s.preferred = map[string]struct{}{}
	}
	return s
}

func (s *Content) Name() string { return "score.content" }

func (s *Content) Score(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) (map[string]float64, error) {
	out := make(map[string]float64, len(candidates))

	radius := 0.0
	if rctx != nil && rctx.User != nil {
		radius = rctx.User.Preferences.MaxDistanceKm
	}
	if radius <= 0 {
		radius = s.Tuning.DefaultMaxDistanceKm
	}

	for _, c := range candidates {
		id := c.ID()
		if id == "" || c.Item == nil {
			continue
		}
		if v := s.scoreItem(c.Item, radius); v > 0 {
			out[id] = v
		}
	}
	return out, nil
}

func (s *Content) scoreItem(item *core.Item, radiusKm float64) float64 {
	itemVec := feature.ExtractItem(item)
	w := s.Tuning.Content

	tagScore := conv.JaccardSet(s.UserVec.Tags, itemVec.TagsWithCategory())

	catScore := 0.0
	if itemVec.Category != "" {
		if _, ok := s.preferred[itemVec.Category]; ok {
			catScore = 1.0
		}
	}

	// geo 项：双方都有位置才参与
	geoKnown := s.UserVec.Geo != nil && itemVec.Geo != nil
	geoScore := 0.0
	if geoKnown {
		dist := geo.HaversineKm(s.UserVec.Geo.Lat, s.UserVec.Geo.Lng, itemVec.Geo.Lat, itemVec.Geo.Lng)
		geoScore = geo.LinearDecay(dist, radiusKm)
	}

	num := w.Tag*tagScore + w.Category*catScore
	den := w.Tag + w.Category
	if geoKnown {
		num += w.Geo * geoScore
		den += w.Geo
	}
	if den == 0 {
		return 0
	}
	return clamp01(num / den)
}
