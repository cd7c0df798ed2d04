package feature

import (
	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pkg/conv"
)

// Vector 是实体的归一化特征视图：标签集合、类目、位置、数值信号。
//
// 约定：
//   - 抽取是全函数（total），任何缺失字段映射为空集合/nil/零值，绝不报错
//   - Geo 为 nil 表示"无位置证据"，下游必须剔除 geo 项而不是按零分处理
//   - 同一输入永远产出同一 Vector（确定性，无副作用）
type Vector struct {
	// Tags 是规范化后的标签集合（小写、去空白）
	Tags map[string]struct{}

	// Category 是规范化后的类目，可为空串
	Category string

	// Geo 指向原始 Location，缺失为 nil
	Geo *core.Location

	// Numeric 是数值信号（活跃计数、热度信号等），供自定义打分与 CEL 规则使用
	Numeric map[string]float64
}

// HasTag 判断规范化后的 tag 是否存在。
func (v *Vector) HasTag(tag string) bool {
	if v == nil || v.Tags == nil {
		return false
	}
	_, ok := v.Tags[conv.NormalizeTag(tag)]
	return ok
}

// TagsWithCategory 返回 tags ∪ {category}，内容打分与多样性重排共用这个集合。
func (v *Vector) TagsWithCategory() map[string]struct{} {
	if v == nil {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(v.Tags)+1)
	for t := range v.Tags {
		out[t] = struct{}{}
	}
	if v.Category != "" {
		out[v.Category] = struct{}{}
	}
	return out
}

// ExtractUser 把用户快照抽取为特征向量。
// 用户侧的 Tags = interests ∪ preferredCategories。
func ExtractUser(u *core.User) *Vector {
	v := &Vector{
		Tags:    map[string]struct{}{},
		Numeric: map[string]float64{},
	}
	if u == nil {
		return v
	}

	v.Tags = conv.ToSet(u.Interests, u.Preferences.PreferredCategories)
	v.Geo = u.Location

	v.Numeric["joined_communities"] = float64(len(u.JoinedCommunities))
	v.Numeric["attended_events"] = float64(len(u.AttendedEvents))
	v.Numeric["interactions"] = float64(len(u.Interactions))
	switch u.ActivityLevel {
	case core.ActivityHigh:
		v.Numeric["activity_level"] = 1.0
	case core.ActivityMedium:
		v.Numeric["activity_level"] = 0.5
	case core.ActivityLow:
		v.Numeric["activity_level"] = 0.0
	}
	if u.Demographics.Age > 0 {
		v.Numeric["age"] = float64(u.Demographics.Age)
	}
	return v
}

// ExtractItem 把候选物品抽取为特征向量。
func ExtractItem(it *core.Item) *Vector {
	v := &Vector{
		Tags:    map[string]struct{}{},
		Numeric: map[string]float64{},
	}
	if it == nil {
		return v
	}

	v.Tags = conv.ToSet(it.Tags)
	v.Category = conv.NormalizeTag(it.Category)
	v.Geo = it.Location

	v.Numeric["member_count"] = float64(it.MemberCount)
	v.Numeric["engagement_score"] = it.EngagementScore
	v.Numeric["growth_rate"] = it.GrowthRate
	return v
}
