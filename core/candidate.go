package core

import "github.com/gatherkit/gatherkit/pkg/utils"

// Breakdown 是三路算法的归一化子分数，均在 [0,1]。
type Breakdown struct {
	Collaborative float64 `json:"collaborative"`
	ContentBased  float64 `json:"content_based"`
	Popularity    float64 `json:"popularity"`
}

// Candidate 是推荐链路中的统一承载结构：候选物品 + 分数 + 标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
//
// Item 指向调用方传入的只读物品；可变状态（分数、标签）全部在 Candidate 上，
// 保证引擎不改写输入。
type Candidate struct {
	Item      *Item
	Score     float64 // 聚合后的 composite score，[0,1]
	Breakdown Breakdown
	Labels    map[string]utils.Label
}

func NewCandidate(item *Item) *Candidate {
	return &Candidate{
		Item:   item,
		Labels: make(map[string]utils.Label),
	}
}

// ID 返回候选物品 ID；Item 为 nil 时返回空串。
func (c *Candidate) ID() string {
	if c == nil || c.Item == nil {
		return ""
	}
	return c.Item.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}
