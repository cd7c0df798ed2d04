package core

import "time"

// ItemKind 标记候选物品的变体：社区 / 活动 / 用户。
// 三种变体共享打分所需的公共字段（tags/category/location/热度信号），
// 变体专属字段只在结果装配的展示逻辑中使用。
type ItemKind string

const (
	KindCommunity ItemKind = "community"
	KindEvent     ItemKind = "event"
	KindPerson    ItemKind = "person"

	// KindPost 只出现在行为日志的 TargetKind 里，post 本身不进候选池
	KindPost ItemKind = "post"
)

// Item 是推荐候选的统一承载结构（tagged union）。
//
// 只读输入：引擎对 Item 只读不写，调用方可安全复用。
type Item struct {
	ID       string
	Kind     ItemKind
	Name     string
	Category string
	Tags     []string
	Location *Location

	// 热度信号（物品固有，不因请求用户而变）
	MemberCount     int     // community 为成员数，event 为报名人数
	EngagementScore float64 // 0-100
	GrowthRate      float64 // 可为负，打分时负值按 0 处理
	CreatedAt       time.Time
	LastActivity    time.Time

	// Demographics 是可选的人群画像（展示用途，打分不依赖）
	Demographics map[string]float64

	// Meta 承载变体专属的展示字段（例如 event 的开始时间、person 的职业）
	Meta map[string]any
}
