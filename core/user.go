package core

import "time"

// ActivityLevel 是用户活跃度档位。
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

// InteractionType 是行为类型。
// 其中 like/join/attend/comment/share 视为正向行为（参与协同过滤的 affinity 判定），
// view 仅作为曝光记录，不计入正向信号。
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionLike    InteractionType = "like"
	InteractionJoin    InteractionType = "join"
	InteractionAttend  InteractionType = "attend"
	InteractionComment InteractionType = "comment"
	InteractionShare   InteractionType = "share"
)

// Positive 判断行为是否为正向行为。
func (t InteractionType) Positive() bool {
	switch t {
	case InteractionLike, InteractionJoin, InteractionAttend, InteractionComment, InteractionShare:
		return true
	}
	return false
}

// Interaction 是一条只读的行为日志（append-only，引擎只读不写）。
type Interaction struct {
	Type       InteractionType
	TargetID   string
	TargetKind ItemKind
	Timestamp  time.Time
	Duration   time.Duration // 可选，view 类行为的停留时长
}

// Location 是地理位置。缺失位置的实体用 nil 表示，
// 下游打分必须把缺失当作"无证据"而不是"距离无穷远"。
type Location struct {
	Lat     float64
	Lng     float64
	City    string
	Country string
}

// Demographics 是用户的人口属性（全部可选）。
type Demographics struct {
	Age        int
	Profession string
	Education  string
}

// Preferences 是用户声明的偏好。
//
// MaxDistanceKm 为 0 表示未设置，内容打分时回退到 config.Tuning 的默认半径。
type Preferences struct {
	PreferredCategories []string
	MaxDistanceKm       float64
	CommunitySize       string // small / medium / large
	ActivityFrequency   string // daily / weekly / monthly
	ContentTypes        []string
	LanguagePreferences []string
}

// User 是一次推荐调用的用户快照。
//
// 生命周期约定：
//   - 由调用方构建并传入，调用期间视为不可变
//   - 引擎不持有、不回写、不跨调用缓存
//   - 并发调用各自持有自己的快照，无需加锁
type User struct {
	ID            string
	Interests     []string
	Location      *Location
	Demographics  Demographics
	ActivityLevel ActivityLevel

	JoinedCommunities []string
	AttendedEvents    []string
	Interactions      []Interaction

	Preferences Preferences
}

// KnownItemIDs 返回用户已加入/已参加的物品 ID 集合（用于自排除与协同过滤）。
func (u *User) KnownItemIDs() map[string]struct{} {
	if u == nil {
		return map[string]struct{}{}
	}
	known := make(map[string]struct{}, len(u.JoinedCommunities)+len(u.AttendedEvents))
	for _, id := range u.JoinedCommunities {
		known[id] = struct{}{}
	}
	for _, id := range u.AttendedEvents {
		known[id] = struct{}{}
	}
	return known
}

// MembershipSet 返回加入社区与参加活动的并集（相似度计算的基础集合）。
func (u *User) MembershipSet() map[string]struct{} {
	return u.KnownItemIDs()
}

// PositiveTargetIDs 返回用户正向行为指向的物品 ID 集合。
func (u *User) PositiveTargetIDs() map[string]struct{} {
	if u == nil {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(u.Interactions))
	for _, iv := range u.Interactions {
		if iv.Type.Positive() && iv.TargetID != "" {
			out[iv.TargetID] = struct{}{}
		}
	}
	return out
}
