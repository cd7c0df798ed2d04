package feature

import "context"

// Service 是外部特征服务的接口：按实体 ID 补充数值信号。
//
// 设计原则：
//   - 引擎不依赖具体实现；不配置 Service 时打分只用调用方传入的快照
//   - 补充的特征只进入 Vector.Numeric，供自定义 Node 与 CEL 规则使用，
//     三路核心打分不依赖它（保证纯函数语义不被外部服务破坏）
//
// 实现：
//   - FeastService 基于 Feast Online Store
//   - 也可以自行实现（Redis、HTTP 等）
type Service interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// GetUserFeatures 获取单个用户的数值特征
	GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error)

	// BatchGetItemFeatures 批量获取物品数值特征（减少网络往返）
	BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error)

	// Close 关闭连接/释放资源
	Close() error
}

// MergeNumeric 把补充特征合并进 Vector.Numeric（后写覆盖）。
func MergeNumeric(v *Vector, extra map[string]float64) {
	if v == nil || len(extra) == 0 {
		return
	}
	if v.Numeric == nil {
		v.Numeric = make(map[string]float64, len(extra))
	}
	for k, val := range extra {
		v.Numeric[k] = val
	}
}
