package core

import (
	"time"

	"github.com/gatherkit/gatherkit/pkg/utils"
)

// RecommendContext 承载一次推荐调用的用户/参数/时刻信息，贯穿整个 Pipeline 透传。
//
// Now 由入口注入（默认 time.Now），所有时间衰减都相对它计算，
// 保证同一输入重复调用产生逐字节一致的输出（可测试的确定性）。
type RecommendContext struct {
	RequestID string

	// User 是目标用户快照，调用期间不可变
	User *User

	// Options 已通过入口校验
	Options Options

	// Now 是本次调用的基准时刻
	Now time.Time

	// Labels 是请求级标签，可驱动 Pipeline 行为（例如冷启动标记）
	Labels map[string]utils.Label

	// Params 请求级上下文参数（latitude、device_type 等），
	// 供自定义 Node / CEL 规则使用
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
