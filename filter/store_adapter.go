package filter

import (
	"context"
	"encoding/json"

	"github.com/gatherkit/gatherkit/core"
)

// StoreAdapter 把 core.Store 适配为过滤层所需的读取接口。
//
// 曝光历史支持两种布局：
//   - 有序集合（后端实现 core.KeyValueStore 时优先）：
//     member 为物品 ID，score 为曝光的 Unix 时间戳，
//     按窗口过滤时对每个成员做 ZScore 比较
//   - JSON 列表（普通 Store 的兜底）：
//     ["id1","id2"] 或 [{"item_id":"id1","timestamp":1717000000}]
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// RecordExposure 追加一条曝光记录（有序集合布局）。
// 后端不支持有序集合时返回 ErrStoreNotSupported。
func (a *StoreAdapter) RecordExposure(ctx context.Context, userID, keyPrefix, itemID string, atUnix int64) error {
	kv, ok := a.store.(core.KeyValueStore)
	if !ok {
		return core.ErrStoreNotSupported
	}
	return kv.ZAdd(ctx, keyPrefix+":"+userID, float64(atUnix), itemID)
}

// GetExposedItems 读取用户在时间窗口内的曝光历史。
func (a *StoreAdapter) GetExposedItems(
	ctx context.Context,
	userID, keyPrefix string,
	windowSeconds int64,
	nowUnix int64,
) ([]string, error) {
	key := keyPrefix + ":" + userID
	cutoff := nowUnix - windowSeconds

	if kv, ok := a.store.(core.KeyValueStore); ok {
		members, err := kv.ZRange(ctx, key, 0, -1)
		if err == nil {
			if windowSeconds <= 0 {
				return members, nil
			}
			out := make([]string, 0, len(members))
			for _, m := range members {
				score, err := kv.ZScore(ctx, key, m)
				if err != nil {
					continue
				}
				if int64(score) >= cutoff {
					out = append(out, m)
				}
			}
			return out, nil
		}
		if !core.IsStoreNotSupported(err) && !core.IsStoreNotFound(err) {
			return nil, err
		}
	}

	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		return ids, nil
	}

	var entries []struct {
		ItemID    string `json:"item_id"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	ids = make([]string, 0, len(entries))
	for _, e := range entries {
		if windowSeconds > 0 && e.Timestamp < cutoff {
			continue
		}
		ids = append(ids, e.ItemID)
	}
	return ids, nil
}
