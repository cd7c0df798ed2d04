// Package conv 提供类型转换与集合归一化工具，用于简化各模块中的重复逻辑。
package conv

import "strings"

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ConvertMap 将 map[K]V1 按 convert 转为 map[K]V2，convert 返回 false 的条目被跳过。
func ConvertMap[K comparable, V1, V2 any](m map[K]V1, convert func(V1) (V2, bool)) map[K]V2 {
	if m == nil {
		return nil
	}
	out := make(map[K]V2, len(m))
	for k, v := range m {
		if v2, ok := convert(v); ok {
			out[k] = v2
		}
	}
	return out
}

// MapToFloat64 将 map[string]any 转为 map[string]float64，仅保留可转为 float64 的 value。
func MapToFloat64(m map[string]any) map[string]float64 {
	return ConvertMap(m, func(v any) (float64, bool) { return ToFloat64(v) })
}

// NormalizeTag 规范化 tag/category：小写并去首尾空白。
// 打分各路对 tag 的比较都先经过这里，避免大小写差异造成"假不相似"。
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToSet 将字符串切片规范化为集合，空串被跳过。
func ToSet(values ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, vs := range values {
		for _, v := range vs {
			n := NormalizeTag(v)
			if n == "" {
				continue
			}
			out[n] = struct{}{}
		}
	}
	return out
}

// JaccardSet 计算两个集合的 Jaccard 系数 |A∩B| / |A∪B|。
// 两个集合都为空时返回 0（无证据，不是完全相似）。
func JaccardSet(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
