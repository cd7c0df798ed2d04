// Package config 集中管理打分链路的可调参数。
//
// 衰减窗口、混合比例这类常量不是算法的固定要求，而是调参对象，
// 因此全部放进 Tuning 并支持 YAML 加载；Default() 给出与测试基线一致的默认值。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContentWeights 是内容打分三个子项的混合比例。
// 用户或物品缺失位置时，geo 项被剔除并按剩余比例重新归一化。
type ContentWeights struct {
	Tag      float64 `yaml:"tag"`      // 兴趣/标签 Jaccard
	Category float64 `yaml:"category"` // 类目精确命中加成
	Geo      float64 `yaml:"geo"`      // 距离线性衰减
}

// PopularityWeights 是热度打分三个子项的固定内部权重。
// 热度是物品固有属性，不随请求用户变化，因此不暴露给调用方。
type PopularityWeights struct {
	Engagement float64 `yaml:"engagement"` // engagementScore / 100
	Growth     float64 `yaml:"growth"`     // growthRate / (growthRate + 1)
	Recency    float64 `yaml:"recency"`    // lastActivity 线性衰减
}

// Tuning 是引擎全部可调参数。
type Tuning struct {
	// LookbackDays 相似度计算时共同行为的回看窗口（天），更早的行为贡献为零
	LookbackDays int `yaml:"lookback_days"`

	// InteractionBoost 共同近期行为对 Jaccard 相似度的加成系数（加成后裁剪到 1）
	InteractionBoost float64 `yaml:"interaction_boost"`

	// TopKNeighbors 协同过滤考虑的相似用户上限，0 表示不限制
	TopKNeighbors int `yaml:"top_k_neighbors"`

	// Content 内容打分混合比例
	Content ContentWeights `yaml:"content"`

	// DefaultMaxDistanceKm 用户未设置 maxDistance 时的默认半径（公里）
	DefaultMaxDistanceKm float64 `yaml:"default_max_distance_km"`

	// StalenessDays 热度打分中 lastActivity 的衰减窗口（天）
	StalenessDays int `yaml:"staleness_days"`

	// Popularity 热度打分内部权重
	Popularity PopularityWeights `yaml:"popularity"`
}

// Default 返回默认参数。
func Default() Tuning {
	return Tuning{
		LookbackDays:     90,
		InteractionBoost: 0.2,
		TopKNeighbors:    50,
		Content: ContentWeights{
			Tag:      0.5,
			Category: 0.2,
			Geo:      0.3,
		},
		DefaultMaxDistanceKm: 50,
		StalenessDays:        30,
		Popularity: PopularityWeights{
			Engagement: 1,
			Growth:     1,
			Recency:    1,
		},
	}
}

// LoadFromYAML 从 YAML 文件加载参数，未出现的字段保持 Default() 的取值。
func LoadFromYAML(path string) (Tuning, error) {
	t := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse yaml: %w", err)
	}
	return t, nil
}
