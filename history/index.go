// Package history 构建协同过滤所需的用户↔物品稀疏亲和结构。
package history

import (
	"sort"
	"time"

	"github.com/gatherkit/gatherkit/config"
	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/pkg/conv"
	"github.com/gatherkit/gatherkit/pkg/geo"
)

// Neighbor 是一个与目标用户有重叠的候选邻居。
type Neighbor struct {
	UserID       string
	Similarity   float64 // [0,1]
	Interactions int     // 总行为数，相似度并列时的决胜依据（证据更多者优先）
}

// Index 是一次调用内构建的稀疏亲和索引，调用结束即丢弃（无跨调用状态）。
//
// CoOccurrence[item] = Σ_v sim(v)·affinity(v,item)，其中 affinity ∈ {0,1}；
// SimilaritySum = Σ_v sim(v)（v 为参与聚合的邻居）。
// 两者相除即协同过滤分数，affinity 为 0/1 保证商落在 [0,1]。
type Index struct {
	Neighbors     []Neighbor
	Similarity    map[string]float64
	CoOccurrence  map[string]float64
	SimilaritySum float64
}

// Build 对候选用户池计算与目标用户的相似度并聚合共现。
//
// 相似度 = Jaccard(加入社区 ∪ 参加活动) 加上共同近期行为的加成
// （按 lookback 窗口线性衰减的加权 Jaccard，乘 InteractionBoost），裁剪到 1。
// 成员集合零重叠的用户相似度为 0，完全不参与聚合（不贡献、不惩罚）。
//
// 邻居排序：相似度降序 → 行为总数降序 → 用户 ID 升序（确定性输出）。
// TopKNeighbors > 0 时只保留前 K 个邻居参与聚合。
func Build(target *core.User, allUsers []*core.User, now time.Time, tuning config.Tuning) *Index {
	idx := &Index{
		Similarity:   make(map[string]float64),
		CoOccurrence: make(map[string]float64),
	}
	if target == nil {
		return idx
	}

	targetSet := target.MembershipSet()
	targetRecent := recencyWeights(target, now, tuning.LookbackDays)

	neighbors := make([]Neighbor, 0, len(allUsers))
	users := make(map[string]*core.User, len(allUsers))

	for _, v := range allUsers {
		if v == nil || v.ID == "" || v.ID == target.ID {
			continue
		}

		jac := conv.JaccardSet(targetSet, v.MembershipSet())
		if jac == 0 {
			continue // 零重叠：不贡献，不惩罚
		}

		sim := jac
		if tuning.InteractionBoost > 0 {
			overlap := weightedJaccard(targetRecent, recencyWeights(v, now, tuning.LookbackDays))
			sim += tuning.InteractionBoost * overlap
			if sim > 1 {
				sim = 1
			}
		}

		neighbors = append(neighbors, Neighbor{
			UserID:       v.ID,
			Similarity:   sim,
			Interactions: len(v.Interactions),
		})
		users[v.ID] = v
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		if neighbors[i].Interactions != neighbors[j].Interactions {
			return neighbors[i].Interactions > neighbors[j].Interactions
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if tuning.TopKNeighbors > 0 && len(neighbors) > tuning.TopKNeighbors {
		neighbors = neighbors[:tuning.TopKNeighbors]
	}
	idx.Neighbors = neighbors

	for _, n := range neighbors {
		idx.Similarity[n.UserID] = n.Similarity
		idx.SimilaritySum += n.Similarity

		v := users[n.UserID]
		for itemID := range v.MembershipSet() {
			idx.CoOccurrence[itemID] += n.Similarity
		}
		for itemID := range v.PositiveTargetIDs() {
			if _, known := v.MembershipSet()[itemID]; known {
				continue // 已在成员集合里计过
			}
			idx.CoOccurrence[itemID] += n.Similarity
		}
	}

	return idx
}

// Score 返回协同过滤分数 CoOccurrence[itemID] / SimilaritySum。
// 没有任何相似用户时返回 0（冷启动回退信号，不是 NaN）。
func (idx *Index) Score(itemID string) float64 {
	if idx == nil || idx.SimilaritySum == 0 {
		return 0
	}
	s := idx.CoOccurrence[itemID] / idx.SimilaritySum
	if s > 1 {
		s = 1
	}
	return s
}

// recencyWeights 把用户行为折算为 itemID → 衰减权重。
// 同一物品取最近一次行为的权重；窗口之外的行为权重为 0，直接跳过。
func recencyWeights(u *core.User, now time.Time, lookbackDays int) map[string]float64 {
	out := make(map[string]float64)
	if u == nil || lookbackDays <= 0 {
		return out
	}
	window := float64(lookbackDays)
	for _, iv := range u.Interactions {
		if iv.TargetID == "" || iv.Timestamp.IsZero() {
			continue
		}
		ageDays := now.Sub(iv.Timestamp).Hours() / 24
		w := geo.LinearDecay(ageDays, window)
		if w <= 0 {
			continue
		}
		if w > out[iv.TargetID] {
			out[iv.TargetID] = w
		}
	}
	return out
}

// weightedJaccard 计算两个权重 map 的加权 Jaccard：Σmin / Σmax。
// 双方都为空时返回 0。
func weightedJaccard(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var sumMin, sumMax float64
	for k, av := range a {
		if bv, ok := b[k]; ok {
			if av < bv {
				sumMin += av
				sumMax += bv
			} else {
				sumMin += bv
				sumMax += av
			}
		} else {
			sumMax += av
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			sumMax += bv
		}
	}
	if sumMax == 0 {
		return 0
	}
	return sumMin / sumMax
}
