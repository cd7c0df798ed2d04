package core

// Weights 是三路算法的线性混合权重。各权重 >= 0，总和必须为正；
// 聚合时按实际权重和归一化，因此不要求总和恰好为 1。
type Weights struct {
	Collaborative float64 `json:"collaborative" yaml:"collaborative"`
	ContentBased  float64 `json:"content_based" yaml:"content_based"`
	Popularity    float64 `json:"popularity" yaml:"popularity"`
}

// Sum 返回权重和。
func (w Weights) Sum() float64 {
	return w.Collaborative + w.ContentBased + w.Popularity
}

// Options 是一次推荐调用的完整参数，在入口处做一次显式校验，
// 链路内部不再做零散的 nil/越界检查。
type Options struct {
	// MaxRecommendations 返回条数上限，必须 > 0
	MaxRecommendations int

	// IncludePopular 为 false 时热度打分整体不参与，
	// 其权重在聚合时被归一化吸收
	IncludePopular bool

	// DiversityWeight 多样性权衡系数，[0,1]；0 表示纯按分数排序
	DiversityWeight float64

	// AlgorithmWeights 三路算法权重，总和必须为正
	AlgorithmWeights Weights

	// ExcludeIDs 调用方显式排除的物品 ID（已看过/已忽略），
	// 在截断之前应用
	ExcludeIDs []string

	// Rules 是可选的 CEL 排除规则，命中任一规则的候选被移除。
	// 例如：`item.category == "nsfw"` 或 `item.member_count < 3`
	Rules []string
}

// Validate 校验参数。只有校验错误会作为 error 返回给调用方；
// 空候选池等"无可推荐"情形是合法输出，不是错误。
func (o Options) Validate() error {
	if o.MaxRecommendations <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: max recommendations must be positive")
	}
	w := o.AlgorithmWeights
	if w.Collaborative < 0 || w.ContentBased < 0 || w.Popularity < 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: algorithm weights must be non-negative")
	}
	if w.Sum() <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: algorithm weights sum to zero, nothing to rank by")
	}
	if o.DiversityWeight < 0 || o.DiversityWeight > 1 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: diversity weight must be in [0,1]")
	}
	return nil
}

// Result 是单条推荐结果，按调用新建，引擎不持久化。
type Result struct {
	ItemID         string    `json:"item_id"`
	Kind           ItemKind  `json:"kind"`
	CompositeScore float64   `json:"composite_score"` // [0,1]
	Breakdown      Breakdown `json:"breakdown"`
	Reasoning      string    `json:"reasoning"`
	Rank           int       `json:"rank"` // 从 1 开始
}

// Metadata 是一次调用的元信息，随结果一并返回给调用方。
type Metadata struct {
	RequestID        string  `json:"request_id"`
	AlgorithmWeights Weights `json:"algorithm_weights"`
	DiversityWeight  float64 `json:"diversity_weight"`
	TotalCandidates  int     `json:"total_candidates"`
}

// Response 是推荐入口的完整返回。
type Response struct {
	Recommendations []Result `json:"recommendations"`
	Metadata        Metadata `json:"metadata"`
}
