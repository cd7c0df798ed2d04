package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherkit/gatherkit/core"
	"github.com/gatherkit/gatherkit/filter"
	"github.com/gatherkit/gatherkit/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func defaultOptions() core.Options {
	return core.Options{
		MaxRecommendations: 10,
		IncludePopular:     true,
		DiversityWeight:    0,
		AlgorithmWeights: core.Weights{
			Collaborative: 0.4,
			ContentBased:  0.4,
			Popularity:    0.2,
		},
	}
}

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithNow(fixedNow)}, opts...)...)
}

func resultIDs(resp *core.Response) []string {
	out := make([]string, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		out[i] = r.ItemID
	}
	return out
}

func TestRecommendValidatesOptions(t *testing.T) {
	e := newTestEngine()
	user := &core.User{ID: "u1"}

	tests := []struct {
		name   string
		mutate func(*core.Options)
	}{
		{"zero max recommendations", func(o *core.Options) { o.MaxRecommendations = 0 }},
		{"negative weight", func(o *core.Options) { o.AlgorithmWeights.Collaborative = -1 }},
		{"all-zero weights", func(o *core.Options) { o.AlgorithmWeights = core.Weights{} }},
		{"diversity out of range", func(o *core.Options) { o.DiversityWeight = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.mutate(&opts)
			_, err := e.Recommend(context.Background(), user, nil, []*core.Item{{ID: "i1"}}, opts)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err), "error = %v", err)
		})
	}
}

func TestRecommendEmptyItemPool(t *testing.T) {
	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), &core.User{ID: "u1"}, nil, nil, defaultOptions())
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
	assert.Equal(t, 0, resp.Metadata.TotalCandidates)
	assert.NotEmpty(t, resp.Metadata.RequestID)
}

func TestRecommendSimilarMembershipScenario(t *testing.T) {
	// A 与 B 加入完全相同的社区，B 还加入了 cX；
	// cX 应该进入 A 的推荐且协同分数拉满
	user := &core.User{ID: "a", JoinedCommunities: []string{"c1", "c2"}}
	other := &core.User{ID: "b", JoinedCommunities: []string{"c1", "c2", "cX"}}

	items := []*core.Item{
		{ID: "cX", Kind: core.KindCommunity, Name: "X"},
		{ID: "cY", Kind: core.KindCommunity, Name: "Y"},
	}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, []*core.User{user, other}, items, defaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Recommendations)

	top := resp.Recommendations[0]
	assert.Equal(t, "cX", top.ItemID)
	assert.InDelta(t, 1.0, top.Breakdown.Collaborative, 1e-9)
	assert.Equal(t, 1, top.Rank)
}

func TestRecommendGeoScenario(t *testing.T) {
	// 两个物品标签相同，一个在 10km 内、一个在 500km 外；近者排前
	user := &core.User{
		ID:        "u1",
		Interests: []string{"hiking"},
		Location:  &core.Location{Lat: 37.7749, Lng: -122.4194},
		Preferences: core.Preferences{
			MaxDistanceKm: 50,
		},
	}
	items := []*core.Item{
		{ID: "far", Tags: []string{"hiking"}, Location: &core.Location{Lat: 34.0522, Lng: -118.2437}},
		{ID: "near", Tags: []string{"hiking"}, Location: &core.Location{Lat: 37.8044, Lng: -122.2712}},
	}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, nil, items, defaultOptions())
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "near", resp.Recommendations[0].ItemID)
	assert.Greater(t,
		resp.Recommendations[0].Breakdown.ContentBased,
		resp.Recommendations[1].Breakdown.ContentBased)
}

func TestRecommendColdStart(t *testing.T) {
	// 无任何历史的新用户：协同为 0，内容/热度仍给出结果
	user := &core.User{ID: "new", Interests: []string{"music"}}
	items := []*core.Item{
		{ID: "i1", Tags: []string{"music"}, EngagementScore: 80, LastActivity: testNow},
		{ID: "i2", Tags: []string{"sports"}, EngagementScore: 20},
	}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, nil, items, defaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Recommendations)

	for _, r := range resp.Recommendations {
		assert.Zero(t, r.Breakdown.Collaborative)
	}
	assert.Equal(t, "i1", resp.Recommendations[0].ItemID)
	assert.Greater(t, resp.Recommendations[0].CompositeScore, 0.0)
}

func TestRecommendExclusionComplete(t *testing.T) {
	user := &core.User{
		ID:                "u1",
		JoinedCommunities: []string{"joined"},
		AttendedEvents:    []string{"attended"},
	}
	items := []*core.Item{
		{ID: "joined"},
		{ID: "attended"},
		{ID: "excluded"},
		{ID: "kept", Tags: []string{"x"}},
	}
	opts := defaultOptions()
	opts.ExcludeIDs = []string{"excluded"}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)

	ids := resultIDs(resp)
	assert.NotContains(t, ids, "joined")
	assert.NotContains(t, ids, "attended")
	assert.NotContains(t, ids, "excluded")
	assert.Contains(t, ids, "kept")
}

func TestRecommendBoundedOutput(t *testing.T) {
	user := &core.User{ID: "u1", Interests: []string{"x"}}
	items := make([]*core.Item, 0, 50)
	for i := 0; i < 50; i++ {
		items = append(items, &core.Item{ID: fmt.Sprintf("i%02d", i), Tags: []string{"x"}})
	}
	opts := defaultOptions()
	opts.MaxRecommendations = 7

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 7)
	assert.Equal(t, 50, resp.Metadata.TotalCandidates)
	for i, r := range resp.Recommendations {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	user := &core.User{
		ID:                "u1",
		Interests:         []string{"hiking", "art"},
		JoinedCommunities: []string{"c1"},
	}
	allUsers := []*core.User{
		{ID: "u2", JoinedCommunities: []string{"c1", "c2"}},
		{ID: "u3", JoinedCommunities: []string{"c1", "c3"}},
	}
	items := []*core.Item{
		{ID: "c2", Tags: []string{"hiking"}, EngagementScore: 40, LastActivity: testNow},
		{ID: "c3", Tags: []string{"art"}, EngagementScore: 60, LastActivity: testNow},
		{ID: "c4", Tags: []string{"chess"}, EngagementScore: 90, LastActivity: testNow},
	}
	opts := defaultOptions()
	opts.DiversityWeight = 0.3

	e := newTestEngine()
	first, err := e.Recommend(context.Background(), user, allUsers, items, opts)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := e.Recommend(context.Background(), user, allUsers, items, opts)
		require.NoError(t, err)
		require.Equal(t, len(first.Recommendations), len(again.Recommendations))
		for j := range first.Recommendations {
			a, b := first.Recommendations[j], again.Recommendations[j]
			assert.Equal(t, a.ItemID, b.ItemID)
			assert.Equal(t, a.CompositeScore, b.CompositeScore)
			assert.Equal(t, a.Breakdown, b.Breakdown)
			assert.Equal(t, a.Reasoning, b.Reasoning)
		}
	}
}

func TestRecommendZeroWeightDisablesAlgorithm(t *testing.T) {
	// 协同权重为 0：即使协同证据强，排序只由内容决定
	user := &core.User{ID: "u1", Interests: []string{"art"}, JoinedCommunities: []string{"c1"}}
	allUsers := []*core.User{
		{ID: "u2", JoinedCommunities: []string{"c1", "strongCollab"}},
	}
	items := []*core.Item{
		{ID: "strongCollab", Tags: []string{"chess"}},
		{ID: "contentMatch", Tags: []string{"art"}},
	}
	opts := defaultOptions()
	opts.AlgorithmWeights = core.Weights{ContentBased: 1}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, allUsers, items, opts)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "contentMatch", resp.Recommendations[0].ItemID)
}

func TestRecommendPopularityToggle(t *testing.T) {
	user := &core.User{ID: "u1"}
	items := []*core.Item{
		{ID: "hot", EngagementScore: 100, GrowthRate: 5, LastActivity: testNow},
	}

	e := newTestEngine()

	opts := defaultOptions()
	opts.IncludePopular = false
	resp, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Zero(t, resp.Recommendations[0].Breakdown.Popularity)

	opts.IncludePopular = true
	resp, err = e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)
	assert.Greater(t, resp.Recommendations[0].Breakdown.Popularity, 0.0)
}

func TestRecommendDiversityReorders(t *testing.T) {
	user := &core.User{ID: "u1", Interests: []string{"hiking"}}
	items := []*core.Item{
		{ID: "h1", Tags: []string{"hiking"}, EngagementScore: 90, LastActivity: testNow},
		{ID: "h2", Tags: []string{"hiking"}, EngagementScore: 80, LastActivity: testNow},
		{ID: "j1", Tags: []string{"jazz"}, EngagementScore: 70, LastActivity: testNow},
	}

	e := newTestEngine()

	opts := defaultOptions()
	opts.DiversityWeight = 0
	plain, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)

	opts.DiversityWeight = 0.6
	diverse, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)

	// d=0 纯按分数；d 较大时近重复的 h2 被 j1 顶替到第二位
	assert.Equal(t, []string{"h1", "h2", "j1"}, resultIDs(plain))
	assert.Equal(t, []string{"h1", "j1", "h2"}, resultIDs(diverse))

	// 多样性只重排，不改变集合与分数
	assert.ElementsMatch(t, resultIDs(plain), resultIDs(diverse))
}

func TestRecommendScoreBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	users := make([]*core.User, 0, 20)
	for i := 0; i < 20; i++ {
		u := &core.User{ID: fmt.Sprintf("u%02d", i)}
		for j := 0; j < rng.Intn(5); j++ {
			u.JoinedCommunities = append(u.JoinedCommunities, fmt.Sprintf("c%02d", rng.Intn(30)))
		}
		users = append(users, u)
	}

	items := make([]*core.Item, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, &core.Item{
			ID:              fmt.Sprintf("c%02d", i),
			Tags:            []string{fmt.Sprintf("t%d", rng.Intn(8))},
			EngagementScore: rng.Float64() * 150, // 故意越过 0-100 约定
			GrowthRate:      rng.Float64()*4 - 1, // 含负增长
			LastActivity:    testNow.AddDate(0, 0, -rng.Intn(90)),
		})
	}

	target := &core.User{
		ID:                "target",
		Interests:         []string{"t1", "t2"},
		JoinedCommunities: []string{"c01", "c02"},
	}
	opts := defaultOptions()
	opts.DiversityWeight = 0.4
	opts.MaxRecommendations = 30

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), target, users, items, opts)
	require.NoError(t, err)

	for _, r := range resp.Recommendations {
		assert.GreaterOrEqual(t, r.CompositeScore, 0.0, "item %s", r.ItemID)
		assert.LessOrEqual(t, r.CompositeScore, 1.0, "item %s", r.ItemID)
		for _, sub := range []float64{r.Breakdown.Collaborative, r.Breakdown.ContentBased, r.Breakdown.Popularity} {
			assert.GreaterOrEqual(t, sub, 0.0, "item %s", r.ItemID)
			assert.LessOrEqual(t, sub, 1.0, "item %s", r.ItemID)
		}
		assert.NotEmpty(t, r.Reasoning)
	}
}

func TestRecommendExposedFilterIntegration(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	adapter := filter.NewStoreAdapter(mem)
	ctx := context.Background()

	require.NoError(t, adapter.RecordExposure(ctx, "u1", "user:exposed", "seen", testNow.Add(-time.Hour).Unix()))

	user := &core.User{ID: "u1", Interests: []string{"x"}}
	items := []*core.Item{
		{ID: "seen", Tags: []string{"x"}},
		{ID: "fresh", Tags: []string{"x"}},
	}

	e := newTestEngine(WithExposedStore(mem, "user:exposed", 24*3600))
	resp, err := e.Recommend(ctx, user, nil, items, defaultOptions())
	require.NoError(t, err)

	ids := resultIDs(resp)
	assert.NotContains(t, ids, "seen")
	assert.Contains(t, ids, "fresh")
}

func TestRecommendRuleFilter(t *testing.T) {
	user := &core.User{ID: "u1", Interests: []string{"x"}}
	items := []*core.Item{
		{ID: "tiny", Tags: []string{"x"}, MemberCount: 1},
		{ID: "big", Tags: []string{"x"}, MemberCount: 100},
	}
	opts := defaultOptions()
	opts.Rules = []string{`item.member_count < 3`}

	e := newTestEngine()
	resp, err := e.Recommend(context.Background(), user, nil, items, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"big"}, resultIDs(resp))

	opts.Rules = []string{`item.member_count <`}
	_, err = e.Recommend(context.Background(), user, nil, items, opts)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}
