package scorer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gatherkit/gatherkit/core"
)

func TestEffectiveWeights(t *testing.T) {
	opts := core.Options{
		IncludePopular: false,
		AlgorithmWeights: core.Weights{
			Collaborative: 0.4,
			ContentBased:  0.3,
			Popularity:    0.3,
		},
	}
	w := EffectiveWeights(opts)
	if w.Popularity != 0 {
		t.Errorf("popularity weight = %v, want 0 when IncludePopular=false", w.Popularity)
	}
	if w.Collaborative != 0.4 || w.ContentBased != 0.3 {
		t.Errorf("other weights should be untouched, got %+v", w)
	}

	opts.IncludePopular = true
	w = EffectiveWeights(opts)
	if w.Popularity != 0.3 {
		t.Errorf("popularity weight = %v, want 0.3 when IncludePopular=true", w.Popularity)
	}
}

func TestAggregateNormalizesByWeightSum(t *testing.T) {
	c := core.NewCandidate(&core.Item{ID: "i1"})
	collab := map[string]float64{"i1": 1}
	content := map[string]float64{"i1": 0.5}

	// 权重和为 3，不要求调用方归一化
	w := core.Weights{Collaborative: 2, ContentBased: 1}
	Aggregate([]*core.Candidate{c}, collab, content, nil, w)

	want := (2*1 + 1*0.5) / 3
	if math.Abs(c.Score-want) > 1e-9 {
		t.Errorf("composite = %v, want %v", c.Score, want)
	}
	if c.Breakdown.Collaborative != 1 || c.Breakdown.ContentBased != 0.5 || c.Breakdown.Popularity != 0 {
		t.Errorf("breakdown not recorded: %+v", c.Breakdown)
	}
}

func TestAggregateZeroWeightRemovesInfluence(t *testing.T) {
	// 协同权重为 0 时，协同分数不应影响排序
	a := core.NewCandidate(&core.Item{ID: "a"})
	b := core.NewCandidate(&core.Item{ID: "b"})

	collab := map[string]float64{"a": 1, "b": 0}
	content := map[string]float64{"a": 0.2, "b": 0.9}

	got := Aggregate([]*core.Candidate{a, b},
		collab, content, nil,
		core.Weights{Collaborative: 0, ContentBased: 1})

	if got[0].ID() != "b" {
		t.Errorf("first = %s, want b (collaborative weight is zero)", got[0].ID())
	}
	if math.Abs(got[0].Score-0.9) > 1e-9 {
		t.Errorf("score = %v, want 0.9", got[0].Score)
	}
}

func TestAggregateZeroEffectiveSum(t *testing.T) {
	a := core.NewCandidate(&core.Item{ID: "b"})
	b := core.NewCandidate(&core.Item{ID: "a"})

	got := Aggregate([]*core.Candidate{a, b},
		map[string]float64{"a": 1, "b": 1}, nil, nil,
		core.Weights{})

	// 有效权重和为 0：全部 composite 为 0，ID 升序兜底
	for _, c := range got {
		if c.Score != 0 {
			t.Errorf("score = %v, want 0 with zero weight sum", c.Score)
		}
	}
	if got[0].ID() != "a" || got[1].ID() != "b" {
		t.Errorf("order = [%s %s], want [a b]", got[0].ID(), got[1].ID())
	}
}

func TestAggregateDeterministicTieBreak(t *testing.T) {
	mk := func(id string) *core.Candidate { return core.NewCandidate(&core.Item{ID: id}) }
	scores := map[string]float64{"c": 0.5, "a": 0.5, "b": 0.5}

	got := Aggregate([]*core.Candidate{mk("c"), mk("a"), mk("b")},
		scores, nil, nil, core.Weights{Collaborative: 1})

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].ID() != id {
			t.Errorf("pos %d = %s, want %s", i, got[i].ID(), id)
		}
	}
}

func TestDominant(t *testing.T) {
	w := core.Weights{Collaborative: 1, ContentBased: 1, Popularity: 1}

	tests := []struct {
		name string
		b    core.Breakdown
		want string
	}{
		{"collaborative wins", core.Breakdown{Collaborative: 0.9, ContentBased: 0.3}, "collaborative"},
		{"content wins", core.Breakdown{ContentBased: 0.8, Popularity: 0.2}, "content"},
		{"popularity wins", core.Breakdown{Popularity: 0.7}, "popularity"},
		{"tie prefers collaborative", core.Breakdown{Collaborative: 0.5, ContentBased: 0.5}, "collaborative"},
		{"weights change the winner", core.Breakdown{Collaborative: 0.6, ContentBased: 0.6}, "collaborative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dominant(tt.b, w); got != tt.want {
				t.Errorf("Dominant() = %s, want %s", got, tt.want)
			}
		})
	}

	// 权重把优势路反转
	if got := Dominant(core.Breakdown{Collaborative: 0.6, ContentBased: 0.5},
		core.Weights{Collaborative: 0.1, ContentBased: 1}); got != "content" {
		t.Errorf("Dominant() = %s, want content under content-heavy weights", got)
	}
}

func TestFanoutAggregatesAllScorers(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := &core.User{ID: "u1", Interests: []string{"tech"}}
	rctx := &core.RecommendContext{
		User: user,
		Now:  now,
		Options: core.Options{
			IncludePopular: true,
			AlgorithmWeights: core.Weights{
				Collaborative: 1,
				ContentBased:  1,
				Popularity:    1,
			},
		},
	}

	candidates := []*core.Candidate{
		core.NewCandidate(&core.Item{ID: "i1", Tags: []string{"tech"}, EngagementScore: 50, LastActivity: now}),
		core.NewCandidate(&core.Item{ID: "i2", Tags: []string{"art"}}),
	}

	node := &Fanout{
		Scorers: []Scorer{
			stubScorer{name: "score.collaborative", scores: map[string]float64{"i1": 0.4}},
			stubScorer{name: "score.content", scores: map[string]float64{"i1": 0.8, "i2": 0.2}},
			stubScorer{name: "score.popularity", scores: map[string]float64{"i1": 0.6}},
		},
		Weights: EffectiveWeights(rctx.Options),
	}

	got, err := node.Process(context.Background(), rctx, candidates)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID() != "i1" {
		t.Errorf("first = %s, want i1", got[0].ID())
	}
	want := (0.4 + 0.8 + 0.6) / 3
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Errorf("composite = %v, want %v", got[0].Score, want)
	}
	if got[1].Breakdown.Collaborative != 0 || got[1].Breakdown.ContentBased != 0.2 {
		t.Errorf("i2 breakdown = %+v", got[1].Breakdown)
	}
}

func TestFanoutDeterministic(t *testing.T) {
	run := func() []float64 {
		rctx := &core.RecommendContext{
			Options: core.Options{
				IncludePopular:   true,
				AlgorithmWeights: core.Weights{Collaborative: 1, ContentBased: 1, Popularity: 1},
			},
		}
		candidates := []*core.Candidate{
			core.NewCandidate(&core.Item{ID: "a"}),
			core.NewCandidate(&core.Item{ID: "b"}),
			core.NewCandidate(&core.Item{ID: "c"}),
		}
		node := &Fanout{
			Scorers: []Scorer{
				stubScorer{name: "score.collaborative", scores: map[string]float64{"a": 0.1, "b": 0.2, "c": 0.3}},
				stubScorer{name: "score.content", scores: map[string]float64{"a": 0.9, "b": 0.5}},
				stubScorer{name: "score.popularity", scores: map[string]float64{"c": 0.7}},
			},
			Weights: EffectiveWeights(rctx.Options),
		}
		got, err := node.Process(context.Background(), rctx, candidates)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		out := make([]float64, len(got))
		for i, c := range got {
			out[i] = c.Score
		}
		return out
	}

	first := run()
	for i := 0; i < 10; i++ {
		again := run()
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d diverged at %d: %v vs %v", i, j, first[j], again[j])
			}
		}
	}
}

type stubScorer struct {
	name   string
	scores map[string]float64
}

func (s stubScorer) Name() string { return s.name }

func (s stubScorer) Score(
	_ context.Context,
	_ *core.RecommendContext,
	_ []*core.Candidate,
) (map[string]float64, error) {
	return s.scores, nil
}
