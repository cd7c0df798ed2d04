package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gatherkit/gatherkit/core"
)

type noopNode struct {
	name string
	kind Kind
}

func (n *noopNode) Name() string { return n.name }
func (n *noopNode) Kind() Kind   { return n.kind }
func (n *noopNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	return candidates, nil
}

func TestLoadFromYAMLAndBuild(t *testing.T) {
	yamlContent := `
pipeline:
  name: community_feed
  nodes:
    - type: rerank.diversity
      config:
        weight: 0.3
    - type: assemble.topn
      config:
        n: 10
`
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "community_feed" {
		t.Errorf("name = %s, want community_feed", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(cfg.Pipeline.Nodes))
	}
	if w, ok := cfg.Pipeline.Nodes[0].Config["weight"].(float64); !ok || w != 0.3 {
		t.Errorf("node config weight = %v", cfg.Pipeline.Nodes[0].Config["weight"])
	}

	factory := NewNodeFactory()
	factory.Register("rerank.diversity", func(c map[string]interface{}) (Node, error) {
		return &noopNode{name: "rerank.diversity", kind: KindReRank}, nil
	})
	factory.Register("assemble.topn", func(c map[string]interface{}) (Node, error) {
		return &noopNode{name: "assemble.topn", kind: KindPostProcess}, nil
	})

	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 2 {
		t.Fatalf("pipeline has %d nodes, want 2", len(p.Nodes))
	}
}

func TestBuildPipelineUnknownNode(t *testing.T) {
	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "nope"}}

	if _, err := cfg.BuildPipeline(NewNodeFactory()); err == nil {
		t.Fatal("unknown node type should fail")
	}
}

func TestPipelineRunObserve(t *testing.T) {
	var stages []string
	p := &Pipeline{
		Nodes: []Node{
			&noopNode{name: "a", kind: KindScore},
			&noopNode{name: "b", kind: KindFilter},
		},
		Observe: func(node Node, in, out int) {
			stages = append(stages, node.Name())
		},
	}

	in := []*core.Candidate{core.NewCandidate(&core.Item{ID: "i1"})}
	got, err := p.Run(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d candidates, want 1", len(got))
	}
	if len(stages) != 2 || stages[0] != "a" || stages[1] != "b" {
		t.Errorf("observed stages = %v, want [a b]", stages)
	}
}
