package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/flow"
)

const flowJSON = `{
  "metadata": {"id": "ticket", "title": "Ticket Handling"},
  "roles": [
    {"id": "agent", "name": "Agent"},
    {"id": "backend", "name": "Backend", "type": "system"}
  ],
  "activities": [
    {"id": "open", "name": "Open ticket", "role_id": "agent"},
    {"id": "resolve", "name": "Resolve", "role_id": "backend"},
    {"id": "notify", "name": "Notify customer", "role_id": "agent"}
  ],
  "transitions": [
    {"source": "open", "target": "resolve"},
    {"source": "resolve", "target": "notify"}
  ]
}`

func TestOptionsValidate(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("expected error without input or document")
	}

	opts = Options{Input: []byte(flowJSON), Formats: []string{"docx"}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("expected error for unknown format")
	}

	opts = Options{Input: []byte(flowJSON)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatBPMN {
		t.Errorf("default formats = %v, want [bpmn]", opts.Formats)
	}
}

func TestOptionsLayoutOptions(t *testing.T) {
	opts := Options{HGap: 100, Sweeps: 8, NoScale: true}
	l := opts.LayoutOptions()
	if l.HGap != 100 {
		t.Errorf("HGap = %v, want 100", l.HGap)
	}
	if l.Sweeps != 8 {
		t.Errorf("Sweeps = %d, want 8", l.Sweeps)
	}
	if l.Scale {
		t.Error("Scale should be disabled")
	}
	if l.ActivityHeight == 0 {
		t.Error("unset fields should fall back to engine defaults")
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Input:   []byte(flowJSON),
		Formats: []string{FormatBPMN, FormatSVG, FormatMermaid, FormatJSON},
		NoScale: true,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Stats.NodeCount != 3 {
		t.Errorf("node count = %d, want 3", result.Stats.NodeCount)
	}
	if result.Stats.LaneCount != 2 || result.Stats.RankCount != 3 {
		t.Errorf("lanes/ranks = %d/%d, want 2/3", result.Stats.LaneCount, result.Stats.RankCount)
	}
	if result.FlowHash == "" {
		t.Error("flow hash not computed")
	}
	if len(result.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(result.Artifacts))
	}
	if !strings.Contains(string(result.Artifacts[FormatBPMN]), "bpmn2:definitions") {
		t.Error("BPMN artifact malformed")
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("null cache should never report hits")
	}
}

func TestRunnerExecute_CacheHits(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{Input: []byte(flowJSON), Formats: []string{FormatBPMN}, NoScale: true}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	second, err := runner.Execute(context.Background(), Options{
		Input: []byte(flowJSON), Formats: []string{FormatBPMN}, NoScale: true,
	})
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if string(second.Artifacts[FormatBPMN]) != string(first.Artifacts[FormatBPMN]) {
		t.Error("cached artifact differs from rendered artifact")
	}
}

func TestRunnerExecute_Refresh(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	if _, err := runner.Execute(context.Background(), Options{
		Input: []byte(flowJSON), Formats: []string{FormatBPMN}, NoScale: true,
	}); err != nil {
		t.Fatalf("warmup Execute error: %v", err)
	}

	result, err := runner.Execute(context.Background(), Options{
		Input: []byte(flowJSON), Formats: []string{FormatBPMN}, NoScale: true, Refresh: true,
	})
	if err != nil {
		t.Fatalf("refresh Execute error: %v", err)
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecute_InvalidReference(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	doc := &flow.Document{
		Activities:  []flow.Activity{{ID: "a"}},
		Transitions: []flow.Transition{{Source: "a", Target: "ghost"}},
	}
	_, err := runner.Execute(context.Background(), Options{Document: doc})
	if err == nil {
		t.Fatal("expected error for dangling transition")
	}
	if !strings.Contains(err.Error(), "layout:") {
		t.Errorf("error should surface from the layout stage: %v", err)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse(context.Background(), Options{Input: []byte("{broken")})
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
}
