package visualization_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anggasct/greenwave"
	"github.com/anggasct/greenwave/visualization"
)

func snapshot(t *testing.T) map[string]greenwave.Lane {
	t.Helper()
	controller, err := greenwave.NewController([]string{"North", "South", "East"}, greenwave.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	if _, err := controller.Decide([]greenwave.Reading{
		{LaneID: "North", Normal: 4},
		{LaneID: "South", Normal: 1},
		{LaneID: "East"},
	}); err != nil {
		t.Fatalf("Failed to run decision cycle: %v", err)
	}
	return controller.Inspect()
}

func TestDOTGeneration(t *testing.T) {
	generator := visualization.NewDOTGenerator(snapshot(t))

	dotContent, err := generator.Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if !strings.Contains(dotContent, "digraph Intersection") {
		t.Error("DOT content should contain graph declaration")
	}

	if !strings.Contains(dotContent, "\"North\"") {
		t.Error("DOT content should contain the North lane")
	}

	if !strings.Contains(dotContent, "\"North\" -> \"intersection\"") {
		t.Error("DOT content should contain the North approach edge")
	}

	if !strings.Contains(dotContent, "lightgreen") {
		t.Error("DOT content should color the green lane")
	}

	if !strings.Contains(dotContent, "lightcoral") {
		t.Error("DOT content should color the red lanes")
	}

	t.Logf("Generated DOT content:\n%s", dotContent)
}

func TestDOTGenerationWithOptions(t *testing.T) {
	options := visualization.DefaultDOTOptions()
	options.ShowCounts = false
	options.ShowWaits = false
	options.RankDirection = "TB"
	options.HubLabel = "junction"

	generator := visualization.NewDOTGenerator(snapshot(t), options)
	dotContent, err := generator.Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if !strings.Contains(dotContent, "rankdir=TB") {
		t.Error("DOT content should honor the rank direction")
	}

	if !strings.Contains(dotContent, "\"junction\"") {
		t.Error("DOT content should use the configured hub label")
	}

	if strings.Contains(dotContent, "vehicles") {
		t.Error("DOT content should omit counts when disabled")
	}
}

func TestDOTLaneLabels(t *testing.T) {
	generator := visualization.NewDOTGenerator(snapshot(t))
	dotContent, err := generator.Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if !strings.Contains(dotContent, "waiting 1 cycles") {
		t.Error("DOT content should show the wait counter of red lanes")
	}
}

func TestDOTGenerateToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intersection.dot")
	generator := visualization.NewDOTGenerator(snapshot(t))

	if err := generator.GenerateToFile(path); err != nil {
		t.Fatalf("Failed to write DOT file: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read DOT file: %v", err)
	}
	if !strings.Contains(string(content), "digraph Intersection") {
		t.Error("Written file should contain the graph declaration")
	}
}

func TestDOTDeterministicOutput(t *testing.T) {
	lanes := snapshot(t)
	first, err := visualization.NewDOTGenerator(lanes).Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}
	second, err := visualization.NewDOTGenerator(lanes).Generate()
	if err != nil {
		t.Fatalf("Failed to generate DOT: %v", err)
	}

	if first != second {
		t.Error("DOT output should be deterministic for the same snapshot")
	}
}
