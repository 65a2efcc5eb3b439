// Package visualization renders the lane state of a signal controller
// as Graphviz DOT, for dashboards and debugging snapshots.
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/anggasct/greenwave"
)

// DOTGenerator generates Graphviz DOT representations of an intersection
type DOTGenerator struct {
	lanes   map[string]greenwave.Lane
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowCounts    bool
	ShowWaits     bool
	RankDirection string // "TB", "LR", "BT", "RL"
	NodeShape     string
	HubLabel      string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowCounts:    true,
		ShowWaits:     true,
		RankDirection: "LR",
		NodeShape:     "box",
		HubLabel:      "intersection",
	}
}

// NewDOTGenerator creates a DOT generator over a lane state snapshot,
// as returned by Controller.Inspect
func NewDOTGenerator(lanes map[string]greenwave.Lane, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		lanes:   lanes,
		options: opts,
	}
}

// Generate creates a DOT representation of the intersection
func (g *DOTGenerator) Generate() (string, error) {
	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString(fmt.Sprintf("  \"%s\" [shape=circle style=\"filled\" fillcolor=lightgray];\n\n",
		g.options.HubLabel))

	dot.WriteString("  // Lanes\n")
	for _, id := range g.sortedLaneIDs() {
		g.generateLaneNode(&dot, g.lanes[id])
	}

	dot.WriteString("\n  // Approaches\n")
	for _, id := range g.sortedLaneIDs() {
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", id, g.options.HubLabel))
	}

	dot.WriteString("}\n")
	return dot.String(), nil
}

// generateLaneNode generates a DOT node for a single lane
func (g *DOTGenerator) generateLaneNode(dot *strings.Builder, lane greenwave.Lane) {
	label := lane.ID
	if g.options.ShowCounts {
		label += fmt.Sprintf("\\n%d vehicles", lane.Normal)
		if lane.Emergency > 0 {
			label += fmt.Sprintf(", %d emergency", lane.Emergency)
		}
	}
	if g.options.ShowWaits && lane.Wait > 0 {
		label += fmt.Sprintf("\\nwaiting %d cycles", lane.Wait)
	}

	dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
		lane.ID, fillColor(lane.Phase), label))
}

// sortedLaneIDs keeps the output deterministic across snapshots
func (g *DOTGenerator) sortedLaneIDs() []string {
	ids := make([]string, 0, len(g.lanes))
	for id := range g.lanes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fillColor maps a signal phase to a Graphviz color
func fillColor(phase greenwave.Phase) string {
	switch phase {
	case greenwave.Green:
		return "lightgreen"
	case greenwave.Yellow:
		return "lightyellow"
	default:
		return "lightcoral"
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(lanes map[string]greenwave.Lane, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(lanes, options...),
	}
}

// Generate creates an SVG representation of the intersection
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	// Use Graphviz dot command to convert DOT to SVG
	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG creates an SVG representation of the intersection
// This is a convenience method on DOTGenerator for compatibility
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
