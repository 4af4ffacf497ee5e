package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

var graphFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.Format("dot"),
}

// TreeGraph holds a tree laid out as a Graphviz graph. Close releases it.
type TreeGraph struct {
	viz   *graphviz.Graphviz
	graph *cgraph.Graph
}

// DrawTree builds a graph with one box per leaf and one ellipse per split.
// featureNames may be nil; valueLabel formats leaf values and may be nil.
func DrawTree(t *tree.Tree, featureNames []string, valueLabel func(float64) string) (*TreeGraph, error) {
	if t == nil || len(t.Nodes) == 0 {
		return nil, errors.NewValueError("DrawTree", "tree has no nodes")
	}
	if valueLabel == nil {
		valueLabel = func(v float64) string { return fmt.Sprintf("%.4g", v) }
	}
	op := "<"
	if t.Inclusive {
		op = "<="
	}

	viz := graphviz.New()
	graph, err := viz.Graph()
	if err != nil {
		return nil, errors.Wrap(err, "create graph")
	}
	tg := &TreeGraph{viz: viz, graph: graph}

	var draw func(i int, parent *cgraph.Node, edge string) error
	draw = func(i int, parent *cgraph.Node, edge string) error {
		n := &t.Nodes[i]
		node, err := graph.CreateNode(fmt.Sprint(i))
		if err != nil {
			return err
		}
		if parent != nil {
			e, err := graph.CreateEdge("", parent, node)
			if err != nil {
				return err
			}
			e.SetLabel(edge)
		}
		if n.IsLeaf() {
			node.Set("label", fmt.Sprintf("%s\nsamples=%d", valueLabel(n.Value), n.Samples))
			node.Set("shape", "box")
			return nil
		}
		node.Set("label", fmt.Sprintf("%s %s %.4g\nsamples=%d", tree.FeatureName(featureNames, n.Feature), op, n.Threshold, n.Samples))
		if err := draw(n.Left, node, "yes"); err != nil {
			return err
		}
		return draw(n.Right, node, "no")
	}
	if err := draw(0, nil, ""); err != nil {
		tg.Close()
		return nil, errors.Wrap(err, "draw tree")
	}
	return tg, nil
}

// Render writes the graph in the given format: png, svg, jpg or dot.
func (tg *TreeGraph) Render(w io.Writer, format string) error {
	f, ok := graphFormats[strings.ToLower(format)]
	if !ok {
		return errors.NewValidationError("format", "must be png, svg, jpg or dot", format)
	}
	return errors.Wrap(tg.viz.Render(tg.graph, f, w), "render tree graph")
}

// Close frees the graph.
func (tg *TreeGraph) Close() error {
	if err := tg.graph.Close(); err != nil {
		return err
	}
	return tg.viz.Close()
}

// RenderTree draws t into path, picking the format from the extension.
func RenderTree(t *tree.Tree, featureNames []string, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	f, ok := graphFormats[strings.ToLower(format)]
	if !ok {
		return errors.NewValidationError("format", "must be png, svg, jpg or dot", format)
	}
	tg, err := DrawTree(t, featureNames, nil)
	if err != nil {
		return err
	}
	defer tg.Close()
	return errors.Wrapf(tg.viz.RenderFilename(tg.graph, f, path), "render %s", path)
}
