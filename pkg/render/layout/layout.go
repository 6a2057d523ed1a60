// Package layout chooses a layout strategy for a diagram from its shape.
//
// [Pick] is a pure function of node and edge counts:
//
//   - Small graphs (fewer than 200 nodes and fewer than 200 edges) use a
//     layered (hierarchical) layout.
//   - Everything else uses distance scaling (MDS-style) with both axis scale
//     factors set to min(nodes+400, 900).
//
// Edge bundling is requested when the graph is dense (at least 3 edges per
// node) or has more than 100 edges. An empty graph is valid and yields a
// layered layout without bundling.
package layout

import "fmt"

// Strategy names a layout algorithm family.
type Strategy string

const (
	// StrategyLayered ranks nodes into layers (Sugiyama style).
	StrategyLayered Strategy = "layered"
	// StrategyScaling places nodes by multidimensional distance scaling.
	StrategyScaling Strategy = "scaling"
)

// Routing names an edge routing mode.
type Routing string

const (
	RoutingDefault        Routing = "default"
	RoutingSpline         Routing = "spline"
	RoutingSplineBundling Routing = "spline-bundling"
)

// Heuristic thresholds.
const (
	LayeredThreshold  = 200
	BundlingDensity   = 3.0
	BundlingMaxEdges  = 100
	MinScale          = 400.0
	MaxScale          = 900.0
	DefaultEdgeSpread = 3.0
)

// Bundling holds edge-bundling parameters for the scaling strategy.
type Bundling struct {
	// EdgeSeparation is the margin, in points, kept around nodes while
	// routing bundled edges.
	EdgeSeparation float64 `json:"edge_separation"`
}

// DefaultBundling returns the bundling parameters used by [Pick].
func DefaultBundling() *Bundling {
	return &Bundling{EdgeSeparation: DefaultEdgeSpread}
}

// Settings is a fully parameterised layout request.
type Settings struct {
	Strategy Strategy  `json:"strategy"`
	Routing  Routing   `json:"routing"`
	Bundling *Bundling `json:"bundling,omitempty"`
	ScaleX   float64   `json:"scale_x,omitempty"`
	ScaleY   float64   `json:"scale_y,omitempty"`
}

// Bundled reports whether the settings request bundled edge routing.
func (s Settings) Bundled() bool { return s.Routing == RoutingSplineBundling }

func (s Settings) String() string {
	if s.Strategy == StrategyScaling {
		return fmt.Sprintf("%s/%s scale=%.0fx%.0f", s.Strategy, s.Routing, s.ScaleX, s.ScaleY)
	}
	return fmt.Sprintf("%s/%s", s.Strategy, s.Routing)
}

// Density returns edges per node, or 0 for an empty graph.
func Density(nodes, edges int) float64 {
	if nodes == 0 {
		return 0
	}
	return float64(edges) / float64(nodes)
}

// Bundle reports whether a graph of the given size should bundle its edges.
func Bundle(nodes, edges int) bool {
	return nodes != 0 && (Density(nodes, edges) >= BundlingDensity || edges > BundlingMaxEdges)
}

// Scale returns the axis scale factor for the scaling strategy: nodes+400,
// capped at 900.
func Scale(nodes int) float64 {
	return min(float64(nodes)+MinScale, MaxScale)
}

// Pick selects layout settings for a graph with the given node and edge counts.
func Pick(nodes, edges int) Settings {
	bundling := Bundle(nodes, edges)

	if nodes < LayeredThreshold && edges < LayeredThreshold {
		s := Settings{Strategy: StrategyLayered, Routing: RoutingDefault}
		if bundling {
			s.Routing = RoutingSplineBundling
		}
		return s
	}

	scale := Scale(nodes)
	s := Settings{
		Strategy: StrategyScaling,
		Routing:  RoutingSpline,
		ScaleX:   scale,
		ScaleY:   scale,
	}
	if bundling {
		s.Routing = RoutingSplineBundling
		s.Bundling = DefaultBundling()
	}
	return s
}
