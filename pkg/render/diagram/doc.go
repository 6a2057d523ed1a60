// Package diagram converts model views into positioned render graphs.
//
// # Pipeline
//
// [Converter.Convert] runs five steps on a [Source] (usually a workspace view):
//
//  1. Adapt: one [Node] per element keyed by its alias, labelled with the
//     escaped element name and linked to its first URL; one [Edge] per
//     relationship, labelled when the relationship has a label.
//  2. Decorate: a [NodeDecorator] and an [EdgeDecorator] style every node and
//     edge. The defaults draw square boxes with a 2pt border and an arrowhead
//     at the target.
//  3. Select: [layout.Pick] chooses strategy and routing from the node and
//     edge counts.
//  4. Lay out: the [Engine] computes node geometry and edge routes.
//  5. Restyle: labels are switched to the smaller post-layout font size and
//     optional [Pass] functions run.
//
// # Styling
//
// Decorators are plain interfaces. [NodeStyle], [EdgeStyle] and [KindStyles]
// cover common themes:
//
//	conv := diagram.NewConverter(engine, diagram.WithNodeDecorator(diagram.KindStyles{
//	    Default: diagram.DefaultNodeStyle,
//	    ByKind: map[model.Kind]diagram.NodeStyle{
//	        model.KindInterface: {Shape: diagram.ShapeBox, Radius: 6, BorderWidth: 1},
//	    },
//	}))
//
// # Errors
//
// Two distinct elements with the same alias cannot share a node, so Adapt
// fails with a [*DuplicateAliasError]. Empty views are valid and produce an
// empty graph.
package diagram
