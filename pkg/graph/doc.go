// Package graph provides the JSON wire format for models and laid-out views.
//
// The format is used for the JSON export, the serve API, and the model and
// layout caches. It sits at the serialization boundary:
//
//   - [Graph]: elements and relationships of a [model.Model]
//   - [Layout]: a positioned [diagram.Graph] with its layout settings
//
// Use [FromModel]/[ToModel] and [FromDiagram]/[ToDiagram] to convert.
//
// # Graph Serialization
//
//	{
//	  "elements": [
//	    {"id": "5b0…", "kind": "project", "name": "shop"},
//	    {"id": "9c1…", "kind": "class", "name": "Cart", "parent": "5b0…"}
//	  ],
//	  "relationships": [
//	    {"id": "e4a…", "source": "9c1…", "target": "5b0…", "description": "uses"}
//	  ]
//	}
//
// Element identities are process-local. [ToModel] creates fresh elements and
// rewires parents and relationships through the identifiers in the document,
// so the loaded model has the same shape but new IDs. Typed payloads are not
// serialized.
//
// # Layout Serialization
//
// Layouts carry everything a writer needs to draw the view again without a
// layout engine: node boxes and styles, edge control points, label positions
// and the drawing bounds. Coordinates are points with the origin at the top
// left.
//
//	l := graph.FromDiagram("Overview", g)
//	data, _ := graph.MarshalLayout(l)
//	g2, _ := graph.ToDiagram(l)
//
// [model.Model]: github.com/matzehuels/archviews/pkg/model.Model
// [diagram.Graph]: github.com/matzehuels/archviews/pkg/render/diagram.Graph
package graph
