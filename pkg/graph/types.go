package graph

import (
	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/layout"
)

// =============================================================================
// Graph - Model Serialization
// =============================================================================

// Graph is the serialized form of a model.
type Graph struct {
	Elements      []Element      `json:"elements" bson:"elements"`
	Relationships []Relationship `json:"relationships" bson:"relationships"`
	Warnings      []Warning      `json:"warnings,omitempty" bson:"warnings,omitempty"` // From the resolution that produced the model
}

// Warning is a serialized resolution warning. The references it names are
// gone from the model, so only its kind and description are kept.
type Warning struct {
	Kind    string `json:"kind" bson:"kind"`
	Message string `json:"message" bson:"message"`
}

// Element is a serialized model element.
type Element struct {
	ID          string              `json:"id" bson:"id"`
	Kind        string              `json:"kind" bson:"kind"`
	Name        string              `json:"name" bson:"name"`
	Alias       string              `json:"alias,omitempty" bson:"alias,omitempty"` // Informational; recomputed on load
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Location    string              `json:"location,omitempty" bson:"location,omitempty"`
	Parent      string              `json:"parent,omitempty" bson:"parent,omitempty"`
	Info        map[string][]string `json:"info,omitempty" bson:"info,omitempty"`
}

// Relationship is a serialized directed relationship.
type Relationship struct {
	ID          string `json:"id" bson:"id"`
	Source      string `json:"source" bson:"source"`
	Target      string `json:"target" bson:"target"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// =============================================================================
// Layout - Positioned View
// =============================================================================

// Layout is the serialized form of a laid-out render graph.
type Layout struct {
	View     string          `json:"view,omitempty" bson:"view,omitempty"`
	Settings layout.Settings `json:"settings" bson:"settings"`
	Width    float64         `json:"width" bson:"width"`
	Height   float64         `json:"height" bson:"height"`
	Nodes    []Node          `json:"nodes" bson:"nodes"`
	Edges    []Edge          `json:"edges" bson:"edges"`
}

// Node is a positioned node.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Label  *Text   `json:"label,omitempty" bson:"label,omitempty"`
	Kind   string  `json:"kind,omitempty" bson:"kind,omitempty"`
	X      float64 `json:"x" bson:"x"` // Center
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Shape     string  `json:"shape,omitempty" bson:"shape,omitempty"`
	Radius    float64 `json:"radius,omitempty" bson:"radius,omitempty"`
	Margin    float64 `json:"margin,omitempty" bson:"margin,omitempty"`
	LineWidth float64 `json:"line_width,omitempty" bson:"line_width,omitempty"`
	Fill      string  `json:"fill,omitempty" bson:"fill,omitempty"`
	Color     string  `json:"color,omitempty" bson:"color,omitempty"`
	URL       string  `json:"url,omitempty" bson:"url,omitempty"`
}

// Edge is a routed edge. Points are cubic Bézier control points.
type Edge struct {
	Source   string          `json:"source" bson:"source"`
	Target   string          `json:"target" bson:"target"`
	Label    *Text           `json:"label,omitempty" bson:"label,omitempty"`
	LabelPos *diagram.Point  `json:"label_pos,omitempty" bson:"label_pos,omitempty"`
	Points   []diagram.Point `json:"points" bson:"points"`

	SourceArrow string  `json:"source_arrow,omitempty" bson:"source_arrow,omitempty"`
	TargetArrow string  `json:"target_arrow,omitempty" bson:"target_arrow,omitempty"`
	LineWidth   float64 `json:"line_width,omitempty" bson:"line_width,omitempty"`
	Color       string  `json:"color,omitempty" bson:"color,omitempty"`
}

// Text is a label with its font.
type Text struct {
	Text     string  `json:"text" bson:"text"`
	FontName string  `json:"font,omitempty" bson:"font,omitempty"`
	FontSize float64 `json:"size,omitempty" bson:"size,omitempty"`
}
