package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/archviews/pkg/model"
)

// =============================================================================
// Model ↔ Graph Conversion
// =============================================================================

// FromModel converts a model to its serialization format. Elements keep
// registration order. Relationships with an endpoint outside the model are
// left out, so serialize after [model.Model.ResolveNodes].
func FromModel(m *model.Model) Graph {
	elems := m.Elements()
	out := Graph{
		Elements:      make([]Element, 0, len(elems)),
		Relationships: make([]Relationship, 0, len(m.Relationships())),
	}
	for _, e := range elems {
		out.Elements = append(out.Elements, elementFromModel(e))
	}
	for _, r := range m.Relationships() {
		if !m.Contains(r.Source) || !m.Contains(r.Target) {
			continue
		}
		out.Relationships = append(out.Relationships, Relationship{
			ID:          r.ID().String(),
			Source:      r.Source.ID().String(),
			Target:      r.Target.ID().String(),
			Label:       r.Label,
			Description: r.Description,
		})
	}
	return out
}

func elementFromModel(e *model.Element) Element {
	el := Element{
		ID:          e.ID().String(),
		Kind:        string(e.Kind()),
		Name:        e.Name,
		Alias:       e.Alias(),
		Description: e.Description,
		Location:    string(e.Location),
	}
	if p := e.Parent(); p != nil {
		el.Parent = p.ID().String()
	}
	if info := e.Info(); len(info) > 0 {
		el.Info = make(map[string][]string, len(info))
		for k, vs := range info {
			el.Info[string(k)] = append([]string(nil), vs...)
		}
	}
	return el
}

// ToModel builds a fresh model from g. Parents and relationship endpoints are
// resolved through the document identifiers; an identifier that names no
// element is an error.
func ToModel(g Graph) (*model.Model, error) {
	m := model.New()
	byID := make(map[string]*model.Element, len(g.Elements))

	for _, el := range g.Elements {
		if el.ID == "" {
			return nil, fmt.Errorf("element %q has no id", el.Name)
		}
		if _, dup := byID[el.ID]; dup {
			return nil, fmt.Errorf("duplicate element id %s", el.ID)
		}
		e := model.NewElement(model.Kind(el.Kind), el.Name)
		e.Description = el.Description
		e.Location = model.Location(el.Location)
		for k, vs := range el.Info {
			e.Info().Add(model.InfoKind(k), vs...)
		}
		byID[el.ID] = e
		m.Add(e)
	}

	for _, el := range g.Elements {
		if el.Parent == "" {
			continue
		}
		p, ok := byID[el.Parent]
		if !ok {
			return nil, fmt.Errorf("element %s: unknown parent %s", el.ID, el.Parent)
		}
		byID[el.ID].SetParent(p)
	}

	for _, rj := range g.Relationships {
		src, ok := byID[rj.Source]
		if !ok {
			return nil, fmt.Errorf("relationship %s: unknown source %s", rj.ID, rj.Source)
		}
		tgt, ok := byID[rj.Target]
		if !ok {
			return nil, fmt.Errorf("relationship %s: unknown target %s", rj.ID, rj.Target)
		}
		r := model.NewRelationship(src, tgt, rj.Description)
		r.Label = rj.Label
		m.AddRelationships(r)
	}
	return m, nil
}

// WarningsFrom converts resolution warnings to their serialized form.
func WarningsFrom(warnings []model.Warning) []Warning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(warnings))
	for i, w := range warnings {
		out[i] = Warning{Kind: string(w.Kind), Message: w.String()}
	}
	return out
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a model to indented JSON.
func MarshalGraph(m *model.Model) ([]byte, error) {
	return Marshal(FromModel(m))
}

// Marshal encodes a graph document as indented JSON.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a graph document without building a model from it.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// WriteGraph writes a model as JSON to w.
func WriteGraph(m *model.Model, w io.Writer) error {
	return encode(FromModel(m), w)
}

func encode(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a model to a JSON file.
func WriteGraphFile(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(m, f)
}

// ReadGraph decodes a JSON graph from r into a new model.
func ReadGraph(r io.Reader) (*model.Model, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToModel(g)
}

// ReadGraphFile reads a model from a JSON file.
func ReadGraphFile(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
