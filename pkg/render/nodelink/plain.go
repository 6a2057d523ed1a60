package nodelink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/archviews/pkg/render/diagram"
)

// ErrMalformedPlain is returned when Graphviz plain output cannot be parsed.
var ErrMalformedPlain = errors.New("malformed plain layout")

// ApplyPlain copies geometry from Graphviz "plain" output onto g.
//
// Plain coordinates are inches with the origin at the bottom left; they are
// converted to points with the origin at the top left. Edges are matched to
// output records by (tail, head) in insertion order. Edges Graphviz merged
// away under concentrate=true are drawn as straight lines between centers.
func ApplyPlain(g *diagram.Graph, plain []byte) error {
	pending := make(map[[2]string][]*diagram.Edge)
	for _, e := range g.Edges() {
		e.Points, e.LabelPos = nil, nil
		k := [2]string{e.Source, e.Target}
		pending[k] = append(pending[k], e)
	}

	var height float64
	placed := make(map[string]bool, g.NodeCount())

	sc := bufio.NewScanner(bytes.NewReader(plain))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
scan:
	for line := 1; sc.Scan(); line++ {
		f, err := fields(sc.Text())
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedPlain, line, err)
		}
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "graph":
			nums, err := floats(f, 2, 2)
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrMalformedPlain, line, err)
			}
			height = nums[1]
			g.Bounds = diagram.Rect{Width: nums[0] * pointsPerInch, Height: height * pointsPerInch}

		case "node":
			if len(f) < 6 {
				return fmt.Errorf("%w: line %d: short node record", ErrMalformedPlain, line)
			}
			n, ok := g.Node(f[1])
			if !ok {
				continue
			}
			nums, err := floats(f, 2, 4)
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrMalformedPlain, line, err)
			}
			n.Center = flip(nums[0], nums[1], height)
			n.Width = nums[2] * pointsPerInch
			n.Height = nums[3] * pointsPerInch
			placed[n.ID] = true

		case "edge":
			if err := applyEdge(f, height, pending); err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrMalformedPlain, line, err)
			}

		case "stop":
			break scan
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	for _, n := range g.Nodes() {
		if !placed[n.ID] {
			return fmt.Errorf("%w: node %q has no position", ErrMalformedPlain, n.ID)
		}
	}
	for _, e := range g.Edges() {
		if e.Points == nil {
			s, _ := g.Node(e.Source)
			t, _ := g.Node(e.Target)
			e.Points = []diagram.Point{s.Center, s.Center, t.Center, t.Center}
		}
	}
	g.LaidOut = true
	return nil
}

// applyEdge parses "edge tail head n x1 y1 .. xn yn [label xl yl] style color".
func applyEdge(f []string, height float64, pending map[[2]string][]*diagram.Edge) error {
	if len(f) < 4 {
		return errors.New("short edge record")
	}
	n, err := strconv.Atoi(f[3])
	if err != nil || n < 0 {
		return fmt.Errorf("bad point count %q", f[3])
	}
	if len(f) < 4+2*n {
		return errors.New("edge record has fewer points than declared")
	}
	nums, err := floats(f, 4, 2*n)
	if err != nil {
		return err
	}

	k := [2]string{f[1], f[2]}
	queue := pending[k]
	if len(queue) == 0 {
		return nil
	}
	e := queue[0]
	pending[k] = queue[1:]

	e.Points = make([]diagram.Point, n)
	for i := range n {
		e.Points[i] = flip(nums[2*i], nums[2*i+1], height)
	}

	// With a label the record carries 5 trailing fields, without it 2.
	rest := f[4+2*n:]
	if len(rest) >= 5 {
		pos, err := floats(rest, 1, 2)
		if err != nil {
			return err
		}
		p := flip(pos[0], pos[1], height)
		e.LabelPos = &p
	}
	return nil
}

func flip(x, y, height float64) diagram.Point {
	return diagram.Point{X: x * pointsPerInch, Y: (height - y) * pointsPerInch}
}

func floats(f []string, from, count int) ([]float64, error) {
	if len(f) < from+count {
		return nil, fmt.Errorf("want %d numbers after field %d, have %d fields", count, from, len(f))
	}
	out := make([]float64, count)
	for i := range count {
		v, err := strconv.ParseFloat(f[from+i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f[from+i])
		}
		out[i] = v
	}
	return out, nil
}

// fields splits a plain record on spaces, honouring double-quoted strings
// with backslash escapes.
func fields(line string) ([]string, error) {
	var (
		out []string
		cur strings.Builder
	)
	inQuote, escaped, started := false, false, false
	for _, r := range line {
		switch {
		case escaped:
			if r != '"' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		out = append(out, cur.String())
	}
	return out, nil
}
