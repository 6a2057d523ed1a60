package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestCacheHits(t *testing.T) {
	tests := []struct {
		info pipeline.CacheInfo
		want []string
	}{
		{pipeline.CacheInfo{}, nil},
		{pipeline.CacheInfo{AnalyzeHit: true}, []string{"model"}},
		{pipeline.CacheInfo{AnalyzeHit: true, LayoutHit: true, RenderHit: true}, []string{"model", "layout", "render"}},
	}
	for _, tt := range tests {
		if got := cacheHits(tt.info); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("cacheHits(%+v) = %v, want %v", tt.info, got, tt.want)
		}
	}
}

func TestPrintStats(t *testing.T) {
	out := captureStdout(t)

	printStats(4, 3, nil)
	printStats(4, 3, []string{"model", "layout"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	for _, want := range []string{"4 elements", "3 relationships", "fresh"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "cached model, layout") {
		t.Errorf("line %q should name the cached stages", lines[1])
	}
}

func TestPrintUnresolved(t *testing.T) {
	out := captureStdout(t)

	printUnresolved(nil, 5)
	if out.Len() != 0 {
		t.Errorf("nothing unresolved should print nothing, got %q", out.String())
	}

	printUnresolved([]string{"A -> X", "B -> Y", "C -> Z"}, 2)
	got := out.String()
	for _, want := range []string{"3 unresolved references dropped", "A -> X", "B -> Y", "and 1 more"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "C -> Z") {
		t.Errorf("lines past the limit should be summarised:\n%s", got)
	}
}

func TestKindStyle(t *testing.T) {
	if got := kindStyle(model.KindInterface).GetForeground(); got != colorPurple {
		t.Errorf("interface color = %v, want %v", got, colorPurple)
	}
	if got := kindStyle(model.Kind("database")).GetForeground(); got != colorGray {
		t.Errorf("unknown kind color = %v, want gray", got)
	}
}
