package providers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"manifest", "manifest"},
		{"toml", "manifest"},
		{"go", "go"},
		{"golang", "go"},
		{"csharp", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Find(tt.name)
			if tt.want == "" {
				if got != nil {
					t.Errorf("Find(%q) = %s, want nil", tt.name, got.Name)
				}
				return
			}
			if got == nil || got.Name != tt.want {
				t.Errorf("Find(%q) = %v, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Detect("shop.yaml"); got == nil || got.Name != "manifest" {
		t.Errorf("Detect(shop.yaml) = %v, want manifest", got)
	}
	if got := Detect(dir); got == nil || got.Name != "go" {
		t.Errorf("Detect(module dir) = %v, want go", got)
	}
	if got := Detect(filepath.Join(dir, "README.md")); got != nil {
		t.Errorf("Detect(README.md) = %s, want nil", got.Name)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(All) || names[0] != "manifest" || names[1] != "go" {
		t.Errorf("Names() = %v", names)
	}
}
