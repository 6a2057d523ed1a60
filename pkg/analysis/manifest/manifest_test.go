package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/errors"
)

const shopTOML = `
name = "shop"

[[project]]
name = "Shop.Api"
executable = true
references = ["Shop.Core"]
url = "https://git.example.com/shop/api"

  [[project.class]]
  name = "OrderController"
  source = "api/orders.go:12"
  uses = [
    { target = "IOrderStore", description = "reads orders" },
    { target = "Shop.Core/Order", description = "returns" },
    { target = "Stripe", description = "charges" },
  ]

[[project]]
name = "Shop.Core"

  [[project.class]]
  name = "Order"

  [[project.interface]]
  name = "IOrderStore"
  uses = [{ target = "Order" }]
`

const shopYAML = `
name: shop
projects:
  - name: Shop.Api
    executable: true
    references: [Shop.Core]
    classes:
      - name: OrderController
        uses:
          - target: IOrderStore
            description: reads orders
  - name: Shop.Core
    interfaces:
      - name: IOrderStore
`

func TestParseTOML(t *testing.T) {
	c, err := Parse([]byte(shopTOML), FormatTOML)
	require.NoError(t, err)

	projects := c.Projects(nil)
	require.Len(t, projects, 2)
	api, core := projects[0], projects[1]
	assert.Equal(t, "Shop.Api", api.Name)
	assert.True(t, api.Executable)
	assert.Equal(t, []*analysis.Project{core}, api.References)
	assert.Equal(t, "https://git.example.com/shop/api", api.URL)

	classes := c.Classes(projects, nil)
	require.Len(t, classes, 2)
	assert.Equal(t, "OrderController", classes[0].Name)
	assert.Equal(t, "api/orders.go:12", classes[0].Source)
	ifaces := c.Interfaces(projects, nil)
	require.Len(t, ifaces, 1)
	assert.Same(t, core, ifaces[0].Project)

	refs := c.RelationshipsFrom(classes[0])
	require.Len(t, refs, 3)
	assert.Same(t, ifaces[0], refs[0].Target, "plain names fall back to other projects")
	assert.Equal(t, "reads orders", refs[0].Description)
	assert.Same(t, classes[1], refs[1].Target, "qualified name")
	assert.Nil(t, refs[2].Target, "undeclared types are external")
	assert.Equal(t, "Stripe", refs[2].TargetName)
	assert.False(t, refs[2].Resolved())

	storeRefs := c.RelationshipsFrom(ifaces[0])
	require.Len(t, storeRefs, 1)
	assert.Same(t, classes[1], storeRefs[0].Target, "same project first")
}

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(shopYAML), FormatYAML)
	require.NoError(t, err)

	assert.Len(t, c.Projects(analysis.ExecutableProjects), 1)
	classes := c.Classes(c.Projects(nil), nil)
	require.Len(t, classes, 1)
	refs := c.RelationshipsFrom(classes[0])
	require.Len(t, refs, 1)
	require.NotNil(t, refs[0].Target)
	assert.Equal(t, "IOrderStore", refs[0].Target.Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"bad toml", FormatTOML, "[[project"},
		{"unknown yaml field", FormatYAML, "name: x\nprojekts: []\n"},
		{"unnamed project", FormatTOML, "[[project]]\npath = \"x\"\n"},
		{"duplicate project", FormatTOML, "[[project]]\nname = \"a\"\n[[project]]\nname = \"a\"\n"},
		{"unknown reference", FormatTOML, "[[project]]\nname = \"a\"\nreferences = [\"b\"]\n"},
		{"duplicate type", FormatYAML, "projects:\n  - name: a\n    classes: [{name: T}]\n    interfaces: [{name: T}]\n"},
		{"script project url", FormatTOML, "[[project]]\nname = \"a\"\nurl = \"javascript:alert(1)\"\n"},
		{"relative type url", FormatYAML, "projects:\n  - name: a\n    classes: [{name: T, url: docs/t.html}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"solution.toml": FormatTOML,
		"a/b/Shop.YAML": FormatYAML,
		"shop.yml":      FormatYAML,
		"go.mod":        "",
	}
	for path, want := range tests {
		got, ok := FormatOf(path)
		assert.Equal(t, want, got, path)
		assert.Equal(t, want != "", ok, path)
	}
	assert.True(t, Source.Detect("shop.toml"))
	assert.False(t, Source.Detect("main.go"))
	assert.True(t, Source.Matches("yaml"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.toml")
	require.NoError(t, os.WriteFile(path, []byte(shopTOML), 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, c.Projects(nil), 2)

	_, err = Open(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = Open(filepath.Join(dir, "shop.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
}

func TestFromProvider(t *testing.T) {
	c, err := Parse([]byte(shopTOML), FormatTOML)
	require.NoError(t, err)

	f := FromProvider("shop", c)
	for _, format := range []Format{FormatTOML, FormatYAML} {
		data, err := f.Encode(format)
		require.NoError(t, err)

		again, err := Parse(data, format)
		require.NoError(t, err, string(data))
		assert.Len(t, again.Projects(nil), 2)
		classes := again.Classes(again.Projects(nil), nil)
		require.Len(t, classes, 2)
		refs := again.RelationshipsFrom(classes[0])
		require.Len(t, refs, 3)
		assert.Equal(t, "Shop.Core/IOrderStore", refs[0].TargetName)
		assert.NotNil(t, refs[0].Target)
		assert.Nil(t, refs[2].Target)
	}
}
