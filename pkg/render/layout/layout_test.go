package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	tests := []struct {
		name         string
		nodes, edges int
		want         Settings
	}{
		{
			name:  "empty graph",
			nodes: 0, edges: 0,
			want: Settings{Strategy: StrategyLayered, Routing: RoutingDefault},
		},
		{
			name:  "sparse small",
			nodes: 50, edges: 40,
			want: Settings{Strategy: StrategyLayered, Routing: RoutingDefault},
		},
		{
			name:  "small with many edges",
			nodes: 50, edges: 160,
			want: Settings{Strategy: StrategyLayered, Routing: RoutingSplineBundling},
		},
		{
			name:  "small and dense",
			nodes: 10, edges: 30,
			want: Settings{Strategy: StrategyLayered, Routing: RoutingSplineBundling},
		},
		{
			name:  "triangle",
			nodes: 3, edges: 3,
			want: Settings{Strategy: StrategyLayered, Routing: RoutingDefault},
		},
		{
			name:  "many nodes",
			nodes: 300, edges: 50,
			want: Settings{Strategy: StrategyScaling, Routing: RoutingSpline, ScaleX: 700, ScaleY: 700},
		},
		{
			name:  "scale clamps at max",
			nodes: 1000, edges: 50,
			want: Settings{Strategy: StrategyScaling, Routing: RoutingSpline, ScaleX: 900, ScaleY: 900},
		},
		{
			name:  "many edges few nodes",
			nodes: 100, edges: 200,
			want: Settings{
				Strategy: StrategyScaling,
				Routing:  RoutingSplineBundling,
				Bundling: DefaultBundling(),
				ScaleX:   500,
				ScaleY:   500,
			},
		},
		{
			name:  "edges only",
			nodes: 0, edges: 250,
			want: Settings{Strategy: StrategyScaling, Routing: RoutingSpline, ScaleX: 400, ScaleY: 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pick(tt.nodes, tt.edges)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Pick(tt.nodes, tt.edges), "Pick must be deterministic")
		})
	}
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 0.0, Density(0, 0))
	assert.Equal(t, 0.0, Density(0, 10))
	assert.Equal(t, 0.8, Density(50, 40))
	assert.Equal(t, 1.0, Density(3, 3))
}

func TestBundle(t *testing.T) {
	assert.False(t, Bundle(0, 500))
	assert.False(t, Bundle(50, 40))
	assert.False(t, Bundle(50, 100))
	assert.True(t, Bundle(50, 101))
	assert.True(t, Bundle(10, 30))
}

func TestScale(t *testing.T) {
	assert.Equal(t, 400.0, Scale(0))
	assert.Equal(t, 700.0, Scale(300))
	assert.Equal(t, 900.0, Scale(500))
	assert.Equal(t, 900.0, Scale(1000))
}

func TestSettingsString(t *testing.T) {
	assert.Equal(t, "layered/default", Pick(3, 3).String())
	assert.Equal(t, "scaling/spline scale=700x700", Pick(300, 50).String())
	assert.True(t, Pick(50, 160).Bundled())
}
