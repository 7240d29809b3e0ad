package graph_test

import (
	"testing"

	"github.com/aretw0/strider/internal/presentation/graph"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		overlay     *graph.Overlay
		contains    []string
		notContains []string
	}{
		{
			name: "Shapes and edges",
			contains: []string{
				"graph TD\n",
				`init(("init"))`,
				`executing[["executing"]]`,
				`powered_on["powered_on"]`,
				"executing --> powered_off",
				`executing -. "abort" .-> powered_off`,
				`lease_held -. "power failure" .-> lease_released`,
			},
			notContains: []string{"classDef"},
		},
		{
			name: "Completed session",
			overlay: &graph.Overlay{Visited: []domain.Phase{
				domain.PhaseInit, domain.PhaseLeaseHeld, domain.PhaseLeaseReleased,
			}},
			contains: []string{
				"class init visited;",
				"class lease_held visited;",
				"class lease_released current;",
			},
			notContains: []string{"class powered_on visited;"},
		},
		{
			name: "Failed session",
			overlay: &graph.Overlay{
				Visited: []domain.Phase{domain.PhaseInit, domain.PhaseLeaseHeld, domain.PhaseLeaseHeld},
				Failed:  true,
			},
			contains:    []string{"class lease_held failed;"},
			notContains: []string{"current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.overlay)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
		})
	}
}
