package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/strider/pkg/domain"
)

// Overlay contains what a finished session reached, to visualize on the diagram.
type Overlay struct {
	Visited []domain.Phase
	Failed  bool
}

var sessionPhases = []domain.Phase{
	domain.PhaseInit,
	domain.PhaseLeaseHeld,
	domain.PhasePoweredOn,
	domain.PhaseExecuting,
	domain.PhasePoweredOff,
	domain.PhaseLeaseReleased,
}

// teardown edges are taken when a phase fails.
var teardown = []struct {
	from, to domain.Phase
	label    string
}{
	{domain.PhaseLeaseHeld, domain.PhaseLeaseReleased, "power failure"},
	{domain.PhasePoweredOn, domain.PhasePoweredOff, "stand failure"},
	{domain.PhaseExecuting, domain.PhasePoweredOff, "abort"},
}

// GenerateMermaid produces a Mermaid flowchart of the session state machine.
// It applies semantic styling:
// - Init and LeaseReleased: ((Circle))
// - Executing: [[Subroutine]]
// - Default: [Rectangle]
// The last visited phase is styled as current, or as failed when the overlay says so.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, ph := range sessionPhases {
		opener, closer := "[", "]"
		switch ph {
		case domain.PhaseInit, domain.PhaseLeaseReleased:
			opener, closer = "((", "))"
		case domain.PhaseExecuting:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", ph, opener, ph, closer)
	}
	for i := 1; i < len(sessionPhases); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", sessionPhases[i-1], sessionPhases[i])
	}
	for _, t := range teardown {
		fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", t.from, t.label, t.to)
	}

	if overlay == nil || len(overlay.Visited) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

	seen := make(map[domain.Phase]bool)
	for _, ph := range overlay.Visited {
		if !seen[ph] {
			seen[ph] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", ph)
		}
	}
	last := overlay.Visited[len(overlay.Visited)-1]
	if overlay.Failed {
		fmt.Fprintf(&sb, "    class %s failed;\n", last)
	} else {
		fmt.Fprintf(&sb, "    class %s current;\n", last)
	}
	return sb.String()
}
