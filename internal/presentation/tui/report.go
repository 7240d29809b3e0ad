package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/internal/presentation/graph"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/muesli/termenv"
)

// StatusLine summarizes a session in one coloured line.
func StatusLine(r *strider.Report) string {
	p := termenv.ColorProfile()
	if r.Succeeded() {
		return termenv.String(fmt.Sprintf("✔ %s session finished in %s", r.Behavior, r.Finished.Sub(r.Started).Round(time.Millisecond))).
			Foreground(p.Color("#34d399")).String()
	}
	return termenv.String(fmt.Sprintf("✘ %s session failed: %s", r.Behavior, r.Error)).
		Foreground(p.Color("#f87171")).Bold().String()
}

// ReportMarkdown renders a session report as markdown.
func ReportMarkdown(r *strider.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session report\n\n")
	fmt.Fprintf(&b, "- **Behavior:** %s\n", r.Behavior)
	if r.LeaseID != "" {
		fmt.Fprintf(&b, "- **Lease:** `%s`\n", r.LeaseID)
	}
	fmt.Fprintf(&b, "- **Duration:** %s\n", r.Finished.Sub(r.Started).Round(time.Millisecond))
	if r.Succeeded() {
		fmt.Fprintf(&b, "- **Result:** success\n")
	} else {
		fmt.Fprintf(&b, "- **Result:** failed: %s\n", r.Error)
	}

	phases := make([]string, len(r.Phases))
	for i, ph := range r.Phases {
		phases[i] = "`" + string(ph) + "`"
	}
	fmt.Fprintf(&b, "\n## Phases\n\n%s\n", strings.Join(phases, " → "))

	if len(r.Steps) > 0 {
		fmt.Fprintf(&b, "\n## Steps\n\n| # | Kind | Outcome |\n|---|------|---------|\n")
		for i, s := range r.Steps {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, s.Step.Kind, outcomeCell(s.Outcome))
		}
	}

	if len(r.Artifacts) > 0 {
		fmt.Fprintf(&b, "\n## Artifacts\n\n| Kind | Name | Size | Path |\n|------|------|------|------|\n")
		for _, a := range r.Artifacts {
			name := a.Name
			if a.Degraded {
				name += " (raw)"
			}
			path := a.Path
			if !a.Persisted {
				path = "_not saved_"
			}
			fmt.Fprintf(&b, "| %s | %s | %dx%d | %s |\n", a.Kind, name, a.Width, a.Height, path)
		}
	}

	if len(r.CaptureErrors) > 0 {
		fmt.Fprintf(&b, "\n## Capture errors\n\n")
		for _, e := range r.CaptureErrors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

// ReportDocument is ReportMarkdown plus a Mermaid diagram of the phases reached.
// It is meant for files, since terminals do not render Mermaid.
func ReportDocument(r *strider.Report) string {
	diagram := graph.GenerateMermaid(&graph.Overlay{Visited: r.Phases, Failed: !r.Succeeded()})
	return ReportMarkdown(r) + "\n## Session diagram\n\n```mermaid\n" + diagram + "```\n"
}

func outcomeCell(o domain.MotionOutcome) string {
	if o == domain.Reached {
		return o.String()
	}
	return "**" + o.String() + "**"
}
