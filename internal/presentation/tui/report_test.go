package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/internal/presentation/tui"
	"github.com/aretw0/strider/pkg/capture"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *strider.Report {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &strider.Report{
		LeaseID:  "lease-1",
		Behavior: domain.BehaviorCapture,
		Phases:   []domain.Phase{domain.PhaseInit, domain.PhaseLeaseHeld},
		Steps: []strider.StepResult{
			{Step: domain.MoveStep{Kind: domain.StepMove}, Outcome: domain.Timeout},
		},
		Artifacts: []capture.Artifact{
			{Kind: capture.KindBlend, Name: "back", Path: "results/depth_images/strider_back.png", Width: 640, Height: 480, Persisted: true},
			{Kind: capture.KindSingle, Name: "left_fisheye_image", Width: 64, Height: 48, Degraded: true},
		},
		CaptureErrors: []string{"failed to blend left: decode failed"},
		Started:       start,
		Finished:      start.Add(3 * time.Second),
		Error:         "session failed in phase executing: motion timeout",
	}
}

func TestReportMarkdown(t *testing.T) {
	md := tui.ReportMarkdown(sampleReport())

	assert.Contains(t, md, "# Session report")
	assert.Contains(t, md, "`lease-1`")
	assert.Contains(t, md, "- **Duration:** 3s")
	assert.Contains(t, md, "failed: session failed in phase executing")
	assert.Contains(t, md, "`init` → `lease_held`")
	assert.Contains(t, md, "| 1 | move | **timeout** |")
	assert.Contains(t, md, "| blend | back | 640x480 | results/depth_images/strider_back.png |")
	assert.Contains(t, md, "| single | left_fisheye_image (raw) | 64x48 | _not saved_ |")
	assert.Contains(t, md, "- failed to blend left: decode failed")
}

func TestReportDocument(t *testing.T) {
	doc := tui.ReportDocument(sampleReport())
	assert.Contains(t, doc, "```mermaid\ngraph TD\n")
	assert.Contains(t, doc, "class lease_held failed;")
}

func TestStatusLine(t *testing.T) {
	r := sampleReport()
	assert.Contains(t, tui.StatusLine(r), "capture session failed: session failed")

	r.Error = ""
	assert.Contains(t, tui.StatusLine(r), "capture session finished in 3s")
}

func TestRenderer(t *testing.T) {
	render, err := tui.NewRenderer(80)
	require.NoError(t, err)

	out, err := render(tui.ReportMarkdown(sampleReport()))
	require.NoError(t, err)
	assert.Contains(t, out, "Session report")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "|_____/")
	assert.Contains(t, buf.String(), "v1.2.3")
}
