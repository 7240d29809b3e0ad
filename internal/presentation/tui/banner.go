package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Strider ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"   _____ _        _     _           ", "#34d399"},
		{"  / ____| |      (_)   | |          ", "#2dd4bf"},
		{" | (___ | |_ _ __ _  __| | ___ _ __ ", "#22d3ee"},
		{"  \\___ \\| __| '__| |/ _` |/ _ \\ '__|", "#38bdf8"},
		{"  ____) | |_| |  | | (_| |  __/ |   ", "#60a5fa"},
		{" |_____/ \\__|_|  |_|\\__,_|\\___|_|   ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
