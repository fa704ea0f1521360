package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner with the version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___ ____ _  __                    _ ", "#38bdf8"},
		{" |_ _/ ___| |/ /___ _ __ _ __   ___| |", "#22d3ee"},
		{"  | | |  _| ' // _ \\ '__| '_ \\ / _ \\ |", "#2dd4bf"},
		{"  | | |_| | . \\  __/ |  | | | |  __/ |", "#34d399"},
		{" |___\\____|_|\\_\\___|_|  |_| |_|\\___|_|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  CIGI image generator kernel "+version).Faint())
	fmt.Fprintln(w)
}
