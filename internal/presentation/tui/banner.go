package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the shell banner to w, coloured when the terminal allows it.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Gradient from the TodoMVC header red to a muted rose.
	lines := []struct {
		text  string
		color string
	}{
		{"  _            _           ", "#af2f2f"},
		{" | |_ ___   __| | ___  ___ ", "#b83f3f"},
		{" | __/ _ \\ / _` |/ _ \\/ __|", "#c24f4f"},
		{" | || (_) | (_| | (_) \\__ \\", "#cc6060"},
		{"  \\__\\___/ \\__,_|\\___/|___/", "#d67171"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
