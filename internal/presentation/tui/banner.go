package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner and the version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"    _         _                        _        ", "#818cf8"},
		{"   / \\  _   _| |_ ___  _ __ ___   __ _| |_ __ _ ", "#a78bfa"},
		{"  / _ \\| | | | __/ _ \\| '_ ` _ \\ / _` | __/ _` |", "#c084fc"},
		{" / ___ \\ |_| | || (_) | | | | | | (_| | || (_| |", "#e879f9"},
		{"/_/   \\_\\__,_|\\__\\___/|_| |_| |_|\\__,_|\\__\\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Foreground(p.Color("#fb7185")).Faint())
	}
	fmt.Fprintln(w)
}
