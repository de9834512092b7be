package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the turing banner in a cold-to-warm gradient.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct{ text, color string }{
		{" _____           _             ", "#38bdf8"},
		{"|_   _|   _ _ __(_)_ __   __ _ ", "#60a5fa"},
		{"  | || | | | '__| | '_ \\ / _` |", "#818cf8"},
		{"  | || |_| | |  | | | | | (_| |", "#a78bfa"},
		{"  |_| \\__,_|_|  |_|_| |_|\\__, |", "#c084fc"},
		{"                         |___/ ", "#e879f9"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
