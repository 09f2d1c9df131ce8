package tui

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner outputs the ASCII art banner for arbor. It is suppressed when
// stdout is not a terminal, so piped output stays clean.
func PrintBanner(version string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	p := termenv.ColorProfile()
	// Green-to-teal gradient, one line per shade
	lines := []struct {
		text  string
		color string
	}{
		{`            _                `, "#4ade80"},
		{`   __ _ _ __| |__   ___  _ __ `, "#34d399"},
		{`  / _' | '__| '_ \ / _ \| '__|`, "#2dd4bf"},
		{` | (_| | |  | |_) | (_) | |   `, "#22d3ee"},
		{`  \__,_|_|  |_.__/ \___/|_|   `, "#38bdf8"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
	fmt.Println(termenv.String("  widget trees for the server  ·  " + version).Faint())
	fmt.Println()
}
