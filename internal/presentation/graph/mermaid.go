package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the tree graph.
type Overlay struct {
	// Highlight is the id of a widget to emphasize (e.g. the target of the
	// last update).
	Highlight string
}

// TreeMermaid produces a Mermaid flowchart syntax string from a widget tree.
// It applies semantic styling:
// - Started widgets show their current state in the label
// - Hidden widgets: dashed border
// - Overlay highlight: filled emphasis
func TreeMermaid(root *domain.Widget, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var hidden []string
	var walk func(w *domain.Widget)
	walk = func(w *domain.Widget) {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(w.ID)

		label := fmt.Sprintf("%s (%s)", w.ID, w.Kind.Name())
		if w.CurrentState != "" {
			label = fmt.Sprintf("%s <br/> ▸ %s", label, w.CurrentState)
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, label))

		if !w.IsVisible() {
			hidden = append(hidden, safeID)
		}

		for _, c := range w.Children() {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(c.ID)))
			walk(c)
		}
	}
	walk(root)

	if len(hidden) > 0 {
		sb.WriteString("\n    classDef hidden stroke-dasharray: 5 5,color:#000;\n")
		for _, id := range hidden {
			sb.WriteString(fmt.Sprintf("    class %s hidden;\n", id))
		}
	}

	if overlay != nil && overlay.Highlight != "" {
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("\n    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Highlight)))
	}

	return sb.String()
}

// KindMermaid produces a Mermaid flowchart of one kind's state machine:
// - Start states: ((Circle))
// - Other states: [Rectangle]
// - Transition table entries: solid arrows
// - Event routes: dashed arrows from stadium-shaped event nodes
func KindMermaid(kind *domain.Kind) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	starts := make(map[string]bool)
	for _, s := range kind.StartStates() {
		starts[s] = true
	}

	for _, state := range kind.States() {
		safeID := sanitizeMermaidID(state)

		opener, closer := "[", "]"
		if starts[state] {
			opener, closer = "((", "))" // Circle
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, state, closer))

		if next, ok := kind.Next(state); ok {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(next)))
		}
	}

	events := kind.Events()
	types := make([]string, 0, len(events))
	for evt := range events {
		types = append(types, evt)
	}
	sort.Strings(types)
	for _, evt := range types {
		safeEvt := "evt_" + sanitizeMermaidID(evt)
		sb.WriteString(fmt.Sprintf("    %s([\"⚡ %s\"]) -.-> %s\n", safeEvt, evt, sanitizeMermaidID(events[evt])))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
