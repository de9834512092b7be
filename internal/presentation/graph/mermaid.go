package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// GraphOverlay contains run state to highlight on the graph.
type GraphOverlay struct {
	VisitedStates []domain.ControlState
	CurrentState  domain.ControlState
}

// GenerateMermaid produces a Mermaid flowchart of a definition's control
// states. Rules sharing an edge are merged into one label, one
// "read/write,move" entry per rule. Shapes:
// - Start: ((Circle))
// - Halt: (((Double circle)))
// - Default: [Rectangle]
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	halt := def.Halt()
	for _, state := range def.Table.States() {
		opener, closer := "[", "]"
		switch state {
		case halt:
			opener, closer = "(((", ")))"
		case def.Start:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(state)), opener, state, closer)
	}

	type edge struct{ from, to domain.ControlState }
	labels := make(map[edge][]string)
	var order []edge
	for _, r := range def.Table.Rules() {
		e := edge{from: r.State, to: r.Next}
		if _, ok := labels[e]; !ok {
			order = append(order, e)
		}
		labels[e] = append(labels[e], ruleLabel(r))
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].from != order[j].from {
			return order[i].from < order[j].from
		}
		return order[i].to < order[j].to
	})
	for _, e := range order {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(string(e.from)),
			strings.Join(labels[e], "<br/>"),
			sanitizeMermaidID(string(e.to)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, state := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(state))
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState)))
		}
	}

	return sb.String()
}

// OverlayFromHistory marks every state a run passed through.
func OverlayFromHistory(current *domain.MachineState, history []*domain.MachineState) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, h := range history {
		overlay.VisitedStates = append(overlay.VisitedStates, h.State)
	}
	if current != nil {
		overlay.CurrentState = current.State
	}
	return overlay
}

func ruleLabel(r domain.Rule) string {
	write := r.Symbol
	if sym, ok := r.Write.Symbol(); ok {
		write = sym
	}
	return fmt.Sprintf("%s/%s,%s", r.Symbol, write, r.Move)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
