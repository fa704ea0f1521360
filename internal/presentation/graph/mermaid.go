package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/igkernel/internal/runtime"
	"github.com/aretw0/igkernel/pkg/domain"
)

// Overlay marks live status on the diagram.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the state machine.
// It applies semantic styling:
// - None: ((Circle))
// - Quit: (((Double circle)))
// - States that accept every packet: ([Stadium])
// - Default: [Rectangle]
// States that send Start-Of-Frame carry the IG mode they report.
func GenerateMermaid(edges []runtime.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[domain.SystemState]bool)
	declare := func(s domain.SystemState) {
		if declared[s] {
			return
		}
		declared[s] = true
		info := runtime.Lookup(s)

		opener, closer := "[", "]"
		switch {
		case s == domain.StateNone:
			opener, closer = "((", "))"
		case s == domain.StateQuit:
			opener, closer = "(((", ")))"
		case !info.ShouldIgnoreNonIGCtrl:
			opener, closer = "([", "])"
		}

		label := s.String()
		if info.ShouldSendSOF {
			label = fmt.Sprintf("%s <br/> SOF: %s", label, info.IGMode)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", s, opener, label, closer)
	}

	for _, e := range edges {
		declare(e.From)
		declare(e.To)

		arrow := "-->"
		if e.Condition != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(e.Condition, "\"", "'"))
		}
		if e.To == domain.StateShutdown {
			// Quit preempts every other transition.
			arrow = "-. quit .->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.From, arrow, e.To)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}
