package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/turing/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// TableMarkdown describes a definition as a markdown document: a heading,
// its description and one table row per rule.
func TableMarkdown(def *domain.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}
	fmt.Fprintf(&sb, "Start `%s`, halt `%s`.\n\n", def.Start, def.Halt())
	sb.WriteString("| State | Read | Write | Move | Next |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, r := range def.Table.Rules() {
		write := "keep"
		if sym, ok := r.Write.Symbol(); ok {
			write = "`" + sym.String() + "`"
		}
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %s |\n", r.State, r.Symbol, write, r.Move, r.Next)
	}
	return sb.String()
}
