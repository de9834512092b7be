package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Report lists problems found in a definition.
// Errors make the definition unusable; warnings describe inputs that will be
// rejected or states that can never run.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the definition has no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into a single error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// Validate crawls the table from the start state and reports missing
// targets, dead ends and unreachable states.
func Validate(def *domain.Definition) *Report {
	report := &Report{}
	if def == nil || def.Table == nil {
		report.Errors = append(report.Errors, "definition has no transition table")
		return report
	}

	table := def.Table
	halt := table.Halt()

	if def.Start == "" {
		report.Errors = append(report.Errors, "start state is empty")
		return report
	}
	if def.Start != halt && !table.HasRulesFrom(def.Start) {
		report.Errors = append(report.Errors, fmt.Sprintf("start state '%s' has no transitions", def.Start))
	}

	visited := map[domain.ControlState]bool{}
	queue := []domain.ControlState{def.Start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if current == halt {
			continue
		}

		missing := make([]string, 0, len(domain.Alphabet))
		for _, sym := range domain.Alphabet {
			tr, ok := table.Lookup(current, sym)
			if !ok {
				missing = append(missing, sym.String())
				continue
			}
			if tr.Next != halt && !table.HasRulesFrom(tr.Next) {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("state '%s' is a dead end (reached from %s)", tr.Next, domain.Key{State: current, Symbol: sym}))
			}
			if !visited[tr.Next] {
				queue = append(queue, tr.Next)
			}
		}
		if len(missing) > 0 && len(missing) < len(domain.Alphabet) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("state '%s' rejects on %s", current, strings.Join(missing, ", ")))
		}
	}

	var unreachable []string
	for _, s := range table.States() {
		if !visited[s] && s != halt {
			unreachable = append(unreachable, string(s))
		}
	}
	sort.Strings(unreachable)
	for _, s := range unreachable {
		report.Warnings = append(report.Warnings, fmt.Sprintf("state '%s' is unreachable from '%s'", s, def.Start))
	}
	if !visited[halt] {
		report.Warnings = append(report.Warnings, fmt.Sprintf("halt state '%s' is unreachable from '%s'", halt, def.Start))
	}

	return report
}
