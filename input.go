package turing

import "github.com/aretw0/turing/pkg/domain"

// FilterInput keeps the '0' and '1' characters of text, in order.
// Blank is never typed by users; the engine injects it.
func FilterInput(text string) []domain.Symbol {
	cells := make([]domain.Symbol, 0, len(text))
	for _, r := range text {
		switch r {
		case '0':
			cells = append(cells, domain.Zero)
		case '1':
			cells = append(cells, domain.One)
		}
	}
	return cells
}
