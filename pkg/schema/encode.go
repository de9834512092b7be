package schema

import (
	"github.com/aretw0/turing/pkg/domain"
	"gopkg.in/yaml.v3"
)

// FromDefinition flattens def into its file shape, rules in table order.
func FromDefinition(def *domain.Definition) File {
	file := File{
		Name:        def.Name,
		Description: def.Description,
		Start:       string(def.Start),
		Halt:        string(def.Halt()),
	}
	for _, r := range def.Table.Rules() {
		spec := TransitionSpec{
			State: string(r.State),
			Read:  r.Symbol.String(),
			Next:  string(r.Next),
			Move:  r.Move.String(),
		}
		if !r.Write.IsKeep() {
			spec.Write = r.Write.String()
		}
		file.Transitions = append(file.Transitions, spec)
	}
	return file
}

// Marshal encodes def as a YAML definition document.
func Marshal(def *domain.Definition) ([]byte, error) {
	return yaml.Marshal(FromDefinition(def))
}
