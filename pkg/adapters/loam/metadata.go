package loam

// DefinitionMetadata is the frontmatter of a machine document.
// Transitions stay generic so the schema decoder can apply its weak typing
// (`read: 0` is a symbol, not a number).
type DefinitionMetadata struct {
	Name        string           `json:"name" mapstructure:"name"`
	Description string           `json:"description" mapstructure:"description"`
	Start       string           `json:"start" mapstructure:"start"`
	Halt        string           `json:"halt" mapstructure:"halt"`
	Transitions []map[string]any `json:"transitions" mapstructure:"transitions"`
}

func (m DefinitionMetadata) raw() map[string]any {
	transitions := make([]any, len(m.Transitions))
	for i, t := range m.Transitions {
		transitions[i] = t
	}
	return map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"start":       m.Start,
		"halt":        m.Halt,
		"transitions": transitions,
	}
}
