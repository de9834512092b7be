package schema

// File is the on-disk shape of a machine definition.
type File struct {
	Name        string           `mapstructure:"name" yaml:"name" json:"name"`
	Description string           `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`
	Start       string           `mapstructure:"start" yaml:"start" json:"start"`
	Halt        string           `mapstructure:"halt" yaml:"halt" json:"halt"`
	Transitions []TransitionSpec `mapstructure:"transitions" yaml:"transitions" json:"transitions"`
}

// TransitionSpec is one row of the transition table.
type TransitionSpec struct {
	State string `mapstructure:"state" yaml:"state" json:"state"`
	Read  string `mapstructure:"read" yaml:"read" json:"read"`
	Next  string `mapstructure:"next" yaml:"next" json:"next"`
	Write string `mapstructure:"write" yaml:"write,omitempty" json:"write,omitempty"`
	Move  string `mapstructure:"move" yaml:"move" json:"move"`
}
