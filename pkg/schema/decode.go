package schema

import (
	"fmt"
	"os"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse decodes and compiles a YAML or JSON definition document.
func Parse(data []byte) (*domain.Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse definition: empty document")
	}
	return FromMap(raw)
}

// LoadFile reads and compiles the definition stored at path.
func LoadFile(path string) (*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// FromMap decodes a generic map, such as document frontmatter, and compiles it.
func FromMap(raw map[string]any) (*domain.Definition, error) {
	file, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Compile(file)
}

// Decode maps raw into a File without compiling it.
// Unknown keys are rejected.
func Decode(raw map[string]any) (File, error) {
	var file File
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &file,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return File{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return File{}, fmt.Errorf("failed to decode definition: %w", err)
	}
	return file, nil
}

// Compile turns a File into a Definition. Field errors are collected into an
// AggregateError; table construction errors (duplicate keys, rules leaving
// the halt state) are returned as is.
func Compile(file File) (*domain.Definition, error) {
	var errs []error
	require := func(key, value string) {
		if value == "" {
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
		}
	}
	require("name", file.Name)
	require("start", file.Start)
	require("halt", file.Halt)

	rules := make([]domain.Rule, 0, len(file.Transitions))
	for i, spec := range file.Transitions {
		rule, ruleErrs := compileRule(i, spec)
		errs = append(errs, ruleErrs...)
		if len(ruleErrs) == 0 {
			rules = append(rules, rule)
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}

	table, err := domain.NewTable(domain.ControlState(file.Halt), rules...)
	if err != nil {
		return nil, fmt.Errorf("machine %q: %w", file.Name, err)
	}

	return &domain.Definition{
		Name:        file.Name,
		Description: file.Description,
		Start:       domain.ControlState(file.Start),
		Table:       table,
	}, nil
}

func compileRule(i int, spec TransitionSpec) (domain.Rule, []error) {
	var errs []error
	field := func(name string) string {
		return fmt.Sprintf("transitions[%d].%s", i, name)
	}

	if spec.State == "" {
		errs = append(errs, &ValidationError{Key: field("state"), Reason: "required"})
	}
	if spec.Next == "" {
		errs = append(errs, &ValidationError{Key: field("next"), Reason: "required"})
	}

	read, err := domain.ParseSymbol(spec.Read)
	if err != nil {
		errs = append(errs, &ValidationError{Key: field("read"), Reason: "invalid symbol", Value: spec.Read, Err: domain.ErrInvalidSymbol})
	}
	write, err := domain.ParseWriteAction(spec.Write)
	if err != nil {
		errs = append(errs, &ValidationError{Key: field("write"), Reason: "invalid symbol", Value: spec.Write, Err: domain.ErrInvalidSymbol})
	}
	move, err := domain.ParseMove(spec.Move)
	if err != nil {
		errs = append(errs, &ValidationError{Key: field("move"), Reason: "invalid move", Value: spec.Move, Err: domain.ErrInvalidMove})
	}

	if len(errs) > 0 {
		return domain.Rule{}, errs
	}
	return domain.NewRule(domain.ControlState(spec.State), read, domain.ControlState(spec.Next), write, move), nil
}
