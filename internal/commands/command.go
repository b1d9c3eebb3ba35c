package commands

import (
	"fmt"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Text input (single word if rest=false, multi-word if rest=true)
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string    `json:"name"`
	Type     InputType `json:"type"`
	Required bool      `json:"required"`
	Rest     bool      `json:"rest"` // If true, captures all remaining input
}

// Command defines a chat command loaded from JSON.
type Command struct {
	Handler     string            `json:"handler"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Config      map[string]string `json:"config"` // Passed to the handler after template expansion
	Inputs      []InputSpec       `json:"inputs"`
}

func (c *Command) Validate() error {
	if c.Handler == "" {
		return fmt.Errorf("command handler not set")
	}

	seen := make(map[string]bool, len(c.Inputs))
	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d: name is required", i)
		}
		if input.Type == "" {
			return fmt.Errorf("input %q: type is required", input.Name)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			return fmt.Errorf("input %q: unknown type %q", input.Name, input.Type)
		}
		// Only the last input can have rest=true
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("input %q: only the last input can have rest=true", input.Name)
		}
		if seen[input.Name] {
			return fmt.Errorf("input %q: duplicate name", input.Name)
		}
		seen[input.Name] = true
	}

	return nil
}

// Usage renders "/name <required> [optional]".
func (c *Command) Usage(name string) string {
	usage := "/" + name
	for _, input := range c.Inputs {
		if input.Required {
			usage += fmt.Sprintf(" <%s>", input.Name)
		} else {
			usage += fmt.Sprintf(" [%s]", input.Name)
		}
	}
	return usage
}
