package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-garden/internal/storage"
)

// CommandFunc is the signature for compiled command functions.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) error

// CommandContext is what a compiled command receives at run time.
type CommandContext struct {
	Actor  ActorRef
	Inputs map[string]any
	// Config values with input templates already expanded.
	Config map[string]string
}

// ConfigRequirement names a config key a handler reads.
type ConfigRequirement struct {
	Name     string
	Required bool
}

// HandlerSpec describes the config a handler factory expects.
type HandlerSpec struct {
	Config []ConfigRequirement
}

// HandlerFactory creates CommandFuncs from command configurations.
type HandlerFactory interface {
	// Spec returns the config keys the handler reads, or nil for none.
	Spec() *HandlerSpec
	// ValidateConfig validates handler specific config rules beyond Spec.
	ValidateConfig(config map[string]string) error
	Create() (CommandFunc, error)
}

// compiledCommand holds a command that's been validated and compiled.
type compiledCommand struct {
	cmd     *Command
	cmdFunc CommandFunc
}

type Handler struct {
	store     storage.Storer[*Command]
	factories map[string]HandlerFactory
	compiled  map[string]*compiledCommand
}

func NewHandler(c storage.Storer[*Command]) *Handler {
	return &Handler{
		store:     c,
		factories: make(map[string]HandlerFactory),
		compiled:  make(map[string]*compiledCommand),
	}
}

// RegisterFactory registers a handler factory by name.
// The name must match the "handler" field in command JSON definitions.
func (h *Handler) RegisterFactory(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("handler factory cannot be nil")
	}
	if _, exists := h.factories[name]; exists {
		return fmt.Errorf("handler factory %q already registered", name)
	}
	h.factories[name] = factory
	return nil
}

// CompileAll compiles all commands from the store.
// Call this after all handler factories have been registered.
func (h *Handler) CompileAll() error {
	for id, cmd := range h.store.GetAll() {
		err := h.compile(id, cmd)
		if err != nil {
			return fmt.Errorf("compiling command %q: %w", id, err)
		}
	}
	return nil
}

func (h *Handler) compile(id string, cmd *Command) error {
	factory, ok := h.factories[cmd.Handler]
	if !ok {
		return fmt.Errorf("unknown handler %q", cmd.Handler)
	}

	if spec := factory.Spec(); spec != nil {
		for _, req := range spec.Config {
			if req.Required && cmd.Config[req.Name] == "" {
				return fmt.Errorf("validating config: %s is required", req.Name)
			}
		}
	}

	if err := factory.ValidateConfig(cmd.Config); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	cmdFunc, err := factory.Create()
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	h.compiled[strings.ToLower(id)] = &compiledCommand{
		cmd:     cmd,
		cmdFunc: cmdFunc,
	}
	return nil
}

// Exec runs one line of player input such as "/buy carrot". Blank lines are ignored.
func (h *Handler) Exec(ctx context.Context, actor ActorRef, line string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return nil
	}

	cmdName := strings.ToLower(fields[0])
	compiled, ok := h.compiled[cmdName]
	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", fields[0]))
	}

	inputs, err := h.parseInputs(compiled.cmd.Inputs, fields[1:])
	if err != nil {
		return err
	}

	config, err := expandConfig(compiled.cmd.Config, &InputContext{Actor: actor, Inputs: inputs})
	if err != nil {
		return fmt.Errorf("command %q: %w", cmdName, err)
	}

	return compiled.cmdFunc(ctx, &CommandContext{
		Actor:  actor,
		Inputs: inputs,
		Config: config,
	})
}

// parseInputs validates raw words against input specs. Optional string
// inputs that were not given are set to "" so templates never render "<no value>".
func (h *Handler) parseInputs(specs []InputSpec, rawArgs []string) (map[string]any, error) {
	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(fmt.Sprintf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs)))
	}

	inputs := make(map[string]any, len(specs))
	argIndex := 0

	for i := range specs {
		spec := &specs[i]

		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(fmt.Sprintf("Missing required parameter: %s.", spec.Name))
			}
			if spec.Type == InputTypeString {
				inputs[spec.Name] = ""
			}
			continue
		}

		var raw string
		if spec.Rest {
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := h.parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}
		inputs[spec.Name] = value
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func (h *Handler) parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown parameter type %q", inputType)
	}
}
