package commands

// ActorRef is the template-facing view of the player running a command.
type ActorRef struct {
	Id   string
	Name string
}

// InputContext is used to expand config templates that reference inputs.
type InputContext struct {
	Actor  ActorRef
	Inputs map[string]any // Parsed input values keyed by input name
}
