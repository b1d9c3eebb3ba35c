package commands

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const helpDivider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var titleCase = cases.Title(language.English)

// HelpHandlerFactory creates handlers that display command help.
// Config:
//   - command (optional): template naming a single command to describe
//   - title (optional): first line of the listing
//   - categories (optional): comma separated category order
//   - category_<name> (optional): heading for a category
//   - tips (optional): newline separated gameplay tips
type HelpHandlerFactory struct {
	commands storage.Storer[*Command]
	world    *game.WorldState
}

func NewHelpHandlerFactory(commands storage.Storer[*Command], world *game.WorldState) *HelpHandlerFactory {
	return &HelpHandlerFactory{commands: commands, world: world}
}

func (f *HelpHandlerFactory) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "command", Required: false},
			{Name: "title", Required: false},
			{Name: "categories", Required: false},
			{Name: "tips", Required: false},
		},
	}
}

func (f *HelpHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *HelpHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		if command := strings.TrimPrefix(cmdCtx.Config["command"], "/"); command != "" {
			return f.showCommand(cmdCtx.Actor.Id, command)
		}

		f.listCommands(cmdCtx.Actor.Id, cmdCtx.Config)
		return nil
	}, nil
}

// listCommands shows every command grouped by category, then tips and the seed shop.
func (f *HelpHandlerFactory) listCommands(charId string, config map[string]string) {
	title := config["title"]
	if title == "" {
		title = "🌱 Grow a Garden - Available Commands:"
	}
	f.world.Tell(charId, title, game.ColorSuccess)
	f.world.Tell(charId, helpDivider, game.ColorInfo)

	all := f.commands.GetAll()
	groups := make(map[string][]string)
	for id, cmd := range all {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], id)
	}

	for _, cat := range categoryOrder(config["categories"], groups) {
		label := config["category_"+cat]
		if label == "" {
			label = titleCase.String(cat) + " Commands:"
		}
		f.world.Tell(charId, label, game.ColorCash)

		ids := groups[cat]
		sort.Strings(ids)
		for _, id := range ids {
			cmd := all[id]
			line := "  " + cmd.Usage(id)
			if cmd.Description != "" {
				line += " - " + cmd.Description
			}
			f.world.Tell(charId, line, game.ColorInfo)
		}
	}

	if tips := splitLines(config["tips"]); len(tips) > 0 {
		f.world.Tell(charId, "💡 Gameplay Tips:", game.ColorCash)
		for _, tip := range tips {
			f.world.Tell(charId, "  • "+tip, game.ColorInfo)
		}
	}

	catalog := f.world.Catalog()
	f.world.Tell(charId, "🌱 Available Seeds:", game.ColorCash)
	for _, key := range catalog.Keys() {
		pt := catalog.Get(key)
		growth := int(math.Round(pt.GrowthTime().Seconds()))
		f.world.Tell(charId, fmt.Sprintf("  • %s: $%d, grows in %ds, sells for $%d", pt.Name, pt.Cost, growth, pt.SellPrice), pt.Color)
	}
}

// showCommand displays detailed help for a specific command.
func (f *HelpHandlerFactory) showCommand(charId, name string) error {
	name = strings.ToLower(name)
	cmd := f.commands.Get(name)
	if cmd == nil {
		return NewUserError(fmt.Sprintf("Command %q is unknown.", name))
	}

	f.world.Tell(charId, fmt.Sprintf("/%s: %s", name, cmd.Description), game.ColorHelp)
	f.world.Tell(charId, "Usage: "+cmd.Usage(name), game.ColorInfo)
	return nil
}

// categoryOrder lists the configured categories first, then the rest alphabetically.
func categoryOrder(configured string, groups map[string][]string) []string {
	var order []string
	seen := map[string]bool{}
	for _, cat := range strings.Split(configured, ",") {
		cat = strings.TrimSpace(cat)
		if _, ok := groups[cat]; ok && !seen[cat] {
			order = append(order, cat)
			seen[cat] = true
		}
	}

	var rest []string
	for cat := range groups {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
