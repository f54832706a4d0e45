package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/market"
	"github.com/jwebster45206/survival-kitchen/pkg/textfilter"
)

type CommandType string

const (
	CmdAdvance         CommandType = "advance"
	CmdChooseOption    CommandType = "choose_option"
	CmdSelectLocation  CommandType = "select_location"
	CmdPurchase        CommandType = "purchase"
	CmdCook            CommandType = "cook"
	CmdEveningActivity CommandType = "evening_activity"
)

// Command is a single player action. Only the fields relevant to Type are read.
type Command struct {
	Type     CommandType       `json:"type"`
	EventID  string            `json:"event_id,omitempty"`
	OptionID string            `json:"option_id,omitempty"`
	Location string            `json:"location,omitempty"`
	Item     string            `json:"item,omitempty"`
	Count    int               `json:"count,omitempty"`
	Items    []market.LineItem `json:"items,omitempty"`
	Recipe   string            `json:"recipe,omitempty"`
	Activity Activity          `json:"activity,omitempty"`
}

var advanceWords = map[string]bool{
	"continue": true, "c": true, "next": true, "ok": true,
	"leave": true, "back": true, "done": true, "finish": true,
}

var activityWords = map[string]Activity{
	"early":  ActivityEarlySleep,
	"normal": ActivityNormalSleep,
	"relax":  ActivityNormalSleep,
	"late":   ActivityStayUpLate,
	"stay":   ActivityStayUpLate,
}

// ParseCommand turns typed input into a Command for the given prompt.
// Numbers pick a choice from the prompt; words are matched loosely against
// catalog names so small typos still work.
func ParseCommand(input string, prompt Prompt, cat *catalog.Catalog) (Command, error) {
	text := textfilter.Normalize(input)
	if text == "" {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	if n, err := strconv.Atoi(text); err == nil {
		return choiceCommand(prompt, n)
	}

	if prompt.Phase == PhaseEventChoice {
		for _, c := range prompt.Choices {
			if c.ID == text || textfilter.Normalize(c.Text) == text {
				return Command{Type: CmdChooseOption, EventID: prompt.EventID, OptionID: c.ID}, nil
			}
		}
	}

	fields := strings.Fields(text)
	verb, rest := fields[0], strings.Join(fields[1:], " ")

	switch {
	case advanceWords[text]:
		return Command{Type: CmdAdvance}, nil
	case verb == "skip":
		if prompt.Phase == PhaseLocation {
			return Command{Type: CmdSelectLocation, Location: ChoiceSkip}, nil
		}
		return Command{Type: CmdAdvance}, nil
	case verb == "buy":
		return parseBuy(fields[1:], prompt, cat)
	case verb == "cook":
		name, ok := textfilter.Match(rest, recipeNames(cat))
		if !ok {
			return Command{}, fmt.Errorf("%w: %s", ErrUnknownRecipe, rest)
		}
		return Command{Type: CmdCook, Recipe: name}, nil
	case verb == "sleep" || verb == "relax" || verb == "stay":
		return parseActivity(verb, rest)
	case verb == "go" || verb == "visit":
		return parseLocation(rest, cat)
	}

	// Bare names of a location, an item or a recipe.
	switch prompt.Phase {
	case PhaseLocation:
		return parseLocation(text, cat)
	case PhaseShopping:
		return parseBuy(fields, prompt, cat)
	case PhaseCooking:
		if name, ok := textfilter.Match(text, recipeNames(cat)); ok {
			return Command{Type: CmdCook, Recipe: name}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, input)
}

func choiceCommand(prompt Prompt, n int) (Command, error) {
	if n < 1 || n > len(prompt.Choices) {
		return Command{}, fmt.Errorf("%w: no choice %d", ErrUnknownCommand, n)
	}
	choice := prompt.Choices[n-1]
	switch choice.ID {
	case ChoiceContinue, ChoiceLeave, ChoiceFinish:
		return Command{Type: CmdAdvance}, nil
	}

	switch prompt.Phase {
	case PhaseEventChoice:
		return Command{Type: CmdChooseOption, EventID: prompt.EventID, OptionID: choice.ID}, nil
	case PhaseLocation:
		return Command{Type: CmdSelectLocation, Location: choice.ID}, nil
	case PhaseShopping:
		return Command{Type: CmdPurchase, Item: choice.ID, Count: 1}, nil
	case PhaseCooking:
		return Command{Type: CmdCook, Recipe: choice.ID}, nil
	case PhaseEveningActivity:
		return Command{Type: CmdEveningActivity, Activity: Activity(choice.ID)}, nil
	default:
		return Command{Type: CmdAdvance}, nil
	}
}

// parseBuy reads "<item> [count]" against what the current shop sells.
func parseBuy(args []string, prompt Prompt, cat *catalog.Catalog) (Command, error) {
	count := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			count = n
			args = args[:len(args)-1]
		}
	}
	query := strings.Join(args, " ")
	if query == "" {
		return Command{}, fmt.Errorf("%w: buy what?", ErrUnknownCommand)
	}

	var names []string
	for _, c := range prompt.Choices {
		if c.ID != ChoiceLeave {
			names = append(names, c.ID)
		}
	}
	if len(names) == 0 {
		for _, it := range cat.Items {
			names = append(names, it.Name)
		}
	}
	name, ok := textfilter.Match(query, names)
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", market.ErrUnknownItem, query)
	}
	return Command{Type: CmdPurchase, Item: name, Count: count}, nil
}

func parseActivity(verb, rest string) (Command, error) {
	word := verb
	if verb == "sleep" {
		word = "normal"
		if rest != "" {
			word = strings.Fields(rest)[0]
		}
	}
	activity, ok := activityWords[word]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownActivity, rest)
	}
	return Command{Type: CmdEveningActivity, Activity: activity}, nil
}

func parseLocation(text string, cat *catalog.Catalog) (Command, error) {
	name, ok := textfilter.Match(text, cat.Locations())
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", market.ErrUnknownLocation, textfilter.Title(text))
	}
	return Command{Type: CmdSelectLocation, Location: name}, nil
}

func recipeNames(cat *catalog.Catalog) []string {
	names := make([]string, len(cat.Recipes))
	for i, r := range cat.Recipes {
		names[i] = r.Name
	}
	return names
}
