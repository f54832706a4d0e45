package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/market"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

// maxAutoSteps bounds a headless game; a full default game takes a few
// hundred commands.
const maxAutoSteps = 20000

// autoPlayer is a simple policy: keep the pantry stocked for the recipes,
// cook once a day and go to bed early when tired.
type autoPlayer struct {
	cat *catalog.Catalog

	// per-period memory, reset when day or period changes
	day     int
	period  catalog.Period
	shopped bool
	cooked  bool
}

func (p *autoPlayer) next(gs *state.GameState) state.Command {
	if gs.Progress.Day != p.day || gs.Progress.Period != p.period {
		p.day, p.period = gs.Progress.Day, gs.Progress.Period
		p.shopped, p.cooked = false, false
	}

	prompt := gs.Prompt
	switch prompt.Phase {
	case state.PhaseEventChoice:
		for _, c := range prompt.Choices {
			if !c.Disabled {
				return state.Command{Type: state.CmdChooseOption, EventID: prompt.EventID, OptionID: c.ID}
			}
		}
	case state.PhaseLocation:
		if !p.shopped && hasChoice(prompt, "Market") {
			return state.Command{Type: state.CmdSelectLocation, Location: "Market"}
		}
		return state.Command{Type: state.CmdSelectLocation, Location: state.ChoiceSkip}
	case state.PhaseShopping:
		if !p.shopped {
			p.shopped = true
			if lines := p.shoppingList(gs); len(lines) > 0 {
				return state.Command{Type: state.CmdPurchase, Items: lines}
			}
		}
	case state.PhaseCooking:
		if !p.cooked {
			p.cooked = true
			for _, c := range prompt.Choices {
				if c.ID != state.ChoiceFinish && !c.Disabled {
					return state.Command{Type: state.CmdCook, Recipe: c.ID}
				}
			}
		}
	case state.PhaseEveningActivity:
		activity := state.ActivityNormalSleep
		if gs.Stats.Stamina < 50 {
			activity = state.ActivityEarlySleep
		}
		return state.Command{Type: state.CmdEveningActivity, Activity: activity}
	}
	return state.Command{Type: state.CmdAdvance}
}

// shoppingList buys what is missing for the first recipe this shop can
// complete and the wallet can cover.
func (p *autoPlayer) shoppingList(gs *state.GameState) []market.LineItem {
	have := make(map[string]int, len(gs.Inventory))
	for _, e := range gs.Inventory {
		have[e.Item] += e.Count
	}
	prices := make(map[string]int)
	for _, c := range gs.Prompt.Choices {
		if it, ok := p.cat.Item(c.ID); ok {
			prices[it.Name] = it.Price
		}
	}

	for _, r := range p.cat.Recipes {
		var lines []market.LineItem
		total := 0
		complete := true
		for _, ing := range r.Ingredients {
			missing := ing.Count - have[ing.Item]
			if missing <= 0 {
				continue
			}
			price, sold := prices[ing.Item]
			if !sold {
				complete = false
				break
			}
			lines = append(lines, market.LineItem{Item: ing.Item, Count: missing})
			total += price * missing
		}
		if complete && len(lines) > 0 && total <= gs.Stats.Money {
			return lines
		}
	}
	return nil
}

func hasChoice(p state.Prompt, id string) bool {
	for _, c := range p.Choices {
		if c.ID == id && !c.Disabled {
			return true
		}
	}
	return false
}

// autoplay runs a game to the end and returns the final state and the
// number of commands sent.
func autoplay(ctx context.Context, game Game) (*state.GameState, int, error) {
	resp, err := game.Start(ctx)
	if err != nil {
		return nil, 0, err
	}
	player := &autoPlayer{cat: game.Catalog()}
	gs := resp.State

	for steps := 1; steps <= maxAutoSteps; steps++ {
		if gs.IsOver() {
			return gs, steps, nil
		}
		cmd := player.next(gs)
		resp, err := game.Execute(ctx, cmd)
		if err != nil && cmd.Type != state.CmdAdvance {
			// The policy guessed wrong; move on instead of retrying.
			resp, err = game.Execute(ctx, state.Command{Type: state.CmdAdvance})
		}
		if err != nil {
			return gs, steps, fmt.Errorf("step %d (%s): %w", steps, cmd.Type, err)
		}
		gs = resp.State
	}
	return gs, maxAutoSteps, errors.New("game did not finish")
}
