package state

import (
	"testing"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cat := catalog.Default()

	eventPrompt := Prompt{
		Phase:   PhaseEventChoice,
		EventID: "storm_warning",
		Choices: []Choice{{ID: "lock", Text: "Lock doors and windows"}, {ID: "go_out", Text: "Go outside"}},
	}
	locationPrompt := Prompt{
		Phase: PhaseLocation,
		Choices: []Choice{
			{ID: catalog.LocationMarket, Text: catalog.LocationMarket},
			{ID: catalog.LocationConvenience, Text: catalog.LocationConvenience},
			{ID: ChoiceSkip, Text: "Skip Shopping"},
		},
	}
	shopPrompt := Prompt{
		Phase:    PhaseShopping,
		Location: catalog.LocationMarket,
		Choices: []Choice{
			{ID: "Instant Noodles"}, {ID: "Egg"}, {ID: "Tomato"}, {ID: ChoiceLeave},
		},
	}
	cookPrompt := Prompt{
		Phase:   PhaseCooking,
		Choices: []Choice{{ID: "Boiled Noodles"}, {ID: ChoiceFinish}},
	}
	eveningPrompt := Prompt{
		Phase: PhaseEveningActivity,
		Choices: []Choice{
			{ID: string(ActivityEarlySleep)}, {ID: string(ActivityNormalSleep)}, {ID: string(ActivityStayUpLate)},
		},
	}
	continuePrompt := Prompt{Phase: PhaseContinue, Choices: []Choice{{ID: ChoiceContinue}}}

	tests := []struct {
		name   string
		input  string
		prompt Prompt
		want   Command
	}{
		{"continue word", "Continue", continuePrompt, Command{Type: CmdAdvance}},
		{"continue number", "1", continuePrompt, Command{Type: CmdAdvance}},
		{"event option by number", "2", eventPrompt, Command{Type: CmdChooseOption, EventID: "storm_warning", OptionID: "go_out"}},
		{"event option by id", "lock", eventPrompt, Command{Type: CmdChooseOption, EventID: "storm_warning", OptionID: "lock"}},
		{"event option by text", "go outside", eventPrompt, Command{Type: CmdChooseOption, EventID: "storm_warning", OptionID: "go_out"}},
		{"location by number", "2", locationPrompt, Command{Type: CmdSelectLocation, Location: catalog.LocationConvenience}},
		{"location by name", "convenience", locationPrompt, Command{Type: CmdSelectLocation, Location: catalog.LocationConvenience}},
		{"go to location", "go market", continuePrompt, Command{Type: CmdSelectLocation, Location: catalog.LocationMarket}},
		{"skip shopping", "skip", locationPrompt, Command{Type: CmdSelectLocation, Location: ChoiceSkip}},
		{"skip elsewhere", "skip", continuePrompt, Command{Type: CmdAdvance}},
		{"buy with count", "buy egg 6", shopPrompt, Command{Type: CmdPurchase, Item: "Egg", Count: 6}},
		{"buy with typo", "buy instant nodles", shopPrompt, Command{Type: CmdPurchase, Item: "Instant Noodles", Count: 1}},
		{"bare item in shop", "tomato 2", shopPrompt, Command{Type: CmdPurchase, Item: "Tomato", Count: 2}},
		{"shop number", "3", shopPrompt, Command{Type: CmdPurchase, Item: "Tomato", Count: 1}},
		{"leave shop", "4", shopPrompt, Command{Type: CmdAdvance}},
		{"cook", "cook clay pot", cookPrompt, Command{Type: CmdCook, Recipe: "Clay Pot Rice"}},
		{"bare recipe in kitchen", "boiled noodles", cookPrompt, Command{Type: CmdCook, Recipe: "Boiled Noodles"}},
		{"finish cooking", "2", cookPrompt, Command{Type: CmdAdvance}},
		{"sleep early", "sleep early", eveningPrompt, Command{Type: CmdEveningActivity, Activity: ActivityEarlySleep}},
		{"sleep defaults to normal", "sleep", eveningPrompt, Command{Type: CmdEveningActivity, Activity: ActivityNormalSleep}},
		{"relax", "relax", eveningPrompt, Command{Type: CmdEveningActivity, Activity: ActivityNormalSleep}},
		{"stay up late", "stay up late", eveningPrompt, Command{Type: CmdEveningActivity, Activity: ActivityStayUpLate}},
		{"evening by number", "3", eveningPrompt, Command{Type: CmdEveningActivity, Activity: ActivityStayUpLate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.input, tt.prompt, cat)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	cat := catalog.Default()
	shop := Prompt{Phase: PhaseShopping, Choices: []Choice{{ID: "Egg"}, {ID: ChoiceLeave}}}

	tests := []struct {
		name    string
		input   string
		prompt  Prompt
		wantErr error
	}{
		{"empty", "  ", Prompt{}, ErrUnknownCommand},
		{"choice out of range", "9", shop, ErrUnknownCommand},
		{"gibberish", "dance wildly", Prompt{Phase: PhaseContinue}, ErrUnknownCommand},
		{"unknown recipe", "cook pizza", Prompt{Phase: PhaseCooking}, ErrUnknownRecipe},
		{"unknown item", "buy caviar", shop, market.ErrUnknownItem},
		{"unknown location", "go mall", Prompt{Phase: PhaseLocation}, market.ErrUnknownLocation},
		{"unknown sleep", "sleep sideways", Prompt{Phase: PhaseEveningActivity}, ErrUnknownActivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.input, tt.prompt, cat)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
