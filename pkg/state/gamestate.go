package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

// Outcome is the terminal state of a game.
type Outcome string

const (
	OutcomePlaying Outcome = "playing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// Progress tracks where the game is in its calendar.
type Progress struct {
	Day         int            `json:"day"`          // 1-based, advanced only by sleep
	PeriodIndex int            `json:"period_index"` // index into catalog.Periods
	Period      catalog.Period `json:"period"`
	LowMoodDays int            `json:"low_mood_days"` // consecutive nights ending with mood <= bad-mood threshold
	Outcome     Outcome        `json:"outcome"`
}

// Phase is the kind of input the engine is waiting for.
type Phase string

const (
	PhaseContinue        Phase = "continue"
	PhaseEventChoice     Phase = "event_choice"
	PhaseLocation        Phase = "location"
	PhaseShopping        Phase = "shopping"
	PhaseCooking         Phase = "cooking"
	PhaseEveningActivity Phase = "evening_activity"
	PhaseGameOver        Phase = "game_over"
)

// Choice is one selectable answer to a prompt.
type Choice struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Disabled bool   `json:"disabled,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Prompt is what the renderer should show while the engine waits.
type Prompt struct {
	Phase    Phase    `json:"phase"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text"`
	EventID  string   `json:"event_id,omitempty"`
	Location string   `json:"location,omitempty"`
	Choices  []Choice `json:"choices,omitempty"`
}

// GameState is a point-in-time snapshot of a game, safe to serialize and
// hand to renderers.
type GameState struct {
	ID          uuid.UUID       `json:"id"`
	CatalogName string          `json:"catalog"`
	Date        string          `json:"date"`
	TotalDays   int             `json:"total_days"`
	Progress    Progress        `json:"progress"`
	Stats       player.Snapshot `json:"stats"`
	Warnings    []string        `json:"warnings,omitempty"`
	Inventory   []player.Entry  `json:"inventory"`
	Prompt      Prompt          `json:"prompt"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (gs *GameState) IsOver() bool {
	return gs.Progress.Outcome != OutcomePlaying
}

// Response is returned by every engine command.
type Response struct {
	Messages  []string   `json:"messages,omitempty"`
	Interlude []string   `json:"interlude,omitempty"` // narrative pages to show before the messages
	State     *GameState `json:"state"`
}

// GameStateView adapters

func (gs *GameState) GetPeriod() string   { return string(gs.Progress.Period) }
func (gs *GameState) GetDay() int         { return gs.Progress.Day }
func (gs *GameState) GetLowMoodDays() int { return gs.Progress.LowMoodDays }
func (gs *GameState) GetStats() map[string]int {
	return map[string]int{
		"stamina": gs.Stats.Stamina,
		"health":  gs.Stats.Health,
		"satiety": gs.Stats.Satiety,
		"mood":    gs.Stats.Mood,
		"money":   gs.Stats.Money,
	}
}
