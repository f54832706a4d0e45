package conditionals

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionalWhen defines the conditions that must be met for a conditional event to trigger
type ConditionalWhen struct {
	Period         string `yaml:"period,omitempty" json:"period,omitempty"`                       // Must be this period
	MinLowMoodDays *int   `yaml:"min_low_mood_days,omitempty" json:"min_low_mood_days,omitempty"` // Low-mood streak >= this value
	MinDay         *int   `yaml:"min_day,omitempty" json:"min_day,omitempty"`                     // Day >= this value
	MaxDay         *int   `yaml:"max_day,omitempty" json:"max_day,omitempty"`                     // Day <= this value
	MinMood        *int   `yaml:"min_mood,omitempty" json:"min_mood,omitempty"`
	MaxMood        *int   `yaml:"max_mood,omitempty" json:"max_mood,omitempty"`
	Expr           string `yaml:"expr,omitempty" json:"expr,omitempty"` // Boolean expression over the game state
}

// GameStateView provides the minimal interface needed to evaluate conditionals
// This avoids import cycles with the state package
type GameStateView interface {
	GetPeriod() string
	GetDay() int
	GetLowMoodDays() int
	GetStats() map[string]int
}

// Env builds the variable set visible to When expressions.
func Env(view GameStateView) map[string]any {
	env := map[string]any{
		"period":        view.GetPeriod(),
		"day":           view.GetDay(),
		"low_mood_days": view.GetLowMoodDays(),
	}
	for k, v := range view.GetStats() {
		env[k] = v
	}
	return env
}

func sampleEnv() map[string]any {
	return map[string]any{
		"period":        "",
		"day":           0,
		"low_mood_days": 0,
		"stamina":       0,
		"health":        0,
		"satiety":       0,
		"mood":          0,
		"money":         0,
	}
}

// Evaluator compiles When expressions once and reuses the programs.
type Evaluator struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

func NewEvaluator() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

// Compile type-checks src against the game state variables.
func (e *Evaluator) Compile(src string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programs[src]; ok {
		return program, nil
	}
	program, err := expr.Compile(src, expr.Env(sampleEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", src, err)
	}
	e.programs[src] = program
	return program, nil
}

// EvaluateWhen checks if all conditions in a When clause are met
func (e *Evaluator) EvaluateWhen(when ConditionalWhen, gsView GameStateView) (bool, error) {
	// If no conditions specified, return false (conditional should not trigger)
	hasCondition := when.Period != "" ||
		when.MinLowMoodDays != nil ||
		when.MinDay != nil ||
		when.MaxDay != nil ||
		when.MinMood != nil ||
		when.MaxMood != nil ||
		when.Expr != ""

	if !hasCondition {
		return false, nil
	}

	if when.Period != "" && gsView.GetPeriod() != when.Period {
		return false, nil
	}

	if when.MinLowMoodDays != nil && gsView.GetLowMoodDays() < *when.MinLowMoodDays {
		return false, nil
	}

	day := gsView.GetDay()
	if when.MinDay != nil && day < *when.MinDay {
		return false, nil
	}
	if when.MaxDay != nil && day > *when.MaxDay {
		return false, nil
	}

	if when.MinMood != nil || when.MaxMood != nil {
		mood := gsView.GetStats()["mood"]
		if when.MinMood != nil && mood < *when.MinMood {
			return false, nil
		}
		if when.MaxMood != nil && mood > *when.MaxMood {
			return false, nil
		}
	}

	if when.Expr != "" {
		program, err := e.Compile(when.Expr)
		if err != nil {
			return false, err
		}
		out, err := expr.Run(program, Env(gsView))
		if err != nil {
			return false, fmt.Errorf("evaluate condition %q: %w", when.Expr, err)
		}
		ok, _ := out.(bool)
		return ok, nil
	}

	return true, nil
}
