package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/conditionals"
)

// ErrInvalidCatalog is wrapped by every ValidationError.
var ErrInvalidCatalog = errors.New("invalid catalog")

const probabilityTolerance = 1e-6

// ValidationError lists every problem found in a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

var validPeriods = map[Period]bool{
	PeriodMorning:  true,
	PeriodDaytime:  true,
	PeriodShopping: true,
	PeriodCooking:  true,
	PeriodEvening:  true,
}

var validClasses = map[EventClass]bool{
	ClassGood:    true,
	ClassBad:     true,
	ClassNeutral: true,
}

// Validate checks cross references and value ranges.
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Name == "" {
		add("name is required")
	}
	if c.Settings.TotalDays <= 0 {
		add("game.total_days must be positive")
	}
	if c.Settings.StartMonth < 1 || c.Settings.StartMonth > 12 {
		add("game.start_month must be 1-12")
	}
	if c.Settings.Decay() < 0 || c.Settings.Starvation() < 0 {
		add("game.satiety_decay and game.starvation_penalty must not be negative")
	}
	if c.Rules.StatMin >= c.Rules.StatMax {
		add("rules.stat_min must be below rules.stat_max")
	}
	if c.Rules.MoodMin >= c.Rules.MoodMax {
		add("rules.mood_min must be below rules.mood_max")
	}

	items := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		switch {
		case it.Name == "":
			add("items[%d]: name is required", i)
		case items[it.Name]:
			add("items[%d]: duplicate item %q", i, it.Name)
		}
		items[it.Name] = true
		if it.Price < 0 {
			add("item %q: price must not be negative", it.Name)
		}
		if it.Location == "" {
			add("item %q: location is required", it.Name)
		}
		if it.Location == LocationRestaurant {
			add("item %q: restaurant dishes belong in the restaurant menu", it.Name)
		}
		if it.ShelfLife != nil && *it.ShelfLife < 0 {
			add("item %q: shelf_life must not be negative", it.Name)
		}
	}

	menu := make(map[string]bool, len(c.Restaurant))
	for i, m := range c.Restaurant {
		if m.Name == "" || menu[m.Name] {
			add("restaurant[%d]: missing or duplicate name %q", i, m.Name)
		}
		menu[m.Name] = true
		if m.Price < 0 {
			add("menu item %q: price must not be negative", m.Name)
		}
	}

	recipes := make(map[string]bool, len(c.Recipes))
	for i, r := range c.Recipes {
		if r.Name == "" || recipes[r.Name] {
			add("recipes[%d]: missing or duplicate name %q", i, r.Name)
		}
		recipes[r.Name] = true
		if len(r.Ingredients) == 0 {
			add("recipe %q: needs at least one ingredient", r.Name)
		}
		if r.StaminaCost < 0 {
			add("recipe %q: stamina_cost must not be negative", r.Name)
		}
		for _, ing := range r.Ingredients {
			if !items[ing.Item] {
				add("recipe %q: unknown ingredient %q", r.Name, ing.Item)
			}
			if ing.Count <= 0 {
				add("recipe %q: ingredient %q count must be positive", r.Name, ing.Item)
			}
		}
	}

	checkResult := func(where string, r Result) {
		if r.Item != "" && !items[r.Item] {
			add("%s: unknown item %q", where, r.Item)
		}
		if r.MoodSet != nil && (*r.MoodSet < c.Rules.MoodMin || *r.MoodSet > c.Rules.MoodMax) {
			add("%s: mood_set %d is out of range", where, *r.MoodSet)
		}
	}

	eventIDs := make(map[string]bool)
	checkEvent := func(where string, e Event) {
		if e.ID == "" {
			add("%s: id is required", where)
		} else if eventIDs[e.ID] {
			add("%s: duplicate event id %q", where, e.ID)
		}
		eventIDs[e.ID] = true
		if !validPeriods[e.Period] {
			add("%s: invalid period %q", where, e.Period)
		}
		if e.Class != "" && !validClasses[e.Class] {
			add("%s: invalid class %q", where, e.Class)
		}
		if e.Result != nil {
			checkResult(where, *e.Result)
		}
		var seen []string
		for _, o := range e.Options {
			if o.ID == "" || slices.Contains(seen, o.ID) {
				add("%s: missing or duplicate option id %q", where, o.ID)
			}
			seen = append(seen, o.ID)
		}
		for optID, outcome := range e.Results {
			if _, ok := e.Option(optID); !ok {
				add("%s: result for unknown option %q", where, optID)
			}
			if outcome.IsWeighted() {
				for _, w := range outcome.Weighted {
					if w.Probability < 0 || w.Probability > 1 {
						add("%s: option %q probability %v out of range", where, optID, w.Probability)
					}
					checkResult(where, w.Result)
				}
				if total := outcome.TotalProbability(); math.Abs(total-1) > probabilityTolerance {
					add("%s: option %q probabilities sum to %v, want 1", where, optID, total)
				}
			} else if outcome.Result != nil {
				checkResult(where, *outcome.Result)
			}
		}
	}

	for i, e := range c.RandomEvents {
		where := fmt.Sprintf("random_events[%d]", i)
		checkEvent(where, e)
		if e.Period == PeriodShopping || e.Period == PeriodCooking {
			add("%s: random events are not drawn during %s", where, e.Period)
		}
		for _, o := range e.Options {
			if _, ok := e.Results[o.ID]; !ok {
				add("%s: option %q has no result", where, o.ID)
			}
		}
	}

	days := make(map[int]bool)
	for i, f := range c.FixedEvents {
		where := fmt.Sprintf("fixed_events[%d]", i)
		if f.Day < 1 || f.Day > 31 {
			add("%s: day %d must be a day of month", where, f.Day)
		}
		if days[f.Day] {
			add("%s: duplicate fixed event on day %d", where, f.Day)
		}
		days[f.Day] = true
		checkEvent(where, f.Event)
		if _, ok := knownKinds[f.Kind]; !ok {
			add("%s: unknown kind %q", where, f.Kind)
		}
		switch f.Kind {
		case KindFeast:
			if f.Event.Result == nil {
				add("%s: feast needs a result", where)
			}
			if f.Event.HasOptions() {
				add("%s: feast takes no options", where)
			}
			if !f.AutoResolves() {
				add("%s: feast must auto-resolve", where)
			}
			if f.MoodBonus != nil {
				checkResult(where, f.MoodBonus.Result)
			}
		case KindChoice:
			if !f.Event.HasOptions() {
				add("%s: choice needs options", where)
			}
			if f.AutoResolves() {
				add("%s: choice events cannot auto-resolve", where)
			}
			for _, o := range f.Event.Options {
				if _, ok := f.Event.Results[o.ID]; !ok {
					add("%s: option %q has no result", where, o.ID)
				}
			}
		}
	}

	eval := conditionals.NewEvaluator()
	for i, ce := range c.ConditionalEvents {
		where := fmt.Sprintf("conditional_events[%d]", i)
		checkEvent(where, ce.Event)
		if ce.When.Period != "" && ce.When.Period != string(ce.Event.Period) {
			add("%s: when.period %q does not match event period %q", where, ce.When.Period, ce.Event.Period)
		}
		if ce.When.Expr != "" {
			if _, err := eval.Compile(ce.When.Expr); err != nil {
				add("%s: %v", where, err)
			}
		}
		for _, o := range ce.Event.Options {
			if _, ok := ce.Event.Results[o.ID]; !ok {
				add("%s: option %q has no result", where, o.ID)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// knownKinds lists the closed set of fixed event kinds.
var knownKinds = map[FixedKind]bool{
	KindFeast:  true,
	KindChoice: true,
}
