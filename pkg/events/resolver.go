package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/conditionals"
)

var ErrInvalidChoice = errors.New("invalid choice")

// NeutralWeight is the selection weight of every neutral event.
const NeutralWeight = 5

// Weight is the selection weight of an event of class at the given mood.
// Good events grow more likely as mood rises and bad events as it falls.
func Weight(class catalog.EventClass, mood int) int {
	switch class {
	case catalog.ClassGood:
		return mood * 2
	case catalog.ClassBad:
		return (6 - mood) * 2
	default:
		return NeutralWeight
	}
}

// Resolution is the outcome chosen for an event.
type Resolution struct {
	EventID  string         `json:"event_id"`
	OptionID string         `json:"option_id,omitempty"`
	Branch   int            `json:"branch"` // index of the weighted branch taken, -1 if none
	Result   catalog.Result `json:"result"`
}

// Resolver selects and resolves events from a catalog.
type Resolver struct {
	catalog   *catalog.Catalog
	rng       Rand
	evaluator *conditionals.Evaluator
	logger    *slog.Logger
}

func NewResolver(cat *catalog.Catalog, rng Rand, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog:   cat,
		rng:       rng,
		evaluator: conditionals.NewEvaluator(),
		logger:    logger,
	}
}

// SetCatalog swaps the catalog used for later lookups.
func (r *Resolver) SetCatalog(cat *catalog.Catalog) {
	r.catalog = cat
}

// CheckFixedEvent returns the fixed event scheduled for a day-of-month.
func (r *Resolver) CheckFixedEvent(dayOfMonth int) (catalog.FixedEvent, bool) {
	f, ok := r.catalog.FixedEventOn(dayOfMonth)
	if !ok {
		return catalog.FixedEvent{}, false
	}
	return f.Clone(), true
}

// CheckConditionalEvent returns the first conditional event of period whose
// trigger holds for view.
func (r *Resolver) CheckConditionalEvent(period catalog.Period, view conditionals.GameStateView) (catalog.Event, bool) {
	for _, ce := range r.catalog.ConditionalEvents {
		if ce.Event.Period != period {
			continue
		}
		ok, err := r.evaluator.EvaluateWhen(ce.When, view)
		if err != nil {
			r.logger.Warn("Conditional event trigger failed", "event_id", ce.Event.ID, "error", err)
			continue
		}
		if ok {
			return ce.Event.Clone(), true
		}
	}
	return catalog.Event{}, false
}

// SelectRandomEvent draws one random event of period, weighted by mood.
func (r *Resolver) SelectRandomEvent(period catalog.Period, mood int) (catalog.Event, bool) {
	candidates := r.catalog.RandomEventsFor(period)
	if len(candidates) == 0 {
		return catalog.Event{}, false
	}

	weights := make([]int, len(candidates))
	total := 0
	for i, e := range candidates {
		weights[i] = max(0, Weight(e.Class, mood))
		total += weights[i]
	}
	if total == 0 {
		return catalog.Event{}, false
	}

	draw := r.rng.IntN(total)
	for i, w := range weights {
		if draw < w {
			return candidates[i].Clone(), true
		}
		draw -= w
	}
	return candidates[len(candidates)-1].Clone(), true
}

// ResolveOutcome picks the result of event for the chosen option. Events
// without options resolve to their single result and take no option id.
func (r *Resolver) ResolveOutcome(event catalog.Event, optionID string) (Resolution, error) {
	res := Resolution{EventID: event.ID, OptionID: optionID, Branch: -1}

	if !event.HasOptions() {
		if optionID != "" {
			return Resolution{}, fmt.Errorf("%w: event %q has no options", ErrInvalidChoice, event.ID)
		}
		if event.Result != nil {
			res.Result = event.Result.Clone()
		}
		return res, nil
	}

	if _, ok := event.Option(optionID); !ok {
		return Resolution{}, fmt.Errorf("%w: %q is not an option of event %q", ErrInvalidChoice, optionID, event.ID)
	}

	outcome, ok := event.Results[optionID]
	if !ok {
		return res, nil
	}
	if !outcome.IsWeighted() {
		if outcome.Result != nil {
			res.Result = outcome.Result.Clone()
		}
		return res, nil
	}

	roll := r.rng.Float64()
	cumulative := 0.0
	for i, w := range outcome.Weighted {
		cumulative += w.Probability
		if roll <= cumulative {
			res.Branch = i
			res.Result = w.Result.Clone()
			return res, nil
		}
	}

	r.logger.Warn("Weighted outcome draw fell past the last branch",
		"event_id", event.ID,
		"option_id", optionID,
		"roll", roll,
		"total", cumulative)
	return res, nil
}

type fixedResolver func(r *Resolver, f catalog.FixedEvent, optionID string, mood int) (Resolution, error)

var fixedResolvers = map[catalog.FixedKind]fixedResolver{
	catalog.KindFeast:  resolveFeast,
	catalog.KindChoice: resolveChoice,
}

func resolveFeast(r *Resolver, f catalog.FixedEvent, optionID string, mood int) (Resolution, error) {
	if optionID != "" {
		return Resolution{}, fmt.Errorf("%w: event %q has no options", ErrInvalidChoice, f.Event.ID)
	}
	res := Resolution{EventID: f.Event.ID, Branch: -1}
	if f.Event.Result != nil {
		res.Result = f.Event.Result.Clone()
	}
	if f.MoodBonus != nil && mood >= f.MoodBonus.MinMood {
		res.Result = res.Result.Merge(f.MoodBonus.Result)
	}
	return res, nil
}

func resolveChoice(r *Resolver, f catalog.FixedEvent, optionID string, mood int) (Resolution, error) {
	return r.ResolveOutcome(f.Event, optionID)
}

// ResolveFixedOutcome resolves a fixed event through the handler for its kind.
func (r *Resolver) ResolveFixedOutcome(f catalog.FixedEvent, optionID string, mood int) (Resolution, error) {
	resolve, ok := fixedResolvers[f.Kind]
	if !ok {
		return Resolution{}, fmt.Errorf("unknown fixed event kind %q", f.Kind)
	}
	return resolve(r, f, optionID, mood)
}
