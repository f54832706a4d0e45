package catalog

import (
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/conditionals"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

// Period is one segment of the in-game day.
type Period string

const (
	PeriodMorning  Period = "morning"
	PeriodDaytime  Period = "daytime"
	PeriodShopping Period = "shopping"
	PeriodCooking  Period = "cooking"
	PeriodEvening  Period = "evening"
)

// Periods is the fixed daily cycle.
var Periods = []Period{PeriodMorning, PeriodDaytime, PeriodShopping, PeriodCooking, PeriodEvening}

// Title returns the display name of the period.
func (p Period) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// EventClass biases random selection toward or away from an event depending on mood.
type EventClass string

const (
	ClassGood    EventClass = "good"
	ClassBad     EventClass = "bad"
	ClassNeutral EventClass = "neutral"
)

// Location names where items are sold.
const (
	LocationMarket      = "Market"
	LocationConvenience = "Convenience Store"
	LocationRestaurant  = "Restaurant"
)

type Option struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

// Effects are stat deltas.
type Effects struct {
	Stamina int `yaml:"stamina,omitempty" json:"stamina,omitempty"`
	Mood    int `yaml:"mood,omitempty" json:"mood,omitempty"`
	Health  int `yaml:"health,omitempty" json:"health,omitempty"`
	Satiety int `yaml:"satiety,omitempty" json:"satiety,omitempty"`
	Money   int `yaml:"money,omitempty" json:"money,omitempty"`
}

func (e Effects) Empty() bool {
	return e == Effects{}
}

// Add returns the field-wise sum of e and o.
func (e Effects) Add(o Effects) Effects {
	return Effects{
		Stamina: e.Stamina + o.Stamina,
		Mood:    e.Mood + o.Mood,
		Health:  e.Health + o.Health,
		Satiety: e.Satiety + o.Satiety,
		Money:   e.Money + o.Money,
	}
}

// Scale multiplies every delta by n.
func (e Effects) Scale(n int) Effects {
	return Effects{
		Stamina: e.Stamina * n,
		Mood:    e.Mood * n,
		Health:  e.Health * n,
		Satiety: e.Satiety * n,
		Money:   e.Money * n,
	}
}

// Result is what happens to the player when an event resolves.
type Result struct {
	Effects    `yaml:",inline"`
	MoodSet    *int     `yaml:"mood_set,omitempty" json:"mood_set,omitempty"`
	Item       string   `yaml:"item,omitempty" json:"item,omitempty"`
	Message    string   `yaml:"message,omitempty" json:"message,omitempty"`
	StoryPages []string `yaml:"story_pages,omitempty" json:"story_pages,omitempty"`
}

func (r Result) IsEmpty() bool {
	return r.Effects.Empty() && r.MoodSet == nil && r.Item == "" && r.Message == "" && len(r.StoryPages) == 0
}

// Merge layers o on top of r. Deltas add up; scalar fields from o win when set.
func (r Result) Merge(o Result) Result {
	out := r.Clone()
	out.Effects = r.Effects.Add(o.Effects)
	if o.MoodSet != nil {
		v := *o.MoodSet
		out.MoodSet = &v
	}
	if o.Item != "" {
		out.Item = o.Item
	}
	if o.Message != "" {
		out.Message = o.Message
	}
	out.StoryPages = append(out.StoryPages, o.StoryPages...)
	return out
}

func (r Result) Clone() Result {
	out := r
	if r.MoodSet != nil {
		v := *r.MoodSet
		out.MoodSet = &v
	}
	if r.StoryPages != nil {
		out.StoryPages = append([]string(nil), r.StoryPages...)
	}
	return out
}

// Event is a random or conditional event definition.
type Event struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Period      Period             `yaml:"period" json:"period"`
	Class       EventClass         `yaml:"class,omitempty" json:"class,omitempty"`
	Description string             `yaml:"description" json:"description"`
	Options     []Option           `yaml:"options,omitempty" json:"options,omitempty"`
	Result      *Result            `yaml:"result,omitempty" json:"result,omitempty"`
	Results     map[string]Outcome `yaml:"results,omitempty" json:"results,omitempty"`
}

func (e Event) HasOptions() bool {
	return len(e.Options) > 0
}

func (e Event) Option(id string) (Option, bool) {
	for _, o := range e.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Clone returns a copy that shares no mutable state with e.
func (e Event) Clone() Event {
	out := e
	out.Options = append([]Option(nil), e.Options...)
	if e.Result != nil {
		r := e.Result.Clone()
		out.Result = &r
	}
	if e.Results != nil {
		out.Results = make(map[string]Outcome, len(e.Results))
		for k, v := range e.Results {
			out.Results[k] = v.Clone()
		}
	}
	return out
}

// FixedKind selects how a fixed event resolves.
type FixedKind string

const (
	// KindFeast resolves automatically with a base result plus a mood bonus.
	KindFeast FixedKind = "feast"
	// KindChoice resolves through one of the event's options.
	KindChoice FixedKind = "choice"
)

// MoodBonus is merged into a feast result when mood is at least MinMood.
type MoodBonus struct {
	MinMood int    `yaml:"min_mood" json:"min_mood"`
	Result  Result `yaml:"result" json:"result"`
}

// FixedEvent is scheduled for a calendar day-of-month.
type FixedEvent struct {
	Day         int        `yaml:"day" json:"day"`
	Kind        FixedKind  `yaml:"kind" json:"kind"`
	AutoResolve *bool      `yaml:"auto_resolve,omitempty" json:"auto_resolve,omitempty"`
	Event       Event      `yaml:"event" json:"event"`
	MoodBonus   *MoodBonus `yaml:"mood_bonus,omitempty" json:"mood_bonus,omitempty"`
}

// AutoResolves reports whether the event resolves without a player choice.
// Unset, feasts do and choices don't.
func (f FixedEvent) AutoResolves() bool {
	if f.AutoResolve != nil {
		return *f.AutoResolve
	}
	return f.Kind == KindFeast
}

func (f FixedEvent) Clone() FixedEvent {
	out := f
	out.Event = f.Event.Clone()
	if f.MoodBonus != nil {
		b := *f.MoodBonus
		b.Result = f.MoodBonus.Result.Clone()
		out.MoodBonus = &b
	}
	return out
}

// ConditionalEvent triggers when its When clause holds.
type ConditionalEvent struct {
	Event Event                        `yaml:"event" json:"event"`
	When  conditionals.ConditionalWhen `yaml:"when" json:"when"`
}

// Item is a purchasable ingredient or ready meal.
type Item struct {
	Name        string `yaml:"name" json:"name"`
	Price       int    `yaml:"price" json:"price"`
	Location    string `yaml:"location" json:"location"`
	ShelfLife   *int   `yaml:"shelf_life,omitempty" json:"shelf_life,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// MenuItem is a restaurant dish, eaten on purchase.
type MenuItem struct {
	Name        string  `yaml:"name" json:"name"`
	Price       int     `yaml:"price" json:"price"`
	Effects     Effects `yaml:"effects" json:"effects"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

type Ingredient struct {
	Item  string `yaml:"item" json:"item"`
	Count int    `yaml:"count" json:"count"`
}

type Recipe struct {
	Name        string       `yaml:"name" json:"name"`
	Ingredients []Ingredient `yaml:"ingredients" json:"ingredients"`
	Effects     Effects      `yaml:"effects" json:"effects"`
	StaminaCost int          `yaml:"stamina_cost" json:"stamina_cost"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
}

// Settings control the length and pacing of a game.
type Settings struct {
	TotalDays         int    `yaml:"total_days" json:"total_days"`
	StartYear         int    `yaml:"start_year" json:"start_year"`
	StartMonth        int    `yaml:"start_month" json:"start_month"`
	StartDay          int    `yaml:"start_day" json:"start_day"`
	SatietyDecay      *int   `yaml:"satiety_decay,omitempty" json:"satiety_decay,omitempty"`
	StarvationPenalty *int   `yaml:"starvation_penalty,omitempty" json:"starvation_penalty,omitempty"`
	Goal              string `yaml:"goal,omitempty" json:"goal,omitempty"`
}

const (
	DefaultSatietyDecay      = 8
	DefaultStarvationPenalty = 5
)

// Decay is the satiety lost each period. An explicit zero turns decay off.
func (s Settings) Decay() int {
	if s.SatietyDecay != nil {
		return *s.SatietyDecay
	}
	return DefaultSatietyDecay
}

// Starvation is the health lost each period spent at zero satiety.
func (s Settings) Starvation() int {
	if s.StarvationPenalty != nil {
		return *s.StarvationPenalty
	}
	return DefaultStarvationPenalty
}

// ForcedSleep is applied when the player collapses from exhaustion.
type ForcedSleep struct {
	Stamina     int `yaml:"stamina" json:"stamina"`
	MoodDelta   int `yaml:"mood_delta" json:"mood_delta"`
	HealthDelta int `yaml:"health_delta" json:"health_delta"`
}

// SleepRules hold the stamina recovered by each way of ending the day.
type SleepRules struct {
	Early  int         `yaml:"early" json:"early"`
	Normal int         `yaml:"normal" json:"normal"`
	Late   int         `yaml:"late" json:"late"`
	Forced ForcedSleep `yaml:"forced" json:"forced"`
}

// Catalog is the complete static game data. It is not mutated after load.
type Catalog struct {
	Name              string             `yaml:"name" json:"name"`
	Description       string             `yaml:"description,omitempty" json:"description,omitempty"`
	Settings          Settings           `yaml:"game" json:"game"`
	Rules             player.Rules       `yaml:"rules" json:"rules"`
	Initial           player.Snapshot    `yaml:"initial" json:"initial"`
	Sleep             SleepRules         `yaml:"sleep" json:"sleep"`
	Intro             []string           `yaml:"intro,omitempty" json:"intro,omitempty"`
	Items             []Item             `yaml:"items" json:"items"`
	Restaurant        []MenuItem         `yaml:"restaurant,omitempty" json:"restaurant,omitempty"`
	Recipes           []Recipe           `yaml:"recipes" json:"recipes"`
	FixedEvents       []FixedEvent       `yaml:"fixed_events,omitempty" json:"fixed_events,omitempty"`
	ConditionalEvents []ConditionalEvent `yaml:"conditional_events,omitempty" json:"conditional_events,omitempty"`
	RandomEvents      []Event            `yaml:"random_events,omitempty" json:"random_events,omitempty"`
}

func (c *Catalog) Item(name string) (Item, bool) {
	for _, it := range c.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

func (c *Catalog) MenuItem(name string) (MenuItem, bool) {
	for _, m := range c.Restaurant {
		if m.Name == name {
			return m, true
		}
	}
	return MenuItem{}, false
}

func (c *Catalog) Recipe(name string) (Recipe, bool) {
	for _, r := range c.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// ItemsAt lists the items sold at location in catalog order.
func (c *Catalog) ItemsAt(location string) []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Location == location {
			out = append(out, it)
		}
	}
	return out
}

// Locations lists the shopping destinations in first-seen order, with the
// restaurant last when it has a menu.
func (c *Catalog) Locations() []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range c.Items {
		if !seen[it.Location] {
			seen[it.Location] = true
			out = append(out, it.Location)
		}
	}
	if len(c.Restaurant) > 0 && !seen[LocationRestaurant] {
		out = append(out, LocationRestaurant)
	}
	return out
}

// ShelfLife maps item names to their shelf life in days. Items without a
// shelf_life never expire; a shelf life of 0 lasts only the day of purchase.
func (c *Catalog) ShelfLife() map[string]int {
	out := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		if it.ShelfLife != nil {
			out[it.Name] = *it.ShelfLife
		}
	}
	return out
}

// FixedEventOn returns the fixed event scheduled for a day-of-month.
func (c *Catalog) FixedEventOn(dayOfMonth int) (FixedEvent, bool) {
	for _, f := range c.FixedEvents {
		if f.Day == dayOfMonth {
			return f, true
		}
	}
	return FixedEvent{}, false
}

// RandomEventsFor lists the random events of a period in catalog order.
func (c *Catalog) RandomEventsFor(period Period) []Event {
	var out []Event
	for _, e := range c.RandomEvents {
		if e.Period == period {
			out = append(out, e)
		}
	}
	return out
}
