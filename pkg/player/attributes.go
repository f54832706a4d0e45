package player

import (
	"fmt"
	"math"
	"strings"
)

// Stat names one of the player's clamped attributes.
type Stat int

const (
	StatStamina Stat = iota
	StatHealth
	StatSatiety
	StatMood
	StatMoney
)

var statNames = map[Stat]string{
	StatStamina: "stamina",
	StatHealth:  "health",
	StatSatiety: "satiety",
	StatMood:    "mood",
	StatMoney:   "money",
}

func (s Stat) String() string {
	if name, ok := statNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stat(%d)", int(s))
}

// ParseStat converts a stat name (case-insensitive) to a Stat.
func ParseStat(name string) (Stat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range statNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stat: %q", name)
}

// Mode selects how Update interprets its value.
type Mode int

const (
	// ModeDelta adds the value to the current stat.
	ModeDelta Mode = iota
	// ModeAbsolute replaces the current stat.
	ModeAbsolute
)

// Thresholds configure when Warnings reports a stat as concerning.
type Thresholds struct {
	LowStamina int `yaml:"low_stamina" json:"low_stamina"`
	PoorHealth int `yaml:"poor_health" json:"poor_health"`
	VeryHungry int `yaml:"very_hungry" json:"very_hungry"`
	LowBudget  int `yaml:"low_budget" json:"low_budget"`
	BadMood    int `yaml:"bad_mood" json:"bad_mood"`
}

// Rules hold the ranges and labels used to clamp and describe attributes.
type Rules struct {
	StatMin    int            `yaml:"stat_min" json:"stat_min"`
	StatMax    int            `yaml:"stat_max" json:"stat_max"`
	MoodMin    int            `yaml:"mood_min" json:"mood_min"`
	MoodMax    int            `yaml:"mood_max" json:"mood_max"`
	MoodLabels map[int]string `yaml:"mood_labels" json:"mood_labels"`
	Thresholds Thresholds     `yaml:"thresholds" json:"thresholds"`
}

// UnknownMoodLabel is returned for a mood with no configured label.
const UnknownMoodLabel = "Unknown"

func DefaultRules() Rules {
	return Rules{
		StatMin: 0,
		StatMax: 100,
		MoodMin: 1,
		MoodMax: 5,
		MoodLabels: map[int]string{
			1: "Desperate",
			2: "Depressed",
			3: "Calm",
			4: "Happy",
			5: "Ecstatic",
		},
		Thresholds: Thresholds{
			LowStamina: 30,
			PoorHealth: 40,
			VeryHungry: 30,
			LowBudget:  100,
			BadMood:    2,
		},
	}
}

// Snapshot is a read-only view of the attributes.
type Snapshot struct {
	Stamina   int    `yaml:"stamina" json:"stamina"`
	Health    int    `yaml:"health" json:"health"`
	Satiety   int    `yaml:"satiety" json:"satiety"`
	Mood      int    `yaml:"mood" json:"mood"`
	MoodLabel string `yaml:"-" json:"mood_label,omitempty"`
	Money     int    `yaml:"money" json:"money"`
}

// Attributes is the player's stat block. Every mutation goes through Update,
// so each stat stays inside its configured range.
type Attributes struct {
	stamina int
	health  int
	satiety int
	mood    int
	money   int
	rules   Rules
}

// NewAttributes builds an attribute block from initial values, clamping each.
func NewAttributes(initial Snapshot, rules Rules) *Attributes {
	a := &Attributes{rules: rules}
	a.Update(StatStamina, initial.Stamina, ModeAbsolute)
	a.Update(StatHealth, initial.Health, ModeAbsolute)
	a.Update(StatSatiety, initial.Satiety, ModeAbsolute)
	a.Update(StatMood, initial.Mood, ModeAbsolute)
	a.Update(StatMoney, initial.Money, ModeAbsolute)
	return a
}

func (a *Attributes) Stamina() int { return a.stamina }
func (a *Attributes) Health() int  { return a.health }
func (a *Attributes) Satiety() int { return a.satiety }
func (a *Attributes) Mood() int    { return a.mood }
func (a *Attributes) Money() int   { return a.money }

// Get returns the current value of stat.
func (a *Attributes) Get(stat Stat) int {
	if f := a.field(stat); f != nil {
		return *f
	}
	return 0
}

func (a *Attributes) field(stat Stat) *int {
	switch stat {
	case StatStamina:
		return &a.stamina
	case StatHealth:
		return &a.health
	case StatSatiety:
		return &a.satiety
	case StatMood:
		return &a.mood
	case StatMoney:
		return &a.money
	}
	return nil
}

func (a *Attributes) limits(stat Stat) (lo, hi int) {
	switch stat {
	case StatMood:
		return a.rules.MoodMin, a.rules.MoodMax
	case StatMoney:
		return 0, math.MaxInt
	default:
		return a.rules.StatMin, a.rules.StatMax
	}
}

// Update applies value to stat as a delta or an absolute assignment and
// clamps the result. It returns the stored value. Unknown stats are ignored.
func (a *Attributes) Update(stat Stat, value int, mode Mode) int {
	f := a.field(stat)
	if f == nil {
		return 0
	}
	next := value
	if mode == ModeDelta {
		next = addSaturating(*f, value)
	}
	lo, hi := a.limits(stat)
	*f = max(lo, min(hi, next))
	return *f
}

func addSaturating(x, y int) int {
	if y > 0 && x > math.MaxInt-y {
		return math.MaxInt
	}
	if y < 0 && x < math.MinInt-y {
		return math.MinInt
	}
	return x + y
}

// ChangeMood shifts mood by delta and returns the mood before and after.
func (a *Attributes) ChangeMood(delta int) (before, after int) {
	before = a.mood
	after = a.Update(StatMood, delta, ModeDelta)
	return before, after
}

// MoodLabel describes the current mood.
func (a *Attributes) MoodLabel() string {
	return a.rules.Label(a.mood)
}

// Label returns the configured label for mood, or UnknownMoodLabel.
func (r Rules) Label(mood int) string {
	if label, ok := r.MoodLabels[mood]; ok {
		return label
	}
	return UnknownMoodLabel
}

// Warnings lists the stats that are past their thresholds, in a fixed order.
func (a *Attributes) Warnings() []string {
	t := a.rules.Thresholds
	var warnings []string
	if a.stamina < t.LowStamina {
		warnings = append(warnings, "Low Stamina")
	}
	if a.health < t.PoorHealth {
		warnings = append(warnings, "Poor Health")
	}
	if a.satiety < t.VeryHungry {
		warnings = append(warnings, "Very Hungry")
	}
	if a.money < t.LowBudget {
		warnings = append(warnings, "Low Budget")
	}
	if a.mood <= t.BadMood {
		warnings = append(warnings, "Bad Mood")
	}
	return warnings
}

func (a *Attributes) IsAlive() bool {
	return a.health > 0
}

func (a *Attributes) Rules() Rules {
	return a.rules
}

// SetRules switches to new ranges, labels and thresholds and clamps every
// stat into the new ranges.
func (a *Attributes) SetRules(r Rules) {
	a.rules = r
	for _, s := range []Stat{StatStamina, StatHealth, StatSatiety, StatMood, StatMoney} {
		a.Update(s, a.Get(s), ModeAbsolute)
	}
}

func (a *Attributes) Snapshot() Snapshot {
	return Snapshot{
		Stamina:   a.stamina,
		Health:    a.health,
		Satiety:   a.satiety,
		Mood:      a.mood,
		MoodLabel: a.MoodLabel(),
		Money:     a.money,
	}
}
