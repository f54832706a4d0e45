package events

import (
	"fmt"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

// applier mutates attributes one key at a time and records a message per key.
type applier struct {
	attrs    *player.Attributes
	messages []string
}

func (a *applier) say(format string, args ...any) {
	a.messages = append(a.messages, fmt.Sprintf(format, args...))
}

func (a *applier) stamina(v int) {
	if v == 0 {
		return
	}
	a.attrs.Update(player.StatStamina, v, player.ModeDelta)
	a.say("Stamina %s", signed(v))
}

// mood reports only a change of label.
func (a *applier) mood(v int) {
	if v == 0 {
		return
	}
	rules := a.attrs.Rules()
	before, after := a.attrs.ChangeMood(v)
	if rules.Label(before) != rules.Label(after) {
		a.say("Mood: %s -> %s", rules.Label(before), rules.Label(after))
	}
}

func (a *applier) moodSet(v *int) {
	if v == nil {
		return
	}
	rules := a.attrs.Rules()
	before := a.attrs.Mood()
	after := a.attrs.Update(player.StatMood, *v, player.ModeAbsolute)
	a.say("Mood: %s -> %s", rules.Label(before), rules.Label(after))
}

func (a *applier) health(v int) {
	if v == 0 {
		return
	}
	a.attrs.Update(player.StatHealth, v, player.ModeDelta)
	a.say("Health %s", signed(v))
}

func (a *applier) satiety(v int) {
	if v == 0 {
		return
	}
	a.attrs.Update(player.StatSatiety, v, player.ModeDelta)
	a.say("Satiety %s", signed(v))
}

func (a *applier) money(v int) {
	if v == 0 {
		return
	}
	a.attrs.Update(player.StatMoney, v, player.ModeDelta)
	a.say("%s", FormatMoney(v))
}

// ApplyResult applies result to the player and returns one message per
// effect, in the order stamina, mood, mood-set, health, satiety, money,
// item, message. Story pages are returned separately for the renderer.
func ApplyResult(result catalog.Result, attrs *player.Attributes, inv *player.Inventory, day int) (messages, pages []string) {
	a := &applier{attrs: attrs}
	a.stamina(result.Stamina)
	a.mood(result.Mood)
	a.moodSet(result.MoodSet)
	a.health(result.Health)
	a.satiety(result.Satiety)
	a.money(result.Money)

	if result.Item != "" {
		inv.Add(result.Item, 1, day)
		a.say("Obtained: %s", result.Item)
	}
	if result.Message != "" {
		a.messages = append(a.messages, result.Message)
	}
	if len(result.StoryPages) > 0 {
		pages = append([]string(nil), result.StoryPages...)
	}
	return a.messages, pages
}

// ApplyEffects applies stat deltas in the same key order as ApplyResult.
func ApplyEffects(e catalog.Effects, attrs *player.Attributes) []string {
	a := &applier{attrs: attrs}
	a.stamina(e.Stamina)
	a.mood(e.Mood)
	a.health(e.Health)
	a.satiety(e.Satiety)
	a.money(e.Money)
	return a.messages
}

func signed(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// FormatMoney renders a money delta as "Money +$N" or "Money -$N".
func FormatMoney(delta int) string {
	if delta < 0 {
		return fmt.Sprintf("Money -$%d", -delta)
	}
	return fmt.Sprintf("Money +$%d", delta)
}
