package events

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (s *scriptedRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// viewStub implements conditionals.GameStateView
type viewStub struct {
	period      string
	day         int
	lowMoodDays int
	mood        int
}

func (v viewStub) GetPeriod() string   { return v.period }
func (v viewStub) GetDay() int         { return v.day }
func (v viewStub) GetLowMoodDays() int { return v.lowMoodDays }
func (v viewStub) GetStats() map[string]int {
	return map[string]int{"mood": v.mood}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWeight(t *testing.T) {
	tests := []struct {
		mood                int
		good, bad, neutral int
	}{
		{mood: 5, good: 10, bad: 2, neutral: 5},
		{mood: 1, good: 2, bad: 10, neutral: 5},
		{mood: 3, good: 6, bad: 6, neutral: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.good, Weight(catalog.ClassGood, tt.mood))
		assert.Equal(t, tt.bad, Weight(catalog.ClassBad, tt.mood))
		assert.Equal(t, tt.neutral, Weight(catalog.ClassNeutral, tt.mood))
	}
}

func TestSelectRandomEvent_Scripted(t *testing.T) {
	// morning at mood 3: overslept(bad)=6, sweet_dream(good)=6, normal_morning(neutral)=5
	tests := []struct {
		draw     int
		expected string
	}{
		{0, "overslept"},
		{5, "overslept"},
		{6, "sweet_dream"},
		{11, "sweet_dream"},
		{12, "normal_morning"},
		{16, "normal_morning"},
	}
	for _, tt := range tests {
		r := NewResolver(catalog.Default(), &scriptedRand{ints: []int{tt.draw}}, testLogger())
		e, ok := r.SelectRandomEvent(catalog.PeriodMorning, 3)
		require.True(t, ok)
		assert.Equal(t, tt.expected, e.ID, "draw %d", tt.draw)
	}
}

func TestSelectRandomEvent_NoEvents(t *testing.T) {
	r := NewResolver(catalog.Default(), NewRand(1), testLogger())
	_, ok := r.SelectRandomEvent(catalog.PeriodShopping, 3)
	assert.False(t, ok)
}

func TestSelectRandomEvent_FrequencyConverges(t *testing.T) {
	cat := catalog.Default()
	r := NewResolver(cat, NewRand(42), testLogger())

	const draws = 60000
	mood := 5
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		e, ok := r.SelectRandomEvent(catalog.PeriodMorning, mood)
		require.True(t, ok)
		counts[e.ID]++
	}

	// good=10, bad=2, neutral=5
	total := 17.0
	assert.InDelta(t, 2/total, float64(counts["overslept"])/draws, 0.01)
	assert.InDelta(t, 10/total, float64(counts["sweet_dream"])/draws, 0.01)
	assert.InDelta(t, 5/total, float64(counts["normal_morning"])/draws, 0.01)
}

func TestSelectRandomEvent_ReturnsDetachedCopy(t *testing.T) {
	cat := catalog.Default()
	r := NewResolver(cat, &scriptedRand{ints: []int{0}}, testLogger())

	e, ok := r.SelectRandomEvent(catalog.PeriodDaytime, 3)
	require.True(t, ok)
	require.Equal(t, "storm_warning", e.ID)
	e.Options[0].ID = "mutated"
	e.Results["lock"].Result.Stamina = 99

	assert.Equal(t, "lock", cat.RandomEvents[3].Options[0].ID)
	assert.Equal(t, -10, cat.RandomEvents[3].Results["lock"].Result.Stamina)
}

func TestResolveOutcome(t *testing.T) {
	cat := catalog.Default()
	storm := cat.RandomEventsFor(catalog.PeriodDaytime)[0]
	overslept := cat.RandomEventsFor(catalog.PeriodMorning)[0]

	t.Run("no options returns the single result", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{}, testLogger())
		res, err := r.ResolveOutcome(overslept, "")
		require.NoError(t, err)
		assert.Equal(t, -10, res.Result.Stamina)
		assert.Equal(t, -1, res.Branch)
	})

	t.Run("deterministic option", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{}, testLogger())
		res, err := r.ResolveOutcome(storm, "lock")
		require.NoError(t, err)
		assert.Equal(t, catalog.Effects{Stamina: -10, Mood: 1}, res.Result.Effects)
	})

	t.Run("weighted first branch at boundary", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{floats: []float64{0.3}}, testLogger())
		res, err := r.ResolveOutcome(storm, "go_out")
		require.NoError(t, err)
		assert.Equal(t, 0, res.Branch)
		assert.Equal(t, "Bento A", res.Result.Item)
	})

	t.Run("weighted second branch", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{floats: []float64{0.31}}, testLogger())
		res, err := r.ResolveOutcome(storm, "go_out")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Branch)
		assert.Equal(t, catalog.Effects{Stamina: -20, Health: -5, Mood: -1}, res.Result.Effects)
	})

	t.Run("unknown option is rejected", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{}, testLogger())
		_, err := r.ResolveOutcome(storm, "dance")
		assert.True(t, errors.Is(err, ErrInvalidChoice))
	})

	t.Run("option on an optionless event is rejected", func(t *testing.T) {
		r := NewResolver(cat, &scriptedRand{}, testLogger())
		_, err := r.ResolveOutcome(overslept, "lock")
		assert.True(t, errors.Is(err, ErrInvalidChoice))
	})
}

func TestResolveOutcome_ShortfallYieldsEmptyResult(t *testing.T) {
	event := catalog.Event{
		ID:      "gamble",
		Options: []catalog.Option{{ID: "bet"}},
		Results: map[string]catalog.Outcome{
			"bet": {Weighted: []catalog.WeightedOutcome{
				{Probability: 0.4, Result: catalog.Result{Effects: catalog.Effects{Money: 50}}},
			}},
		},
	}
	r := NewResolver(catalog.Default(), &scriptedRand{floats: []float64{0.9}}, testLogger())
	res, err := r.ResolveOutcome(event, "bet")
	require.NoError(t, err)
	assert.True(t, res.Result.IsEmpty())
	assert.Equal(t, -1, res.Branch)
}

func TestResolveFixedOutcome(t *testing.T) {
	cat := catalog.Default()
	r := NewResolver(cat, &scriptedRand{}, testLogger())

	dinner, ok := r.CheckFixedEvent(12)
	require.True(t, ok)

	res, err := r.ResolveFixedOutcome(dinner, "", 3)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Result.Satiety)
	assert.Equal(t, "Had a great feast!", res.Result.Message)

	res, err = r.ResolveFixedOutcome(dinner, "", 4)
	require.NoError(t, err)
	assert.Equal(t, 60, res.Result.Satiety)

	eve, ok := r.CheckFixedEvent(24)
	require.True(t, ok)
	res, err = r.ResolveFixedOutcome(eve, "stay_home", 2)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Result.Stamina)

	_, err = r.ResolveFixedOutcome(eve, "sleep_in", 2)
	assert.True(t, errors.Is(err, ErrInvalidChoice))

	_, err = r.ResolveFixedOutcome(catalog.FixedEvent{Kind: "parade"}, "", 3)
	assert.Error(t, err)
}

func TestCheckConditionalEvent(t *testing.T) {
	r := NewResolver(catalog.Default(), &scriptedRand{}, testLogger())

	e, ok := r.CheckConditionalEvent(catalog.PeriodEvening, viewStub{period: "evening", lowMoodDays: 3, mood: 2})
	require.True(t, ok)
	assert.Equal(t, "family_care", e.ID)
	assert.Equal(t, 2, e.Result.Mood)

	_, ok = r.CheckConditionalEvent(catalog.PeriodEvening, viewStub{period: "evening", lowMoodDays: 2, mood: 2})
	assert.False(t, ok)

	_, ok = r.CheckConditionalEvent(catalog.PeriodMorning, viewStub{period: "morning", lowMoodDays: 5, mood: 1})
	assert.False(t, ok)
}

func TestNewRand_IsDeterministic(t *testing.T) {
	a := NewRand(7)
	b := NewRand(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
	assert.NotEqual(t, seedWord(7, "events"), seedWord(8, "events"))
}

// Christmas Eve go_out sets mood to Ecstatic regardless of prior mood.
func TestApplyResult_ChristmasEveGoOut(t *testing.T) {
	cat := catalog.Default()
	r := NewResolver(cat, &scriptedRand{}, testLogger())
	eve, _ := r.CheckFixedEvent(24)

	for _, mood := range []int{1, 3, 5} {
		attrs := player.NewAttributes(player.Snapshot{Stamina: 80, Health: 90, Satiety: 50, Mood: mood, Money: 300}, cat.Rules)
		inv := player.NewInventory()

		res, err := r.ResolveFixedOutcome(eve, "go_out", mood)
		require.NoError(t, err)
		msgs, pages := ApplyResult(res.Result, attrs, inv, 23)

		assert.Equal(t, 60, attrs.Stamina())
		assert.Equal(t, 5, attrs.Mood())
		assert.Equal(t, "Ecstatic", attrs.MoodLabel())
		assert.Empty(t, pages)
		require.Len(t, msgs, 3)
		assert.Equal(t, "Stamina -20", msgs[0])
		assert.Equal(t, "Mood: "+cat.Rules.Label(mood)+" -> Ecstatic", msgs[1])
		assert.Equal(t, "Had a wonderful night with friends!", msgs[2])
	}
}

func TestApplyResult_KeyOrder(t *testing.T) {
	moodSet := 4
	result := catalog.Result{
		Effects:    catalog.Effects{Money: -10, Satiety: 12, Health: -5, Mood: 1, Stamina: 7},
		MoodSet:    &moodSet,
		Item:       "Bento A",
		Message:    "What a day.",
		StoryPages: []string{"page one", "page two"},
	}
	attrs := player.NewAttributes(player.Snapshot{Stamina: 50, Health: 50, Satiety: 50, Mood: 2, Money: 100}, player.DefaultRules())
	inv := player.NewInventory()

	msgs, pages := ApplyResult(result, attrs, inv, 3)
	assert.Equal(t, []string{
		"Stamina +7",
		"Mood: Depressed -> Calm",
		"Mood: Calm -> Happy",
		"Health -5",
		"Satiety +12",
		"Money -$10",
		"Obtained: Bento A",
		"What a day.",
	}, msgs)
	assert.Equal(t, []string{"page one", "page two"}, pages)
	assert.Equal(t, 90, attrs.Money())
	assert.Equal(t, []player.Entry{{Item: "Bento A", Count: 1, AcquiredOnDay: 3}}, inv.Entries())
}

func TestApplyResult_MoodWithoutLabelChangeIsSilent(t *testing.T) {
	attrs := player.NewAttributes(player.Snapshot{Stamina: 50, Health: 50, Satiety: 50, Mood: 5, Money: 0}, player.DefaultRules())
	msgs, _ := ApplyResult(catalog.Result{Effects: catalog.Effects{Mood: 1, Money: 25}}, attrs, player.NewInventory(), 1)
	assert.Equal(t, []string{"Money +$25"}, msgs)
}
