package state

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/kitchen"
	"github.com/jwebster45206/survival-kitchen/pkg/market"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

// Activity is how the player spends the evening before sleeping.
type Activity string

const (
	ActivityEarlySleep  Activity = "early_sleep"
	ActivityNormalSleep Activity = "normal_sleep"
	ActivityStayUpLate  Activity = "stay_up_late"
)

var activityLabels = map[Activity]string{
	ActivityEarlySleep:  "Early Sleep",
	ActivityNormalSleep: "Normal Sleep",
	ActivityStayUpLate:  "Stay Up Late",
}

// Choice ids with a fixed meaning.
const (
	ChoiceContinue = "continue"
	ChoiceSkip     = "skip"
	ChoiceLeave    = "leave"
	ChoiceFinish   = "finish"
)

// next is what happens when the player continues past a prompt.
type next int

const (
	nextPeriod next = iota
	nextEveningChoice
	nextSleep
	nextNewDay
)

// pending is the input the engine is waiting for.
type pending struct {
	prompt   Prompt
	event    *catalog.Event
	fixed    *catalog.FixedEvent
	location string
	then     next
}

// turn collects the output of one command.
type turn struct {
	messages  []string
	interlude []string
}

func (t *turn) say(msgs ...string) {
	t.messages = append(t.messages, msgs...)
}

// Engine runs one game. It is not safe for concurrent use; callers
// serialize commands.
type Engine struct {
	id        uuid.UUID
	catalog   *catalog.Catalog
	resolver  *events.Resolver
	attrs     *player.Attributes
	inv       *player.Inventory
	progress  Progress
	pending   pending
	activity  Activity
	started   bool
	createdAt time.Time
	updatedAt time.Time
	logger    *slog.Logger
}

func NewEngine(cat *catalog.Catalog, rng events.Rand, logger *slog.Logger) *Engine {
	id := uuid.New()
	logger = logger.With("game_id", id.String())
	now := time.Now()
	return &Engine{
		id:       id,
		catalog:  cat,
		resolver: events.NewResolver(cat, rng, logger),
		attrs:    player.NewAttributes(cat.Initial, cat.Rules),
		inv:      player.NewInventory(),
		progress: Progress{
			Day:     1,
			Period:  catalog.Periods[0],
			Outcome: OutcomePlaying,
		},
		createdAt: now,
		updatedAt: now,
		logger:    logger,
	}
}

func (e *Engine) ID() uuid.UUID { return e.id }

func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// ReloadCatalog replaces the catalog used by later commands, including the
// stat ranges, mood labels and warning thresholds.
func (e *Engine) ReloadCatalog(cat *catalog.Catalog) error {
	if cat == nil {
		return errors.New("catalog is required")
	}
	e.catalog = cat
	e.resolver.SetCatalog(cat)
	e.attrs.SetRules(cat.Rules)
	e.logger.Info("Catalog reloaded", "catalog", cat.Name)
	return nil
}

// Start plays the intro and opens the first morning.
func (e *Engine) Start() (*Response, error) {
	if e.started {
		return nil, ErrAlreadyStarted
	}
	e.started = true
	t := &turn{}
	t.interlude = append(t.interlude, e.catalog.Intro...)
	e.logger.Info("Game started", "catalog", e.catalog.Name, "total_days", e.catalog.Settings.TotalDays)
	e.startDay(t)
	return e.respond(t), nil
}

// Advance continues past the current prompt. While choosing a shop it skips
// shopping, inside a shop it leaves for the location list, and in the
// kitchen it finishes cooking.
func (e *Engine) Advance() (*Response, error) {
	if err := e.guard(CmdAdvance, PhaseContinue, PhaseLocation, PhaseShopping, PhaseCooking); err != nil {
		return nil, err
	}
	t := &turn{}
	switch e.pending.prompt.Phase {
	case PhaseLocation, PhaseCooking:
		e.enterPeriod(e.progress.PeriodIndex+1, t)
	case PhaseShopping:
		e.promptLocation("Where else do you want to go?")
	default:
		e.proceed(t)
	}
	return e.respond(t), nil
}

// ChooseEventOption resolves the pending event. An empty eventID means the
// pending one. Unknown options leave the game unchanged.
func (e *Engine) ChooseEventOption(eventID, optionID string) (*Response, error) {
	if err := e.guard(CmdChooseOption, PhaseEventChoice); err != nil {
		return nil, err
	}
	p := e.pending
	if eventID != "" && eventID != p.prompt.EventID {
		return nil, fmt.Errorf("%w: event %q is not pending", events.ErrInvalidChoice, eventID)
	}

	var (
		res events.Resolution
		err error
	)
	if p.fixed != nil {
		res, err = e.resolver.ResolveFixedOutcome(*p.fixed, optionID, e.attrs.Mood())
	} else {
		res, err = e.resolver.ResolveOutcome(*p.event, optionID)
	}
	if err != nil {
		return nil, err
	}

	t := &turn{}
	e.apply(res.Result, t)
	opt, _ := p.event.Option(optionID)
	e.logger.Info("Event resolved",
		"event_id", res.EventID,
		"option_id", optionID,
		"branch", res.Branch,
		"day", e.progress.Day)
	e.promptContinue(p.prompt.Title, "You chose: "+opt.Text, p.then)
	return e.respond(t), nil
}

// SelectShoppingLocation enters a shop, or skips shopping for "skip".
func (e *Engine) SelectShoppingLocation(location string) (*Response, error) {
	if err := e.guard(CmdSelectLocation, PhaseLocation); err != nil {
		return nil, err
	}
	t := &turn{}
	if strings.EqualFold(location, ChoiceSkip) {
		e.enterPeriod(e.progress.PeriodIndex+1, t)
		return e.respond(t), nil
	}
	if err := e.promptShop(location); err != nil {
		return nil, err
	}
	return e.respond(t), nil
}

// Purchase buys count units of item at the current shop.
func (e *Engine) Purchase(item string, count int) (*Response, error) {
	return e.PurchaseItems([]market.LineItem{{Item: item, Count: count}})
}

// PurchaseItems buys a basket at the current shop. A restaurant meal ends
// the shopping period.
func (e *Engine) PurchaseItems(lines []market.LineItem) (*Response, error) {
	if err := e.guard(CmdPurchase, PhaseShopping); err != nil {
		return nil, err
	}
	location := e.pending.location
	receipt, err := e.market().Purchase(location, lines, e.progress.Day)
	if err != nil {
		return nil, err
	}

	t := &turn{}
	t.say(receipt.Messages...)
	e.logger.Debug("Purchase", "location", location, "cost", receipt.Cost, "lines", len(lines))
	if receipt.Ate {
		e.promptContinue(location, "You enjoyed your meal.", nextPeriod)
	} else if err := e.promptShop(location); err != nil {
		return nil, err
	}
	return e.respond(t), nil
}

// CookRecipe cooks a recipe by name. The player stays in the kitchen.
func (e *Engine) CookRecipe(name string) (*Response, error) {
	if err := e.guard(CmdCook, PhaseCooking); err != nil {
		return nil, err
	}
	recipe, ok := e.catalog.Recipe(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipe, name)
	}
	msgs, err := kitchen.New(e.attrs, e.inv).Cook(recipe)
	if err != nil {
		return nil, err
	}
	t := &turn{}
	t.say(msgs...)
	e.promptCooking()
	return e.respond(t), nil
}

// ChooseEveningActivity picks how to spend the evening. Anything but an
// early night may draw a random evening event before sleep.
func (e *Engine) ChooseEveningActivity(activity Activity) (*Response, error) {
	if err := e.guard(CmdEveningActivity, PhaseEveningActivity); err != nil {
		return nil, err
	}
	if _, ok := activityLabels[activity]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	e.activity = activity

	t := &turn{}
	if activity != ActivityEarlySleep {
		if ev, ok := e.resolver.SelectRandomEvent(catalog.PeriodEvening, e.attrs.Mood()); ok {
			e.presentEvent(ev, "", nextSleep, t)
			return e.respond(t), nil
		}
	}
	e.sleep(t)
	return e.respond(t), nil
}

// Execute dispatches a typed command.
func (e *Engine) Execute(cmd Command) (*Response, error) {
	switch cmd.Type {
	case CmdAdvance:
		return e.Advance()
	case CmdChooseOption:
		return e.ChooseEventOption(cmd.EventID, cmd.OptionID)
	case CmdSelectLocation:
		return e.SelectShoppingLocation(cmd.Location)
	case CmdPurchase:
		if len(cmd.Items) > 0 {
			return e.PurchaseItems(cmd.Items)
		}
		count := cmd.Count
		if count == 0 {
			count = 1
		}
		return e.Purchase(cmd.Item, count)
	case CmdCook:
		return e.CookRecipe(cmd.Recipe)
	case CmdEveningActivity:
		return e.ChooseEveningActivity(cmd.Activity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() *GameState {
	prompt := e.pending.prompt
	prompt.Choices = slices.Clone(prompt.Choices)
	return &GameState{
		ID:          e.id,
		CatalogName: e.catalog.Name,
		Date:        e.date().Format("1/2/2006"),
		TotalDays:   e.catalog.Settings.TotalDays,
		Progress:    e.progress,
		Stats:       e.attrs.Snapshot(),
		Warnings:    e.attrs.Warnings(),
		Inventory:   e.inv.Entries(),
		Prompt:      prompt,
		CreatedAt:   e.createdAt,
		UpdatedAt:   e.updatedAt,
	}
}

func (e *Engine) respond(t *turn) *Response {
	e.updatedAt = time.Now()
	return &Response{
		Messages:  t.messages,
		Interlude: t.interlude,
		State:     e.Snapshot(),
	}
}

func (e *Engine) guard(cmd CommandType, phases ...Phase) error {
	if !e.started {
		return ErrNotStarted
	}
	if e.progress.Outcome != OutcomePlaying {
		return ErrGameOver
	}
	if !slices.Contains(phases, e.pending.prompt.Phase) {
		return &PhaseError{Command: cmd, Phase: e.pending.prompt.Phase}
	}
	return nil
}

func (e *Engine) proceed(t *turn) {
	switch e.pending.then {
	case nextEveningChoice:
		e.promptEvening()
	case nextSleep:
		e.sleep(t)
	case nextNewDay:
		e.startDay(t)
	default:
		e.enterPeriod(e.progress.PeriodIndex+1, t)
	}
}

// startDay discards expired food, then opens the morning.
func (e *Engine) startDay(t *turn) {
	expired := e.inv.ExpireCheck(e.progress.Day, e.catalog.ShelfLife())
	if len(expired) > 0 {
		t.say("Expired items discarded: " + strings.Join(expired, ", "))
		e.logger.Debug("Items expired", "day", e.progress.Day, "items", expired)
	}
	e.enterPeriod(0, t)
}

func (e *Engine) enterPeriod(idx int, t *turn) {
	idx %= len(catalog.Periods)
	period := catalog.Periods[idx]
	e.progress.PeriodIndex = idx
	e.progress.Period = period
	e.decaySatiety()
	e.logger.Debug("Entering period", "day", e.progress.Day, "period", period)

	switch period {
	case catalog.PeriodMorning:
		e.morning(t)
	case catalog.PeriodDaytime:
		e.daytime(t)
	case catalog.PeriodShopping:
		e.promptLocation("Shopping Time: Where do you want to buy food?")
	case catalog.PeriodCooking:
		e.promptCooking()
	case catalog.PeriodEvening:
		e.evening(t)
	}
}

func (e *Engine) decaySatiety() {
	s := e.catalog.Settings
	e.attrs.Update(player.StatSatiety, -s.Decay(), player.ModeDelta)
	if e.attrs.Satiety() <= 0 {
		e.attrs.Update(player.StatHealth, -s.Starvation(), player.ModeDelta)
	}
}

func (e *Engine) morning(t *turn) {
	summary := e.statusSummary()
	if ev, ok := e.resolver.CheckConditionalEvent(catalog.PeriodMorning, e.view()); ok {
		e.presentEvent(ev, summary, nextPeriod, t)
		return
	}
	if ev, ok := e.resolver.SelectRandomEvent(catalog.PeriodMorning, e.attrs.Mood()); ok {
		e.presentEvent(ev, summary, nextPeriod, t)
		return
	}
	e.promptContinue(catalog.PeriodMorning.Title(), summary, nextPeriod)
}

func (e *Engine) daytime(t *turn) {
	if f, ok := e.resolver.CheckFixedEvent(e.date().Day()); ok {
		e.presentFixed(f, t)
		return
	}
	if ev, ok := e.resolver.CheckConditionalEvent(catalog.PeriodDaytime, e.view()); ok {
		e.presentEvent(ev, "", nextPeriod, t)
		return
	}
	if ev, ok := e.resolver.SelectRandomEvent(catalog.PeriodDaytime, e.attrs.Mood()); ok {
		e.presentEvent(ev, "", nextPeriod, t)
		return
	}
	e.promptContinue(catalog.PeriodDaytime.Title(), "A peaceful day...", nextPeriod)
}

func (e *Engine) evening(t *turn) {
	if ev, ok := e.resolver.CheckConditionalEvent(catalog.PeriodEvening, e.view()); ok {
		e.presentEvent(ev, "", nextEveningChoice, t)
		return
	}
	e.promptEvening()
}

// presentEvent resolves an optionless event immediately, or waits for a choice.
func (e *Engine) presentEvent(ev catalog.Event, prefix string, then next, t *turn) {
	text := joinText(prefix, ev.Description)
	if ev.HasOptions() {
		e.pending = pending{
			event: &ev,
			then:  then,
			prompt: Prompt{
				Phase:   PhaseEventChoice,
				Title:   ev.Name,
				Text:    text,
				EventID: ev.ID,
				Choices: optionChoices(ev.Options),
			},
		}
		return
	}

	res, err := e.resolver.ResolveOutcome(ev, "")
	if err != nil {
		e.logger.Error("Failed to resolve event", "event_id", ev.ID, "error", err)
	}
	e.apply(res.Result, t)
	e.promptContinue(ev.Name, text, then)
}

func (e *Engine) presentFixed(f catalog.FixedEvent, t *turn) {
	if !f.AutoResolves() {
		e.pending = pending{
			event: &f.Event,
			fixed: &f,
			then:  nextPeriod,
			prompt: Prompt{
				Phase:   PhaseEventChoice,
				Title:   f.Event.Name,
				Text:    f.Event.Description,
				EventID: f.Event.ID,
				Choices: optionChoices(f.Event.Options),
			},
		}
		return
	}

	res, err := e.resolver.ResolveFixedOutcome(f, "", e.attrs.Mood())
	if err != nil {
		e.logger.Error("Failed to resolve fixed event", "event_id", f.Event.ID, "error", err)
	}
	e.apply(res.Result, t)
	e.promptContinue(f.Event.Name, f.Event.Description, nextPeriod)
}

func (e *Engine) apply(result catalog.Result, t *turn) {
	msgs, pages := events.ApplyResult(result, e.attrs, e.inv, e.progress.Day)
	t.say(msgs...)
	t.interlude = append(t.interlude, pages...)
}

// sleep ends the day. A player with no stamina left passes out instead of
// resting, and the day does not advance.
func (e *Engine) sleep(t *turn) {
	rules := e.catalog.Sleep
	var text string
	if e.attrs.Stamina() <= 0 {
		e.attrs.Update(player.StatStamina, rules.Forced.Stamina, player.ModeAbsolute)
		e.attrs.ChangeMood(rules.Forced.MoodDelta)
		e.attrs.Update(player.StatHealth, rules.Forced.HealthDelta, player.ModeDelta)
		text = "Stamina depleted! You passed out..."
		e.logger.Info("Forced sleep", "day", e.progress.Day)
	} else {
		recovery := rules.Normal
		switch e.activity {
		case ActivityEarlySleep:
			recovery = rules.Early
		case ActivityStayUpLate:
			recovery = rules.Late
		}
		e.attrs.Update(player.StatStamina, recovery, player.ModeDelta)
		e.progress.Day++
		if e.attrs.Mood() <= e.attrs.Rules().Thresholds.BadMood {
			e.progress.LowMoodDays++
		} else {
			e.progress.LowMoodDays = 0
		}
		text = fmt.Sprintf("Good night! (%s)", activityLabels[e.activity])
	}
	e.activity = ""

	switch {
	case !e.attrs.IsAlive():
		e.finish(OutcomeLost)
	case e.progress.Day > e.catalog.Settings.TotalDays:
		e.finish(OutcomeWon)
	default:
		e.promptContinue("Night", text, nextNewDay)
	}
}

func (e *Engine) finish(outcome Outcome) {
	e.progress.Outcome = outcome
	total := e.catalog.Settings.TotalDays

	var title, text string
	if outcome == OutcomeWon {
		title = "Graduation"
		text = fmt.Sprintf("Congratulations! You survived %d days and graduated!\n\nFinal Money: $%d\nFinal Health: %d\nFinal Mood: %s",
			total, e.attrs.Money(), e.attrs.Health(), e.attrs.MoodLabel())
	} else {
		title = "Game Over"
		text = fmt.Sprintf("Game Over! Your health reached zero...\n\nSurvived: %d/%d days", e.progress.Day-1, total)
	}
	e.pending = pending{prompt: Prompt{Phase: PhaseGameOver, Title: title, Text: text}}
	e.logger.Info("Game finished", "outcome", outcome, "day", e.progress.Day, "money", e.attrs.Money())
}

func (e *Engine) promptContinue(title, text string, then next) {
	label := "Continue"
	switch then {
	case nextSleep:
		label = "Sleep"
	case nextNewDay:
		label = "New Day"
	}
	e.pending = pending{
		then: then,
		prompt: Prompt{
			Phase:   PhaseContinue,
			Title:   title,
			Text:    text,
			Choices: []Choice{{ID: ChoiceContinue, Text: label}},
		},
	}
}

func (e *Engine) promptLocation(text string) {
	var choices []Choice
	for _, loc := range e.catalog.Locations() {
		choices = append(choices, Choice{ID: loc, Text: loc})
	}
	choices = append(choices, Choice{ID: ChoiceSkip, Text: "Skip Shopping"})
	e.pending = pending{
		prompt: Prompt{
			Phase:   PhaseLocation,
			Title:   catalog.PeriodShopping.Title(),
			Text:    text,
			Choices: choices,
		},
	}
}

func (e *Engine) promptShop(location string) error {
	offers, err := e.market().Stock(location)
	if err != nil {
		return err
	}
	money := e.attrs.Money()
	choices := make([]Choice, 0, len(offers)+1)
	for _, o := range offers {
		c := Choice{ID: o.Name, Text: fmt.Sprintf("%s - $%d", o.Name, o.Price)}
		if o.Price > money {
			c.Disabled = true
			c.Reason = "Not enough money"
		}
		choices = append(choices, c)
	}
	choices = append(choices, Choice{ID: ChoiceLeave, Text: "Back"})
	e.pending = pending{
		location: location,
		prompt: Prompt{
			Phase:    PhaseShopping,
			Title:    location,
			Text:     fmt.Sprintf("Welcome to the %s. You have $%d.", location, money),
			Location: location,
			Choices:  choices,
		},
	}
	return nil
}

func (e *Engine) promptCooking() {
	k := kitchen.New(e.attrs, e.inv)
	choices := make([]Choice, 0, len(e.catalog.Recipes)+1)
	for _, r := range e.catalog.Recipes {
		c := Choice{ID: r.Name, Text: fmt.Sprintf("%s (stamina %d)", r.Name, r.StaminaCost)}
		if err := k.CanCook(r); err != nil {
			c.Disabled = true
			c.Reason = err.Error()
		}
		choices = append(choices, c)
	}
	choices = append(choices, Choice{ID: ChoiceFinish, Text: "Finish Cooking"})
	e.pending = pending{
		prompt: Prompt{
			Phase:   PhaseCooking,
			Title:   catalog.PeriodCooking.Title(),
			Text:    "Kitchen: What do you want to cook?",
			Choices: choices,
		},
	}
}

func (e *Engine) promptEvening() {
	e.pending = pending{
		prompt: Prompt{
			Phase: PhaseEveningActivity,
			Title: catalog.PeriodEvening.Title(),
			Text:  "Evening: What do you want to do tonight?",
			Choices: []Choice{
				{ID: string(ActivityEarlySleep), Text: "Sleep Early"},
				{ID: string(ActivityNormalSleep), Text: "Relax"},
				{ID: string(ActivityStayUpLate), Text: "Stay Up Late"},
			},
		},
	}
}

func (e *Engine) market() *market.Market {
	return market.New(e.catalog, e.attrs, e.inv)
}

// date is the calendar date of the current day.
func (e *Engine) date() time.Time {
	s := e.catalog.Settings
	start := time.Date(s.StartYear, time.Month(s.StartMonth), s.StartDay, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, e.progress.Day-1)
}

func (e *Engine) statusSummary() string {
	status := "All stats OK"
	if w := e.attrs.Warnings(); len(w) > 0 {
		status = strings.Join(w, ", ")
	}
	total := e.catalog.Settings.TotalDays
	return fmt.Sprintf("%s\nDay %d, %d days until graduation.\n%s",
		e.date().Format("1/2/2006"), e.progress.Day, total-e.progress.Day+1, status)
}

func (e *Engine) view() *GameState {
	return &GameState{Progress: e.progress, Stats: e.attrs.Snapshot()}
}

func optionChoices(opts []catalog.Option) []Choice {
	choices := make([]Choice, len(opts))
	for i, o := range opts {
		choices[i] = Choice{ID: o.ID, Text: o.Text}
	}
	return choices
}

func joinText(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
