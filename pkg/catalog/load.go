package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/player"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Format names a catalog encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks a format from a file extension. Unknown extensions are YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads, defaults and validates a catalog file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(b, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// Parse decodes a catalog document, applies defaults and validates it.
func Parse(data []byte, format Format) (*Catalog, error) {
	c, err := Decode(data, format, false)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode parses a catalog document and applies defaults without validating.
// With strict set, unknown fields are rejected.
func Decode(data []byte, format Format, strict bool) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
	}
	c.ApplyDefaults()
	return &c, nil
}

func (s *Settings) ApplyDefaults() {
	if s.TotalDays == 0 {
		s.TotalDays = 30
	}
	if s.StartYear == 0 {
		s.StartYear = 2025
	}
	if s.StartMonth == 0 {
		s.StartMonth = 12
	}
	if s.StartDay == 0 {
		s.StartDay = 2
	}
	if s.SatietyDecay == nil {
		decay := DefaultSatietyDecay
		s.SatietyDecay = &decay
	}
	if s.StarvationPenalty == nil {
		penalty := DefaultStarvationPenalty
		s.StarvationPenalty = &penalty
	}
}

func (s *SleepRules) ApplyDefaults() {
	if s.Early == 0 {
		s.Early = 60
	}
	if s.Normal == 0 {
		s.Normal = 50
	}
	if s.Late == 0 {
		s.Late = 30
	}
	if s.Forced == (ForcedSleep{}) {
		s.Forced = ForcedSleep{Stamina: 30, MoodDelta: -1, HealthDelta: -10}
	}
}

func (c *Catalog) ApplyDefaults() {
	c.Settings.ApplyDefaults()
	c.Sleep.ApplyDefaults()

	def := player.DefaultRules()
	if c.Rules.StatMax == 0 {
		c.Rules.StatMin, c.Rules.StatMax = def.StatMin, def.StatMax
	}
	if c.Rules.MoodMax == 0 {
		c.Rules.MoodMin, c.Rules.MoodMax = def.MoodMin, def.MoodMax
	}
	if len(c.Rules.MoodLabels) == 0 {
		c.Rules.MoodLabels = def.MoodLabels
	}
	if c.Rules.Thresholds == (player.Thresholds{}) {
		c.Rules.Thresholds = def.Thresholds
	}
	if c.Initial == (player.Snapshot{}) {
		c.Initial = player.Snapshot{Stamina: 100, Health: 100, Satiety: 80, Mood: 3, Money: 1500}
	}

	for i := range c.RandomEvents {
		if c.RandomEvents[i].Class == "" {
			c.RandomEvents[i].Class = ClassNeutral
		}
	}
	for i := range c.FixedEvents {
		f := &c.FixedEvents[i]
		if f.Kind == "" {
			if len(f.Event.Options) > 0 {
				f.Kind = KindChoice
			} else {
				f.Kind = KindFeast
			}
		}
		if f.Event.Period == "" {
			f.Event.Period = PeriodDaytime
		}
	}
	for i := range c.Recipes {
		for j := range c.Recipes[i].Ingredients {
			if c.Recipes[i].Ingredients[j].Count == 0 {
				c.Recipes[i].Ingredients[j].Count = 1
			}
		}
	}
}
