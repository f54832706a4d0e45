package market

import (
	"errors"
	"fmt"
	"math"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

var (
	ErrInsufficientFunds = errors.New("insufficient money")
	ErrUnknownItem       = errors.New("item not sold here")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// MaxLineQuantity caps the units of one item in a single purchase.
const MaxLineQuantity = 99

// FundsError reports a purchase the player cannot afford.
type FundsError struct {
	Cost int
	Have int
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("Insufficient money! (cost $%d, have $%d)", e.Cost, e.Have)
}

func (e *FundsError) Unwrap() error { return ErrInsufficientFunds }

// LineItem is one entry of a shopping basket.
type LineItem struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Offer is something for sale at a location.
type Offer struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description,omitempty"`
}

// Receipt describes a completed purchase.
type Receipt struct {
	Location string     `json:"location"`
	Cost     int        `json:"cost"`
	Lines    []LineItem `json:"lines"`
	Messages []string   `json:"messages"`
	// Ate is set for restaurant meals, which end the shopping trip.
	Ate bool `json:"ate"`
}

// Market sells catalog items and restaurant meals to a player.
type Market struct {
	catalog *catalog.Catalog
	attrs   *player.Attributes
	inv     *player.Inventory
}

func New(cat *catalog.Catalog, attrs *player.Attributes, inv *player.Inventory) *Market {
	return &Market{catalog: cat, attrs: attrs, inv: inv}
}

// IsLocation reports whether location is one of the catalog's shopping destinations.
func (m *Market) IsLocation(location string) bool {
	for _, l := range m.catalog.Locations() {
		if l == location {
			return true
		}
	}
	return false
}

// Stock lists what location sells.
func (m *Market) Stock(location string) ([]Offer, error) {
	if !m.IsLocation(location) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	}
	var offers []Offer
	if location == catalog.LocationRestaurant {
		for _, mi := range m.catalog.Restaurant {
			offers = append(offers, Offer{Name: mi.Name, Price: mi.Price, Description: mi.Description})
		}
		return offers, nil
	}
	for _, it := range m.catalog.ItemsAt(location) {
		offers = append(offers, Offer{Name: it.Name, Price: it.Price, Description: it.Description})
	}
	return offers, nil
}

func (m *Market) price(location, name string) (int, bool) {
	if location == catalog.LocationRestaurant {
		mi, ok := m.catalog.MenuItem(name)
		return mi.Price, ok
	}
	it, ok := m.catalog.Item(name)
	if !ok || it.Location != location {
		return 0, false
	}
	return it.Price, true
}

// Quote totals the cost of a basket without buying it.
func (m *Market) Quote(location string, lines []LineItem) (int, error) {
	if !m.IsLocation(location) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	}
	if len(lines) == 0 {
		return 0, ErrInvalidQuantity
	}
	total := 0
	for _, l := range lines {
		if l.Count <= 0 || l.Count > MaxLineQuantity {
			return 0, fmt.Errorf("%w: %s x%d (1 to %d)", ErrInvalidQuantity, l.Item, l.Count, MaxLineQuantity)
		}
		p, ok := m.price(location, l.Item)
		if !ok {
			return 0, fmt.Errorf("%w: %s at %s", ErrUnknownItem, l.Item, location)
		}
		if p > 0 && l.Count > (math.MaxInt-total)/p {
			return 0, &FundsError{Cost: math.MaxInt, Have: m.attrs.Money()}
		}
		total += p * l.Count
	}
	return total, nil
}

// Purchase pays for a basket. Items from shops go into the inventory on
// day; restaurant meals are eaten on the spot, once per unit. Nothing
// changes when the basket is invalid or unaffordable.
func (m *Market) Purchase(location string, lines []LineItem, day int) (Receipt, error) {
	cost, err := m.Quote(location, lines)
	if err != nil {
		return Receipt{}, err
	}
	if cost > m.attrs.Money() {
		return Receipt{}, &FundsError{Cost: cost, Have: m.attrs.Money()}
	}

	m.attrs.Update(player.StatMoney, -cost, player.ModeDelta)
	receipt := Receipt{Location: location, Cost: cost, Lines: append([]LineItem(nil), lines...)}

	if location == catalog.LocationRestaurant {
		receipt.Ate = true
		receipt.Messages = append(receipt.Messages, fmt.Sprintf("Spent $%d, had a great meal!", cost))
		for _, l := range lines {
			mi, _ := m.catalog.MenuItem(l.Item)
			for range l.Count {
				receipt.Messages = append(receipt.Messages, events.ApplyEffects(mi.Effects, m.attrs)...)
			}
		}
		return receipt, nil
	}

	for _, l := range lines {
		m.inv.Add(l.Item, l.Count, day)
	}
	receipt.Messages = append(receipt.Messages, fmt.Sprintf("Purchase successful! Spent $%d", cost))
	return receipt, nil
}
