package kitchen

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/player"
)

var (
	ErrInsufficientStamina     = errors.New("not enough stamina")
	ErrInsufficientIngredients = errors.New("missing ingredients")
)

// StaminaError reports a recipe the player is too tired to cook.
type StaminaError struct {
	Required int
	Have     int
}

func (e *StaminaError) Error() string {
	return fmt.Sprintf("Not enough stamina (need %d, have %d)", e.Required, e.Have)
}

func (e *StaminaError) Unwrap() error { return ErrInsufficientStamina }

// MissingIngredientError names the first ingredient that is short.
type MissingIngredientError struct {
	Item     string
	Required int
	Have     int
}

func (e *MissingIngredientError) Error() string {
	return fmt.Sprintf("Missing %s", e.Item)
}

func (e *MissingIngredientError) Unwrap() error { return ErrInsufficientIngredients }

// Kitchen cooks recipes against a player's attributes and inventory.
type Kitchen struct {
	attrs *player.Attributes
	inv   *player.Inventory
}

func New(attrs *player.Attributes, inv *player.Inventory) *Kitchen {
	return &Kitchen{attrs: attrs, inv: inv}
}

// CanCook reports the first reason recipe cannot be cooked: stamina is
// checked before ingredients, and ingredients in recipe order.
func (k *Kitchen) CanCook(recipe catalog.Recipe) error {
	if k.attrs.Stamina() < recipe.StaminaCost {
		return &StaminaError{Required: recipe.StaminaCost, Have: k.attrs.Stamina()}
	}
	need := make(map[string]int, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		need[ing.Item] += ing.Count
		if !k.inv.Has(ing.Item, need[ing.Item]) {
			return &MissingIngredientError{Item: ing.Item, Required: need[ing.Item], Have: k.inv.Count(ing.Item)}
		}
	}
	return nil
}

// Cook consumes the ingredients and stamina and applies the recipe effects.
// Nothing changes when CanCook fails.
func (k *Kitchen) Cook(recipe catalog.Recipe) ([]string, error) {
	if err := k.CanCook(recipe); err != nil {
		return nil, err
	}

	for _, ing := range recipe.Ingredients {
		if err := k.inv.Remove(ing.Item, ing.Count); err != nil {
			return nil, fmt.Errorf("cook %s: %w", recipe.Name, err)
		}
	}
	k.attrs.Update(player.StatStamina, -recipe.StaminaCost, player.ModeDelta)

	messages := []string{fmt.Sprintf("Successfully cooked %s!", recipe.Name)}
	if recipe.StaminaCost > 0 {
		messages = append(messages, fmt.Sprintf("Stamina -%d", recipe.StaminaCost))
	}
	messages = append(messages, events.ApplyEffects(recipe.Effects, k.attrs)...)
	return messages, nil
}
