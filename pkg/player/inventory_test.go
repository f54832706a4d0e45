package player

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_AddKeepsFirstAcquiredDay(t *testing.T) {
	inv := NewInventory()
	inv.Add("Egg", 2, 1)
	inv.Add("Egg", 3, 4)

	assert.Equal(t, 5, inv.Count("Egg"))
	entries := inv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].AcquiredOnDay)
}

func TestInventory_AddIgnoresNonPositive(t *testing.T) {
	inv := NewInventory()
	inv.Add("Egg", 0, 1)
	inv.Add("Egg", -2, 1)
	assert.Equal(t, 0, inv.Len())
	assert.False(t, inv.Has("Egg", 1))
}

func TestInventory_Remove(t *testing.T) {
	tests := []struct {
		name      string
		item      string
		count     int
		wantErr   error
		remaining int
	}{
		{"partial", "Egg", 2, nil, 1},
		{"all removes entry", "Egg", 3, nil, 0},
		{"too many", "Egg", 4, ErrInsufficientItems, 3},
		{"missing item", "Pork", 1, ErrItemNotFound, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInventory()
			inv.Add("Egg", 3, 1)

			err := inv.Remove(tt.item, tt.count)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.remaining, inv.Count("Egg"))
			if tt.remaining == 0 {
				assert.Equal(t, 0, inv.Len())
			}
		})
	}
}

func TestInventory_ExpireCheck(t *testing.T) {
	shelfLife := map[string]int{"Tomato": 5, "Egg": 7, "Pork": 3}

	inv := NewInventory()
	inv.Add("Pork", 1, 1)
	inv.Add("Tomato", 2, 1)
	inv.Add("Egg", 1, 1)
	inv.Add("Spoon", 1, 1)

	// age 5 is still fresh for tomatoes
	expired := inv.ExpireCheck(6, shelfLife)
	assert.Equal(t, []string{"Pork"}, expired)
	assert.True(t, inv.Has("Tomato", 2))

	expired = inv.ExpireCheck(7, shelfLife)
	assert.Equal(t, []string{"Tomato"}, expired)
	assert.False(t, inv.Has("Tomato", 1))

	expired = inv.ExpireCheck(100, shelfLife)
	assert.Equal(t, []string{"Egg"}, expired)
	assert.True(t, inv.Has("Spoon", 1), "items without a shelf life never expire")
}

func TestInventory_ZeroShelfLifeLastsOneDay(t *testing.T) {
	inv := NewInventory()
	inv.Add("Sushi", 1, 3)

	assert.Empty(t, inv.ExpireCheck(3, map[string]int{"Sushi": 0}))
	assert.Equal(t, []string{"Sushi"}, inv.ExpireCheck(4, map[string]int{"Sushi": 0}))
}

func TestInventory_RestockDoesNotRefreshExpiry(t *testing.T) {
	inv := NewInventory()
	inv.Add("Tomato", 1, 1)
	inv.Add("Tomato", 1, 5)

	expired := inv.ExpireCheck(7, map[string]int{"Tomato": 5})
	assert.Equal(t, []string{"Tomato"}, expired)
	assert.Equal(t, 0, inv.Count("Tomato"))
}

func TestInventory_CountsStayPositive(t *testing.T) {
	inv := NewInventory()
	inv.Add("Egg", 2, 1)
	inv.Add("Rice", 1, 1)
	_ = inv.Remove("Egg", 1)
	_ = inv.Remove("Egg", 1)
	_ = inv.Remove("Rice", 5)

	for _, e := range inv.Entries() {
		assert.Greater(t, e.Count, 0)
	}
	assert.Equal(t, []Entry{{Item: "Rice", Count: 1, AcquiredOnDay: 1}}, inv.Entries())
}

func TestInventory_JSONKeepsOrder(t *testing.T) {
	inv := NewInventory()
	inv.Add("Rice", 1, 2)
	inv.Add("Egg", 4, 3)

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	restored := NewInventory()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, inv.Entries(), restored.Entries())
}
