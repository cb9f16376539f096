package pantry

import (
	"context"
	"os"
	"testing"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestStore_UnconfiguredIsDegraded(t *testing.T) {
	store := NewStore(config.RedisConfig{})
	defer store.Close()

	_, _, err := store.List(context.Background(), "user-1")
	assert.Equal(t, common.ErrStoreUnavailable, err)

	_, err = store.Add(context.Background(), "user-1", []Item{{Name: "rice"}})
	assert.Equal(t, common.ErrStoreUnavailable, err)

	_, err = store.Update(context.Background(), "user-1", Item{ID: "x", Name: "rice"})
	assert.Equal(t, common.ErrStoreUnavailable, err)

	_, err = store.Delete(context.Background(), "user-1", "x")
	assert.Equal(t, common.ErrStoreUnavailable, err)
}

func TestStore_CloseWithoutConnection(t *testing.T) {
	store := NewStore(config.RedisConfig{})
	assert.NoError(t, store.Close())
}

func TestContainsItem_AllFieldsMustMatch(t *testing.T) {
	existing := []Item{
		{ID: "1", Name: "rice", Quantity: "2", Unit: "kg", ExpiryDate: "2026-12-01"},
	}

	tests := []struct {
		name      string
		candidate Item
		want      bool
	}{
		{"exact duplicate ignoring id", Item{Name: "rice", Quantity: "2", Unit: "kg", ExpiryDate: "2026-12-01"}, true},
		{"different quantity", Item{Name: "rice", Quantity: "3", Unit: "kg", ExpiryDate: "2026-12-01"}, false},
		{"different name", Item{Name: "beans", Quantity: "2", Unit: "kg", ExpiryDate: "2026-12-01"}, false},
		{"different expiry", Item{Name: "rice", Quantity: "2", Unit: "kg", ExpiryDate: "2027-01-01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsItem(existing, tt.candidate))
		})
	}
}

func TestPantryKey(t *testing.T) {
	assert.Equal(t, "pantry:user-42", pantryKey("user-42"))
}
