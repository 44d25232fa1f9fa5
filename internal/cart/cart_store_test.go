package cart_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/storage"
)

func TestCartStore_Mutations(t *testing.T) {
	// =========================================================
	t.Run("add_new_product_starts_at_quantity_one", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)

		require.NoError(t, s.Add("p-1001"))

		assert.Equal(t, 1, s.Quantity("p-1001"))
		assert.Equal(t, 1, s.Len())
	})

	// =========================================================
	t.Run("add_existing_product_bumps_quantity", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)

		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-1001"))

		assert.Equal(t, 3, s.Quantity("p-1001"))
		assert.Equal(t, 1, s.Len())
	})

	// =========================================================
	t.Run("add_empty_product_id_rejected", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)

		err := s.Add("")
		assert.ErrorIs(t, err, cart.ErrEmptyProductID)
		assert.Equal(t, 0, s.Len())
	})

	// =========================================================
	t.Run("decrease_at_quantity_one_removes_entry", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)
		require.NoError(t, s.Add("p-1001"))

		require.NoError(t, s.Decrease("p-1001"))

		assert.Equal(t, 0, s.Quantity("p-1001"))
		assert.Equal(t, 0, s.Len())
	})

	// =========================================================
	t.Run("decrease_above_one_keeps_entry", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Increase("p-1001"))

		require.NoError(t, s.Decrease("p-1001"))

		assert.Equal(t, 1, s.Quantity("p-1001"))
	})

	// =========================================================
	t.Run("increase_unknown_product_rejected", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)

		assert.ErrorIs(t, s.Increase("ghost"), cart.ErrNotInCart)
		assert.ErrorIs(t, s.Decrease("ghost"), cart.ErrNotInCart)
		assert.ErrorIs(t, s.Remove("ghost"), cart.ErrNotInCart)
	})

	// =========================================================
	t.Run("entries_preserve_insertion_order", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-2001"))
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-3001"))

		assert.Equal(t, []cart.Entry{
			{ProductID: "p-1001", Quantity: 2},
			{ProductID: "p-2001", Quantity: 1},
			{ProductID: "p-3001", Quantity: 1},
		}, s.Entries())
	})

	// =========================================================
	t.Run("clear_empties_cart", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-2001"))

		require.NoError(t, s.Clear())

		assert.Equal(t, 0, s.Len())
	})
}

func TestCartStore_Persistence(t *testing.T) {
	// =========================================================
	t.Run("cart_survives_reload", func(t *testing.T) {
		mem := storage.NewMemory()

		s := cart.NewStore(mem, nil)
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-2001"))

		reloaded := cart.NewStore(mem, nil)
		assert.Equal(t, s.Entries(), reloaded.Entries())
	})

	// =========================================================
	t.Run("malformed_persisted_cart_starts_empty", func(t *testing.T) {
		mem := storage.NewMemory()
		require.NoError(t, mem.Set(storage.KeyCart, []byte("{not json")))

		s := cart.NewStore(mem, nil)
		assert.Equal(t, 0, s.Len())
	})

	// =========================================================
	t.Run("invalid_quantities_dropped_on_load", func(t *testing.T) {
		mem := storage.NewMemory()
		raw := []byte(`[{"_id":"p-1001","quantity":2},{"_id":"p-2001","quantity":0},{"_id":"","quantity":3}]`)
		require.NoError(t, mem.Set(storage.KeyCart, raw))

		s := cart.NewStore(mem, nil)
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 2}}, s.Entries())
	})

	// =========================================================
	t.Run("persist_failure_rolls_mutation_back", func(t *testing.T) {
		mem := storage.NewMemory()
		s := cart.NewStore(mem, nil)
		require.NoError(t, s.Add("p-1001"))

		sentinel := errors.New("disk full")
		mem.FailWrites = sentinel

		err := s.Add("p-2001")
		require.ErrorIs(t, err, cart.ErrPersistFailed)
		assert.ErrorIs(t, err, sentinel)

		// In-memory state matches what was last durably written.
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 1}}, s.Entries())

		mem.FailWrites = nil
		require.NoError(t, s.Add("p-2001"))
		assert.Equal(t, 2, s.Len())
	})
}

func TestCartStore_Subscribe(t *testing.T) {
	// =========================================================
	t.Run("listener_sees_snapshot_after_each_mutation", func(t *testing.T) {
		s := cart.NewStore(storage.NewMemory(), nil)

		var got [][]cart.Entry
		unsubscribe := s.Subscribe(func(entries []cart.Entry) {
			got = append(got, entries)
		})

		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Add("p-1001"))
		require.NoError(t, s.Remove("p-1001"))

		require.Len(t, got, 3)
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 1}}, got[0])
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 2}}, got[1])
		assert.Empty(t, got[2])

		unsubscribe()
		require.NoError(t, s.Add("p-2001"))
		assert.Len(t, got, 3)
	})

	// =========================================================
	t.Run("listener_not_fired_on_failed_persist", func(t *testing.T) {
		mem := storage.NewMemory()
		s := cart.NewStore(mem, nil)

		calls := 0
		s.Subscribe(func([]cart.Entry) { calls++ })

		mem.FailWrites = errors.New("disk full")
		require.Error(t, s.Add("p-1001"))

		assert.Equal(t, 0, calls)
	})
}
