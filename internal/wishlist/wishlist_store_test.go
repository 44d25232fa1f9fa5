package wishlist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	catalogMock "github.com/thatmissedsemicolon/Ecommerce-Application/internal/mock/catalog"
	wishlistMock "github.com/thatmissedsemicolon/Ecommerce-Application/internal/mock/wishlist"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/wishlist"
)

func TestStore_Toggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// =========================================================
	t.Run("absent_product_added", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().AddToWishlist(gomock.Any(), "u-1", "p-1001").Return(nil)

		s := wishlist.NewStore(api, nil, nil)

		added, err := s.Toggle(ctx, "u-1", "p-1001")
		require.NoError(t, err)
		assert.True(t, added)
		assert.True(t, s.Contains("p-1001"))
	})

	// =========================================================
	t.Run("present_product_removed", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().AddToWishlist(gomock.Any(), "u-1", "p-1001").Return(nil)
		api.EXPECT().RemoveFromWishlist(gomock.Any(), "u-1", "p-1001").Return(nil)

		s := wishlist.NewStore(api, nil, nil)
		_, err := s.Toggle(ctx, "u-1", "p-1001")
		require.NoError(t, err)

		added, err := s.Toggle(ctx, "u-1", "p-1001")
		require.NoError(t, err)
		assert.False(t, added)
		assert.False(t, s.Contains("p-1001"))
	})

	// =========================================================
	t.Run("failed_add_rolls_flag_back", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().AddToWishlist(gomock.Any(), "u-1", "p-1001").Return(errors.New("api down"))

		s := wishlist.NewStore(api, nil, nil)

		added, err := s.Toggle(ctx, "u-1", "p-1001")
		require.Error(t, err)
		assert.False(t, added)
		assert.False(t, s.Contains("p-1001"))
	})

	// =========================================================
	t.Run("failed_remove_rolls_flag_back", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().AddToWishlist(gomock.Any(), "u-1", "p-1001").Return(nil)
		api.EXPECT().RemoveFromWishlist(gomock.Any(), "u-1", "p-1001").Return(errors.New("api down"))

		s := wishlist.NewStore(api, nil, nil)
		_, err := s.Toggle(ctx, "u-1", "p-1001")
		require.NoError(t, err)

		stillIn, err := s.Toggle(ctx, "u-1", "p-1001")
		require.Error(t, err)
		assert.True(t, stillIn)
		assert.True(t, s.Contains("p-1001"))
	})
}

func TestStore_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// =========================================================
	t.Run("server_answer_overwrites_local_flag", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().InWishlist(gomock.Any(), "p-1001").Return(true, nil)

		s := wishlist.NewStore(api, nil, nil)

		in, err := s.Refresh(context.Background(), "p-1001")
		require.NoError(t, err)
		assert.True(t, in)
		assert.True(t, s.Contains("p-1001"))
	})
}

func TestStore_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// =========================================================
	t.Run("resolves_ids_and_marks_flags", func(t *testing.T) {
		api := wishlistMock.NewMockAPI(ctrl)
		api.EXPECT().Wishlist(gomock.Any()).Return([]string{"p-1001", "p-2001"}, nil)

		fetcher := catalogMock.NewMockFetcher(ctrl)
		fetcher.EXPECT().ProductByID(gomock.Any(), "p-1001").
			Return(catalog.Snapshot{ID: "p-1001", Price: decimal.NewFromInt(100)}, nil)
		fetcher.EXPECT().ProductByID(gomock.Any(), "p-2001").
			Return(catalog.Snapshot{}, errors.New("gone"))

		s := wishlist.NewStore(api, catalog.NewResolver(fetcher, nil), nil)

		items, err := s.List(context.Background())
		require.Error(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "p-1001", items[0].ID)
		assert.Error(t, items[1].Err)
		assert.True(t, s.Contains("p-1001"))
		assert.True(t, s.Contains("p-2001"))
	})
}
