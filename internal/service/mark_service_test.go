package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Option-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Option-Ledger-Backend/internal/testutil"
)

// TestMarkService_Remark tests that watchlist changes reach the ledger marks.
//
// WHY: The ledger values open positions at the watchlist premium. A premium
// edited by hand, or a contract that is no longer watched, must change the
// valuation without waiting for a quote refresh.
func TestMarkService_Remark(t *testing.T) {
	ctx := context.Background()

	t.Run("picks up an edited premium", func(t *testing.T) {
		svcs := setupRefresh(t, testutil.NewFailingStore())
		require.NoError(t, svcs.Marks.Remark(ctx))

		edit := aaplWatch("c1")
		edit.Premium = "9.00"
		_, err := svcs.Watchlist.UpdateContract(ctx, "c1", edit)
		require.NoError(t, err)
		require.NoError(t, svcs.Marks.Remark(ctx))

		g, err := svcs.Ledger.Group("c1")
		require.NoError(t, err)
		assert.Equal(t, 45.0, g.CurrentValue)
		assert.Equal(t, 27.75, g.ProfitLoss)
		assert.Equal(t, "$9.00", svcs.Ledger.Marks()["c1"])
	})

	t.Run("removed contract falls back to average price", func(t *testing.T) {
		svcs := setupRefresh(t, testutil.NewFailingStore())

		edit := aaplWatch("c1")
		edit.Premium = "9.00"
		_, err := svcs.Watchlist.UpdateContract(ctx, "c1", edit)
		require.NoError(t, err)
		require.NoError(t, svcs.Marks.Remark(ctx))

		require.NoError(t, svcs.Watchlist.RemoveContract(ctx, "c1"))
		require.NoError(t, svcs.Marks.Remark(ctx))

		g, err := svcs.Ledger.Group("c1")
		require.NoError(t, err)
		assert.Equal(t, 17.25, g.CurrentValue)
		assert.Zero(t, g.ProfitLoss)
		assert.NotContains(t, svcs.Ledger.Marks(), "c1")
		assert.Contains(t, svcs.Ledger.Marks(), "c2")
	})

	t.Run("persist failure keeps the new marks", func(t *testing.T) {
		store := testutil.NewFailingStore()
		svcs := setupRefresh(t, store)

		edit := aaplWatch("c1")
		edit.Premium = "4.00"
		_, err := svcs.Watchlist.UpdateContract(ctx, "c1", edit)
		require.NoError(t, err)

		store.FailWrites(errors.New("disk full"))
		err = svcs.Marks.Remark(ctx)
		assert.ErrorIs(t, err, apperrors.ErrPersistFailed)

		g, err := svcs.Ledger.Group("c1")
		require.NoError(t, err)
		assert.Equal(t, 20.0, g.CurrentValue)
	})
}
