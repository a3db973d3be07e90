package repository

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchByIDsSplit(t *testing.T) {
	ctx := context.Background()

	echoFetch := func(ctx context.Context, ids []uint) ([]uint, error) {
		out := make([]uint, len(ids))
		copy(out, ids)
		return out, nil
	}

	t.Run("EmptyInput", func(t *testing.T) {
		res, err := FetchByIDsSplit(ctx, nil, echoFetch)
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Empty(t, res.FailedIDs)
	})

	t.Run("HappyPathNoSplit", func(t *testing.T) {
		calls := 0
		res, err := FetchByIDsSplit(ctx, []uint{1, 2, 3}, func(ctx context.Context, ids []uint) ([]uint, error) {
			calls++
			return echoFetch(ctx, ids)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, []uint{1, 2, 3}, res.Rows)
	})

	t.Run("FailureOnLargeBatchesStillYieldsEveryRowOnce", func(t *testing.T) {
		ids := []uint{1, 2, 3, 4, 5, 6, 7}
		res, err := FetchByIDsSplit(ctx, ids, func(ctx context.Context, ids []uint) ([]uint, error) {
			if len(ids) > 1 {
				return nil, errors.New("query too large")
			}
			return echoFetch(ctx, ids)
		})
		require.NoError(t, err)
		assert.Empty(t, res.FailedIDs)

		got := append([]uint(nil), res.Rows...)
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		assert.Equal(t, ids, got)
	})

	t.Run("SingleIDFailureIsLostNotFatal", func(t *testing.T) {
		bad := uint(3)
		res, err := FetchByIDsSplit(ctx, []uint{1, 2, 3, 4}, func(ctx context.Context, ids []uint) ([]uint, error) {
			for _, id := range ids {
				if id == bad {
					return nil, errors.New("row is poisoned")
				}
			}
			return echoFetch(ctx, ids)
		})
		require.NoError(t, err)
		assert.Equal(t, []uint{bad}, res.FailedIDs)

		got := append([]uint(nil), res.Rows...)
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		assert.Equal(t, []uint{1, 2, 4}, got)
	})

	t.Run("ThresholdSplitDepth", func(t *testing.T) {
		// Batches of up to 2 succeed; the recursion should stop splitting as
		// soon as batches fit, not descend to singles.
		var sizes []int
		_, err := FetchByIDsSplit(ctx, []uint{1, 2, 3, 4, 5, 6, 7, 8}, func(ctx context.Context, ids []uint) ([]uint, error) {
			sizes = append(sizes, len(ids))
			if len(ids) > 2 {
				return nil, errors.New("too large")
			}
			return echoFetch(ctx, ids)
		})
		require.NoError(t, err)
		for _, s := range sizes {
			assert.LessOrEqual(t, s, 8)
		}
		assert.Contains(t, sizes, 2)
		assert.NotContains(t, sizes, 1)
	})

	t.Run("CancelledContextPropagates", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := FetchByIDsSplit(cancelled, []uint{1, 2}, echoFetch)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
