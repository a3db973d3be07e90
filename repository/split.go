package repository

import (
	"context"
	"log"
)

// BatchFetchFunc runs one datastore query filtered to the given id list.
type BatchFetchFunc[T any, ID any] func(ctx context.Context, ids []ID) ([]T, error)

// SplitResult is the outcome of an adaptive id-list fetch: every row that
// could be recovered, plus the ids whose single-row fetch still failed.
type SplitResult[T any, ID any] struct {
	Rows      []T
	FailedIDs []ID
}

// FetchByIDsSplit fetches rows for an id list, defeating query-size limits by
// recursive binary splitting. The whole list is tried first; on failure each
// half is retried independently. A single-id batch that still fails is
// recorded as lost and logged, but does not abort the remaining fetch — that
// is the only tolerated failure. Context cancellation propagates as a real
// error instead of being folded into FailedIDs.
func FetchByIDsSplit[T any, ID any](ctx context.Context, ids []ID, fetch BatchFetchFunc[T, ID]) (SplitResult[T, ID], error) {
	if len(ids) == 0 {
		return SplitResult[T, ID]{}, nil
	}
	if err := ctx.Err(); err != nil {
		return SplitResult[T, ID]{}, err
	}

	rows, err := fetch(ctx, ids)
	if err == nil {
		return SplitResult[T, ID]{Rows: rows}, nil
	}

	if len(ids) == 1 {
		droppedIDBatches.Inc()
		log.Printf("dropping unsplittable id batch %v: %v", ids, err)
		return SplitResult[T, ID]{FailedIDs: ids}, nil
	}

	mid := len(ids) / 2
	left, err := FetchByIDsSplit(ctx, ids[:mid], fetch)
	if err != nil {
		return SplitResult[T, ID]{}, err
	}
	right, err := FetchByIDsSplit(ctx, ids[mid:], fetch)
	if err != nil {
		return SplitResult[T, ID]{}, err
	}

	return SplitResult[T, ID]{
		Rows:      append(left.Rows, right.Rows...),
		FailedIDs: append(left.FailedIDs, right.FailedIDs...),
	}, nil
}
