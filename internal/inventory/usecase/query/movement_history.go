package query

import (
	"context"
	"iter"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// MovementHistory yields the whole ledger lazily, newest first, fetching one
// page at a time. Starting from a cursor resumes strictly after it, so records
// already seen are not repeated and records inserted later in ledger order are
// not skipped. Iteration stops at the first error.
func (h *ListMovementsHandler) MovementHistory(ctx context.Context, pageSize int, cursor string) iter.Seq2[domain.MovementRecord, error] {
	return func(yield func(domain.MovementRecord, error) bool) {
		next := cursor
		for {
			page, err := h.Handle(ctx, ListMovementsQuery{PageSize: pageSize, Cursor: next})
			if err != nil {
				yield(domain.MovementRecord{}, err)
				return
			}
			for _, m := range page.Records {
				if !yield(m, nil) {
					return
				}
			}
			if !page.HasMore {
				return
			}
			next = page.NextCursor
		}
	}
}
