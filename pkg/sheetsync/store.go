// Package sheetsync reconciles a fused table's schema against a remote
// spreadsheet's existing header, backfills historical rows for newly
// introduced columns, and appends new rows. Writes are strictly additive:
// the remote header only grows, columns are never reordered, and appends
// never overwrite. A crash mid-call leaves at most a widened header, which
// a rerun repairs because the backfill step is idempotent.
package sheetsync

import (
	"context"
	"strings"
)

// Store is the protocol boundary to the remote tabular resource. Every call
// is a synchronous request/response; any non-success response surfaces as a
// classified *errors.RemoteError and aborts the synchronization call.
type Store interface {
	// Header fetches the remote table's first row, nil when the table is empty.
	Header(ctx context.Context) ([]string, error)

	// RowCount probes the number of data rows below the header.
	RowCount(ctx context.Context) (int, error)

	// WriteHeader replaces the header row.
	WriteHeader(ctx context.Context, columns []string) error

	// WriteRange writes a bounded cell range addressed in A1 notation.
	WriteRange(ctx context.Context, a1Range string, values [][]string) error

	// Append adds rows after the table's current last row, no overwrite.
	Append(ctx context.Context, values [][]string) error
}

// ColumnLetter converts a 0-indexed column number to its spreadsheet
// letter: base-26 with no zero digit, so 0→A, 25→Z, 26→AA.
func ColumnLetter(index int) string {
	var b []byte
	for index >= 0 {
		b = append([]byte{byte('A' + index%26)}, b...)
		index = index/26 - 1
	}
	return string(b)
}

// diffColumns returns the local columns missing from the remote header, in
// local order. Comparison is exact; the remote header owns its spellings.
func diffColumns(local, remote []string) []string {
	have := make(map[string]struct{}, len(remote))
	for _, c := range remote {
		have[strings.TrimSpace(c)] = struct{}{}
	}
	var fresh []string
	for _, c := range local {
		if _, ok := have[strings.TrimSpace(c)]; !ok {
			fresh = append(fresh, strings.TrimSpace(c))
		}
	}
	return fresh
}
